package forums

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"forum-api/internal/store/memory"
)

// Seed is a fixture of records for the in-memory backend.
type Seed struct {
	Forums      []Forum             `yaml:"forums"`
	Topics      []ForumTopic        `yaml:"topics"`
	Discussions []ForumDiscussion   `yaml:"discussions"`
	Comments    []DiscussionComment `yaml:"comments"`
	Reactions   []ForumReaction     `yaml:"reactions"`
}

// LoadSeed reads a YAML fixture. An empty path yields an empty seed.
func LoadSeed(path string) (*Seed, error) {
	seed := &Seed{}
	if path == "" {
		return seed, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	if err := yaml.Unmarshal(data, seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return seed, nil
}

// MemoryCollections returns in-memory collections holding the seed records.
func (s *Seed) MemoryCollections() Collections {
	return Collections{
		Forums:      memory.NewCollection(s.Forums...),
		Topics:      memory.NewCollection(s.Topics...),
		Discussions: memory.NewCollection(s.Discussions...),
		Comments:    memory.NewCollection(s.Comments...),
		Reactions:   memory.NewCollection(s.Reactions...),
	}
}
