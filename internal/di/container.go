// Package di wires the service together.
package di

import (
	"net/http"

	"go.uber.org/zap"

	"forum-api/internal/access"
	"forum-api/internal/config"
	"forum-api/internal/forums"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Runtime  *config.Runtime
	Watcher  *config.Watcher
	Service  *forums.Service
	Registry *access.Registry
	Handler  http.Handler
	Tracing  Tracing
}
