package access

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	apperrors "forum-api/pkg/errors"
)

// Args are the named arguments of an operation.
type Args map[string]any

// Operation is one forum query.
type Operation func(ctx context.Context, scope Scope, args Args) (any, error)

// Rule is the precondition attached to an operation.
type Rule struct {
	RequireAuth bool
	Permission  string
}

// Public needs nothing.
var Public = Rule{}

// LoginRequired needs a signed-in user.
var LoginRequired = Rule{RequireAuth: true}

// Permission needs a signed-in user holding perm.
func Permission(perm string) Rule {
	return Rule{RequireAuth: true, Permission: perm}
}

// Check evaluates the rule. Authentication is always checked before the
// permission, and a permission implies a signed-in user.
func (r Rule) Check(scope Scope) error {
	if (r.RequireAuth || r.Permission != "") && !scope.Authenticated() {
		return apperrors.NewUnauthenticatedError("")
	}
	if r.Permission != "" && !scope.Can(r.Permission) {
		return apperrors.NewUnauthorizedError(r.Permission)
	}
	return nil
}

// Guard returns op preceded by rule. When the rule fails op is not called;
// otherwise op's result and error are returned untouched.
func Guard(name string, rule Rule, op Operation) Operation {
	return func(ctx context.Context, scope Scope, args Args) (any, error) {
		if err := rule.Check(scope); err != nil {
			if appErr := apperrors.GetAppError(err); appErr != nil {
				if appErr.Details == nil {
					appErr.Details = map[string]interface{}{}
				}
				appErr.Details["operation"] = name
			}
			return nil, err
		}
		return op(ctx, scope, args)
	}
}

// Entry declares one operation and its rule.
type Entry struct {
	Name string
	Rule Rule
	Op   Operation
}

// Registry holds guarded operations. It is fully built by NewRegistry and
// never modified afterwards.
type Registry struct {
	ops    map[string]Operation
	rules  map[string]Rule
	logger *zap.Logger
}

// NewRegistry guards every entry. Duplicate names are a programming error.
func NewRegistry(logger *zap.Logger, entries ...Entry) (*Registry, error) {
	r := &Registry{
		ops:    make(map[string]Operation, len(entries)),
		rules:  make(map[string]Rule, len(entries)),
		logger: logger,
	}
	for _, e := range entries {
		if _, dup := r.ops[e.Name]; dup {
			return nil, fmt.Errorf("operation %q registered twice", e.Name)
		}
		if e.Op == nil {
			return nil, fmt.Errorf("operation %q has no implementation", e.Name)
		}
		r.ops[e.Name] = Guard(e.Name, e.Rule, e.Op)
		r.rules[e.Name] = e.Rule
	}
	return r, nil
}

// Names lists registered operations in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.ops))
	for name := range r.ops {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Rule returns the rule declared for name.
func (r *Registry) Rule(name string) (Rule, bool) {
	rule, ok := r.rules[name]
	return rule, ok
}

// Invoke runs the named operation.
func (r *Registry) Invoke(ctx context.Context, name string, scope Scope, args Args) (any, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("unknown operation: " + name)
	}

	result, err := op(ctx, scope, args)
	if err != nil {
		switch {
		case apperrors.IsUnauthenticated(err), apperrors.IsUnauthorized(err):
			r.logger.Debug("operation denied",
				zap.String("operation", name),
				zap.String("user_id", scope.UserID()),
				zap.Error(err),
			)
		default:
			r.logger.Debug("operation failed",
				zap.String("operation", name),
				zap.Error(err),
			)
		}
	}
	return result, err
}
