package mapping

import (
	"context"
	"log/slog"
	"time"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// Engine applies mapping specifications to outputs documents.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	hooks  domain.TransformHooks
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHooks registers observability hooks.
func WithHooks(hooks domain.TransformHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger used for per-entry debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Transform builds the inputs document described by spec from outputs.
//
// Every entry of spec maps a target key to a path expression into outputs.
// Entries whose path does not resolve are left out of the result. A
// malformed entry aborts the whole transform with a *domain.MappingError.
// The result never shares nested documents or lists with outputs.
func (e *Engine) Transform(ctx context.Context, outputs, spec *domain.Document) (*domain.Document, error) {
	result := domain.NewDocument()
	if spec == nil {
		return result, nil
	}

	for pair := spec.Oldest(); pair != nil; pair = pair.Next() {
		expr, path, err := entryPath(pair.Key, pair.Value)
		if err != nil {
			return nil, err
		}

		value, found, err := resolve(outputs, path)
		if err != nil {
			return nil, &domain.MappingError{Key: pair.Key, Path: expr, Reason: err.Error()}
		}

		outcome := domain.OutcomeOmitted
		if found {
			result.Set(pair.Key, domain.Clone(value))
			outcome = domain.OutcomeResolved
		}

		e.logger.Debug("mapping entry", "target", pair.Key, "path", expr, "outcome", outcome)
		if e.hooks.OnEntry != nil {
			e.hooks.OnEntry(ctx, &domain.EntryEvent{
				Timestamp: time.Now(),
				TargetKey: pair.Key,
				Path:      expr,
				Outcome:   outcome,
			})
		}
	}

	return result, nil
}

// Transform applies spec to outputs with a default Engine.
func Transform(outputs, spec *domain.Document) (*domain.Document, error) {
	return NewEngine().Transform(context.Background(), outputs, spec)
}

// Validate checks that every entry of spec is a well-formed path expression
// without needing an outputs document.
func Validate(spec *domain.Document) error {
	if spec == nil {
		return nil
	}
	for pair := spec.Oldest(); pair != nil; pair = pair.Next() {
		if _, _, err := entryPath(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

func entryPath(key string, value any) (string, Path, error) {
	expr, ok := value.(string)
	if !ok {
		if value == nil {
			return "", Path{}, &domain.MappingError{Key: key, Reason: "path expression must be a string, got null"}
		}
		return "", Path{}, &domain.MappingError{Key: key, Reason: "path expression must be a string", Value: value}
	}
	path, err := ParsePath(expr)
	if err != nil {
		return "", Path{}, &domain.MappingError{Key: key, Path: expr, Reason: err.Error()}
	}
	return expr, path, nil
}
