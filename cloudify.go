package cloudify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/NotMyFault/cloudify-plugin/pkg/adapters/file"
	"github.com/NotMyFault/cloudify-plugin/pkg/codec"
	"github.com/NotMyFault/cloudify-plugin/pkg/config"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
	"github.com/NotMyFault/cloudify-plugin/pkg/mapping"
	"github.com/NotMyFault/cloudify-plugin/pkg/ports"
)

// Converter is the high-level entry point of the library.
// It loads an outputs document and a mapping, builds the inputs document and writes it.
type Converter struct {
	source  ports.DocumentSource
	sink    ports.DocumentSink
	engine  *mapping.Engine
	hooks   domain.TransformHooks
	logger  *slog.Logger
	workDir string

	// injected is set when WithSource or WithSink replaced the file store.
	injected bool
}

// Option defines a functional option for configuring the Converter.
type Option func(*Converter)

// WithSource injects a custom DocumentSource, replacing the working directory reader.
func WithSource(s ports.DocumentSource) Option {
	return func(c *Converter) {
		c.source = s
	}
}

// WithSink injects a custom DocumentSink, replacing the working directory writer.
func WithSink(s ports.DocumentSink) Option {
	return func(c *Converter) {
		c.sink = s
	}
}

// WithLogger sets a custom structured logger for the converter.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.TransformHooks) Option {
	return func(c *Converter) {
		c.hooks = hooks
	}
}

// Report summarizes one successful conversion.
type Report struct {
	Destination string
	Resolved    []string
	Omitted     []string
	// Bytes is the size of the document as stored by the sink.
	Bytes       int
	Duration    time.Duration
}

// New initializes a Converter rooted at workDir.
// Unless WithSource or WithSink are given, documents are read from and written to workDir.
func New(workDir string, opts ...Option) (*Converter, error) {
	if workDir == "" {
		workDir = "."
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("invalid working directory: %w", err)
	}

	c := &Converter{workDir: absPath}
	for _, opt := range opts {
		opt(c)
	}

	c.injected = c.source != nil || c.sink != nil
	if c.source == nil || c.sink == nil {
		store := file.New(absPath)
		if c.source == nil {
			c.source = store
		}
		if c.sink == nil {
			c.sink = store
		}
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	c.engine = mapping.NewEngine(
		mapping.WithHooks(c.hooks),
		mapping.WithLogger(c.logger),
	)
	return c, nil
}

// WorkDir returns the absolute working directory.
func (c *Converter) WorkDir() string {
	return c.workDir
}

// Convert validates cfg, loads the mapping and the outputs document,
// transforms them and writes the inputs document.
// Nothing is written when any step fails.
func (c *Converter) Convert(ctx context.Context, cfg config.Config) (*Report, error) {
	start := time.Now()
	report, err := c.convert(ctx, cfg)
	duration := time.Since(start)

	event := &domain.ConversionEvent{
		Timestamp:   start,
		Destination: cfg.InputsLocation,
		Duration:    duration,
		Err:         err,
	}
	if report != nil {
		report.Duration = duration
		event.Resolved = len(report.Resolved)
		event.Omitted = len(report.Omitted)
	}
	if c.hooks.OnConversion != nil {
		c.hooks.OnConversion(ctx, event)
	}

	if err != nil {
		c.logger.Error("conversion failed", "kind", domain.Kind(err), "error", err)
		return nil, err
	}
	c.logger.Info("conversion finished",
		"destination", report.Destination,
		"resolved", len(report.Resolved),
		"omitted", len(report.Omitted),
		"duration", duration,
	)
	return report, nil
}

func (c *Converter) convert(ctx context.Context, cfg config.Config) (*Report, error) {
	if cfg.WorkDir == "" {
		cfg.WorkDir = c.workDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	source, sink, err := c.storesFor(cfg.WorkDir)
	if err != nil {
		return nil, err
	}

	spec, err := c.loadMapping(ctx, source, cfg)
	if err != nil {
		return nil, err
	}

	c.logger.Info("reading outputs", "from", cfg.OutputsLocation)
	outputs, err := source.Load(ctx, cfg.OutputsLocation)
	if err != nil {
		return nil, err
	}

	result, err := c.engine.Transform(ctx, outputs, spec)
	if err != nil {
		return nil, err
	}

	c.logger.Info("writing inputs", "to", cfg.InputsLocation)
	n, err := sink.Write(ctx, cfg.InputsLocation, result, ports.WriteOptions{Compact: cfg.Compact})
	if err != nil {
		return nil, err
	}

	report := &Report{
		Destination: cfg.InputsLocation,
		Resolved:    domain.Keys(result),
		Bytes:       n,
	}
	for pair := spec.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := result.Get(pair.Key); !ok {
			report.Omitted = append(report.Omitted, pair.Key)
		}
	}
	return report, nil
}

// storesFor returns the source and sink serving workDir.
// A working directory other than the converter's own gets a file store of its
// own, unless the stores were injected, which cannot be re-rooted.
func (c *Converter) storesFor(workDir string) (ports.DocumentSource, ports.DocumentSink, error) {
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return nil, nil, &domain.ConfigError{Problems: []string{
			fmt.Sprintf("invalid working directory %q: %v", workDir, err),
		}}
	}
	if absPath == c.workDir {
		return c.source, c.sink, nil
	}
	if c.injected {
		return nil, nil, &domain.ConfigError{Problems: []string{
			fmt.Sprintf("working directory %q differs from the converter root %q, which uses injected stores", workDir, c.workDir),
		}}
	}
	store := file.New(absPath)
	return store, store, nil
}

func (c *Converter) loadMapping(ctx context.Context, source ports.DocumentSource, cfg config.Config) (*domain.Document, error) {
	if strings.TrimSpace(cfg.MappingLocation) == "" {
		return codec.ParseFrom("inline mapping", []byte(cfg.Mapping))
	}
	c.logger.Info("reading inputs mapping", "from", cfg.MappingLocation)
	return source.Load(ctx, cfg.MappingLocation)
}
