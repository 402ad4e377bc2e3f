package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	cloudify "github.com/NotMyFault/cloudify-plugin"
	"github.com/NotMyFault/cloudify-plugin/internal/metrics"
	"github.com/NotMyFault/cloudify-plugin/internal/presentation/tui"
	"github.com/NotMyFault/cloudify-plugin/pkg/adapters/file"
	"github.com/NotMyFault/cloudify-plugin/pkg/codec"
	"github.com/NotMyFault/cloudify-plugin/pkg/config"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
	"github.com/NotMyFault/cloudify-plugin/pkg/mapping"
)

// Options carries the command-line surface shared by convert and validate.
type Options struct {
	// ConfigFile is an optional YAML, JSON or TOML file with the same keys as the flags.
	ConfigFile string
	// MetricsFile receives a Prometheus textfile after the conversion when set.
	MetricsFile string
	Flags       *pflag.FlagSet
	Logger      *slog.Logger
	Out         io.Writer
}

// flagNames maps configuration keys to their flag names.
var flagNames = map[string]string{
	"workdir":      "workdir",
	"outputs":      "outputs",
	"mapping":      "mapping",
	"mapping_file": "mapping-file",
	"inputs":       "inputs",
	"compact":      "compact",
}

// LoadConfig merges flags, CFY_* environment variables and the optional config file,
// then expands $VAR references from the process environment.
// Changed flags win over the environment, which wins over the config file.
func LoadConfig(flags *pflag.FlagSet, configFile string) (config.Config, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return config.Config{}, err
	}
	if flags != nil {
		for key, name := range flagNames {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return config.Config{}, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, err
	}
	return cfg.Expand(os.LookupEnv), nil
}

// RunConvert performs one conversion and prints its summary.
func RunConvert(ctx context.Context, opts Options) (*cloudify.Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := LoadConfig(opts.Flags, opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	hooks := createDebugHooks(logger)
	var rec *metrics.Recorder
	if opts.MetricsFile != "" {
		rec = metrics.New()
		hooks = hooks.Merge(rec.Hooks())
	}

	conv, err := cloudify.New(cfg.Root(), cloudify.WithLogger(logger), cloudify.WithHooks(hooks))
	if err != nil {
		return nil, err
	}

	report, convErr := conv.Convert(ctx, cfg)

	// a rejected configuration touches no files, the textfile included
	if rec != nil && !errors.Is(convErr, domain.ErrConfig) {
		if err := rec.WriteTextfile(opts.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics textfile", "path", opts.MetricsFile, "error", err)
		}
	}
	if convErr != nil {
		return nil, convErr
	}

	if opts.Out != nil {
		tui.PrintReport(opts.Out, report)
	}
	return report, nil
}

// RunValidate checks a mapping without reading any outputs document.
// It returns the number of entries in the mapping.
func RunValidate(ctx context.Context, opts Options) (int, error) {
	cfg, err := LoadConfig(opts.Flags, opts.ConfigFile)
	if err != nil {
		return 0, err
	}

	hasMapping := strings.TrimSpace(cfg.Mapping) != ""
	hasMappingFile := strings.TrimSpace(cfg.MappingLocation) != ""
	if hasMapping == hasMappingFile {
		return 0, &domain.ConfigError{Problems: []string{
			"specify either an inline mapping or the location of a mapping file (not both)",
		}}
	}

	var spec *domain.Document
	if hasMappingFile {
		spec, err = file.New(cfg.Root()).Load(ctx, cfg.MappingLocation)
	} else {
		spec, err = codec.ParseFrom("inline mapping", []byte(cfg.Mapping))
	}
	if err != nil {
		return 0, err
	}
	if err := mapping.Validate(spec); err != nil {
		return 0, err
	}

	if opts.Out != nil {
		tui.PrintValid(opts.Out, spec.Len())
	}
	return spec.Len(), nil
}
