package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

// Config describes one outputs-to-inputs conversion.
// Locations are relative to WorkDir.
type Config struct {
	WorkDir         string `mapstructure:"workdir"`
	OutputsLocation string `mapstructure:"outputs"`
	Mapping         string `mapstructure:"mapping"`
	MappingLocation string `mapstructure:"mapping_file"`
	InputsLocation  string `mapstructure:"inputs"`
	Compact         bool   `mapstructure:"compact"`
}

// Validate checks the whole configuration at once and reports every problem
// in a single *domain.ConfigError.
func (c Config) Validate() error {
	var problems []string

	hasMapping := strings.TrimSpace(c.Mapping) != ""
	hasMappingFile := strings.TrimSpace(c.MappingLocation) != ""
	if hasMapping == hasMappingFile {
		problems = append(problems,
			"specify either an inline mapping or the location of a mapping file (not both)")
	}
	if strings.TrimSpace(c.OutputsLocation) == "" {
		problems = append(problems, "outputs location is required")
	}
	if strings.TrimSpace(c.InputsLocation) == "" {
		problems = append(problems, "inputs location is required")
	}

	for _, field := range []struct{ name, value string }{
		{"outputs location", c.OutputsLocation},
		{"mapping file location", c.MappingLocation},
		{"inputs location", c.InputsLocation},
	} {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		if !c.inside(field.value) {
			problems = append(problems, fmt.Sprintf("%s %q is outside the working directory", field.name, field.value))
		}
	}

	if len(problems) > 0 {
		return &domain.ConfigError{Problems: problems}
	}
	return nil
}

func (c Config) inside(location string) bool {
	if !filepath.IsAbs(location) {
		return filepath.IsLocal(location)
	}
	root, err := filepath.Abs(c.root())
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, filepath.Clean(location))
	return err == nil && filepath.IsLocal(rel)
}

func (c Config) root() string {
	if c.WorkDir == "" {
		return "."
	}
	return c.WorkDir
}

// Root returns the working directory, defaulting to ".".
func (c Config) Root() string {
	return c.root()
}

// Expand substitutes $VAR and ${VAR} references in the textual fields using lookup.
// References lookup cannot resolve are kept verbatim.
func (c Config) Expand(lookup func(string) (string, bool)) Config {
	expand := func(s string) string {
		return os.Expand(s, func(name string) string {
			if v, ok := lookup(name); ok {
				return v
			}
			return "${" + name + "}"
		})
	}

	c.WorkDir = expand(c.WorkDir)
	c.OutputsLocation = expand(c.OutputsLocation)
	c.Mapping = expand(c.Mapping)
	c.MappingLocation = expand(c.MappingLocation)
	c.InputsLocation = expand(c.InputsLocation)
	return c
}

// Load decodes the settings held by v (flags, CFY_* environment, config file) into a Config.
// It does not validate; call Validate once variables have been expanded.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, &domain.ConfigError{Problems: []string{err.Error()}}
	}
	return cfg, nil
}

// NewViper returns a viper instance reading CFY_* environment variables and,
// when file is non-empty, the given config file (YAML, JSON or TOML).
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CFY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{"workdir", "outputs", "mapping", "mapping_file", "inputs", "compact"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, &domain.ConfigError{Problems: []string{fmt.Sprintf("cannot read config file %s: %v", file, err)}}
		}
	}
	return v, nil
}
