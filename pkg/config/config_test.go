package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotMyFault/cloudify-plugin/pkg/config"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

func valid() config.Config {
	return config.Config{
		OutputsLocation: "outputs.json",
		MappingLocation: "mapping.yaml",
		InputsLocation:  "inputs.json",
	}
}

func problems(t *testing.T, err error) []string {
	t.Helper()
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	return cfgErr.Problems
}

func TestValidate(t *testing.T) {
	t.Run("Valid with mapping file", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("Valid with inline mapping", func(t *testing.T) {
		cfg := valid()
		cfg.MappingLocation = ""
		cfg.Mapping = `{"x": "a.b"}`
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Both mapping sources", func(t *testing.T) {
		cfg := valid()
		cfg.Mapping = `{"x": "a.b"}`
		err := cfg.Validate()
		assert.ErrorIs(t, err, domain.ErrConfig)
		assert.Len(t, problems(t, err), 1)
	})

	t.Run("No mapping source", func(t *testing.T) {
		cfg := valid()
		cfg.MappingLocation = "   "
		assert.ErrorIs(t, cfg.Validate(), domain.ErrConfig)
	})

	t.Run("Reports every problem", func(t *testing.T) {
		err := config.Config{}.Validate()
		assert.Len(t, problems(t, err), 3)
	})

	t.Run("Locations must stay in the working directory", func(t *testing.T) {
		cfg := valid()
		cfg.InputsLocation = "../inputs.json"
		cfg.OutputsLocation = "/etc/outputs.json"
		assert.Len(t, problems(t, cfg.Validate()), 2)
	})

	t.Run("Absolute location inside the working directory", func(t *testing.T) {
		dir := t.TempDir()
		cfg := valid()
		cfg.WorkDir = dir
		cfg.InputsLocation = filepath.Join(dir, "out", "inputs.json")
		assert.NoError(t, cfg.Validate())
	})
}

func TestExpand(t *testing.T) {
	vars := map[string]string{"BUILD": "42", "WS": "deploy"}
	lookup := func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}

	cfg := config.Config{
		WorkDir:         "$WS",
		OutputsLocation: "${WS}/outputs-${BUILD}.json",
		MappingLocation: "mapping-$UNKNOWN.yaml",
		InputsLocation:  "inputs.json",
		Compact:         true,
	}.Expand(lookup)

	assert.Equal(t, "deploy", cfg.WorkDir)
	assert.Equal(t, "deploy/outputs-42.json", cfg.OutputsLocation)
	assert.Equal(t, "mapping-${UNKNOWN}.yaml", cfg.MappingLocation)
	assert.Equal(t, "inputs.json", cfg.InputsLocation)
	assert.True(t, cfg.Compact)
}

func TestLoad(t *testing.T) {
	t.Run("Config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "job.yaml")
		content := "outputs: out.json\nmapping_file: map.yaml\ninputs: in.json\ncompact: \"true\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		v, err := config.NewViper(path)
		require.NoError(t, err)

		cfg, err := config.Load(v)
		require.NoError(t, err)
		assert.Equal(t, "out.json", cfg.OutputsLocation)
		assert.Equal(t, "map.yaml", cfg.MappingLocation)
		assert.Equal(t, "in.json", cfg.InputsLocation)
		assert.True(t, cfg.Compact)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("CFY_OUTPUTS", "env-out.json")
		t.Setenv("CFY_MAPPING", "x: a")

		v, err := config.NewViper("")
		require.NoError(t, err)

		cfg, err := config.Load(v)
		require.NoError(t, err)
		assert.Equal(t, "env-out.json", cfg.OutputsLocation)
		assert.Equal(t, "x: a", cfg.Mapping)
	})

	t.Run("Missing config file", func(t *testing.T) {
		_, err := config.NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, domain.ErrConfig)
	})
}
