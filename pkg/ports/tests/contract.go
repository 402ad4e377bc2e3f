package tests

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
	"github.com/NotMyFault/cloudify-plugin/pkg/ports"
)

// Seeder places raw bytes at a location of the store under test.
type Seeder func(t *testing.T, location string, data []byte)

// DocumentStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.DocumentStore.
func DocumentStoreContractTest(t *testing.T, store ports.DocumentStore, seed Seeder) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_JSON", func(t *testing.T) {
		seed(t, "outputs.json", []byte(`{"b": 1, "a": "x"}`))

		doc, err := store.Load(ctx, "outputs.json")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, domain.Keys(doc))
	})

	t.Run("Load_YAML", func(t *testing.T) {
		seed(t, "mapping.yaml", []byte("target: source.key\n"))

		doc, err := store.Load(ctx, "mapping.yaml")
		require.NoError(t, err)
		v, _ := doc.Get("target")
		assert.Equal(t, "source.key", v)
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "does-not-exist.json")
		assert.ErrorIs(t, err, domain.ErrIO)
	})

	t.Run("Load_Malformed", func(t *testing.T) {
		seed(t, "broken.json", []byte("a: b: c"))

		_, err := store.Load(ctx, "broken.json")
		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("WriteThenLoad", func(t *testing.T) {
		doc := domain.NewDocument()
		doc.Set("z", json.Number("1"))
		doc.Set("a", []any{"x", nil})

		n, err := store.Write(ctx, "inputs.json", doc, ports.WriteOptions{})
		require.NoError(t, err)
		assert.Positive(t, n)

		back, err := store.Load(ctx, "inputs.json")
		require.NoError(t, err)
		assert.True(t, domain.Equal(doc, back))
	})

	t.Run("Overwrite", func(t *testing.T) {
		first := domain.NewDocument()
		first.Set("v", "1")
		second := domain.NewDocument()
		second.Set("v", "2")

		_, err := store.Write(ctx, "again.json", first, ports.WriteOptions{Compact: true})
		require.NoError(t, err)
		n, err := store.Write(ctx, "again.json", second, ports.WriteOptions{Compact: true})
		require.NoError(t, err)
		assert.Equal(t, len("{\"v\":\"2\"}\n"), n)

		back, err := store.Load(ctx, "again.json")
		require.NoError(t, err)
		v, _ := back.Get("v")
		assert.Equal(t, "2", v)
	})
}
