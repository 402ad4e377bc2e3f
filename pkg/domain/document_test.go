package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

func sample() *domain.Document {
	inner := domain.NewDocument()
	inner.Set("host", "10.0.0.1")
	inner.Set("port", json.Number("8080"))

	doc := domain.NewDocument()
	doc.Set("zeta", true)
	doc.Set("endpoint", inner)
	doc.Set("tags", []any{"a", json.Number("1"), nil})
	return doc
}

func TestKeys_PreservesInsertionOrder(t *testing.T) {
	assert.Equal(t, []string{"zeta", "endpoint", "tags"}, domain.Keys(sample()))
	assert.Nil(t, domain.Keys(nil))
}

func TestCloneDocument(t *testing.T) {
	t.Run("Copy is equal", func(t *testing.T) {
		src := sample()
		assert.True(t, domain.Equal(src, domain.CloneDocument(src)))
	})

	t.Run("Mutating copy leaves source intact", func(t *testing.T) {
		src := sample()
		cp := domain.CloneDocument(src)

		inner, _ := cp.Get("endpoint")
		inner.(*domain.Document).Set("host", "changed")
		tags, _ := cp.Get("tags")
		tags.([]any)[0] = "z"
		cp.Set("extra", "x")

		assert.True(t, domain.Equal(sample(), src))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.Nil(t, domain.CloneDocument(nil))
	})
}

func TestEqual(t *testing.T) {
	a := domain.NewDocument()
	a.Set("x", "1")
	a.Set("y", "2")

	b := domain.NewDocument()
	b.Set("y", "2")
	b.Set("x", "1")

	assert.False(t, domain.Equal(a, b), "key order is significant")
	assert.False(t, domain.Equal(json.Number("1"), "1"))
	assert.False(t, domain.Equal([]any{"a"}, []any{"a", "b"}))
	assert.True(t, domain.Equal(nil, nil))
	assert.True(t, domain.Equal([]any{json.Number("2.5"), false}, []any{json.Number("2.5"), false}))
}
