package codec_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotMyFault/cloudify-plugin/pkg/codec"
	"github.com/NotMyFault/cloudify-plugin/pkg/domain"
)

func get(t *testing.T, doc *domain.Document, key string) any {
	t.Helper()
	v, ok := doc.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func TestParse_JSON(t *testing.T) {
	t.Run("Preserves order and literals", func(t *testing.T) {
		src := `{"b": 1.50, "a": {"d": true, "c": null}, "l": [1, "x", {"y": -2e3}]}`
		doc, err := codec.Parse([]byte(src))
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "a", "l"}, domain.Keys(doc))
		assert.Equal(t, json.Number("1.50"), get(t, doc, "b"))

		inner := get(t, doc, "a").(*domain.Document)
		assert.Equal(t, []string{"d", "c"}, domain.Keys(inner))
		assert.Equal(t, true, get(t, inner, "d"))
		assert.Nil(t, get(t, inner, "c"))

		list := get(t, doc, "l").([]any)
		require.Len(t, list, 3)
		assert.Equal(t, json.Number("1"), list[0])
		assert.Equal(t, "x", list[1])
		assert.Equal(t, json.Number("-2e3"), get(t, list[2].(*domain.Document), "y"))
	})

	t.Run("Unescapes keys and strings", func(t *testing.T) {
		doc, err := codec.Parse([]byte(`{"k\"ey": "café\n"}`))
		require.NoError(t, err)
		assert.Equal(t, "café\n", get(t, doc, `k"ey`))
	})

	t.Run("Empty containers", func(t *testing.T) {
		doc, err := codec.Parse([]byte(`{"o": {}, "l": []}`))
		require.NoError(t, err)
		assert.Equal(t, 0, get(t, doc, "o").(*domain.Document).Len())
		assert.Equal(t, []any{}, get(t, doc, "l"))
	})

	t.Run("Root must be a mapping", func(t *testing.T) {
		_, err := codec.ParseFrom("outputs.json", []byte(`[1, 2]`))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrParse)

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "outputs.json", parseErr.Source)
		assert.Contains(t, parseErr.Reason, "mapping")
		assert.Nil(t, parseErr.YAMLErr, "valid JSON never reaches the YAML stage")
	})
}

func TestParse_YAML(t *testing.T) {
	t.Run("Preserves order and types", func(t *testing.T) {
		src := "z: 1\na:\n  c: 2.50\n  b: yes\n  h: 0x1F\n  q: \"42\"\n  n: ~\nl:\n  - true\n  - text\n"
		doc, err := codec.Parse([]byte(src))
		require.NoError(t, err)

		assert.Equal(t, []string{"z", "a", "l"}, domain.Keys(doc))
		assert.Equal(t, json.Number("1"), get(t, doc, "z"))

		inner := get(t, doc, "a").(*domain.Document)
		assert.Equal(t, []string{"c", "b", "h", "q", "n"}, domain.Keys(inner))
		assert.Equal(t, json.Number("2.5"), get(t, inner, "c"))
		assert.Equal(t, "yes", get(t, inner, "b"))
		assert.Equal(t, json.Number("31"), get(t, inner, "h"))
		assert.Equal(t, "42", get(t, inner, "q"))
		assert.Nil(t, get(t, inner, "n"))

		assert.Equal(t, []any{true, "text"}, get(t, doc, "l"))
	})

	t.Run("Anchors and merge keys", func(t *testing.T) {
		src := "base: &base\n  host: h\n  port: 1\nsvc:\n  <<: *base\n  port: 2\ncopy: *base\n"
		doc, err := codec.Parse([]byte(src))
		require.NoError(t, err)

		svc := get(t, doc, "svc").(*domain.Document)
		assert.Equal(t, []string{"port", "host"}, domain.Keys(svc))
		assert.Equal(t, json.Number("2"), get(t, svc, "port"))
		assert.Equal(t, "h", get(t, svc, "host"))

		base := get(t, doc, "base").(*domain.Document)
		cp := get(t, doc, "copy").(*domain.Document)
		assert.True(t, domain.Equal(base, cp))

		cp.Set("host", "other")
		assert.Equal(t, "h", get(t, base, "host"), "aliases expand to independent copies")
	})

	t.Run("Rejects non-JSON floats", func(t *testing.T) {
		_, err := codec.Parse([]byte("x: .inf\n"))
		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("Rejects sequence root", func(t *testing.T) {
		_, err := codec.Parse([]byte("- a\n- b\n"))
		assert.ErrorIs(t, err, domain.ErrParse)
	})

	t.Run("Rejects exponential alias expansion", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("a0: &a0 [x, x, x, x, x, x, x, x, x, x]\n")
		for i := 1; i <= 7; i++ {
			fmt.Fprintf(&b, "a%d: &a%d [", i, i)
			for j := 0; j < 10; j++ {
				if j > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "*a%d", i-1)
			}
			b.WriteString("]\n")
		}

		start := time.Now()
		_, err := codec.Parse([]byte(b.String()))
		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.YAMLErr.Error(), "aliases expand to more than")
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("Allows moderate alias reuse", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("base: &base {host: h, port: 1}\n")
		for i := 0; i < 200; i++ {
			fmt.Fprintf(&b, "svc%d: *base\n", i)
		}
		doc, err := codec.Parse([]byte(b.String()))
		require.NoError(t, err)
		assert.Equal(t, 201, doc.Len())
	})
}

func TestParse_Invalid(t *testing.T) {
	t.Run("Neither JSON nor YAML", func(t *testing.T) {
		_, err := codec.ParseFrom("inline", []byte("a: b: c"))
		require.Error(t, err)

		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Error(t, parseErr.JSONErr)
		assert.Error(t, parseErr.YAMLErr)
		assert.Contains(t, err.Error(), "inline")
	})

	t.Run("Blank", func(t *testing.T) {
		_, err := codec.Parse([]byte("  \n\t"))
		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "empty document", parseErr.Reason)
	})
}

func TestMarshal(t *testing.T) {
	t.Run("Keeps document order", func(t *testing.T) {
		doc, err := codec.Parse([]byte("zulu: 1\nalpha:\n  y: [a, 2]\n  x: null\n"))
		require.NoError(t, err)

		out, err := codec.Marshal(doc)
		require.NoError(t, err)
		assert.Equal(t, `{"zulu":1,"alpha":{"y":["a",2],"x":null}}`, string(out))
	})

	t.Run("Indent", func(t *testing.T) {
		doc := domain.NewDocument()
		doc.Set("b", json.Number("1"))
		doc.Set("a", "x")

		out, err := codec.MarshalIndent(doc)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": \"x\"\n}", string(out))
	})

	t.Run("Nil document", func(t *testing.T) {
		out, err := codec.Marshal(nil)
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(out))
	})

	t.Run("Idempotent", func(t *testing.T) {
		doc, err := codec.Parse([]byte(`{"a": {"b": [1, 2.0, "c"]}, "d": false}`))
		require.NoError(t, err)

		first, err := codec.MarshalIndent(doc)
		require.NoError(t, err)
		second, err := codec.MarshalIndent(doc)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"a": 1, "b": "two", "c": [true, null, 3.25], "d": {"e": {"f": -1}}}`,
		"name: web\nports:\n  - 80\n  - 443\nmeta:\n  ratio: 0.75\n  enabled: false\n",
	}

	for _, in := range inputs {
		doc, err := codec.Parse([]byte(in))
		require.NoError(t, err)

		for _, marshal := range []func(*domain.Document) ([]byte, error){codec.Marshal, codec.MarshalIndent} {
			out, err := marshal(doc)
			require.NoError(t, err)

			back, err := codec.Parse(out)
			require.NoError(t, err)
			assert.True(t, domain.Equal(doc, back), "round trip changed %s", in)
		}
	}
}

func TestEncode(t *testing.T) {
	doc, err := codec.Parse([]byte(`{"b": {"c": true}, "a": null}`))
	require.NoError(t, err)

	data, err := codec.Encode(doc, false)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": {\n    \"c\": true\n  },\n  \"a\": null\n}\n", string(data))

	data, err = codec.Encode(doc, true)
	require.NoError(t, err)
	assert.Equal(t, "{\"b\":{\"c\":true},\"a\":null}\n", string(data))

	data, err = codec.Encode(nil, true)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}
