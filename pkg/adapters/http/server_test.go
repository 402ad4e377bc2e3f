package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotMyFault/cloudify-plugin/internal/logging"
	cfyhttp "github.com/NotMyFault/cloudify-plugin/pkg/adapters/http"
	"github.com/NotMyFault/cloudify-plugin/pkg/mapping"
)

func newHandler(opts ...cfyhttp.Option) http.Handler {
	opts = append([]cfyhttp.Option{cfyhttp.WithLogger(logging.NewNop())}, opts...)
	return cfyhttp.NewHandler(mapping.NewEngine(), opts...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func kindOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	return resp.Kind
}

func TestTransform(t *testing.T) {
	h := newHandler()

	t.Run("Nested documents", func(t *testing.T) {
		body := `{
			"outputs": {"endpoint": {"ip": "10.0.0.5", "port": 8080}, "name": "svc"},
			"mapping": {"port": "endpoint.port", "host": "endpoint.ip", "missing": "nope"}
		}`
		w := do(t, h, http.MethodPost, "/transform", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, "{\"port\":8080,\"host\":\"10.0.0.5\"}\n", w.Body.String())
	})

	t.Run("Text members in a YAML envelope", func(t *testing.T) {
		body := "outputs: '{\"a\": {\"b\": [1, 2]}}'\nmapping: |\n  x: a.b\n  y: a\n"
		w := do(t, h, http.MethodPost, "/transform", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "{\"x\":[1,2],\"y\":{\"b\":[1,2]}}\n", w.Body.String())
	})

	t.Run("Missing member", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/transform", `{"outputs": {}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request", kindOf(t, w))
	})

	t.Run("Member of the wrong type", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/transform", `{"outputs": {}, "mapping": [1]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Malformed envelope", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/transform", "{ not: [valid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request", kindOf(t, w))
	})

	t.Run("Unparseable member", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/transform", `{"outputs": "[1, 2]", "mapping": {}}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "parse", kindOf(t, w))
	})

	t.Run("Mapping error", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/transform", `{"outputs": {"a": 1}, "mapping": {"x": 5}}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "mapping", kindOf(t, w))
	})

	t.Run("Body too large", func(t *testing.T) {
		body := `{"outputs": "` + strings.Repeat("a", cfyhttp.MaxBodyBytes) + `"}`
		w := do(t, h, http.MethodPost, "/transform", body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestValidate(t *testing.T) {
	h := newHandler()

	w := do(t, h, http.MethodPost, "/validate", "a: x.y\nb: z\n")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid": true, "entries": 2}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/validate", `{"a": "x..y"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "mapping", kindOf(t, w))

	w = do(t, h, http.MethodPost, "/validate", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "parse", kindOf(t, w))
}

func TestHealthAndInfo(t *testing.T) {
	h := newHandler()

	w := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"app":"cfy-outputs"`)
}

func TestMetricsMount(t *testing.T) {
	w := do(t, newHandler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cfy_conversions_total 0\n"))
	})
	w = do(t, newHandler(cfyhttp.WithMetrics(metrics)), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cfy_conversions_total")
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newHandler(), http.MethodOptions, "/transform", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
