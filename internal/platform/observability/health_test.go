package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type extraRoute struct{}

func (extraRoute) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /extra", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestServer_Health(t *testing.T) {
	healthy := NewServer(pingerFunc(func(context.Context) error { return nil }), 0, nil, extraRoute{})

	assert.Equal(t, http.StatusOK, get(healthy.Handler(), "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(healthy.Handler(), "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(healthy.Handler(), "/metrics").Code)
	assert.Equal(t, http.StatusTeapot, get(healthy.Handler(), "/extra").Code)

	down := NewServer(pingerFunc(func(context.Context) error { return errors.New("connection refused") }), 0, nil)

	rec := get(down.Handler(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
