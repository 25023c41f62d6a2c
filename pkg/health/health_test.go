package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"spacelink/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	h := NewHandler(nil, nil, logger.Discard())
	w := httptest.NewRecorder()

	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name      string
		mongoPing func(context.Context) error
		redisPing func(context.Context) error
		want      int
		body      string
	}{
		{"mongo only", ok, nil, http.StatusOK, `{"status":"ready","database":"ok"}`},
		{"mongo and redis", ok, ok, http.StatusOK, `{"status":"ready","database":"ok","cache":"ok"}`},
		{"mongo down", down, nil, http.StatusServiceUnavailable, `{"status":"unavailable","database":"error"}`},
		{"redis down", ok, down, http.StatusServiceUnavailable, `{"status":"unavailable","database":"ok","cache":"error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handler{mongoPing: tt.mongoPing, redisPing: tt.redisPing, log: logger.Discard()}
			w := httptest.NewRecorder()

			h.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil), nil)

			assert.Equal(t, tt.want, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
