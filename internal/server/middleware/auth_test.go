package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// staticValidator maps known tokens to subjects.
type staticValidator map[string]string

func (v staticValidator) ValidateToken(token string) (string, error) {
	subject, ok := v[token]
	if !ok {
		return "", errors.New("invalid token")
	}
	return subject, nil
}

func reviewerEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reviewer, err := GetReviewer(r)
		require.NoError(t, err)
		_, _ = w.Write([]byte(reviewer))
	})
}

func TestRequireBearer(t *testing.T) {
	validator := staticValidator{"good-token": "anna@lg.example", "blank": ""}
	handler := RequireBearer(validator)(reviewerEcho(t))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", header: "Bearer good-token", wantStatus: http.StatusOK, wantBody: "anna@lg.example"},
		{name: "case insensitive scheme", header: "bearer good-token", wantStatus: http.StatusOK, wantBody: "anna@lg.example"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good-token", wantStatus: http.StatusUnauthorized},
		{name: "extra parts", header: "Bearer good token", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer forged", wantStatus: http.StatusUnauthorized},
		{name: "empty subject", header: "Bearer blank", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/pipelines/x/review", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
				assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestRequireBearer_NilValidator(t *testing.T) {
	called := false
	handler := RequireBearer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, err := GetReviewer(r)
		assert.Error(t, err)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.True(t, called)
}

func TestGetReviewer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetReviewer(req)
	assert.Error(t, err)

	req = req.WithContext(WithReviewer(context.Background(), "lee"))
	reviewer, err := GetReviewer(req)
	require.NoError(t, err)
	assert.Equal(t, "lee", reviewer)

	// A value of the wrong type is ignored
	req = req.WithContext(context.WithValue(context.Background(), reviewerKey, 42))
	_, err = GetReviewer(req)
	assert.Error(t, err)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health?verbose=1", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/health", fields["path"])
	assert.Equal(t, int64(200), fields["status"])
	assert.Equal(t, "verbose=1", fields["query"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
}

func TestLogging_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		require.True(t, ok)
		_, _ = w.Write([]byte("data: x\n\n"))
		f.Flush()
	}))

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))

	assert.True(t, rec.Flushed)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("data: x")))
}
