package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"unshorten/pkg/controller"
	"unshorten/pkg/logger"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func TestWithLogger_PassesThroughAndRecordsStatus(t *testing.T) {
	var gotRequestID any
	h := controller.WithLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Context().Value(controller.RequestIDKey)
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://debug.local/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Result().StatusCode)
	require.NotEmpty(t, gotRequestID, "request ID should be injected into the context")
}

func TestWithLogger_KeepsIncomingRequestID(t *testing.T) {
	var gotRequestID any
	h := controller.WithLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Context().Value(controller.RequestIDKey)
	}))

	req := httptest.NewRequest(http.MethodGet, "http://debug.local/", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "fixed-id", gotRequestID)
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-forwarded-for list takes first",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.9"},
			want:       "198.51.100.9",
		},
		{
			name:       "remote addr fallback",
			remoteAddr: "10.0.0.1:1234",
			want:       "10.0.0.1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://debug.local/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tc.want, controller.GetClientIP(req))
		})
	}
}
