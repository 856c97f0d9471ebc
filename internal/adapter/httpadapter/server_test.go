package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/couchcryptid/bikelane-risk/internal/adapter/httpadapter"
	"github.com/couchcryptid/bikelane-risk/internal/observability"
	"github.com/couchcryptid/bikelane-risk/internal/tree"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

// rainTree labels an hour High when more than 2mm fell in the last three hours.
func rainTree() *tree.Tree {
	return &tree.Tree{
		Features: []string{"chuva_acumulada_3h"},
		Classes:  []string{"Low", "High"},
		Root: &tree.Decision{
			Feature:   "chuva_acumulada_3h",
			Threshold: 2,
			Left:      &tree.Leaf{Label: "Low"},
			Right:     &tree.Leaf{Label: "High"},
		},
	}
}

type failingClassifier struct{}

func (failingClassifier) PredictNamed(map[string]float64) (string, error) {
	return "", errors.New("model unavailable")
}

func newTestServer(readyErr error) (*httpadapter.Server, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, rainTree(), "tree-test", metrics, slog.Default())
	return srv, metrics
}

func classify(srv http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/classify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClassify(t *testing.T) {
	srv, metrics := newTestServer(nil)

	tests := []struct {
		name     string
		rain     string
		expected string
	}{
		{"dry", "0", "Low"},
		{"at threshold", "2", "Low"},
		{"wet", "7.5", "High"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := classify(srv, `{"features":{"chuva_acumulada_3h":`+tt.rain+`,"precipitation":1}}`)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expected, body["risk_level"])
			assert.Equal(t, "tree-test", body["model_id"])
		})
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ClassifyRequests.WithLabelValues("success")))
}

func TestClassify_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid JSON", `{"features":`, "decode request"},
		{"unknown field", `{"feature":{"chuva_acumulada_3h":1}}`, "decode request"},
		{"no features", `{"features":{}}`, "features are required"},
		{"missing model feature", `{"features":{"precipitation":1}}`, "chuva_acumulada_3h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, metrics := newTestServer(nil)
			rec := classify(srv, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.want)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ClassifyRequests.WithLabelValues("bad_request")))
		})
	}
}

func TestClassify_ClassifierError(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(":0", &mockReadiness{}, failingClassifier{}, "", metrics, slog.Default())

	rec := classify(srv, `{"features":{"precipitation":1}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ClassifyRequests.WithLabelValues("error")))
}

func TestClassify_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/classify", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
