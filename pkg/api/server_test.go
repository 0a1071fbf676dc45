package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-dyncomm/pkg/algorithms"
	"github.com/dd0wney/cluso-dyncomm/pkg/config"
	"github.com/dd0wney/cluso-dyncomm/pkg/logging"
	"github.com/dd0wney/cluso-dyncomm/pkg/metrics"
	"github.com/dd0wney/cluso-dyncomm/pkg/temporal"
)

const twoTrianglesCSV = "source,target\na,b\nb,c\na,c\nc,d\nd,e\ne,f\nd,f\n"

type upload struct {
	name string
	body string
}

func multipartBody(t *testing.T, field string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile(field, f.name)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func setupTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *metrics.Registry) {
	t.Helper()

	cfg := config.Default()
	cfg.Detection.Trees = 10
	cfg.Server.RateLimitRPS = 0
	if mutate != nil {
		mutate(cfg)
	}

	reg := metrics.NewRegistry()
	s, err := NewServer(cfg, logging.NewNopLogger(), reg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, reg
}

func postFiles(t *testing.T, s *Server, path string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, uploadField, files...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestAnalyze_TwoSnapshots(t *testing.T) {
	s, reg := setupTestServer(t, nil)

	rr := postFiles(t, s, "/analyze/",
		upload{"t0.csv", twoTrianglesCSV},
		upload{"t1.csv", twoTrianglesCSV + "f,g\n"},
	)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	assert.Equal(t, 1, first.Snapshot)
	assert.Equal(t, temporal.PhaseBootstrap, first.Phase)
	assert.InDelta(t, 0.3571, first.Modularity, 1e-9)
	assert.Equal(t, 6, first.Nodes)
	assert.Equal(t, 7, first.Edges)
	assert.Equal(t, 2, first.NumCommunities)
	assert.Equal(t, first.Communities["a"], first.Communities["b"])
	assert.Equal(t, first.Communities["a"], first.Communities["c"])
	assert.Equal(t, first.Communities["d"], first.Communities["e"])
	assert.Equal(t, first.Communities["d"], first.Communities["f"])
	assert.NotEqual(t, first.Communities["a"], first.Communities["d"])

	second := resp.Results[1]
	assert.Equal(t, 2, second.Snapshot)
	assert.Equal(t, temporal.PhasePredict, second.Phase)
	assert.Len(t, second.Communities, 7)
	assert.Contains(t, second.Communities, "g")

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.UploadFilesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RunsTotal.WithLabelValues(metrics.RunSuccess)))
}

func TestAnalyze_PathWithoutSlash(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	rr := postFiles(t, s, "/analyze", upload{"t0.csv", twoTrianglesCSV})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/analyze/", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
	assert.Equal(t, "method not allowed", decodeError(t, rr))
}

func TestAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		build   func(t *testing.T) *http.Request
		wantErr string
	}{
		{
			name: "not multipart",
			build: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/analyze/", strings.NewReader("source,target\na,b\n"))
				req.Header.Set("Content-Type", "text/csv")
				return req
			},
			wantErr: "invalid multipart form",
		},
		{
			name: "no files",
			build: func(t *testing.T) *http.Request {
				body, ct := multipartBody(t, "other", upload{"t0.csv", twoTrianglesCSV})
				req := httptest.NewRequest(http.MethodPost, "/analyze/", body)
				req.Header.Set("Content-Type", ct)
				return req
			},
			wantErr: `no "files" uploaded`,
		},
		{
			name: "missing column",
			build: func(t *testing.T) *http.Request {
				body, ct := multipartBody(t, uploadField,
					upload{"good.csv", twoTrianglesCSV},
					upload{"bad.csv", "from,to\na,b\n"},
				)
				req := httptest.NewRequest(http.MethodPost, "/analyze/", body)
				req.Header.Set("Content-Type", ct)
				return req
			},
			wantErr: "file 2 (bad.csv)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := setupTestServer(t, nil)

			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, tt.build(t))

			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Contains(t, decodeError(t, rr), tt.wantErr)
		})
	}
}

func TestAnalyze_TooManyFiles(t *testing.T) {
	s, _ := setupTestServer(t, func(c *config.Config) { c.Server.MaxFiles = 1 })

	rr := postFiles(t, s, "/analyze/",
		upload{"t0.csv", twoTrianglesCSV},
		upload{"t1.csv", twoTrianglesCSV},
	)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr), "too many files")
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	s, _ := setupTestServer(t, func(c *config.Config) { c.Server.MaxUploadBytes = 1024 })

	big := "source,target\n" + strings.Repeat("aaaa,bbbb\n", 200)
	rr := postFiles(t, s, "/analyze/", upload{"big.csv", big})

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestAnalyze_CancelledRequest(t *testing.T) {
	s, reg := setupTestServer(t, nil)

	body, contentType := multipartBody(t, uploadField,
		upload{"t0.csv", twoTrianglesCSV},
		upload{"t1.csv", twoTrianglesCSV},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/analyze/", body).WithContext(ctx)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code, rr.Body.String())
	assert.Equal(t, "request cancelled", decodeError(t, rr))
	assert.Equal(t, 0.0, testutil.ToFloat64(reg.SnapshotsTotal.WithLabelValues("bootstrap")),
		"no snapshot should be processed after the client went away")
}

func TestHealth(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Uptime)

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	rr := postFiles(t, s, "/analyze/", upload{"t0.csv", twoTrianglesCSV})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "dyncomm_upload_files_total 1")
	assert.Contains(t, body, `dyncomm_runs_total{status="success"} 1`)
	assert.Contains(t, body, `dyncomm_http_requests_total{method="POST",path="/analyze/",status="200"} 1`)
	assert.Contains(t, body, "dyncomm_uptime_seconds")
}

func TestMiddlewareChain(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestRateLimit(t *testing.T) {
	s, _ := setupTestServer(t, func(c *config.Config) {
		c.Server.RateLimitRPS = 0.001
		c.Server.RateLimitBurst = 1
	})

	get := func() int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.9:5000"
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, get())
	assert.Equal(t, http.StatusTooManyRequests, get())
}

func TestSetDetection(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	d := s.Detection()
	d.Partitioner = "louvain"
	require.NoError(t, s.SetDetection(d))
	assert.Equal(t, "louvain", s.Detection().Partitioner)

	d.Partitioner = "spectral"
	require.ErrorIs(t, s.SetDetection(d), algorithms.ErrUnknownPartitioner)
	assert.Equal(t, "louvain", s.Detection().Partitioner, "failed update must keep previous settings")
}

func TestNewServer_BadTrustedProxy(t *testing.T) {
	cfg := config.Default()
	cfg.Server.TrustedProxies = []string{"not-an-ip"}

	_, err := NewServer(cfg, nil, nil)
	require.Error(t, err)
}

func TestPathLabel(t *testing.T) {
	tests := map[string]string{
		"/analyze":    "/analyze/",
		"/analyze/":   "/analyze/",
		"/health":     "/health",
		"/metrics":    "/metrics",
		"/nodes/1234": "other",
	}
	for path, want := range tests {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		assert.Equal(t, want, pathLabel(req), path)
	}
}
