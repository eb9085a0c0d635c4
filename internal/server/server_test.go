package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/newsintel/internal/lookup"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	offline := lookup.NewPolicy(nil, time.Second, 4)
	engine, err := pipeline.NewEngine(model.DefaultConfig(), pipeline.WithResolver(offline))
	require.NoError(t, err)
	return New(engine, model.DefaultConfig().Server, 2)
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestAnalyze_Text(t *testing.T) {
	rr := post(t, newTestServer(t), "/v1/analyze", `{"text":"Do aliens exist?"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var report model.AnalysisReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Len(t, report.Claims, 1)
	assert.NotEmpty(t, report.FollowUps)
	assert.NotEmpty(t, report.ID)
}

func TestAnalyze_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty text", `{"text":"   "}`, http.StatusBadRequest},
		{"missing text", `{}`, http.StatusBadRequest},
		{"invalid json", `{"text":`, http.StatusBadRequest},
		{"bad url", `{"url":"not a url"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, s, "/v1/analyze", tt.body)
			assert.Equal(t, tt.code, rr.Code)
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	offline := lookup.NewPolicy(nil, time.Second, 4)
	engine, err := pipeline.NewEngine(model.DefaultConfig(), pipeline.WithResolver(offline))
	require.NoError(t, err)
	cfg := model.DefaultConfig().Server
	cfg.MaxInputBytes = 64
	s := New(engine, cfg, 1)

	body, _ := json.Marshal(map[string]string{"text": strings.Repeat("word ", 100)})
	rr := post(t, s, "/v1/analyze", string(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestAnalyze_URLUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	defer upstream.Close()

	cfg := model.DefaultConfig()
	cfg.HTTP.RespectRobots = false
	engine, err := pipeline.NewEngine(cfg, pipeline.WithResolver(lookup.NewPolicy(nil, time.Second, 4)))
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"url": upstream.URL + "/story"})
	rr := post(t, New(engine, cfg.Server, 1), "/v1/analyze", string(body))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestBatch(t *testing.T) {
	body, _ := json.Marshal(map[string][]string{"inputs": {
		"Do aliens exist?",
		"   ",
		"The dam was completed in 1936 by federal engineers.",
	}})
	rr := post(t, newTestServer(t), "/v1/batch", string(body))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Results []batchItem `json:"results"`
	}
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&resp))
	require.Len(t, resp.Results, 3)
	for i, item := range resp.Results {
		assert.Equal(t, i, item.Index)
	}
	assert.NotNil(t, resp.Results[0].Report)
	assert.Equal(t, "input is empty", resp.Results[1].Error)
	assert.NotNil(t, resp.Results[2].Report)
}

func TestBatch_Empty(t *testing.T) {
	rr := post(t, newTestServer(t), "/v1/batch", `{"inputs":[]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/analyze", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rr, req)

	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	code, _ := statusFor(pipeline.ErrEmptyInput)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = statusFor(context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, code)
	code, _ = statusFor(&pipeline.StatusError{Code: 500, Status: "500 Internal Server Error"})
	assert.Equal(t, http.StatusBadGateway, code)
}
