package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danmuck/photohandoff/internal/config"
	"github.com/danmuck/photohandoff/internal/host"
	"github.com/danmuck/photohandoff/internal/photo"
	"github.com/danmuck/photohandoff/internal/photo/providers"
	"github.com/danmuck/photohandoff/internal/state"
	"github.com/danmuck/photohandoff/internal/testutil/testlog"
	"github.com/rs/zerolog/log"
)

func newServer(t *testing.T) (*Server, *host.Process) {
	t.Helper()
	p, err := host.NewProcess(config.DefaultHostConfig())
	if err != nil {
		t.Fatalf("new process: %v", err)
	}
	t.Cleanup(p.Shutdown)
	s := New(p)
	s.RegisterRoutes()
	return s, p
}

func do(t *testing.T, s *Server, method, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	var body map[string]any
	if rr.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
	}
	return rr.Code, body
}

func TestHealthAndRecoverers(t *testing.T) {
	testlog.Start(t)
	s, _ := newServer(t)

	code, body := do(t, s, http.MethodGet, "/health")
	if code != http.StatusOK || body["status"] != "ok" || body["service"] != config.DefaultName {
		t.Fatalf("unexpected health response: %d %#v", code, body)
	}

	code, body = do(t, s, http.MethodGet, "/recoverers")
	ids, _ := body["identifiers"].([]any)
	if code != http.StatusOK || len(ids) != 2 || ids[0] != providers.FileID || ids[1] != providers.RemoteID {
		t.Fatalf("unexpected recoverers response: %d %#v", code, body)
	}
	log.Info().Int("status", code).Msg("server/http: GET /recoverers")
}

func TestDeliveriesListAndDelete(t *testing.T) {
	testlog.Start(t)
	s, p := newServer(t)
	extras, err := p.Prepare([]photo.Provider{providers.File{Path: "/a.jpg"}}, 0, nil)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	token, _ := extras.Int64(state.KeyDeliveryToken)

	code, body := do(t, s, http.MethodGet, "/deliveries")
	if code != http.StatusOK || body["pending"] != float64(1) {
		t.Fatalf("unexpected deliveries response: %d %#v", code, body)
	}

	code, _ = do(t, s, http.MethodDelete, "/deliveries/not-a-number")
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad token, got %d", code)
	}

	code, body = do(t, s, http.MethodDelete, "/deliveries/"+strconv.FormatInt(token, 10))
	if code != http.StatusOK || body["status"] != "removed" {
		t.Fatalf("unexpected delete response: %d %#v", code, body)
	}
	if p.Deliveries().Len() != 0 {
		t.Fatalf("expected delivery removed, got %d", p.Deliveries().Len())
	}

	code, body = do(t, s, http.MethodGet, "/screens")
	if code != http.StatusOK {
		t.Fatalf("unexpected screens status: %d", code)
	}
	if screens, _ := body["screens"].([]any); len(screens) != 0 {
		t.Fatalf("expected no screens, got %#v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	testlog.Start(t)
	s, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
}

func TestNormalizeOrigins(t *testing.T) {
	testlog.Start(t)
	if got := normalizeOrigins([]string{" ", ""}); len(got) != 1 || got[0] != "http://localhost:3000" {
		t.Fatalf("expected default origin, got %v", got)
	}
	if got := normalizeOrigins([]string{" https://a.example "}); got[0] != "https://a.example" {
		t.Fatalf("expected trimmed origin, got %v", got)
	}
}
