package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/OpsPlane/internal/adapter/memory"
	"github.com/Strob0t/OpsPlane/internal/adapter/ws"
	"github.com/Strob0t/OpsPlane/internal/config"
	"github.com/Strob0t/OpsPlane/internal/domain"
	"github.com/Strob0t/OpsPlane/internal/service"
)

const testCronSecret = "sweep-me"

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store, *memory.SyncRegistry) {
	t.Helper()

	store := memory.NewStore()
	registry := memory.NewSyncRegistry()
	tiers, err := service.NewTierService("partner")
	if err != nil {
		t.Fatalf("tier service: %v", err)
	}
	board := service.NewTaskBoardService(store, nil, nil, nil)
	costs := service.NewCostService(store, tiers, nil)
	monitor := service.NewPolicyMonitorService(board, registry, costs, nil, nil, nil, config.Monitor{
		StaleAfter:        7 * 24 * time.Hour,
		SyncGapAfter:      7 * 24 * time.Hour,
		DailyCostUSDLimit: 1.0,
	})

	h := &Handlers{
		Board:     board,
		Costs:     costs,
		Tiers:     tiers,
		Monitor:   monitor,
		Sync:      registry,
		Hub:       ws.NewHub(),
		StartedAt: time.Now(),
	}

	r := chi.NewRouter()
	MountRoutes(r, h, testCronSecret)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store, registry
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestTaskLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks", map[string]any{
		"title":      "verify invoices",
		"department": "finance",
		"created_by": "leader",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[map[string]any](t, resp)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("missing task id")
	}
	if created["status"] != "open" || created["priority"] != "medium" {
		t.Errorf("created = %v", created)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/"+id+"/claim", map[string]any{
		"agent_name": "analyzer",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("claim status = %d", resp.StatusCode)
	}
	claimed := decode[map[string]any](t, resp)
	if claimed["status"] != "in_progress" || claimed["assigned_to"] != "analyzer" {
		t.Errorf("claimed = %v", claimed)
	}

	// A second claim loses.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks/"+id+"/claim", map[string]any{
		"agent_name": "advisor",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second claim status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/v1/tasks/"+id, map[string]any{
		"status":         "done",
		"result_summary": "all clear",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch status = %d", resp.StatusCode)
	}
	done := decode[map[string]any](t, resp)
	if done["status"] != "done" {
		t.Errorf("done = %v", done)
	}
	if _, ok := done["completed_at"]; !ok {
		t.Error("done task must expose completed_at")
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/tasks/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTaskValidationAndNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks", map[string]any{
		"department": "finance",
		"created_by": "leader",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing title status = %d, want 400", resp.StatusCode)
	}
	body := decode[errorResponse](t, resp)
	if body.Error == "" {
		t.Error("expected error message")
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/tasks/4b825dc6-0000-0000-0000-000000000000", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing task status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestBoardEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, dept := range []string{"legal", "legal", "operations"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks", map[string]any{
			"title": "t", "department": dept, "created_by": "leader",
		})
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/board", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("board status = %d", resp.StatusCode)
	}
	board := decode[map[string]any](t, resp)
	if board["total"] != float64(3) {
		t.Errorf("total = %v", board["total"])
	}
}

func TestCostEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/costs", map[string]any{
		"agent_name":    "analyzer",
		"provider":      "anthropic",
		"model":         "claude-haiku-4.5",
		"input_tokens":  1_000_000,
		"output_tokens": 0,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record status = %d", resp.StatusCode)
	}
	recorded := decode[map[string]any](t, resp)
	if recorded["cost_usd"] != float64(1.0) {
		t.Errorf("derived cost = %v, want 1.0", recorded["cost_usd"])
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/costs/total?days=1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("total status = %d", resp.StatusCode)
	}
	total := decode[map[string]any](t, resp)
	if total["calls"] != float64(1) {
		t.Errorf("calls = %v", total["calls"])
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/costs/daily?days=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("daily status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/costs", map[string]any{
		"provider": "anthropic", "cost_usd": 0.1,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing agent status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTierEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/tier", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get tier status = %d", resp.StatusCode)
	}
	info := decode[map[string]any](t, resp)
	if info["current_tier"] != "partner" {
		t.Errorf("current = %v", info["current_tier"])
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/tier", map[string]any{"tier": "intern"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set tier status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/tier", map[string]any{"tier": "platinum"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad tier status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/tier/agents/ghost", map[string]any{"enabled": false})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad agent status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/tier/estimate", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("estimate status = %d", resp.StatusCode)
	}
	est := decode[estimateResponse](t, resp)
	if est.EstimatedRunUSD <= 0 {
		t.Errorf("estimate = %v, want positive", est.EstimatedRunUSD)
	}
}

func TestConnectorEndpoints(t *testing.T) {
	srv, _, registry := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/connectors", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("connectors status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	registry.Fail(fmt.Errorf("pipeline table missing: %w", domain.ErrUpstream))
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/connectors", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("failed registry status = %d, want 502", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCronSecretGuard(t *testing.T) {
	srv, _, _ := newTestServer(t)
	url := srv.URL + "/api/v1/cron/policies"

	resp := doJSON(t, http.MethodPost, url, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("no credential status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodPost, url, nil)
	req.Header.Set("Authorization", "Bearer "+testCronSecret)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("trigger status = %d", resp.StatusCode)
	}
	report := decode[map[string]any](t, resp)
	if report["ok"] != true {
		t.Errorf("report = %v", report)
	}
}
