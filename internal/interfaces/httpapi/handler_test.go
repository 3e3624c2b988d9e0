package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/mraditya/leaguesim/internal/brain"
	"github.com/mraditya/leaguesim/internal/eventlog"
	"github.com/mraditya/leaguesim/internal/platform/cache"
	"github.com/mraditya/leaguesim/internal/platform/logging"
	"github.com/mraditya/leaguesim/internal/usecase"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	store, err := eventlog.Open(filepath.Join(t.TempDir(), "events.db"), logging.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	stream := NewStream(logging.NewNop())
	// Orchestrator and projections share the cache so an advance
	// invalidates what reads have warmed.
	c := cache.NewStore(time.Minute)
	orc := usecase.NewOrchestrator(usecase.OrchestratorConfig{
		Store:    store,
		Provider: brain.NewLocalProvider(),
		Logger:   logging.NewNop(),
		Cache:    c,
		Seed:     42,
		OnAppend: stream.Publish,
	})
	if err := orc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	projections := usecase.NewProjections(orc, c)
	handler := NewHandler(orc, projections, stream, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), nil)
}

func doRequest(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) any {
	t.Helper()
	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	return body["data"]
}

func TestAdvanceThenTable(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/advance")
	if rec.Code != http.StatusOK {
		t.Fatalf("advance status = %d: %s", rec.Code, rec.Body.String())
	}
	summary, ok := decodeData(t, rec).(map[string]any)
	if !ok {
		t.Fatal("advance response has no data object")
	}
	if played, _ := summary["matches_played"].(float64); played != 10 {
		t.Fatalf("matches_played = %v, want 10", summary["matches_played"])
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/leagues/premier_fantasy/table")
	if rec.Code != http.StatusOK {
		t.Fatalf("table status = %d", rec.Code)
	}
	rows, ok := decodeData(t, rec).([]any)
	if !ok || len(rows) != 10 {
		t.Fatalf("table rows = %v", decodeData(t, rec))
	}
	top, _ := rows[0].(map[string]any)
	if played, _ := top["played"].(float64); played != 1 {
		t.Fatalf("top team played = %v, want 1", top["played"])
	}
}

func TestUnknownLeagueReturns404(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/leagues/serie_z/table")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestResetRequiresConfirmation(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/reset")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed reset status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/reset?confirm=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmed reset status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWorldSummaryEndpoint(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/world")
	if rec.Code != http.StatusOK {
		t.Fatalf("world status = %d", rec.Code)
	}
	data, ok := decodeData(t, rec).(map[string]any)
	if !ok {
		t.Fatal("world response has no data object")
	}
	if season, _ := data["season"].(float64); season != 2025 {
		t.Fatalf("season = %v, want 2025", data["season"])
	}
	leagues, _ := data["leagues"].([]any)
	if len(leagues) != 2 {
		t.Fatalf("leagues = %d, want 2", len(leagues))
	}
}

func TestHeadToHeadRequiresOpponent(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/teams/united_dragons/head-to-head")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRequestIDEchoedOnResponse(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "upstream-id-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "upstream-id-123" {
		t.Fatalf("X-Request-ID = %q, want the upstream value", got)
	}
}

func TestStreamRejectsBadCursor(t *testing.T) {
	router := testRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/v1/events/stream?from=abc")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
