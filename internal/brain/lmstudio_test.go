package brain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mraditya/leaguesim/internal/platform/logging"
	"github.com/mraditya/leaguesim/internal/platform/resilience"
)

func lmStudioAgainst(url string) *LMStudioProvider {
	return NewLMStudioProvider(LMStudioConfig{
		BaseURL: url,
		Model:   "test-model",
		Timeout: 2 * time.Second,
		Logger:  logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
}

func TestLMStudioServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := lmStudioAgainst(server.URL)
	_, err := provider.Propose(context.Background(), testWorld(t), PhasePostMatch, MatchdayContext{
		Season: 2025, Matchday: 1, Date: "2025-08-09",
	})
	if err == nil {
		t.Fatal("expected an error from a 500 reply")
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("error %v is not marked as provider unavailability", err)
	}
}

func TestLMStudioOpenCircuitIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider := lmStudioAgainst(server.URL)
	ctx := context.Background()
	w := testWorld(t)
	mc := MatchdayContext{Season: 2025, Matchday: 1, Date: "2025-08-09"}

	// First call trips the single-failure breaker.
	if _, err := provider.Propose(ctx, w, PhasePreMatch, mc); err == nil {
		t.Fatal("expected the first call to fail")
	}

	_, err := provider.Propose(ctx, w, PhasePreMatch, mc)
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("second call error %v, want circuit open", err)
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("circuit-open error %v is not marked as provider unavailability", err)
	}
}

func TestLMStudioParsesFencedProposals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":` +
			`"` + "```json\\n" + `[{\"target_kind\":\"team\",\"target_id\":\"united_dragons\",\"field\":\"morale\",\"value\":70,\"reason\":\"derby win\"}]` + "\\n```" + `"}}]}`))
	}))
	defer server.Close()

	provider := lmStudioAgainst(server.URL)
	proposals, err := provider.Propose(context.Background(), testWorld(t), PhasePostMatch, MatchdayContext{
		Season: 2025, Matchday: 1, Date: "2025-08-09",
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("got %d proposals, want 1", len(proposals))
	}
	got := proposals[0]
	if got.TargetKind != "team" || got.TargetID != "united_dragons" || got.Field != "morale" || got.Value != 70 {
		t.Fatalf("unexpected proposal %+v", got)
	}
	if provider.breaker.State() != resilience.CircuitStateClosed {
		t.Fatal("successful call left the breaker non-closed")
	}
}
