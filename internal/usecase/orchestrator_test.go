package usecase

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/mraditya/leaguesim/internal/brain"
	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/world"
	"github.com/mraditya/leaguesim/internal/eventlog"
	"github.com/mraditya/leaguesim/internal/platform/logging"
)

func newTestOrchestrator(t *testing.T, dbPath string, seed uint64) *Orchestrator {
	t.Helper()
	store, err := eventlog.Open(dbPath, logging.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewOrchestrator(OrchestratorConfig{
		Store:    store,
		Provider: brain.NewLocalProvider(),
		Logger:   logging.NewNop(),
		Seed:     seed,
	})
}

func bootstrapped(t *testing.T, seed uint64) *Orchestrator {
	t.Helper()
	orc := newTestOrchestrator(t, filepath.Join(t.TempDir(), "events.db"), seed)
	if err := orc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return orc
}

func TestAdvancePlaysFullMatchday(t *testing.T) {
	orc := bootstrapped(t, 42)

	summary, err := orc.Advance(context.Background())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if summary.MatchesPlayed != 10 {
		t.Fatalf("matches played = %d, want 10 (5 per league)", summary.MatchesPlayed)
	}
	if summary.MatchesAborted != 0 {
		t.Fatalf("matches aborted = %d", summary.MatchesAborted)
	}
	if summary.Matchday != 1 {
		t.Fatalf("summary matchday = %d, want 1", summary.Matchday)
	}

	err = orc.View(func(w *world.World) error {
		for id, tm := range w.Teams {
			if tm.Played != 1 {
				t.Errorf("team %s played %d matches, want 1", id, tm.Played)
			}
			if tm.Points() != tm.Wins*3+tm.Draws {
				t.Errorf("team %s points %d violate 3W+D", id, tm.Points())
			}
		}
		for _, leagueID := range w.LeagueIDs() {
			if md := w.Leagues[leagueID].CurrentMatchday; md != 2 {
				t.Errorf("league %s matchday = %d, want 2", leagueID, md)
			}
		}
		if w.CurrentDate.Format(world.DateLayout) != "2025-08-16" {
			t.Errorf("date = %s, want 2025-08-16", w.CurrentDate.Format(world.DateLayout))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAdvanceRequiresBootstrap(t *testing.T) {
	orc := newTestOrchestrator(t, filepath.Join(t.TempDir(), "events.db"), 1)
	if _, err := orc.Advance(context.Background()); err == nil {
		t.Fatal("advance on empty world did not fail")
	}
}

// Two independent runs from the same seed must write identical logs,
// timestamps included.
func TestAdvanceSeedDeterminism(t *testing.T) {
	runLog := func(dir string) []event.Envelope {
		orc := newTestOrchestrator(t, filepath.Join(dir, "events.db"), 1234)
		ctx := context.Background()
		if err := orc.Bootstrap(ctx); err != nil {
			t.Fatalf("bootstrap: %v", err)
		}
		for i := 0; i < 3; i++ {
			if _, err := orc.Advance(ctx); err != nil {
				t.Fatalf("advance %d: %v", i+1, err)
			}
		}
		envs, err := orc.store.ReadAll(ctx, true)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		return envs
	}

	first := runLog(t.TempDir())
	second := runLog(t.TempDir())

	if len(first) != len(second) {
		t.Fatalf("log lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !reflect.DeepEqual(first[i], second[i]) {
			t.Fatalf("sequence %d differs:\n%+v\nvs\n%+v", first[i].Sequence, first[i], second[i])
		}
	}
}

// A fresh process replaying the log must land on the same world the writer
// held in memory.
func TestReplayIdentity(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "events.db")
	ctx := context.Background()

	writer := newTestOrchestrator(t, dbPath, 7)
	if err := writer.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := writer.Advance(ctx); err != nil {
			t.Fatalf("advance %d: %v", i+1, err)
		}
	}
	writer.store.Close()

	reader := newTestOrchestrator(t, dbPath, 7)
	if err := reader.Bootstrap(ctx); err != nil {
		t.Fatalf("replay bootstrap: %v", err)
	}

	want, err := sonic.ConfigStd.Marshal(writer.world)
	if err != nil {
		t.Fatalf("encode writer world: %v", err)
	}
	got, err := sonic.ConfigStd.Marshal(reader.world)
	if err != nil {
		t.Fatalf("encode replayed world: %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Fatal("replayed world diverged from the writer's in-memory world")
	}
}

func TestSeasonRolloverSchedulesNextSeason(t *testing.T) {
	orc := bootstrapped(t, 42)
	ctx := context.Background()

	var rolled *AdvanceSummary
	for i := 0; i < 18; i++ {
		summary, err := orc.Advance(ctx)
		if err != nil {
			t.Fatalf("advance %d: %v", i+1, err)
		}
		if summary.SeasonEnded {
			rolled = summary
		}
	}
	if rolled == nil {
		t.Fatal("18 matchdays did not end the season")
	}
	if rolled.Matchday != 18 {
		t.Fatalf("season ended on matchday %d, want 18", rolled.Matchday)
	}

	err := orc.View(func(w *world.World) error {
		if w.Season != world.GenesisSeason+1 {
			t.Fatalf("season = %d, want %d", w.Season, world.GenesisSeason+1)
		}
		for _, leagueID := range w.LeagueIDs() {
			l := w.Leagues[leagueID]
			honours, ok := l.HonoursBySeason[world.GenesisSeason]
			if !ok {
				t.Fatalf("league %s has no honours for season %d", leagueID, world.GenesisSeason)
			}
			if honours.ChampionTeamID == "" || honours.TopScorerID == "" {
				t.Fatalf("league %s honours incomplete: %+v", leagueID, honours)
			}
			if l.CurrentMatchday != 1 {
				t.Fatalf("league %s matchday = %d after rollover, want 1", leagueID, l.CurrentMatchday)
			}
			if len(l.FixtureIDs) != l.TotalMatchdays {
				t.Fatalf("league %s has %d fixture matchdays, want %d", leagueID, len(l.FixtureIDs), l.TotalMatchdays)
			}
		}
		for id, tm := range w.Teams {
			if tm.Played != 0 {
				t.Fatalf("team %s counters not reset: played = %d", id, tm.Played)
			}
		}
		newSeasonMatches := 0
		for _, m := range w.Matches {
			if m.Season == world.GenesisSeason+1 {
				newSeasonMatches++
			}
		}
		if newSeasonMatches != 180 {
			t.Fatalf("scheduled %d matches for the new season, want 180", newSeasonMatches)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// The next advance plays matchday 1 of the new season.
	summary, err := orc.Advance(ctx)
	if err != nil {
		t.Fatalf("advance into new season: %v", err)
	}
	if summary.Season != world.GenesisSeason+1 || summary.MatchesPlayed != 10 {
		t.Fatalf("new-season advance = %+v", summary)
	}
}

func TestResetRebuildsFromGenesis(t *testing.T) {
	orc := bootstrapped(t, 42)
	ctx := context.Background()

	if _, err := orc.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := orc.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	err := orc.View(func(w *world.World) error {
		if w.Season != world.GenesisSeason {
			t.Fatalf("season after reset = %d", w.Season)
		}
		for id, tm := range w.Teams {
			if tm.Played != 0 {
				t.Fatalf("team %s still has results after reset", id)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestOnAppendObservesEveryEvent(t *testing.T) {
	store, err := eventlog.Open(filepath.Join(t.TempDir(), "events.db"), logging.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var seen int64
	orc := NewOrchestrator(OrchestratorConfig{
		Store:    store,
		Provider: brain.NewLocalProvider(),
		Logger:   logging.NewNop(),
		Seed:     42,
		OnAppend: func(envs []event.Envelope) { seen += int64(len(envs)) },
	})

	ctx := context.Background()
	if err := orc.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if _, err := orc.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if seen != store.LastSequence() {
		t.Fatalf("hook saw %d events, log holds %d", seen, store.LastSequence())
	}
}
