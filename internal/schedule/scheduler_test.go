package schedule

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/mraditya/leaguesim/internal/domain/world"
)

func teamIDs(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("team_%02d", i))
	}
	return out
}

func TestRoundsDoubleRoundRobin(t *testing.T) {
	ids := teamIDs(10)
	rounds := Rounds(ids)

	if len(rounds) != 18 {
		t.Fatalf("got %d matchdays, want 18", len(rounds))
	}

	seen := make(map[[2]string]int)
	for matchday, round := range rounds {
		if len(round) != 5 {
			t.Fatalf("matchday %d has %d fixtures, want 5", matchday+1, len(round))
		}
		playing := make(map[string]bool)
		for _, p := range round {
			if playing[p.HomeID] || playing[p.AwayID] {
				t.Fatalf("matchday %d: a team appears twice", matchday+1)
			}
			playing[p.HomeID] = true
			playing[p.AwayID] = true
			seen[[2]string{p.HomeID, p.AwayID}]++
		}
	}

	// Every ordered pair of distinct teams exactly once.
	for _, home := range ids {
		for _, away := range ids {
			if home == away {
				continue
			}
			if n := seen[[2]string{home, away}]; n != 1 {
				t.Fatalf("pair %s vs %s scheduled %d times, want 1", home, away, n)
			}
		}
	}
}

func TestRoundsOddTeamCountGetsByes(t *testing.T) {
	rounds := Rounds(teamIDs(5))
	if len(rounds) != 10 {
		t.Fatalf("got %d matchdays for 5 teams, want 10", len(rounds))
	}
	for matchday, round := range rounds {
		if len(round) != 2 {
			t.Fatalf("matchday %d has %d fixtures, want 2 (one bye)", matchday+1, len(round))
		}
	}
}

func TestRoundsDeterministicRegardlessOfInputOrder(t *testing.T) {
	a := Rounds([]string{"celta", "betis", "real", "atletico"})
	b := Rounds([]string{"real", "atletico", "celta", "betis"})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("rounds depend on input order")
	}
}

func TestBuildFullSeason(t *testing.T) {
	w := world.New()
	world.Genesis(w, 42)
	start := time.Date(2025, 8, 9, 0, 0, 0, 0, time.UTC)

	l := w.Leagues["premier_fantasy"]
	scheduled := Build(w, l, 2025, start)

	wantMatches := 18 * 5
	if len(scheduled) != wantMatches {
		t.Fatalf("scheduled %d matches, want %d", len(scheduled), wantMatches)
	}

	for _, s := range scheduled {
		if s.Attendance < 1000 {
			t.Fatalf("match %s attendance %d below 1000", s.MatchID, s.Attendance)
		}
		home := w.Teams[s.HomeTeamID]
		if s.Attendance > home.Stadium.Capacity {
			t.Fatalf("match %s attendance %d exceeds capacity %d", s.MatchID, s.Attendance, home.Stadium.Capacity)
		}
		if s.AtmosphereRating < 30 || s.AtmosphereRating > 90 {
			t.Fatalf("match %s atmosphere %d out of [30,90]", s.MatchID, s.AtmosphereRating)
		}
		if s.Weather == "" || s.Importance == "" {
			t.Fatalf("match %s missing weather or importance", s.MatchID)
		}
	}

	// Matchday 1 on the start date, matchday 2 a week later.
	if scheduled[0].Date != "2025-08-09" {
		t.Fatalf("first matchday date = %s, want 2025-08-09", scheduled[0].Date)
	}
	for _, s := range scheduled {
		if s.Matchday == 2 && s.Date != "2025-08-16" {
			t.Fatalf("matchday 2 date = %s, want 2025-08-16", s.Date)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	start := time.Date(2025, 8, 9, 0, 0, 0, 0, time.UTC)

	build := func() []string {
		w := world.New()
		world.Genesis(w, 42)
		var out []string
		for _, s := range Build(w, w.Leagues["la_fantasia"], 2025, start) {
			out = append(out, fmt.Sprintf("%s|%s|%d|%d", s.MatchID, s.Weather, s.Attendance, s.AtmosphereRating))
		}
		return out
	}

	if !reflect.DeepEqual(build(), build()) {
		t.Fatal("schedule differs between identical builds")
	}
}

func TestDerbyTagging(t *testing.T) {
	w := world.New()
	world.Genesis(w, 42)
	l := w.Leagues["premier_fantasy"]
	if len(l.Rivalries) == 0 {
		t.Fatal("genesis league has no rivalries")
	}

	scheduled := Build(w, l, 2025, time.Date(2025, 8, 9, 0, 0, 0, 0, time.UTC))
	derbies := 0
	for _, s := range scheduled {
		if s.Importance == "derby" {
			derbies++
			if !l.AreRivals(s.HomeTeamID, s.AwayTeamID) {
				t.Fatalf("match %s tagged derby but teams are not rivals", s.MatchID)
			}
		}
	}
	// Each rivalry pair meets home and away.
	if want := 2 * len(l.Rivalries); derbies != want {
		t.Fatalf("tagged %d derbies, want %d", derbies, want)
	}
}
