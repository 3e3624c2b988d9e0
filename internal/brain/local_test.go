package brain

import (
	"context"
	"reflect"
	"testing"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/world"
)

func testWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New()
	world.Genesis(w, 42)
	w.Season = 2025
	return w
}

func TestLocalProviderDeterministic(t *testing.T) {
	w := testWorld(t)
	provider := NewLocalProvider()
	mc := MatchdayContext{
		Season:   2025,
		Matchday: 1,
		Date:     "2025-08-09",
		Results: []*event.MatchEnded{{
			MatchID:    "premier_fantasy-s2025-md01-united_dragons-vs-city_phoenix",
			HomeTeamID: "united_dragons",
			AwayTeamID: "city_phoenix",
			HomeScore:  2,
			AwayScore:  0,
			PlayerRatings: map[string]float64{
				"united_dragons-p15": 8.5,
				"city_phoenix-p01":   4.0,
			},
		}},
	}

	first, err := provider.Propose(context.Background(), w, PhasePostMatch, mc)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	second, err := provider.Propose(context.Background(), w, PhasePostMatch, mc)
	if err != nil {
		t.Fatalf("propose again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different proposals")
	}
	if len(first) == 0 {
		t.Fatal("no proposals for a decided match")
	}
}

func TestLocalProviderPostMatchDirections(t *testing.T) {
	w := testWorld(t)
	home := w.Teams["united_dragons"]
	away := w.Teams["city_phoenix"]
	mc := MatchdayContext{
		Results: []*event.MatchEnded{{
			HomeTeamID: home.ID,
			AwayTeamID: away.ID,
			HomeScore:  3,
			AwayScore:  1,
			PlayerRatings: map[string]float64{
				"united_dragons-p15": 9.0, // strong display
				"city_phoenix-p05":   6.0, // neutral, no drift
			},
		}},
	}

	proposals, err := NewLocalProvider().Propose(context.Background(), w, PhasePostMatch, mc)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	byTarget := make(map[string]Proposal)
	for _, p := range proposals {
		byTarget[p.TargetKind+"/"+p.TargetID+"/"+p.Field] = p
	}

	if p, ok := byTarget["team/"+home.ID+"/morale"]; !ok || p.Value <= home.Morale {
		t.Fatalf("winner morale proposal = %+v, want value above %d", p, home.Morale)
	}
	if p, ok := byTarget["team/"+away.ID+"/morale"]; !ok || p.Value >= away.Morale {
		t.Fatalf("loser morale proposal = %+v, want value below %d", p, away.Morale)
	}

	star := w.Players["united_dragons-p15"]
	if p, ok := byTarget["player/united_dragons-p15/form"]; !ok || p.Value <= star.Form {
		t.Fatalf("star form proposal = %+v, want value above %d", p, star.Form)
	}
	if _, ok := byTarget["player/city_phoenix-p05/form"]; ok {
		t.Fatal("neutral rating produced a form proposal")
	}
}

func TestLocalProviderPreMatchStreaks(t *testing.T) {
	w := testWorld(t)
	hot := w.Teams["united_dragons"]
	cold := w.Teams["city_phoenix"]
	hot.CurrentStreak = 4
	cold.CurrentStreak = -3

	proposals, err := NewLocalProvider().Propose(context.Background(), w, PhasePreMatch, MatchdayContext{
		TeamIDs: []string{hot.ID, cold.ID, "rovers_wolves"},
	})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if len(proposals) != 2 {
		t.Fatalf("got %d proposals, want 2 (one per streaking team)", len(proposals))
	}
	for _, p := range proposals {
		switch p.TargetID {
		case hot.ID:
			if p.Value <= hot.Morale {
				t.Fatalf("hot streak proposal value %d not above morale %d", p.Value, hot.Morale)
			}
		case cold.ID:
			if p.Value >= cold.Morale {
				t.Fatalf("cold streak proposal value %d not below morale %d", p.Value, cold.Morale)
			}
		default:
			t.Fatalf("unexpected proposal target %s", p.TargetID)
		}
	}
}

func TestParseProposalsToleratesFences(t *testing.T) {
	content := "```json\n[{\"target_kind\":\"player\",\"target_id\":\"p1\",\"field\":\"form\",\"value\":70}]\n```"
	proposals, err := parseProposals(content)
	if err != nil {
		t.Fatalf("parse fenced proposals: %v", err)
	}
	if len(proposals) != 1 || proposals[0].TargetID != "p1" || proposals[0].Value != 70 {
		t.Fatalf("unexpected proposals: %+v", proposals)
	}

	if _, err := parseProposals("the team played well"); err == nil {
		t.Fatal("prose parsed as proposals")
	}
}
