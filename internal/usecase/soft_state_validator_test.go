package usecase

import (
	"testing"

	"github.com/mraditya/leaguesim/internal/brain"
	"github.com/mraditya/leaguesim/internal/domain/world"
)

func validatorWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New()
	world.Genesis(w, 42)
	return w
}

func TestValidateClampsOutOfRangeValues(t *testing.T) {
	w := validatorWorld(t)
	v := NewSoftStateValidator()

	accepted, rejected := v.Validate(w, []brain.Proposal{
		{TargetKind: "player", TargetID: "united_dragons-p01", Field: "form", Value: 999},
		{TargetKind: "player", TargetID: "united_dragons-p01", Field: "morale", Value: -50},
	})
	if len(accepted) != 2 {
		t.Fatalf("got %d accepted, want 2", len(accepted))
	}
	if accepted[0].Value != 100 {
		t.Fatalf("form 999 clamped to %d, want 100", accepted[0].Value)
	}
	if accepted[1].Value != 0 {
		t.Fatalf("morale -50 clamped to %d, want 0", accepted[1].Value)
	}
	// Clamped proposals still leave an audit record of the original ask.
	if len(rejected) != 2 {
		t.Fatalf("got %d validation failures, want 2", len(rejected))
	}
	if rejected[0].Value != 999 {
		t.Fatalf("failure does not carry the original value: %+v", rejected[0])
	}
}

func TestValidateCapsReputationDelta(t *testing.T) {
	w := validatorWorld(t)
	team := w.Teams["united_dragons"]
	team.Reputation = 50
	v := NewSoftStateValidator()

	accepted, _ := v.Validate(w, []brain.Proposal{
		{TargetKind: "team", TargetID: team.ID, Field: "reputation", Value: 90},
	})
	if len(accepted) != 1 {
		t.Fatalf("got %d accepted, want 1", len(accepted))
	}
	if accepted[0].Value != 55 {
		t.Fatalf("reputation jump capped to %d, want 55", accepted[0].Value)
	}

	accepted, _ = v.Validate(w, []brain.Proposal{
		{TargetKind: "team", TargetID: team.ID, Field: "reputation", Value: 10},
	})
	if accepted[0].Value != 45 {
		t.Fatalf("reputation drop capped to %d, want 45", accepted[0].Value)
	}
}

func TestValidateRejectsUnknownTargetsAndFields(t *testing.T) {
	w := validatorWorld(t)
	v := NewSoftStateValidator()

	cases := []brain.Proposal{
		{TargetKind: "stadium", TargetID: "x", Field: "morale", Value: 50},
		{TargetKind: "player", TargetID: "united_dragons-p01", Field: "goals", Value: 50},
		{TargetKind: "player", TargetID: "nobody", Field: "form", Value: 50},
		{TargetKind: "team", TargetID: "united_dragons", Field: "", Value: 50},
	}
	accepted, rejected := v.Validate(w, cases)
	if len(accepted) != 0 {
		t.Fatalf("invalid proposals accepted: %+v", accepted)
	}
	if len(rejected) != len(cases) {
		t.Fatalf("got %d rejections, want %d", len(rejected), len(cases))
	}
	for _, failure := range rejected {
		if failure.Reason == "" {
			t.Fatalf("rejection without reason: %+v", failure)
		}
	}
}

// Proposal order from the collaborator must not leak into the event stream.
func TestValidateOrdersDeterministically(t *testing.T) {
	w := validatorWorld(t)
	v := NewSoftStateValidator()

	shuffled := []brain.Proposal{
		{TargetKind: "team", TargetID: "rovers_wolves", Field: "morale", Value: 60},
		{TargetKind: "player", TargetID: "city_phoenix-p03", Field: "form", Value: 70},
		{TargetKind: "team", TargetID: "city_phoenix", Field: "morale", Value: 55},
		{TargetKind: "player", TargetID: "city_phoenix-p03", Field: "fitness", Value: 80},
	}
	accepted, _ := v.Validate(w, shuffled)

	wantOrder := []string{
		"city_phoenix/morale",
		"city_phoenix-p03/fitness",
		"city_phoenix-p03/form",
		"rovers_wolves/morale",
	}
	if len(accepted) != len(wantOrder) {
		t.Fatalf("got %d accepted, want %d", len(accepted), len(wantOrder))
	}
	for i, update := range accepted {
		got := update.TargetID + "/" + update.Field
		if got != wantOrder[i] {
			t.Fatalf("position %d is %s, want %s", i, got, wantOrder[i])
		}
	}
}
