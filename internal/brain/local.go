package brain

import (
	"context"
	"sort"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/world"
)

// LocalProvider is the offline collaborator: a deterministic form-and-morale
// drift derived from results alone. It satisfies the same contract as the
// LLM-backed provider, so the two are interchangeable, and it is what keeps
// the simulation fully reproducible when no model is configured.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) Propose(_ context.Context, w *world.World, phase Phase, mc MatchdayContext) ([]Proposal, error) {
	switch phase {
	case PhasePreMatch:
		return p.preMatch(w, mc), nil
	case PhasePostMatch:
		return p.postMatch(w, mc), nil
	default:
		return nil, nil
	}
}

// preMatch nudges the dressing room: a hot streak lifts team morale, a cold
// one drags it down.
func (p *LocalProvider) preMatch(w *world.World, mc MatchdayContext) []Proposal {
	var out []Proposal
	for _, teamID := range sortedCopy(mc.TeamIDs) {
		t, ok := w.GetTeam(teamID)
		if !ok {
			continue
		}
		switch {
		case t.CurrentStreak >= 3:
			out = append(out, Proposal{
				TargetKind: "team", TargetID: teamID, Field: "morale",
				Value: t.Morale + 3, Reason: "winning streak",
			})
		case t.CurrentStreak <= -3:
			out = append(out, Proposal{
				TargetKind: "team", TargetID: teamID, Field: "morale",
				Value: t.Morale - 3, Reason: "losing streak",
			})
		}
	}
	return out
}

// postMatch reacts to each result: team morale and owner approval track the
// scoreline, player form drifts with the match rating.
func (p *LocalProvider) postMatch(w *world.World, mc MatchdayContext) []Proposal {
	var out []Proposal
	for _, result := range mc.Results {
		out = append(out, p.teamReactions(w, result)...)
		out = append(out, p.playerFormDrift(w, result)...)
	}
	return out
}

func (p *LocalProvider) teamReactions(w *world.World, result *event.MatchEnded) []Proposal {
	homeDelta, awayDelta := 1, 1
	switch {
	case result.HomeScore > result.AwayScore:
		homeDelta, awayDelta = 5, -4
	case result.HomeScore < result.AwayScore:
		homeDelta, awayDelta = -4, 5
	}

	var out []Proposal
	for _, side := range []struct {
		teamID string
		delta  int
	}{
		{result.HomeTeamID, homeDelta},
		{result.AwayTeamID, awayDelta},
	} {
		t, ok := w.GetTeam(side.teamID)
		if !ok {
			continue
		}
		out = append(out, Proposal{
			TargetKind: "team", TargetID: side.teamID, Field: "morale",
			Value: t.Morale + side.delta, Reason: "match result",
		})

		ownerID := side.teamID + "-owner"
		if owner, ok := w.Owners[ownerID]; ok {
			approvalDelta := side.delta / 2
			out = append(out, Proposal{
				TargetKind: "owner", TargetID: ownerID, Field: "public_approval",
				Value: owner.PublicApproval + approvalDelta, Reason: "match result",
			})
		}
	}
	return out
}

func (p *LocalProvider) playerFormDrift(w *world.World, result *event.MatchEnded) []Proposal {
	ids := make([]string, 0, len(result.PlayerRatings))
	for id := range result.PlayerRatings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Proposal
	for _, id := range ids {
		pl, ok := w.GetPlayer(id)
		if !ok {
			continue
		}
		delta := int((result.PlayerRatings[id] - 6.0) * 2)
		if delta == 0 {
			continue
		}
		out = append(out, Proposal{
			TargetKind: "player", TargetID: id, Field: "form",
			Value: pl.Form + delta, Reason: "match performance",
		})
	}
	return out
}

func sortedCopy(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
