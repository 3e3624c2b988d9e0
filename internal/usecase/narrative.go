package usecase

import (
	"context"
	"fmt"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/match"
	"github.com/mraditya/leaguesim/internal/platform/rng"
)

const (
	ownerApprovalWin  = 2
	ownerApprovalLoss = 2

	approvalCrisisLine  = 40
	approvalAcclaimLine = 80
)

// emitNarratives turns the matchday's results into press coverage and
// boardroom reaction: a MediaStory for every fixture flagged beyond normal
// importance, owner approval drift on decided matches, and an OwnerStatement
// whenever that drift crosses the crisis or acclaim line. Every record is a
// pure function of the results and the seed, so replays emit the same ones.
func (o *Orchestrator) emitNarratives(ctx context.Context, finished []*event.MatchEnded) {
	var payloads []event.Payload
	for _, ended := range finished {
		payloads = append(payloads, o.matchStory(ended)...)
		payloads = append(payloads, o.boardroomReaction(ended)...)
	}
	if len(payloads) == 0 {
		return
	}
	if _, err := o.appendAndApply(ctx, o.world.CurrentDate, payloads); err != nil {
		o.logger.ErrorContext(ctx, "append narrative events", "error", err)
	}
}

func (o *Orchestrator) matchStory(ended *event.MatchEnded) []event.Payload {
	m, ok := o.world.Matches[ended.MatchID]
	if !ok || m.Importance == match.ImportanceNormal {
		return nil
	}
	outlets := o.world.OutletIDs()
	if len(outlets) == 0 {
		return nil
	}
	stream := rng.Derive(o.world.Seed, "media", ended.MatchID)
	outletID := outlets[stream.IntN(len(outlets))]

	home := o.teamName(ended.HomeTeamID)
	away := o.teamName(ended.AwayTeamID)
	label := importanceLabel(m.Importance)

	var headline string
	sentiment := "positive"
	switch {
	case ended.HomeScore > ended.AwayScore:
		headline = fmt.Sprintf("%s take the %s %d-%d against %s",
			home, label, ended.HomeScore, ended.AwayScore, away)
	case ended.HomeScore < ended.AwayScore:
		headline = fmt.Sprintf("%s silence %s %d-%d in the %s",
			away, home, ended.AwayScore, ended.HomeScore, label)
	default:
		headline = fmt.Sprintf("%s and %s share the spoils in a %d-%d %s",
			home, away, ended.HomeScore, ended.AwayScore, label)
		sentiment = "neutral"
	}

	return []event.Payload{&event.MediaStory{
		OutletID:  outletID,
		Headline:  headline,
		StoryType: string(m.Importance),
		Entities:  []string{ended.HomeTeamID, ended.AwayTeamID},
		Sentiment: sentiment,
	}}
}

func importanceLabel(importance match.Importance) string {
	switch importance {
	case match.ImportanceDerby:
		return "derby"
	case match.ImportanceTitleRace:
		return "title clash"
	case match.ImportanceRelegation:
		return "relegation scrap"
	default:
		return "fixture"
	}
}

// boardroomReaction moves each owner's public approval with the result.
// Draws leave the boardroom quiet.
func (o *Orchestrator) boardroomReaction(ended *event.MatchEnded) []event.Payload {
	if ended.HomeScore == ended.AwayScore {
		return nil
	}
	winnerID, loserID := ended.HomeTeamID, ended.AwayTeamID
	if ended.AwayScore > ended.HomeScore {
		winnerID, loserID = loserID, winnerID
	}

	out := o.ownerDrift(winnerID, ownerApprovalWin, "matchday win")
	return append(out, o.ownerDrift(loserID, -ownerApprovalLoss, "matchday defeat")...)
}

func (o *Orchestrator) ownerDrift(teamID string, delta int, reason string) []event.Payload {
	owner := o.world.OwnerOf(teamID)
	if owner == nil {
		return nil
	}
	before := owner.PublicApproval
	after := clamp(before+delta, 0, 100)
	if after == before {
		return nil
	}

	out := []event.Payload{&event.SoftStateUpdated{
		TargetKind: "owner",
		TargetID:   owner.ID,
		Field:      "public_approval",
		Value:      after,
		Reason:     reason,
	}}

	switch {
	case before >= approvalCrisisLine && after < approvalCrisisLine:
		out = append(out, &event.OwnerStatement{
			OwnerID:   owner.ID,
			TeamID:    teamID,
			Statement: "The board expects an immediate response. Results like this are not acceptable at this club.",
			Sentiment: "negative",
		})
	case before <= approvalAcclaimLine && after > approvalAcclaimLine:
		out = append(out, &event.OwnerStatement{
			OwnerID:   owner.ID,
			TeamID:    teamID,
			Statement: "Everyone can see the direction this club is heading. Credit to the squad and the staff.",
			Sentiment: "positive",
		})
	}
	return out
}

func (o *Orchestrator) teamName(teamID string) string {
	if t, ok := o.world.Teams[teamID]; ok {
		return t.Name
	}
	return teamID
}
