package usecase

import (
	"context"
	"testing"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/match"
)

func TestDerbyResultMakesTheBackPage(t *testing.T) {
	orc := bootstrapped(t, 21)

	var derby *match.Match
	for _, id := range orc.world.LeagueIDs() {
		l := orc.world.Leagues[id]
		for _, fixtures := range l.FixtureIDs {
			for _, matchID := range fixtures {
				if m := orc.world.Matches[matchID]; m.Importance == match.ImportanceDerby {
					derby = m
				}
			}
		}
	}
	if derby == nil {
		t.Fatal("genesis season has no derby fixture")
	}

	before := orc.LastSequence()
	orc.emitNarratives(context.Background(), []*event.MatchEnded{{
		MatchID:    derby.ID,
		LeagueID:   derby.LeagueID,
		Season:     derby.Season,
		Matchday:   derby.Matchday,
		HomeTeamID: derby.HomeTeamID,
		AwayTeamID: derby.AwayTeamID,
		HomeScore:  2,
		AwayScore:  1,
	}})

	var story *event.MediaStory
	err := orc.ReadEvents(context.Background(), before+1, func(env event.Envelope) error {
		if s, ok := env.Payload.(*event.MediaStory); ok {
			story = s
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if story == nil {
		t.Fatal("derby result produced no media story")
	}
	if story.StoryType != string(match.ImportanceDerby) {
		t.Fatalf("story type = %q, want derby", story.StoryType)
	}
	outlet, ok := orc.world.Outlets[story.OutletID]
	if !ok {
		t.Fatalf("story credited to unknown outlet %q", story.OutletID)
	}
	if len(outlet.ActiveStories) == 0 || outlet.ActiveStories[len(outlet.ActiveStories)-1] != story.Headline {
		t.Fatalf("outlet %s did not record the headline %q", outlet.ID, story.Headline)
	}
	if len(story.Entities) != 2 || story.Entities[0] != derby.HomeTeamID || story.Entities[1] != derby.AwayTeamID {
		t.Fatalf("story entities = %v", story.Entities)
	}
	if story.Sentiment != "positive" {
		t.Fatalf("decided derby sentiment = %q, want positive", story.Sentiment)
	}
}

func TestOwnerApprovalDriftAndStatements(t *testing.T) {
	orc := bootstrapped(t, 21)

	winner := orc.world.OwnerOf("united_dragons")
	loser := orc.world.OwnerOf("city_phoenix")
	if winner == nil || loser == nil {
		t.Fatal("genesis teams are missing owners")
	}
	winner.PublicApproval = 80
	loser.PublicApproval = 41

	before := orc.LastSequence()
	orc.emitNarratives(context.Background(), []*event.MatchEnded{{
		MatchID:    "unscheduled-friendly",
		HomeTeamID: "united_dragons",
		AwayTeamID: "city_phoenix",
		HomeScore:  3,
		AwayScore:  0,
	}})

	if winner.PublicApproval != 82 {
		t.Fatalf("winner approval = %d, want 82", winner.PublicApproval)
	}
	if loser.PublicApproval != 39 {
		t.Fatalf("loser approval = %d, want 39", loser.PublicApproval)
	}

	statements := make(map[string]string)
	err := orc.ReadEvents(context.Background(), before+1, func(env event.Envelope) error {
		if s, ok := env.Payload.(*event.OwnerStatement); ok {
			statements[s.OwnerID] = s.Sentiment
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if got := statements[winner.ID]; got != "positive" {
		t.Fatalf("winner statement sentiment = %q, want positive", got)
	}
	if got := statements[loser.ID]; got != "negative" {
		t.Fatalf("loser statement sentiment = %q, want negative", got)
	}
}

func TestDrawKeepsTheBoardroomQuiet(t *testing.T) {
	orc := bootstrapped(t, 21)
	owner := orc.world.OwnerOf("rovers_wolves")
	if owner == nil {
		t.Fatal("rovers_wolves has no owner")
	}
	approval := owner.PublicApproval

	before := orc.LastSequence()
	orc.emitNarratives(context.Background(), []*event.MatchEnded{{
		MatchID:    "unscheduled-friendly",
		HomeTeamID: "rovers_wolves",
		AwayTeamID: "town_tigers",
		HomeScore:  1,
		AwayScore:  1,
	}})

	if owner.PublicApproval != approval {
		t.Fatalf("draw moved approval from %d to %d", approval, owner.PublicApproval)
	}
	if orc.LastSequence() != before {
		t.Fatalf("draw of a normal fixture appended %d events", orc.LastSequence()-before)
	}
}
