package world

import (
	"fmt"
	"sort"
	"time"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/league"
	"github.com/mraditya/leaguesim/internal/domain/match"
	"github.com/mraditya/leaguesim/internal/domain/player"
)

const (
	// FitnessDrainPerTwoMinutes: players lose half a fitness point per
	// minute on the pitch, persisted from MatchEnded minute counts.
	weeklyFitnessRecovery = 15
	redCardSuspension     = 3
)

// Apply is the single mutating pathway into the world. It is pure over
// (world, event), performs no I/O, and folding the same event sequence over
// a fresh world always yields the same state.
func (w *World) Apply(env event.Envelope) error {
	switch p := env.Payload.(type) {
	case *event.WorldInitialized:
		return w.applyWorldInitialized(p)
	case *event.MatchScheduled:
		return w.applyMatchScheduled(p)
	case *event.MatchStarted, *event.KickOff, *event.CornerKick, *event.Foul,
		*event.FreeKick, *event.PenaltyAwarded, *event.Offside,
		*event.Substitution, *event.MatchAborted, *event.OwnerStatement,
		*event.HeadToHeadUpdated, *event.ValidationFailed:
		// Observability-only payloads: no world state change.
		return nil
	case *event.Goal:
		return w.applyGoal(p)
	case *event.YellowCard:
		return w.applyYellowCard(p)
	case *event.RedCard:
		return w.applyRedCard(p)
	case *event.Injury:
		return w.applyInjury(p)
	case *event.MatchEnded:
		return w.applyMatchEnded(p)
	case *event.MatchdayAdvanced:
		return w.applyMatchdayAdvanced(p)
	case *event.SoftStateUpdated:
		return w.applySoftStateUpdated(p)
	case *event.SeasonEnded:
		return w.applySeasonEnded(p)
	case *event.MediaStory:
		if outlet, ok := w.Outlets[p.OutletID]; ok {
			outlet.PushStory(p.Headline)
		}
		return nil
	default:
		return fmt.Errorf("apply: unhandled event kind %s at sequence %d", env.Kind, env.Sequence)
	}
}

// applyWorldInitialized regenerates the genesis population. Genesis is a
// pure function of the seed, so replaying this event on a fresh world
// reproduces every entity without persisting them individually.
func (w *World) applyWorldInitialized(p *event.WorldInitialized) error {
	if len(w.Teams) > 0 {
		return fmt.Errorf("apply WorldInitialized: world already populated")
	}
	date, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return fmt.Errorf("apply WorldInitialized: parse date %q: %w", p.Date, err)
	}

	Genesis(w, p.Seed)
	w.Season = p.Season
	w.CurrentDate = date
	return nil
}

func (w *World) applyMatchScheduled(p *event.MatchScheduled) error {
	l, ok := w.Leagues[p.LeagueID]
	if !ok {
		return fmt.Errorf("apply MatchScheduled: unknown league %s", p.LeagueID)
	}

	m := &match.Match{
		ID:               p.MatchID,
		LeagueID:         p.LeagueID,
		Matchday:         p.Matchday,
		Season:           p.Season,
		HomeTeamID:       p.HomeTeamID,
		AwayTeamID:       p.AwayTeamID,
		Weather:          match.Weather(p.Weather),
		Attendance:       p.Attendance,
		AtmosphereRating: p.AtmosphereRating,
		Importance:       match.NormalizeImportance(p.Importance),
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("apply MatchScheduled: %w", err)
	}
	w.Matches[m.ID] = m

	for len(l.FixtureIDs) < p.Matchday {
		l.FixtureIDs = append(l.FixtureIDs, nil)
	}
	l.FixtureIDs[p.Matchday-1] = append(l.FixtureIDs[p.Matchday-1], m.ID)
	return nil
}

func (w *World) applyGoal(p *event.Goal) error {
	m, ok := w.Matches[p.MatchID]
	if !ok {
		return fmt.Errorf("apply Goal: unknown match %s", p.MatchID)
	}
	if m.Finished {
		return fmt.Errorf("apply Goal: match %s already sealed", p.MatchID)
	}

	if p.TeamID == m.HomeTeamID {
		m.HomeScore++
	} else {
		m.AwayScore++
	}

	if scorer, ok := w.Players[p.ScorerID]; ok {
		scorer.StatsFor(m.Season).Goals++
	}
	if p.AssistID != "" {
		if assister, ok := w.Players[p.AssistID]; ok {
			assister.StatsFor(m.Season).Assists++
		}
	}
	return nil
}

func (w *World) applyYellowCard(p *event.YellowCard) error {
	pl, ok := w.Players[p.PlayerID]
	if !ok {
		return fmt.Errorf("apply YellowCard: unknown player %s", p.PlayerID)
	}
	pl.YellowCardsSeason++
	if m, ok := w.Matches[p.MatchID]; ok {
		pl.StatsFor(m.Season).Yellows++
	}
	return nil
}

func (w *World) applyRedCard(p *event.RedCard) error {
	pl, ok := w.Players[p.PlayerID]
	if !ok {
		return fmt.Errorf("apply RedCard: unknown player %s", p.PlayerID)
	}
	pl.RedCardsSeason++
	pl.Suspended = true
	pl.SuspensionRemaining = redCardSuspension
	pl.SuspendedOn = w.CurrentDate.Format(DateLayout)
	if m, ok := w.Matches[p.MatchID]; ok {
		pl.StatsFor(m.Season).Reds++
	}
	return nil
}

func (w *World) applyInjury(p *event.Injury) error {
	pl, ok := w.Players[p.PlayerID]
	if !ok {
		return fmt.Errorf("apply Injury: unknown player %s", p.PlayerID)
	}
	pl.Injured = true
	pl.InjuryWeeksRemaining = p.WeeksOut
	pl.InjuredOn = w.CurrentDate.Format(DateLayout)
	season := w.Season
	if m, ok := w.Matches[p.MatchID]; ok {
		season = m.Season
	}
	pl.InjuryHistory = append(pl.InjuryHistory, player.InjuryRecord{
		Season:   season,
		Type:     p.InjuryType,
		Severity: p.Severity,
		WeeksOut: p.WeeksOut,
	})
	return nil
}

func (w *World) applyMatchEnded(p *event.MatchEnded) error {
	m, ok := w.Matches[p.MatchID]
	if !ok {
		return fmt.Errorf("apply MatchEnded: unknown match %s", p.MatchID)
	}
	if m.Finished {
		return fmt.Errorf("apply MatchEnded: match %s already sealed", p.MatchID)
	}
	if m.HomeScore != p.HomeScore || m.AwayScore != p.AwayScore {
		return fmt.Errorf("apply MatchEnded: match %s score %d-%d disagrees with goal events %d-%d",
			p.MatchID, p.HomeScore, p.AwayScore, m.HomeScore, m.AwayScore)
	}

	m.Finished = true

	home, ok := w.Teams[p.HomeTeamID]
	if !ok {
		return fmt.Errorf("apply MatchEnded: unknown home team %s", p.HomeTeamID)
	}
	away, ok := w.Teams[p.AwayTeamID]
	if !ok {
		return fmt.Errorf("apply MatchEnded: unknown away team %s", p.AwayTeamID)
	}

	home.RecordResult(away.ID, p.HomeScore, p.AwayScore, true)
	away.RecordResult(home.ID, p.AwayScore, p.HomeScore, false)

	for playerID, minutes := range p.PlayerMinutes {
		pl, ok := w.Players[playerID]
		if !ok {
			continue
		}
		stats := pl.StatsFor(p.Season)
		stats.Appearances++
		stats.Minutes += minutes
		if rating, ok := p.PlayerRatings[playerID]; ok {
			stats.AddRating(rating)
		}
		pl.SetFitness(pl.Fitness - minutes/2)
	}

	return nil
}

func (w *World) applyMatchdayAdvanced(p *event.MatchdayAdvanced) error {
	date, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return fmt.Errorf("apply MatchdayAdvanced: parse date %q: %w", p.Date, err)
	}
	closing := w.CurrentDate.Format(DateLayout)
	w.CurrentDate = date

	for _, leagueID := range p.Leagues {
		l, ok := w.Leagues[leagueID]
		if !ok {
			return fmt.Errorf("apply MatchdayAdvanced: unknown league %s", leagueID)
		}
		l.CurrentMatchday++
	}

	// Weekly progression: injuries heal, suspensions count down,
	// everyone recovers some fitness. A card or injury sustained on the
	// matchday this tick closes starts counting from the next tick, so a
	// 3-match ban costs three full matchdays.
	for _, id := range w.playerIDsSorted() {
		pl := w.Players[id]
		if pl.Injured && pl.InjuredOn != closing {
			pl.InjuryWeeksRemaining--
			if pl.InjuryWeeksRemaining <= 0 {
				pl.Injured = false
				pl.InjuryWeeksRemaining = 0
				pl.InjuredOn = ""
			}
		}
		if pl.Suspended && pl.SuspendedOn != closing {
			pl.SuspensionRemaining--
			if pl.SuspensionRemaining <= 0 {
				pl.Suspended = false
				pl.SuspensionRemaining = 0
				pl.SuspendedOn = ""
			}
		}
		pl.SetFitness(pl.Fitness + weeklyFitnessRecovery)
	}
	return nil
}

func (w *World) applySoftStateUpdated(p *event.SoftStateUpdated) error {
	switch p.TargetKind {
	case "player":
		pl, ok := w.Players[p.TargetID]
		if !ok {
			return fmt.Errorf("apply SoftStateUpdated: unknown player %s", p.TargetID)
		}
		switch p.Field {
		case "form":
			pl.SetForm(p.Value)
		case "morale":
			pl.SetMorale(p.Value)
		case "fitness":
			pl.SetFitness(p.Value)
		case "reputation":
			pl.SetReputation(p.Value)
		default:
			return fmt.Errorf("apply SoftStateUpdated: unknown player field %s", p.Field)
		}
	case "team":
		t, ok := w.Teams[p.TargetID]
		if !ok {
			return fmt.Errorf("apply SoftStateUpdated: unknown team %s", p.TargetID)
		}
		switch p.Field {
		case "morale":
			t.SetMorale(p.Value)
		case "reputation":
			t.SetReputation(p.Value)
		case "tactical_familiarity":
			t.TacticalFamiliarity = clampInt(p.Value, 0, 100)
		default:
			return fmt.Errorf("apply SoftStateUpdated: unknown team field %s", p.Field)
		}
	case "owner":
		o, ok := w.Owners[p.TargetID]
		if !ok {
			return fmt.Errorf("apply SoftStateUpdated: unknown owner %s", p.TargetID)
		}
		if p.Field != "public_approval" {
			return fmt.Errorf("apply SoftStateUpdated: unknown owner field %s", p.Field)
		}
		o.SetPublicApproval(p.Value)
	case "staff":
		s, ok := w.Staff[p.TargetID]
		if !ok {
			return fmt.Errorf("apply SoftStateUpdated: unknown staff %s", p.TargetID)
		}
		if p.Field != "team_rapport" {
			return fmt.Errorf("apply SoftStateUpdated: unknown staff field %s", p.Field)
		}
		s.SetTeamRapport(p.Value)
	default:
		return fmt.Errorf("apply SoftStateUpdated: unknown target kind %s", p.TargetKind)
	}
	return nil
}

func (w *World) applySeasonEnded(p *event.SeasonEnded) error {
	l, ok := w.Leagues[p.LeagueID]
	if !ok {
		return fmt.Errorf("apply SeasonEnded: unknown league %s", p.LeagueID)
	}

	l.RecordHonours(p.Season, leagueHonours(p))
	if champion, ok := w.Teams[p.ChampionTeamID]; ok {
		champion.SetReputation(champion.Reputation + 3)
	}
	if scorer, ok := w.Players[p.TopScorerID]; ok {
		scorer.Awards = append(scorer.Awards,
			fmt.Sprintf("Golden Boot %d (%s)", p.Season, p.LeagueID))
	}

	for _, teamID := range l.TeamIDs {
		t, ok := w.Teams[teamID]
		if !ok {
			continue
		}
		t.ResetSeasonCounters()
		for _, playerID := range t.SquadIDs {
			if pl, ok := w.Players[playerID]; ok {
				pl.YellowCardsSeason = 0
				pl.RedCardsSeason = 0
			}
		}
	}

	l.CurrentMatchday = 1
	l.FixtureIDs = nil

	// Roll the world season forward once every league has closed out.
	allClosed := true
	for _, other := range w.Leagues {
		if _, ok := other.HonoursBySeason[p.Season]; !ok {
			allClosed = false
			break
		}
	}
	if allClosed && w.Season == p.Season {
		w.Season = p.Season + 1
	}
	return nil
}

func leagueHonours(p *event.SeasonEnded) league.SeasonHonours {
	return league.SeasonHonours{
		ChampionTeamID:   p.ChampionTeamID,
		TopScorerID:      p.TopScorerID,
		TopScorerGoals:   p.TopScorerGoals,
		TopAssisterID:    p.TopAssisterID,
		TopAssisterCount: p.TopAssisterCount,
		BestKeeperID:     p.BestKeeperID,
		CleanSheets:      p.CleanSheets,
	}
}

func (w *World) playerIDsSorted() []string {
	out := make([]string, 0, len(w.Players))
	for id := range w.Players {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
