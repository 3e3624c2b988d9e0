package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/team"
	"github.com/mraditya/leaguesim/internal/domain/world"
	"github.com/mraditya/leaguesim/internal/platform/cache"
)

const defaultLeaderboardSize = 10

// Projections answers every read query from the in-memory world, with the
// event log as the sole source for per-match timelines. Hot projections are
// cached until the next advance invalidates the prefix.
type Projections struct {
	orc   *Orchestrator
	cache *cache.Store
}

func NewProjections(orc *Orchestrator, c *cache.Store) *Projections {
	return &Projections{orc: orc, cache: c}
}

type TableRow struct {
	Position       int      `json:"position"`
	TeamID         string   `json:"team_id"`
	Name           string   `json:"name"`
	Played         int      `json:"played"`
	Wins           int      `json:"wins"`
	Draws          int      `json:"draws"`
	Losses         int      `json:"losses"`
	GoalsFor       int      `json:"goals_for"`
	GoalsAgainst   int      `json:"goals_against"`
	GoalDifference int      `json:"goal_difference"`
	Points         int      `json:"points"`
	RecentForm     []string `json:"recent_form"`
}

type ScorerRow struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	Name        string `json:"name"`
	TeamID      string `json:"team_id"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
	Appearances int    `json:"appearances"`
}

type DefenseRow struct {
	Rank         int    `json:"rank"`
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	Played       int    `json:"played"`
	GoalsAgainst int    `json:"goals_against"`
	CleanSheets  int    `json:"clean_sheets"`
}

type LeagueStatus struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	CurrentMatchday int    `json:"current_matchday"`
	TotalMatchdays  int    `json:"total_matchdays"`
	SeasonComplete  bool   `json:"season_complete"`
}

type WorldSummary struct {
	Season       int            `json:"season"`
	Date         string         `json:"date"`
	Seed         uint64         `json:"seed"`
	LastSequence int64          `json:"last_sequence"`
	Leagues      []LeagueStatus `json:"leagues"`
	Teams        int            `json:"teams"`
	Players      int            `json:"players"`
}

type HeadToHeadView struct {
	TeamAID  string      `json:"team_a_id"`
	TeamBID  string      `json:"team_b_id"`
	TeamA    team.Record `json:"team_a_record"`
	Meetings []Meeting   `json:"meetings"`
}

type Meeting struct {
	MatchID   string `json:"match_id"`
	Season    int    `json:"season"`
	Matchday  int    `json:"matchday"`
	HomeID    string `json:"home_team_id"`
	AwayID    string `json:"away_team_id"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

func (p *Projections) WorldSummary(ctx context.Context) (*WorldSummary, error) {
	var out *WorldSummary
	err := p.orc.View(func(w *world.World) error {
		out = &WorldSummary{
			Season:       w.Season,
			Date:         w.CurrentDate.Format(world.DateLayout),
			Seed:         w.Seed,
			LastSequence: p.orc.LastSequence(),
			Teams:        len(w.Teams),
			Players:      len(w.Players),
		}
		for _, id := range w.LeagueIDs() {
			l := w.Leagues[id]
			out.Leagues = append(out.Leagues, LeagueStatus{
				ID:              l.ID,
				Name:            l.Name,
				CurrentMatchday: l.CurrentMatchday,
				TotalMatchdays:  l.TotalMatchdays,
				SeasonComplete:  l.SeasonComplete(),
			})
		}
		return nil
	})
	return out, err
}

func (p *Projections) LeagueTable(ctx context.Context, leagueID string) ([]TableRow, error) {
	rows, err := p.cached(ctx, "table:"+leagueID, func(ctx context.Context) (any, error) {
		var out []TableRow
		err := p.orc.View(func(w *world.World) error {
			if _, ok := w.Leagues[leagueID]; !ok {
				return errors.Wrapf(ErrNotFound, "league %s", leagueID)
			}
			for i, t := range w.Table(leagueID) {
				form := make([]string, 0, len(t.RecentForm))
				for _, r := range t.RecentForm {
					form = append(form, string(r))
				}
				out = append(out, TableRow{
					Position:       i + 1,
					TeamID:         t.ID,
					Name:           t.Name,
					Played:         t.Played,
					Wins:           t.Wins,
					Draws:          t.Draws,
					Losses:         t.Losses,
					GoalsFor:       t.GoalsFor,
					GoalsAgainst:   t.GoalsAgainst,
					GoalDifference: t.GoalsFor - t.GoalsAgainst,
					Points:         t.Points(),
					RecentForm:     form,
				})
			}
			return nil
		})
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return rows.([]TableRow), nil
}

func (p *Projections) TopScorers(ctx context.Context, leagueID string, limit int) ([]ScorerRow, error) {
	return p.leaderboard(ctx, "top-scorers", leagueID, limit, func(a, b ScorerRow) bool {
		if a.Goals != b.Goals {
			return a.Goals > b.Goals
		}
		return a.PlayerID < b.PlayerID
	})
}

func (p *Projections) TopAssisters(ctx context.Context, leagueID string, limit int) ([]ScorerRow, error) {
	return p.leaderboard(ctx, "top-assisters", leagueID, limit, func(a, b ScorerRow) bool {
		if a.Assists != b.Assists {
			return a.Assists > b.Assists
		}
		return a.PlayerID < b.PlayerID
	})
}

func (p *Projections) leaderboard(ctx context.Context, kind, leagueID string, limit int, less func(a, b ScorerRow) bool) ([]ScorerRow, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	key := fmt.Sprintf("%s:%s:%d", kind, leagueID, limit)
	rows, err := p.cached(ctx, key, func(ctx context.Context) (any, error) {
		var out []ScorerRow
		err := p.orc.View(func(w *world.World) error {
			if _, ok := w.Leagues[leagueID]; !ok {
				return errors.Wrapf(ErrNotFound, "league %s", leagueID)
			}
			season := w.Season
			for id, pl := range w.Players {
				t, ok := w.Teams[pl.TeamID]
				if !ok || t.LeagueID != leagueID {
					continue
				}
				stats := pl.SeasonStats[season]
				if stats == nil {
					continue
				}
				out = append(out, ScorerRow{
					PlayerID:    id,
					Name:        pl.Name,
					TeamID:      pl.TeamID,
					Goals:       stats.Goals,
					Assists:     stats.Assists,
					Appearances: stats.Appearances,
				})
			}
			sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
			if len(out) > limit {
				out = out[:limit]
			}
			for i := range out {
				out[i].Rank = i + 1
			}
			return nil
		})
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return rows.([]ScorerRow), nil
}

// BestDefense ranks by goals conceded ascending, clean sheets descending.
func (p *Projections) BestDefense(ctx context.Context, leagueID string) ([]DefenseRow, error) {
	rows, err := p.cached(ctx, "best-defense:"+leagueID, func(ctx context.Context) (any, error) {
		var out []DefenseRow
		err := p.orc.View(func(w *world.World) error {
			l, ok := w.Leagues[leagueID]
			if !ok {
				return errors.Wrapf(ErrNotFound, "league %s", leagueID)
			}
			for _, teamID := range l.TeamIDs {
				t, ok := w.Teams[teamID]
				if !ok {
					continue
				}
				out = append(out, DefenseRow{
					TeamID:       t.ID,
					Name:         t.Name,
					Played:       t.Played,
					GoalsAgainst: t.GoalsAgainst,
					CleanSheets:  t.CleanSheets,
				})
			}
			sort.Slice(out, func(i, j int) bool {
				if out[i].GoalsAgainst != out[j].GoalsAgainst {
					return out[i].GoalsAgainst < out[j].GoalsAgainst
				}
				if out[i].CleanSheets != out[j].CleanSheets {
					return out[i].CleanSheets > out[j].CleanSheets
				}
				return out[i].TeamID < out[j].TeamID
			})
			for i := range out {
				out[i].Rank = i + 1
			}
			return nil
		})
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return rows.([]DefenseRow), nil
}

func (p *Projections) TeamDetail(ctx context.Context, teamID string) (*team.Team, error) {
	var out *team.Team
	err := p.orc.View(func(w *world.World) error {
		t, ok := w.Teams[teamID]
		if !ok {
			return errors.Wrapf(ErrNotFound, "team %s", teamID)
		}
		out = t
		return nil
	})
	return out, err
}

// HeadToHead reports the running record from team A's perspective plus every
// finished meeting, oldest first.
func (p *Projections) HeadToHead(ctx context.Context, teamAID, teamBID string) (*HeadToHeadView, error) {
	view := &HeadToHeadView{TeamAID: teamAID, TeamBID: teamBID}
	err := p.orc.View(func(w *world.World) error {
		a, ok := w.Teams[teamAID]
		if !ok {
			return errors.Wrapf(ErrNotFound, "team %s", teamAID)
		}
		if _, ok := w.Teams[teamBID]; !ok {
			return errors.Wrapf(ErrNotFound, "team %s", teamBID)
		}
		if record, ok := a.HeadToHead[teamBID]; ok && record != nil {
			view.TeamA = *record
		}
		for _, m := range w.Matches {
			if !m.Finished {
				continue
			}
			if (m.HomeTeamID == teamAID && m.AwayTeamID == teamBID) ||
				(m.HomeTeamID == teamBID && m.AwayTeamID == teamAID) {
				view.Meetings = append(view.Meetings, Meeting{
					MatchID:   m.ID,
					Season:    m.Season,
					Matchday:  m.Matchday,
					HomeID:    m.HomeTeamID,
					AwayID:    m.AwayTeamID,
					HomeScore: m.HomeScore,
					AwayScore: m.AwayScore,
				})
			}
		}
		sort.Slice(view.Meetings, func(i, j int) bool {
			if view.Meetings[i].Season != view.Meetings[j].Season {
				return view.Meetings[i].Season < view.Meetings[j].Season
			}
			return view.Meetings[i].Matchday < view.Meetings[j].Matchday
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

type PlayerSeasonView struct {
	PlayerID    string  `json:"player_id"`
	Name        string  `json:"name"`
	TeamID      string  `json:"team_id"`
	Position    string  `json:"position"`
	Season      int     `json:"season"`
	Appearances int     `json:"appearances"`
	Goals       int     `json:"goals"`
	Assists     int     `json:"assists"`
	Yellows     int     `json:"yellows"`
	Reds        int     `json:"reds"`
	Minutes     int     `json:"minutes"`
	AvgRating   float64 `json:"avg_rating"`
}

func (p *Projections) PlayerSeasonStats(ctx context.Context, playerID string, season int) (*PlayerSeasonView, error) {
	var out *PlayerSeasonView
	err := p.orc.View(func(w *world.World) error {
		pl, ok := w.Players[playerID]
		if !ok {
			return errors.Wrapf(ErrNotFound, "player %s", playerID)
		}
		if season == 0 {
			season = w.Season
		}
		out = &PlayerSeasonView{
			PlayerID: pl.ID,
			Name:     pl.Name,
			TeamID:   pl.TeamID,
			Position: string(pl.Position),
			Season:   season,
		}
		if stats := pl.SeasonStats[season]; stats != nil {
			out.Appearances = stats.Appearances
			out.Goals = stats.Goals
			out.Assists = stats.Assists
			out.Yellows = stats.Yellows
			out.Reds = stats.Reds
			out.Minutes = stats.Minutes
			out.AvgRating = stats.AvgRating
		}
		return nil
	})
	return out, err
}

// MatchEvents replays the persisted log and returns the match's timeline in
// sequence order. This is the one projection that reads the log rather than
// the world, so the full minute-by-minute record stays queryable.
func (p *Projections) MatchEvents(ctx context.Context, matchID string) ([]event.Envelope, error) {
	if err := p.orc.View(func(w *world.World) error {
		if _, ok := w.Matches[matchID]; !ok {
			return errors.Wrapf(ErrNotFound, "match %s", matchID)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	envs, err := p.cached(ctx, "match-events:"+matchID, func(ctx context.Context) (any, error) {
		var out []event.Envelope
		err := p.orc.ReadEvents(ctx, 1, func(env event.Envelope) error {
			if matchIDOf(env.Payload) == matchID {
				out = append(out, env)
			}
			return nil
		})
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return envs.([]event.Envelope), nil
}

func matchIDOf(p event.Payload) string {
	switch e := p.(type) {
	case *event.MatchScheduled:
		return e.MatchID
	case *event.MatchStarted:
		return e.MatchID
	case *event.KickOff:
		return e.MatchID
	case *event.Goal:
		return e.MatchID
	case *event.YellowCard:
		return e.MatchID
	case *event.RedCard:
		return e.MatchID
	case *event.Substitution:
		return e.MatchID
	case *event.Injury:
		return e.MatchID
	case *event.CornerKick:
		return e.MatchID
	case *event.Foul:
		return e.MatchID
	case *event.FreeKick:
		return e.MatchID
	case *event.PenaltyAwarded:
		return e.MatchID
	case *event.Offside:
		return e.MatchID
	case *event.MatchEnded:
		return e.MatchID
	case *event.MatchAborted:
		return e.MatchID
	default:
		return ""
	}
}

func (p *Projections) cached(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if p.cache == nil {
		return loader(ctx)
	}
	return p.cache.GetOrLoad(ctx, projectionCachePrefix+key, loader)
}
