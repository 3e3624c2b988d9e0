package world

import (
	"fmt"
	"sort"
	"time"

	"github.com/mraditya/leaguesim/internal/domain/league"
	"github.com/mraditya/leaguesim/internal/domain/match"
	"github.com/mraditya/leaguesim/internal/domain/narrative"
	"github.com/mraditya/leaguesim/internal/domain/player"
	"github.com/mraditya/leaguesim/internal/domain/team"
)

// DateLayout is the canonical calendar format used in event payloads.
const DateLayout = "2006-01-02"

// World is the root aggregate. It owns every entity; components borrow
// read-only views and return events. The in-memory world is a cache of the
// event log: folding Apply over the log on a fresh world rebuilds it exactly.
type World struct {
	Season      int       `json:"season"`
	CurrentDate time.Time `json:"current_date"`
	Seed        uint64    `json:"seed"`

	Leagues map[string]*league.League    `json:"leagues"`
	Teams   map[string]*team.Team        `json:"teams"`
	Players map[string]*player.Player    `json:"players"`
	Matches map[string]*match.Match      `json:"matches"`

	Owners  map[string]*narrative.Owner       `json:"owners"`
	Staff   map[string]*narrative.StaffMember `json:"staff"`
	Outlets map[string]*narrative.MediaOutlet `json:"outlets"`
}

func New() *World {
	return &World{
		Leagues: make(map[string]*league.League),
		Teams:   make(map[string]*team.Team),
		Players: make(map[string]*player.Player),
		Matches: make(map[string]*match.Match),
		Owners:  make(map[string]*narrative.Owner),
		Staff:   make(map[string]*narrative.StaffMember),
		Outlets: make(map[string]*narrative.MediaOutlet),
	}
}

func (w *World) GetLeague(id string) (*league.League, bool) {
	l, ok := w.Leagues[id]
	return l, ok
}

func (w *World) GetTeam(id string) (*team.Team, bool) {
	t, ok := w.Teams[id]
	return t, ok
}

func (w *World) GetPlayer(id string) (*player.Player, bool) {
	p, ok := w.Players[id]
	return p, ok
}

func (w *World) GetMatch(id string) (*match.Match, bool) {
	m, ok := w.Matches[id]
	return m, ok
}

// SquadOf resolves a team's player ids, preserving squad order.
func (w *World) SquadOf(t *team.Team) []*player.Player {
	out := make([]*player.Player, 0, len(t.SquadIDs))
	for _, id := range t.SquadIDs {
		if p, ok := w.Players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// OwnerOf resolves a team's club owner, scanning ids in sorted order so the
// answer never depends on map iteration.
func (w *World) OwnerOf(teamID string) *narrative.Owner {
	ids := make([]string, 0, len(w.Owners))
	for id := range w.Owners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if w.Owners[id].TeamID == teamID {
			return w.Owners[id]
		}
	}
	return nil
}

// OutletIDs returns media outlet ids sorted ascending.
func (w *World) OutletIDs() []string {
	out := make([]string, 0, len(w.Outlets))
	for id := range w.Outlets {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LeagueIDs returns league ids sorted ascending: the canonical iteration
// order everywhere, so map iteration never leaks into event ordering.
func (w *World) LeagueIDs() []string {
	out := make([]string, 0, len(w.Leagues))
	for id := range w.Leagues {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Table returns the league's teams sorted by
// (points desc, goal difference desc, goals for desc, name asc).
func (w *World) Table(leagueID string) []*team.Team {
	l, ok := w.Leagues[leagueID]
	if !ok {
		return nil
	}

	teams := make([]*team.Team, 0, len(l.TeamIDs))
	for _, id := range l.TeamIDs {
		if t, ok := w.Teams[id]; ok {
			teams = append(teams, t)
		}
	}

	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.Points() != b.Points() {
			return a.Points() > b.Points()
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Name < b.Name
	})

	return teams
}

// SeasonComplete reports whether every league has played out its calendar.
func (w *World) SeasonComplete() bool {
	if len(w.Leagues) == 0 {
		return false
	}
	for _, l := range w.Leagues {
		if !l.SeasonComplete() {
			return false
		}
	}
	return true
}

// Validate walks every cross-entity reference and arithmetic invariant.
// An inconsistent world is a fatal condition, not a recoverable one.
func (w *World) Validate() error {
	for id, l := range w.Leagues {
		if err := l.Validate(); err != nil {
			return err
		}
		for _, teamID := range l.TeamIDs {
			if _, ok := w.Teams[teamID]; !ok {
				return fmt.Errorf("league %s references unknown team %s", id, teamID)
			}
		}
	}
	for id, t := range w.Teams {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, ok := w.Leagues[t.LeagueID]; !ok {
			return fmt.Errorf("team %s references unknown league %s", id, t.LeagueID)
		}
		for _, playerID := range t.SquadIDs {
			if _, ok := w.Players[playerID]; !ok {
				return fmt.Errorf("team %s references unknown player %s", id, playerID)
			}
		}
	}
	for id, p := range w.Players {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := w.Teams[p.TeamID]; !ok {
			return fmt.Errorf("player %s references unknown team %s", id, p.TeamID)
		}
	}
	for id, m := range w.Matches {
		if err := m.Validate(); err != nil {
			return err
		}
		if _, ok := w.Teams[m.HomeTeamID]; !ok {
			return fmt.Errorf("match %s references unknown home team %s", id, m.HomeTeamID)
		}
		if _, ok := w.Teams[m.AwayTeamID]; !ok {
			return fmt.Errorf("match %s references unknown away team %s", id, m.AwayTeamID)
		}
	}

	return nil
}
