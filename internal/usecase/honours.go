package usecase

import (
	"sort"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/player"
)

// seasonHonours computes a league's end-of-season awards from world state.
// Ties break on ascending id so the honours are the same on every replay.
func (o *Orchestrator) seasonHonours(leagueID string, season int) *event.SeasonEnded {
	l := o.world.Leagues[leagueID]
	honours := &event.SeasonEnded{LeagueID: leagueID, Season: season}

	if table := o.world.Table(leagueID); len(table) > 0 {
		honours.ChampionTeamID = table[0].ID
	}

	playerIDs := o.leaguePlayerIDs(leagueID)
	for _, id := range playerIDs {
		stats := o.world.Players[id].SeasonStats[season]
		if stats == nil {
			continue
		}
		if stats.Goals > honours.TopScorerGoals {
			honours.TopScorerID, honours.TopScorerGoals = id, stats.Goals
		}
		if stats.Assists > honours.TopAssisterCount {
			honours.TopAssisterID, honours.TopAssisterCount = id, stats.Assists
		}
	}

	bestTeam, bestSheets := "", -1
	for _, teamID := range l.TeamIDs {
		t, ok := o.world.Teams[teamID]
		if !ok {
			continue
		}
		if t.CleanSheets > bestSheets || (t.CleanSheets == bestSheets && teamID < bestTeam) {
			bestTeam, bestSheets = teamID, t.CleanSheets
		}
	}
	if bestTeam != "" {
		honours.CleanSheets = bestSheets
		for _, id := range playerIDs {
			p := o.world.Players[id]
			if p.TeamID == bestTeam && p.Position == player.PositionGK {
				honours.BestKeeperID = id
				break
			}
		}
	}

	return honours
}

func (o *Orchestrator) leaguePlayerIDs(leagueID string) []string {
	var out []string
	for id, p := range o.world.Players {
		if t, ok := o.world.Teams[p.TeamID]; ok && t.LeagueID == leagueID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
