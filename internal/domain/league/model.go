package league

import "fmt"

// SeasonHonours records who finished top of what at the end of a season.
type SeasonHonours struct {
	ChampionTeamID   string `json:"champion_team_id"`
	TopScorerID      string `json:"top_scorer_id"`
	TopScorerGoals   int    `json:"top_scorer_goals"`
	TopAssisterID    string `json:"top_assister_id"`
	TopAssisterCount int    `json:"top_assister_count"`
	BestKeeperID     string `json:"best_keeper_id"`
	CleanSheets      int    `json:"clean_sheets"`
}

// League groups teams into one double round-robin competition.
type League struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	TeamIDs []string `json:"team_ids"`

	CurrentMatchday int `json:"current_matchday"`
	TotalMatchdays  int `json:"total_matchdays"`

	// FixtureIDs holds match ids per matchday, index 0 = matchday 1.
	FixtureIDs [][]string `json:"fixture_ids"`

	HonoursBySeason map[int]SeasonHonours `json:"honours_by_season"`

	// Rivalries lists unordered team-id pairs whose meetings are derbies.
	Rivalries [][2]string `json:"rivalries,omitempty"`
}

// SeasonComplete reports whether every matchday has been played.
func (l *League) SeasonComplete() bool {
	return l.CurrentMatchday > l.TotalMatchdays
}

// FixturesFor returns the match ids of one matchday (1-based).
func (l *League) FixturesFor(matchday int) []string {
	if matchday < 1 || matchday > len(l.FixtureIDs) {
		return nil
	}
	return l.FixtureIDs[matchday-1]
}

// AreRivals reports whether the pair is in the configured rivalry set.
func (l *League) AreRivals(a, b string) bool {
	for _, pair := range l.Rivalries {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}

func (l *League) RecordHonours(season int, honours SeasonHonours) {
	if l.HonoursBySeason == nil {
		l.HonoursBySeason = make(map[int]SeasonHonours)
	}
	l.HonoursBySeason[season] = honours
}

func (l *League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if len(l.TeamIDs) < 2 {
		return fmt.Errorf("league %s needs at least two teams", l.ID)
	}
	if want := 2 * (len(l.TeamIDs) - 1); l.TotalMatchdays != want {
		return fmt.Errorf("league %s total matchdays %d, want %d for %d teams", l.ID, l.TotalMatchdays, want, len(l.TeamIDs))
	}

	return nil
}
