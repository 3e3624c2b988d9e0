package match

import (
	"fmt"
	"strings"
)

type Weather string

const (
	WeatherSunny  Weather = "Sunny"
	WeatherCloudy Weather = "Cloudy"
	WeatherRainy  Weather = "Rainy"
	WeatherSnowy  Weather = "Snowy"
	WeatherWindy  Weather = "Windy"
	WeatherFoggy  Weather = "Foggy"
)

// Importance classifies a fixture for narrative and attendance purposes.
type Importance string

const (
	ImportanceNormal     Importance = "normal"
	ImportanceTitleRace  Importance = "title_race"
	ImportanceDerby      Importance = "derby"
	ImportanceRelegation Importance = "relegation"
)

// Match is one scheduled or finished game. Created by the scheduler,
// sealed exactly once by the orchestrator.
type Match struct {
	ID       string `json:"id"`
	LeagueID string `json:"league_id"`
	Matchday int    `json:"matchday"`
	Season   int    `json:"season"`

	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`

	Finished  bool `json:"finished"`
	HomeScore int  `json:"home_score"`
	AwayScore int  `json:"away_score"`

	Weather          Weather    `json:"weather"`
	Attendance       int        `json:"attendance"`
	AtmosphereRating int        `json:"atmosphere_rating"`
	Importance       Importance `json:"importance"`
}

// ID layout: "<league>-s<season>-md<NN>-<home>-vs-<away>". Deterministic so
// replay and per-match derived seeds are stable without persisting ids.
func BuildID(leagueID string, season, matchday int, homeID, awayID string) string {
	return fmt.Sprintf("%s-s%d-md%02d-%s-vs-%s", leagueID, season, matchday, homeID, awayID)
}

func (m *Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.HomeTeamID == "" || m.AwayTeamID == "" {
		return fmt.Errorf("match %s team ids are required", m.ID)
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("match %s has identical home and away team %s", m.ID, m.HomeTeamID)
	}
	if m.Attendance != 0 && m.Attendance < 1000 {
		return fmt.Errorf("match %s attendance %d below minimum 1000", m.ID, m.Attendance)
	}
	if m.AtmosphereRating != 0 && (m.AtmosphereRating < 30 || m.AtmosphereRating > 90) {
		return fmt.Errorf("match %s atmosphere %d out of range", m.ID, m.AtmosphereRating)
	}

	return nil
}

func NormalizeImportance(value string) Importance {
	switch Importance(strings.ToLower(strings.TrimSpace(value))) {
	case ImportanceTitleRace:
		return ImportanceTitleRace
	case ImportanceDerby:
		return ImportanceDerby
	case ImportanceRelegation:
		return ImportanceRelegation
	default:
		return ImportanceNormal
	}
}
