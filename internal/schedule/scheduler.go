package schedule

import (
	"sort"
	"strconv"
	"time"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/league"
	"github.com/mraditya/leaguesim/internal/domain/match"
	"github.com/mraditya/leaguesim/internal/domain/team"
	"github.com/mraditya/leaguesim/internal/domain/world"
	"github.com/mraditya/leaguesim/internal/platform/rng"
)

// Pairing is one fixture slot before a match entity exists.
type Pairing struct {
	HomeID string
	AwayID string
}

// Rounds builds the double round-robin via the circle method: team ids are
// sorted, the first stays fixed, the rest rotate one step per round. The
// second half mirrors the first with home and away swapped, so every ordered
// pair appears exactly once across 2(n-1) matchdays.
func Rounds(teamIDs []string) [][]Pairing {
	ids := append([]string(nil), teamIDs...)
	sort.Strings(ids)
	n := len(ids)
	if n < 2 {
		return nil
	}
	if n%2 != 0 {
		ids = append(ids, "") // bye slot
		n++
	}

	rounds := make([][]Pairing, 0, 2*(n-1))
	arr := ids
	for r := 0; r < n-1; r++ {
		round := make([]Pairing, 0, n/2)
		for i := 0; i < n/2; i++ {
			home, away := arr[i], arr[n-1-i]
			if r%2 == 1 {
				home, away = away, home
			}
			if home == "" || away == "" {
				continue
			}
			round = append(round, Pairing{HomeID: home, AwayID: away})
		}
		rounds = append(rounds, round)
		arr = rotate(arr)
	}

	mirrored := make([][]Pairing, 0, n-1)
	for _, round := range rounds {
		swap := make([]Pairing, 0, len(round))
		for _, p := range round {
			swap = append(swap, Pairing{HomeID: p.AwayID, AwayID: p.HomeID})
		}
		mirrored = append(mirrored, swap)
	}
	return append(rounds, mirrored...)
}

// rotate keeps the anchor in place and shifts everyone else one seat:
// [a, b, c, d] -> [a, d, b, c].
func rotate(arr []string) []string {
	n := len(arr)
	out := make([]string, 0, n)
	out = append(out, arr[0], arr[n-1])
	out = append(out, arr[1:n-1]...)
	return out
}

var weatherKinds = []rng.Weighted{
	{Key: string(match.WeatherSunny), Weight: 0.30},
	{Key: string(match.WeatherCloudy), Weight: 0.25},
	{Key: string(match.WeatherRainy), Weight: 0.20},
	{Key: string(match.WeatherSnowy), Weight: 0.10},
	{Key: string(match.WeatherWindy), Weight: 0.10},
	{Key: string(match.WeatherFoggy), Weight: 0.05},
}

var weatherDraw = map[match.Weather]float64{
	match.WeatherSunny:  1.05,
	match.WeatherCloudy: 1.00,
	match.WeatherWindy:  0.95,
	match.WeatherRainy:  0.90,
	match.WeatherFoggy:  0.85,
	match.WeatherSnowy:  0.80,
}

// Build produces the full season's MatchScheduled payloads for one league,
// matchday by matchday. Dates step a week per matchday from the season
// start. All draws come from a stream derived from
// (seed, "schedule", season, league), so scheduling is reproducible.
func Build(w *world.World, l *league.League, season int, start time.Time) []*event.MatchScheduled {
	stream := rng.Derive(w.Seed, "schedule", strconv.Itoa(season), l.ID)
	rounds := Rounds(l.TeamIDs)
	standings := w.Table(l.ID)

	var out []*event.MatchScheduled
	for roundIdx, round := range rounds {
		matchday := roundIdx + 1
		date := start.AddDate(0, 0, 7*(matchday-1))
		for _, pairing := range round {
			home, _ := w.GetTeam(pairing.HomeID)

			weather := pickWeather(stream)
			importance := Classify(l, standings, pairing.HomeID, pairing.AwayID)
			attendance := rollAttendance(stream, home, weather)
			atmosphere := rollAtmosphere(stream, home, attendance, importance)

			out = append(out, &event.MatchScheduled{
				MatchID:          match.BuildID(l.ID, season, matchday, pairing.HomeID, pairing.AwayID),
				LeagueID:         l.ID,
				Season:           season,
				Matchday:         matchday,
				HomeTeamID:       pairing.HomeID,
				AwayTeamID:       pairing.AwayID,
				Date:             date.Format(world.DateLayout),
				Weather:          string(weather),
				Attendance:       attendance,
				AtmosphereRating: atmosphere,
				Importance:       string(importance),
			})
		}
	}
	return out
}

func pickWeather(stream *rng.Stream) match.Weather {
	idx := stream.Pick(weatherKinds)
	if idx < 0 {
		return match.WeatherCloudy
	}
	return match.Weather(weatherKinds[idx].Key)
}

// Classify tags a fixture's importance from the rivalry set and the current
// table: derby beats title_race beats relegation beats normal.
func Classify(l *league.League, standings []*team.Team, homeID, awayID string) match.Importance {
	if l.AreRivals(homeID, awayID) {
		return match.ImportanceDerby
	}

	homePos, awayPos := -1, -1
	var homeTeam, awayTeam *team.Team
	for i, t := range standings {
		switch t.ID {
		case homeID:
			homePos, homeTeam = i, t
		case awayID:
			awayPos, awayTeam = i, t
		}
	}
	if homeTeam == nil || awayTeam == nil {
		return match.ImportanceNormal
	}

	gap := homeTeam.Points() - awayTeam.Points()
	if gap < 0 {
		gap = -gap
	}
	// Table position tags only apply once the season has some shape.
	if homeTeam.Played == 0 || awayTeam.Played == 0 {
		return match.ImportanceNormal
	}
	if homePos < 3 && awayPos < 3 && gap <= 3 {
		return match.ImportanceTitleRace
	}
	if bottom := len(standings) - 3; homePos >= bottom && awayPos >= bottom {
		return match.ImportanceRelegation
	}
	return match.ImportanceNormal
}

// rollAttendance: three quarters of capacity, scaled by the host's
// reputation and the weather, with a bounded jitter. Clamped to
// [1000, capacity].
func rollAttendance(stream *rng.Stream, home *team.Team, weather match.Weather) int {
	capacity := 20000
	reputation := 50
	if home != nil {
		if home.Stadium.Capacity > 0 {
			capacity = home.Stadium.Capacity
		}
		reputation = home.Reputation
	}

	base := float64(capacity) * 0.75
	repFactor := 0.6 + float64(reputation)/100*0.5
	jitter := 0.9 + stream.Float64()*0.2

	attendance := int(base * repFactor * weatherDraw[weather] * jitter)
	if attendance < 1000 {
		attendance = 1000
	}
	if attendance > capacity {
		attendance = capacity
	}
	return attendance
}

// rollAtmosphere maps fill rate into [30,90], with a derby boost.
func rollAtmosphere(stream *rng.Stream, home *team.Team, attendance int, importance match.Importance) int {
	capacity := 20000
	if home != nil && home.Stadium.Capacity > 0 {
		capacity = home.Stadium.Capacity
	}

	fill := float64(attendance) / float64(capacity)
	atmosphere := 30 + int(fill*45) + stream.IntN(11)
	if importance == match.ImportanceDerby {
		atmosphere += 10
	}
	if atmosphere < 30 {
		atmosphere = 30
	}
	if atmosphere > 90 {
		atmosphere = 90
	}
	return atmosphere
}
