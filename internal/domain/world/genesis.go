package world

import (
	"fmt"
	"strings"

	"github.com/mraditya/leaguesim/internal/domain/league"
	"github.com/mraditya/leaguesim/internal/domain/narrative"
	"github.com/mraditya/leaguesim/internal/domain/player"
	"github.com/mraditya/leaguesim/internal/domain/team"
	"github.com/mraditya/leaguesim/internal/platform/rng"
)

// GenesisSeason is the first simulated season (the calendar year).
const GenesisSeason = 2025

type genesisTeam struct {
	id   string
	name string
}

var premierTeams = []genesisTeam{
	{"united_dragons", "United Dragons"},
	{"city_phoenix", "City Phoenix"},
	{"rovers_wolves", "Rovers Wolves"},
	{"athletic_eagles", "Athletic Eagles"},
	{"town_tigers", "Town Tigers"},
	{"villa_lions", "Villa Lions"},
	{"wanderers_hawks", "Wanderers Hawks"},
	{"county_bears", "County Bears"},
	{"forest_foxes", "Forest Foxes"},
	{"united_sharks", "United Sharks"},
}

var coastalTeams = []genesisTeam{
	{"real_dragones", "Real Dragones"},
	{"barcelona_soles", "Barcelona Soles"},
	{"atletico_tormentas", "Atlético Tormentas"},
	{"valencia_llamas", "Valencia Llamas"},
	{"sevilla_vientos", "Sevilla Vientos"},
	{"villarreal_ondas", "Villarreal Ondas"},
	{"real_aguilas", "Real Águilas"},
	{"betis_estrellas", "Betis Estrellas"},
	{"athletic_truenos", "Athletic Truenos"},
	{"celta_cometas", "Celta Cometas"},
}

var firstNames = []string{
	"Gareth", "Marcus", "Oliver", "James", "William", "Harry", "George",
	"Thomas", "Daniel", "Michael", "Alexander", "Christopher", "Matthew",
	"Andrew", "Joshua", "David", "Robert", "John", "Paul", "Mark",
	"Diego", "Carlos", "Rafael", "Santiago", "Mateo", "Alejandro", "Javier",
	"Fernando", "Sergio", "Pablo", "Adrián", "Álvaro",
}

var surnames = []string{
	"Thunderfoot", "Swiftwind", "Ironshot", "Stormpass", "Goldstrike",
	"Lightspeed", "Strongarm", "Quickfire", "Steadyhand", "Boldkick",
	"Fasttrack", "Trueheart", "Sharpshoot", "Fleetstep", "Powershot",
	"Windrunner", "Starpass", "Flashstrike", "Swiftturn", "Thunderbolt",
	"Relámpago", "Tormenta", "Vendaval", "Centella", "Meteoro",
	"Huracán", "Cometa", "Destello", "Aurora", "Tempestad",
}

// squadTemplate defines positions per squad, enough depth for injuries and
// suspensions without breaking the 1 GK / 3 DF / 1 FW lineup constraint.
var squadTemplate = []struct {
	position player.Position
	count    int
}{
	{player.PositionGK, 2},
	{player.PositionCB, 3},
	{player.PositionLB, 1},
	{player.PositionRB, 1},
	{player.PositionCM, 2},
	{player.PositionLM, 1},
	{player.PositionRM, 1},
	{player.PositionCAM, 1},
	{player.PositionLW, 1},
	{player.PositionRW, 1},
	{player.PositionST, 2},
}

// Genesis populates an empty world with two ten-team leagues of generated
// fantasy clubs and squads. Every draw comes from streams derived from the
// seed, so two worlds built from the same seed are identical.
func Genesis(w *World, seed uint64) {
	w.Seed = seed

	buildLeague(w, seed, "premier_fantasy", "Premier Fantasy League", premierTeams)
	buildLeague(w, seed, "la_fantasia", "La Fantasía League", coastalTeams)
	buildMediaOutlets(w)
}

func buildLeague(w *World, seed uint64, leagueID, leagueName string, entries []genesisTeam) {
	l := &league.League{
		ID:              leagueID,
		Name:            leagueName,
		CurrentMatchday: 1,
		TotalMatchdays:  2 * (len(entries) - 1),
	}

	for _, entry := range entries {
		l.TeamIDs = append(l.TeamIDs, entry.id)
		buildTeam(w, seed, leagueID, entry)
	}

	// Clubs sharing a name word are historic rivals; their meetings are
	// derbies regardless of table position.
	for i, a := range entries {
		for _, b := range entries[i+1:] {
			if sharesNameWord(a.id, b.id) {
				l.Rivalries = append(l.Rivalries, [2]string{a.id, b.id})
			}
		}
	}

	w.Leagues[leagueID] = l
}

func buildTeam(w *World, seed uint64, leagueID string, entry genesisTeam) {
	stream := rng.Derive(seed, "genesis", leagueID, entry.id)

	t := &team.Team{
		ID:                  entry.id,
		LeagueID:            leagueID,
		Name:                entry.name,
		Short:               strings.ToUpper(entry.id[:3]),
		TacticalFamiliarity: stream.IntBetween(40, 70),
		Morale:              stream.IntBetween(45, 65),
		Reputation:          stream.IntBetween(35, 85),
		Finances: team.Finances{
			Balance:        int64(stream.IntBetween(5, 60)) * 1_000_000,
			MonthlyCosts:   int64(stream.IntBetween(1, 4)) * 1_000_000,
			TicketRevenue:  int64(stream.IntBetween(500, 2000)) * 1_000,
			SponsorRevenue: int64(stream.IntBetween(300, 1500)) * 1_000,
		},
		Stadium: team.Stadium{
			Name:            entry.name + " Arena",
			Capacity:        stream.IntBetween(18, 65) * 1000,
			TrainingQuality: stream.IntBetween(40, 90),
		},
	}

	index := 0
	for _, slot := range squadTemplate {
		for i := 0; i < slot.count; i++ {
			index++
			p := buildPlayer(stream, entry.id, index, slot.position)
			w.Players[p.ID] = p
			t.SquadIDs = append(t.SquadIDs, p.ID)
		}
	}

	w.Teams[entry.id] = t

	owner := &narrative.Owner{
		ID:             entry.id + "-owner",
		Name:           pickName(stream),
		TeamID:         entry.id,
		Role:           "Chairman",
		PublicApproval: stream.IntBetween(40, 75),
		Patience:       stream.IntBetween(30, 90),
	}
	w.Owners[owner.ID] = owner

	manager := &narrative.StaffMember{
		ID:          entry.id + "-manager",
		Name:        pickName(stream),
		TeamID:      entry.id,
		Role:        "Manager",
		TeamRapport: stream.IntBetween(40, 80),
	}
	w.Staff[manager.ID] = manager
}

func buildPlayer(stream *rng.Stream, teamID string, index int, position player.Position) *player.Player {
	p := &player.Player{
		ID:       fmt.Sprintf("%s-p%02d", teamID, index),
		Name:     pickName(stream),
		TeamID:   teamID,
		Position: position,
		Age:      stream.IntBetween(18, 35),

		Form:       stream.IntBetween(40, 60),
		Morale:     stream.IntBetween(40, 60),
		Fitness:    100,
		Reputation: stream.IntBetween(20, 80),

		WeakFoot:   stream.IntBetween(1, 5),
		SkillMoves: stream.IntBetween(1, 5),
	}

	switch stream.IntN(5) {
	case 0:
		p.PreferredFoot = player.FootLeft
	case 1:
		p.PreferredFoot = player.FootBoth
	default:
		p.PreferredFoot = player.FootRight
	}
	p.AttackingRate = pickWorkRate(stream)
	p.DefensiveRate = pickWorkRate(stream)

	assignAttributes(stream, p)

	// Headroom above current ability shrinks with age.
	headroom := maxInt(0, (35-p.Age)*2)
	p.Potential = minInt(99, p.OverallRating()+stream.IntBetween(0, headroom))
	p.RaisePotential()

	return p
}

// assignAttributes mirrors position archetypes: keepers defend, wingers run.
func assignAttributes(stream *rng.Stream, p *player.Player) {
	between := func(lo, hi int) int { return stream.IntBetween(lo, hi) }

	switch {
	case p.Position == player.PositionGK:
		p.Pace, p.Shooting, p.Passing = between(20, 40), between(10, 30), between(40, 70)
		p.Defending, p.Physicality = between(70, 95), between(60, 85)
	case p.Position == player.PositionCB:
		p.Pace, p.Shooting, p.Passing = between(30, 60), between(20, 50), between(50, 80)
		p.Defending, p.Physicality = between(70, 95), between(70, 90)
	case p.Position == player.PositionLB || p.Position == player.PositionRB:
		p.Pace, p.Shooting, p.Passing = between(60, 85), between(30, 60), between(60, 85)
		p.Defending, p.Physicality = between(60, 80), between(50, 75)
	case p.Position == player.PositionCM || p.Position == player.PositionCAM:
		p.Pace, p.Shooting, p.Passing = between(50, 80), between(50, 80), between(70, 95)
		p.Defending, p.Physicality = between(40, 70), between(50, 75)
	case p.Position == player.PositionST:
		p.Pace, p.Shooting, p.Passing = between(60, 90), between(70, 95), between(50, 80)
		p.Defending, p.Physicality = between(20, 50), between(60, 85)
	default: // wide midfielders and wingers
		p.Pace, p.Shooting, p.Passing = between(70, 95), between(60, 85), between(60, 85)
		p.Defending, p.Physicality = between(30, 60), between(40, 70)
	}
}

func buildMediaOutlets(w *World) {
	outlets := []narrative.MediaOutlet{
		{ID: "the-fantasy-gazette", Name: "The Fantasy Gazette", OutletType: "newspaper", Credibility: 80},
		{ID: "goal-horn-radio", Name: "Goal Horn Radio", OutletType: "radio", Credibility: 60},
		{ID: "terrace-talk", Name: "Terrace Talk", OutletType: "fan blog", Credibility: 35},
		{ID: "continental-sport", Name: "Continental Sport", OutletType: "tv", Credibility: 70},
	}
	for i := range outlets {
		outlet := outlets[i]
		w.Outlets[outlet.ID] = &outlet
	}
}

func pickName(stream *rng.Stream) string {
	return firstNames[stream.IntN(len(firstNames))] + " " + surnames[stream.IntN(len(surnames))]
}

func pickWorkRate(stream *rng.Stream) player.WorkRate {
	switch stream.IntN(3) {
	case 0:
		return player.WorkRateLow
	case 1:
		return player.WorkRateMedium
	default:
		return player.WorkRateHigh
	}
}

func sharesNameWord(a, b string) bool {
	for _, wa := range strings.Split(a, "_") {
		for _, wb := range strings.Split(b, "_") {
			if wa == wb {
				return true
			}
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
