package player

import "fmt"

// Position is a player's field position.
type Position string

const (
	PositionGK  Position = "GK"
	PositionCB  Position = "CB"
	PositionLB  Position = "LB"
	PositionRB  Position = "RB"
	PositionCM  Position = "CM"
	PositionLM  Position = "LM"
	PositionRM  Position = "RM"
	PositionCAM Position = "CAM"
	PositionLW  Position = "LW"
	PositionRW  Position = "RW"
	PositionST  Position = "ST"
)

// AllPositions lists positions in pitch order, goalkeeper first.
var AllPositions = []Position{
	PositionGK, PositionCB, PositionLB, PositionRB,
	PositionCM, PositionLM, PositionRM, PositionCAM,
	PositionLW, PositionRW, PositionST,
}

func (p Position) IsDefender() bool {
	switch p {
	case PositionCB, PositionLB, PositionRB:
		return true
	default:
		return false
	}
}

func (p Position) IsForward() bool {
	switch p {
	case PositionST, PositionLW, PositionRW:
		return true
	default:
		return false
	}
}

// IsAttacking marks positions eligible for the primary scorer pool.
func (p Position) IsAttacking() bool {
	switch p {
	case PositionST, PositionLW, PositionRW, PositionCAM:
		return true
	default:
		return false
	}
}

type Foot string

const (
	FootLeft  Foot = "L"
	FootRight Foot = "R"
	FootBoth  Foot = "Both"
)

type WorkRate string

const (
	WorkRateLow    WorkRate = "Low"
	WorkRateMedium WorkRate = "Med"
	WorkRateHigh   WorkRate = "High"
)

// SeasonStats aggregates one player's output in a single season.
type SeasonStats struct {
	Appearances int     `json:"appearances"`
	Goals       int     `json:"goals"`
	Assists     int     `json:"assists"`
	Yellows     int     `json:"yellows"`
	Reds        int     `json:"reds"`
	Minutes     int     `json:"minutes"`
	AvgRating   float64 `json:"avg_rating"`
	RatingSum   float64 `json:"rating_sum"`
	RatingCount int     `json:"rating_count"`
}

// AddRating folds one match rating into the running average.
func (s *SeasonStats) AddRating(rating float64) {
	s.RatingSum += rating
	s.RatingCount++
	s.AvgRating = roundToTenth(s.RatingSum / float64(s.RatingCount))
}

// InjuryRecord is one entry in a player's injury history.
type InjuryRecord struct {
	Season   int    `json:"season"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	WeeksOut int    `json:"weeks_out"`
}

// Player is a squad member. Core attributes are hard state; form, morale and
// fitness are soft state written only through validated events.
type Player struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TeamID   string   `json:"team_id"`
	Position Position `json:"position"`
	Age      int      `json:"age"`

	Pace        int `json:"pace"`
	Shooting    int `json:"shooting"`
	Passing     int `json:"passing"`
	Defending   int `json:"defending"`
	Physicality int `json:"physicality"`

	Form       int `json:"form"`
	Morale     int `json:"morale"`
	Fitness    int `json:"fitness"`
	Reputation int `json:"reputation"`

	PreferredFoot Foot     `json:"preferred_foot"`
	WeakFoot      int      `json:"weak_foot"`
	SkillMoves    int      `json:"skill_moves"`
	Traits        []string `json:"traits,omitempty"`
	AttackingRate WorkRate `json:"attacking_work_rate"`
	DefensiveRate WorkRate `json:"defensive_work_rate"`
	Potential     int      `json:"potential"`

	Injured              bool   `json:"injured"`
	InjuryWeeksRemaining int    `json:"injury_weeks_remaining"`
	InjuredOn            string `json:"injured_on,omitempty"`
	Suspended            bool   `json:"suspended"`
	SuspensionRemaining  int    `json:"suspension_remaining"`
	SuspendedOn          string `json:"suspended_on,omitempty"`
	YellowCardsSeason    int    `json:"yellow_cards_season"`
	RedCardsSeason       int    `json:"red_cards_season"`

	SeasonStats   map[int]*SeasonStats `json:"season_stats"`
	InjuryHistory []InjuryRecord       `json:"injury_history,omitempty"`
	Awards        []string             `json:"awards,omitempty"`
}

// OverallRating is the positional blend of the five core attributes.
func (p *Player) OverallRating() int {
	var rating float64
	switch {
	case p.Position == PositionGK:
		rating = float64(p.Defending)*0.5 + float64(p.Physicality)*0.3 + float64(p.Passing)*0.2
	case p.Position.IsDefender():
		rating = float64(p.Defending)*0.4 + float64(p.Physicality)*0.25 + float64(p.Pace)*0.2 + float64(p.Passing)*0.15
	case p.Position.IsAttacking():
		rating = float64(p.Shooting)*0.35 + float64(p.Pace)*0.25 + float64(p.Passing)*0.25 + float64(p.Physicality)*0.15
	default:
		rating = float64(p.Passing)*0.35 + float64(p.Shooting)*0.2 + float64(p.Pace)*0.2 + float64(p.Defending)*0.15 + float64(p.Physicality)*0.1
	}
	return clampInt(int(rating+0.5), 1, 99)
}

// StatsFor returns the mutable season aggregate, creating it on first use.
func (p *Player) StatsFor(season int) *SeasonStats {
	if p.SeasonStats == nil {
		p.SeasonStats = make(map[int]*SeasonStats)
	}
	stats, ok := p.SeasonStats[season]
	if !ok {
		stats = &SeasonStats{}
		p.SeasonStats[season] = stats
	}
	return stats
}

// SetForm and friends clamp to the declared soft-state ranges.
func (p *Player) SetForm(v int)    { p.Form = clampInt(v, 0, 100) }
func (p *Player) SetMorale(v int)  { p.Morale = clampInt(v, 0, 100) }
func (p *Player) SetFitness(v int) { p.Fitness = clampInt(v, 0, 100) }

// SetReputation clamps to [1,100]; the per-matchday delta cap is enforced by
// the soft-state validator, not here.
func (p *Player) SetReputation(v int) { p.Reputation = clampInt(v, 1, 100) }

// RaisePotential lifts potential to keep the invariant
// potential >= overall after attribute growth.
func (p *Player) RaisePotential() {
	if overall := p.OverallRating(); p.Potential < overall {
		p.Potential = overall
	}
}

func (p *Player) Available() bool {
	return !p.Injured && !p.Suspended
}

func (p *Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	for _, attr := range []struct {
		name  string
		value int
	}{
		{"pace", p.Pace}, {"shooting", p.Shooting}, {"passing", p.Passing},
		{"defending", p.Defending}, {"physicality", p.Physicality},
	} {
		if attr.value < 1 || attr.value > 99 {
			return fmt.Errorf("player %s attribute %s=%d out of [1,99]", p.ID, attr.name, attr.value)
		}
	}
	if p.WeakFoot < 1 || p.WeakFoot > 5 {
		return fmt.Errorf("player %s weak foot %d out of [1,5]", p.ID, p.WeakFoot)
	}
	if p.SkillMoves < 1 || p.SkillMoves > 5 {
		return fmt.Errorf("player %s skill moves %d out of [1,5]", p.ID, p.SkillMoves)
	}
	if overall := p.OverallRating(); p.Potential < overall {
		return fmt.Errorf("player %s potential %d below overall %d", p.ID, p.Potential, overall)
	}

	return nil
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

func roundToTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
