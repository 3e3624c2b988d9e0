package event

import "time"

// Payload is one typed event variant. The kind tag doubles as the
// serialization discriminator, so it must never change once a log exists.
type Payload interface {
	Kind() string
}

// Envelope wraps a payload with its log position. Timestamps carry the
// simulated calendar date, never the wall clock, so replayed logs are
// byte-identical across runs.
type Envelope struct {
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Payload   Payload   `json:"payload"`
}

const (
	KindWorldInitialized  = "WorldInitialized"
	KindMatchScheduled    = "MatchScheduled"
	KindMatchStarted      = "MatchStarted"
	KindKickOff           = "KickOff"
	KindGoal              = "Goal"
	KindYellowCard        = "YellowCard"
	KindRedCard           = "RedCard"
	KindSubstitution      = "Substitution"
	KindInjury            = "Injury"
	KindCornerKick        = "CornerKick"
	KindFoul              = "Foul"
	KindFreeKick          = "FreeKick"
	KindPenaltyAwarded    = "PenaltyAwarded"
	KindOffside           = "Offside"
	KindMatchEnded        = "MatchEnded"
	KindMatchAborted      = "MatchAborted"
	KindMatchdayAdvanced  = "MatchdayAdvanced"
	KindSoftStateUpdated  = "SoftStateUpdated"
	KindValidationFailed  = "ValidationFailed"
	KindSeasonEnded       = "SeasonEnded"
	KindMediaStory        = "MediaStory"
	KindOwnerStatement    = "OwnerStatement"
	KindHeadToHeadUpdated = "HeadToHeadUpdated"
)

type WorldInitialized struct {
	Season  int      `json:"season"`
	Seed    uint64   `json:"seed"`
	Date    string   `json:"date"`
	Leagues []string `json:"leagues"`
}

func (WorldInitialized) Kind() string { return KindWorldInitialized }

type MatchScheduled struct {
	MatchID          string `json:"match_id"`
	LeagueID         string `json:"league_id"`
	Season           int    `json:"season"`
	Matchday         int    `json:"matchday"`
	HomeTeamID       string `json:"home_team_id"`
	AwayTeamID       string `json:"away_team_id"`
	Date             string `json:"date"`
	Weather          string `json:"weather"`
	Attendance       int    `json:"attendance"`
	AtmosphereRating int    `json:"atmosphere_rating"`
	Importance       string `json:"importance"`
}

func (MatchScheduled) Kind() string { return KindMatchScheduled }

type MatchStarted struct {
	MatchID string `json:"match_id"`
	Seed    uint64 `json:"seed"`
}

func (MatchStarted) Kind() string { return KindMatchStarted }

// InMatch is the shared body of minute-stamped match events.
type InMatch struct {
	MatchID   string `json:"match_id"`
	Minute    int    `json:"minute"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

type KickOff struct {
	InMatch
}

func (KickOff) Kind() string { return KindKickOff }

type Goal struct {
	InMatch
	TeamID   string `json:"team_id"`
	ScorerID string `json:"scorer_id"`
	AssistID string `json:"assist_id,omitempty"`
	Penalty  bool   `json:"penalty"`
}

func (Goal) Kind() string { return KindGoal }

type YellowCard struct {
	InMatch
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
}

func (YellowCard) Kind() string { return KindYellowCard }

type RedCard struct {
	InMatch
	TeamID       string `json:"team_id"`
	PlayerID     string `json:"player_id"`
	Reason       string `json:"reason"`
	SecondYellow bool   `json:"second_yellow"`
}

func (RedCard) Kind() string { return KindRedCard }

type Substitution struct {
	InMatch
	TeamID      string `json:"team_id"`
	PlayerOffID string `json:"player_off_id"`
	PlayerOnID  string `json:"player_on_id"`
}

func (Substitution) Kind() string { return KindSubstitution }

type Injury struct {
	InMatch
	TeamID     string `json:"team_id"`
	PlayerID   string `json:"player_id"`
	InjuryType string `json:"injury_type"`
	Severity   string `json:"severity"`
	WeeksOut   int    `json:"weeks_out"`
}

func (Injury) Kind() string { return KindInjury }

type CornerKick struct {
	InMatch
	TeamID string `json:"team_id"`
}

func (CornerKick) Kind() string { return KindCornerKick }

type Foul struct {
	InMatch
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
	Severity string `json:"severity"`
}

func (Foul) Kind() string { return KindFoul }

type FreeKick struct {
	InMatch
	TeamID string `json:"team_id"`
	// Type is "direct" or "indirect"; Location is "dangerous" or "safe".
	Type     string `json:"type"`
	Location string `json:"location"`
}

func (FreeKick) Kind() string { return KindFreeKick }

type PenaltyAwarded struct {
	InMatch
	TeamID string `json:"team_id"`
	Reason string `json:"reason"`
}

func (PenaltyAwarded) Kind() string { return KindPenaltyAwarded }

type Offside struct {
	InMatch
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
}

func (Offside) Kind() string { return KindOffside }

// SideStats is one team's summary line inside MatchEnded.
type SideStats struct {
	Possession    int `json:"possession"`
	Shots         int `json:"shots"`
	ShotsOnTarget int `json:"shots_on_target"`
	Corners       int `json:"corners"`
	Fouls         int `json:"fouls"`
	Offsides      int `json:"offsides"`
	FreeKicks     int `json:"free_kicks"`
	Penalties     int `json:"penalties"`
	PenaltyGoals  int `json:"penalty_goals"`
	Yellows       int `json:"yellows"`
	Reds          int `json:"reds"`
}

type MatchEnded struct {
	MatchID       string             `json:"match_id"`
	LeagueID      string             `json:"league_id"`
	Season        int                `json:"season"`
	Matchday      int                `json:"matchday"`
	HomeTeamID    string             `json:"home_team_id"`
	AwayTeamID    string             `json:"away_team_id"`
	HomeScore     int                `json:"home_score"`
	AwayScore     int                `json:"away_score"`
	HomeStats     SideStats          `json:"home_stats"`
	AwayStats     SideStats          `json:"away_stats"`
	PlayerRatings map[string]float64 `json:"player_ratings"`
	PlayerMinutes map[string]int     `json:"player_minutes"`
	Commentary    []string           `json:"commentary"`
}

func (MatchEnded) Kind() string { return KindMatchEnded }

type MatchAborted struct {
	MatchID string `json:"match_id"`
	Reason  string `json:"reason"`
}

func (MatchAborted) Kind() string { return KindMatchAborted }

// MatchdayAdvanced moves the calendar one week and triggers weekly
// recovery countdowns on apply.
type MatchdayAdvanced struct {
	Date    string   `json:"date"`
	Leagues []string `json:"leagues"`
}

func (MatchdayAdvanced) Kind() string { return KindMatchdayAdvanced }

type SoftStateUpdated struct {
	TargetKind string `json:"target_kind"`
	TargetID   string `json:"target_id"`
	Field      string `json:"field"`
	Value      int    `json:"value"`
	Reason     string `json:"reason,omitempty"`
}

func (SoftStateUpdated) Kind() string { return KindSoftStateUpdated }

type ValidationFailed struct {
	TargetKind string `json:"target_kind"`
	TargetID   string `json:"target_id"`
	Field      string `json:"field"`
	Value      int    `json:"value"`
	Reason     string `json:"reason"`
}

func (ValidationFailed) Kind() string { return KindValidationFailed }

type SeasonEnded struct {
	LeagueID         string `json:"league_id"`
	Season           int    `json:"season"`
	ChampionTeamID   string `json:"champion_team_id"`
	TopScorerID      string `json:"top_scorer_id"`
	TopScorerGoals   int    `json:"top_scorer_goals"`
	TopAssisterID    string `json:"top_assister_id"`
	TopAssisterCount int    `json:"top_assister_count"`
	BestKeeperID     string `json:"best_keeper_id"`
	CleanSheets      int    `json:"clean_sheets"`
}

func (SeasonEnded) Kind() string { return KindSeasonEnded }

type MediaStory struct {
	OutletID  string   `json:"outlet_id"`
	Headline  string   `json:"headline"`
	StoryType string   `json:"story_type"`
	Entities  []string `json:"entities,omitempty"`
	Sentiment string   `json:"sentiment"`
}

func (MediaStory) Kind() string { return KindMediaStory }

type OwnerStatement struct {
	OwnerID   string `json:"owner_id"`
	TeamID    string `json:"team_id"`
	Statement string `json:"statement"`
	Sentiment string `json:"sentiment"`
}

func (OwnerStatement) Kind() string { return KindOwnerStatement }

// HeadToHeadUpdated mirrors the incremental head-to-head maintenance for
// observers; team counters are updated by MatchEnded, not by this event.
type HeadToHeadUpdated struct {
	MatchID    string `json:"match_id"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	Result     string `json:"result"`
}

func (HeadToHeadUpdated) Kind() string { return KindHeadToHeadUpdated }
