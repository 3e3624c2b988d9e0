package team

import "fmt"

// FormResult is one entry in the recent-form FIFO.
type FormResult string

const (
	FormWin  FormResult = "W"
	FormDraw FormResult = "D"
	FormLoss FormResult = "L"

	recentFormLimit = 5
)

// Record is a W/D/L triple, used for head-to-head and home/away splits.
type Record struct {
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
}

// Finances is a club's money state. Mutated only by applied events.
type Finances struct {
	Balance        int64 `json:"balance"`
	MonthlyCosts   int64 `json:"monthly_costs"`
	TicketRevenue  int64 `json:"ticket_revenue"`
	SponsorRevenue int64 `json:"sponsor_revenue"`
}

// Stadium describes the home ground.
type Stadium struct {
	Name            string `json:"name"`
	Capacity        int    `json:"capacity"`
	TrainingQuality int    `json:"training_quality"`
}

// Team is one club inside a league. Counters are derived state rebuilt by
// event replay; the invariants Points = 3W+D, Played = W+D+L and
// GD = GF-GA must hold after every apply.
type Team struct {
	ID       string `json:"id"`
	LeagueID string `json:"league_id"`
	Name     string `json:"name"`
	Short    string `json:"short"`

	SquadIDs            []string `json:"squad_ids"`
	TacticalFamiliarity int      `json:"tactical_familiarity"`
	Morale              int      `json:"morale"`
	Reputation          int      `json:"reputation"`

	Finances Finances `json:"finances"`
	Stadium  Stadium  `json:"stadium"`

	Played       int `json:"played"`
	Wins         int `json:"wins"`
	Draws        int `json:"draws"`
	Losses       int `json:"losses"`
	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
	CleanSheets  int `json:"clean_sheets"`

	HomeRecord Record `json:"home_record"`
	AwayRecord Record `json:"away_record"`

	// CurrentStreak is positive while winning, negative while losing,
	// zero after a draw.
	CurrentStreak        int `json:"current_streak"`
	LongestWinningStreak int `json:"longest_winning_streak"`
	LongestLosingStreak  int `json:"longest_losing_streak"`

	RecentForm []FormResult       `json:"recent_form"`
	HeadToHead map[string]*Record `json:"head_to_head"`
}

func (t *Team) Points() int {
	return t.Wins*3 + t.Draws
}

func (t *Team) GoalDifference() int {
	return t.GoalsFor - t.GoalsAgainst
}

// RecordResult folds one finished match into every derived counter.
func (t *Team) RecordResult(opponentID string, goalsFor, goalsAgainst int, home bool) {
	t.Played++
	t.GoalsFor += goalsFor
	t.GoalsAgainst += goalsAgainst
	if goalsAgainst == 0 {
		t.CleanSheets++
	}

	var result FormResult
	switch {
	case goalsFor > goalsAgainst:
		result = FormWin
		t.Wins++
	case goalsFor < goalsAgainst:
		result = FormLoss
		t.Losses++
	default:
		result = FormDraw
		t.Draws++
	}

	split := &t.AwayRecord
	if home {
		split = &t.HomeRecord
	}
	switch result {
	case FormWin:
		split.Wins++
	case FormDraw:
		split.Draws++
	case FormLoss:
		split.Losses++
	}

	t.pushForm(result)
	t.updateStreak(result)
	t.updateHeadToHead(opponentID, result)
}

func (t *Team) pushForm(result FormResult) {
	t.RecentForm = append(t.RecentForm, result)
	if len(t.RecentForm) > recentFormLimit {
		t.RecentForm = t.RecentForm[len(t.RecentForm)-recentFormLimit:]
	}
}

func (t *Team) updateStreak(result FormResult) {
	switch result {
	case FormWin:
		if t.CurrentStreak >= 0 {
			t.CurrentStreak++
		} else {
			t.CurrentStreak = 1
		}
		if t.CurrentStreak > t.LongestWinningStreak {
			t.LongestWinningStreak = t.CurrentStreak
		}
	case FormLoss:
		if t.CurrentStreak <= 0 {
			t.CurrentStreak--
		} else {
			t.CurrentStreak = -1
		}
		if -t.CurrentStreak > t.LongestLosingStreak {
			t.LongestLosingStreak = -t.CurrentStreak
		}
	default:
		t.CurrentStreak = 0
	}
}

func (t *Team) updateHeadToHead(opponentID string, result FormResult) {
	if t.HeadToHead == nil {
		t.HeadToHead = make(map[string]*Record)
	}
	record, ok := t.HeadToHead[opponentID]
	if !ok {
		record = &Record{}
		t.HeadToHead[opponentID] = record
	}
	switch result {
	case FormWin:
		record.Wins++
	case FormDraw:
		record.Draws++
	default:
		record.Losses++
	}
}

// ResetSeasonCounters clears per-season derived state at rollover.
// Head-to-head and longest streaks persist across seasons.
func (t *Team) ResetSeasonCounters() {
	t.Played, t.Wins, t.Draws, t.Losses = 0, 0, 0, 0
	t.GoalsFor, t.GoalsAgainst, t.CleanSheets = 0, 0, 0
	t.HomeRecord, t.AwayRecord = Record{}, Record{}
	t.CurrentStreak = 0
	t.RecentForm = nil
}

func (t *Team) SetMorale(v int) {
	t.Morale = clampInt(v, 0, 100)
}

func (t *Team) SetReputation(v int) {
	t.Reputation = clampInt(v, 1, 100)
}

func (t *Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.LeagueID == "" {
		return fmt.Errorf("team league id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.Played != t.Wins+t.Draws+t.Losses {
		return fmt.Errorf("team %s played %d != W+D+L %d", t.ID, t.Played, t.Wins+t.Draws+t.Losses)
	}
	if len(t.RecentForm) > recentFormLimit {
		return fmt.Errorf("team %s recent form length %d exceeds %d", t.ID, len(t.RecentForm), recentFormLimit)
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
