package engine

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/match"
	"github.com/mraditya/leaguesim/internal/domain/player"
	"github.com/mraditya/leaguesim/internal/domain/team"
	"github.com/mraditya/leaguesim/internal/platform/rng"
)

// Per-minute event distribution. These are the shares of a resolved-event
// minute; tests assert the realized distribution stays within tolerance of
// these constants, so tune here, not inline.
const (
	BaseEventProbability = 0.40

	GoalShare         = 0.06
	FoulShare         = 0.25
	YellowCardShare   = 0.08
	RedCardShare      = 0.005
	SubstitutionShare = 0.06
	CornerShare       = 0.14
	FreeKickShare     = 0.15
	OffsideShare      = 0.05
	InjuryShare       = 0.015
	PenaltyShare      = 0.015
	IdleShare         = 0.175

	// PenaltyConversion is the chance an awarded penalty is scored.
	PenaltyConversion = 0.75

	// HomeAdvantage multiplies the home side's effective strength.
	HomeAdvantage = 1.10

	// ShotOnTargetFraction is the chance a non-goal attempt tests the keeper.
	ShotOnTargetFraction = 0.35

	DirectFreeKickShare    = 0.80
	DangerousFreeKickShare = 0.30

	matchMinutes     = 90
	maxSubstitutions = 3
	subsAllowedFrom  = 45
)

var eventKinds = []rng.Weighted{
	{Key: "goal", Weight: GoalShare},
	{Key: "foul", Weight: FoulShare},
	{Key: "yellow", Weight: YellowCardShare},
	{Key: "red", Weight: RedCardShare},
	{Key: "substitution", Weight: SubstitutionShare},
	{Key: "corner", Weight: CornerShare},
	{Key: "free_kick", Weight: FreeKickShare},
	{Key: "offside", Weight: OffsideShare},
	{Key: "injury", Weight: InjuryShare},
	{Key: "penalty", Weight: PenaltyShare},
	{Key: "idle", Weight: IdleShare},
}

// TeamInput is one side's immutable snapshot. The engine never mutates the
// team or players; all in-match state lives in the simulation.
type TeamInput struct {
	Team    *team.Team
	Players []*player.Player
}

type Input struct {
	Match *match.Match
	Home  TeamInput
	Away  TeamInput
	Seed  uint64
}

// Result is the ordered event stream for one match. Events ends with exactly
// one MatchEnded, also exposed as Ended for direct access.
type Result struct {
	Events []event.Payload
	Ended  *event.MatchEnded
}

// Simulate plays out one match from deterministic inputs. The same input
// always produces the same event stream. Errors are fatal to this match only.
func Simulate(in Input) (*Result, error) {
	if in.Match == nil {
		return nil, errors.New("engine: match is required")
	}
	if in.Match.Finished {
		return nil, errors.Newf("engine: match %s is already finished", in.Match.ID)
	}

	sim, err := newSimulation(in)
	if err != nil {
		return nil, err
	}
	return sim.run()
}

type matchState int

const (
	stateCreated matchState = iota
	stateKickedOff
	stateRunning
	stateEnded
)

var stateNames = map[matchState]string{
	stateCreated:   "created",
	stateKickedOff: "kicked_off",
	stateRunning:   "running",
	stateEnded:     "ended",
}

type simulation struct {
	in     Input
	stream *rng.Stream
	state  matchState
	minute int

	home *sideState
	away *sideState

	events     []event.Payload
	commentary []string

	possessionHomeMinutes int
}

type sideState struct {
	input   TeamInput
	players map[string]*player.Player

	onField []string
	bench   []string

	score    int
	subsUsed int
	stats    event.SideStats

	yellows   map[string]int
	sentOff   map[string]bool
	goals     map[string]int
	assists   map[string]int
	enteredAt map[string]int
	leftAt    map[string]int
}

func newSimulation(in Input) (*simulation, error) {
	home, err := newSideState(in.Home)
	if err != nil {
		return nil, errors.Wrapf(err, "home team %s", in.Home.Team.ID)
	}
	away, err := newSideState(in.Away)
	if err != nil {
		return nil, errors.Wrapf(err, "away team %s", in.Away.Team.ID)
	}

	return &simulation{
		in:     in,
		stream: rng.Derive(in.Seed, "match", in.Match.ID),
		home:   home,
		away:   away,
	}, nil
}

func newSideState(in TeamInput) (*sideState, error) {
	onField, bench, err := selectStartingEleven(in.Players)
	if err != nil {
		return nil, err
	}

	s := &sideState{
		input:     in,
		players:   make(map[string]*player.Player, len(in.Players)),
		onField:   onField,
		bench:     bench,
		yellows:   make(map[string]int),
		sentOff:   make(map[string]bool),
		goals:     make(map[string]int),
		assists:   make(map[string]int),
		enteredAt: make(map[string]int),
		leftAt:    make(map[string]int),
	}
	for _, p := range in.Players {
		s.players[p.ID] = p
	}
	return s, nil
}

func (s *simulation) transition(to matchState) error {
	legal := map[matchState]matchState{
		stateCreated:   stateKickedOff,
		stateKickedOff: stateRunning,
		stateRunning:   stateEnded,
	}
	if next, ok := legal[s.state]; !ok || next != to {
		return errors.Newf("engine: illegal transition %s -> %s in match %s",
			stateNames[s.state], stateNames[to], s.in.Match.ID)
	}
	s.state = to
	return nil
}

func (s *simulation) run() (*Result, error) {
	if err := s.transition(stateKickedOff); err != nil {
		return nil, err
	}
	s.emit(&event.MatchStarted{
		MatchID: s.in.Match.ID,
		Seed:    rng.Derive(s.in.Seed, "match", s.in.Match.ID, "id").Uint64(),
	})
	s.emit(&event.KickOff{InMatch: s.inMatch(0)})

	if err := s.transition(stateRunning); err != nil {
		return nil, err
	}

	for s.minute = 1; s.minute <= matchMinutes; s.minute++ {
		s.tickPossession()
		if !s.stream.Chance(s.eventProbability()) {
			continue
		}
		if err := s.resolveMinute(); err != nil {
			return nil, err
		}
	}

	if err := s.transition(stateEnded); err != nil {
		return nil, err
	}

	ended := s.buildMatchEnded()
	s.events = append(s.events, ended)
	return &Result{Events: s.events, Ended: ended}, nil
}

// eventProbability modulates the base rate by the combined strength of the
// two elevens, bounded so weak fixtures still produce football.
func (s *simulation) eventProbability() float64 {
	combined := s.home.strength() + s.away.strength()
	p := BaseEventProbability * (0.75 + combined/400)
	return math.Min(0.60, math.Max(0.20, p))
}

func (s *simulation) resolveMinute() error {
	idx := s.stream.Pick(eventKinds)
	if idx < 0 {
		return errors.Newf("engine: event distribution has no positive weight in match %s", s.in.Match.ID)
	}

	switch eventKinds[idx].Key {
	case "goal":
		s.resolveGoal(s.attackingSide(), false)
	case "foul":
		s.resolveFoul()
	case "yellow":
		s.resolveYellow()
	case "red":
		s.resolveRed()
	case "substitution":
		s.resolveSubstitution()
	case "corner":
		s.resolveCorner()
	case "free_kick":
		s.resolveFreeKick()
	case "offside":
		s.resolveOffside()
	case "injury":
		s.resolveInjury()
	case "penalty":
		s.resolvePenalty()
	case "idle":
		// Nothing noteworthy this minute.
	}
	return nil
}

// attackingSide picks which team is on the ball for an attacking event.
// Squaring the strengths sharpens the edge a stronger squad has over the
// raw rating gap, which is what separates title sides from mid-table ones.
func (s *simulation) attackingSide() *sideState {
	homeAttack := s.home.attackStrength() * HomeAdvantage
	awayAttack := s.away.attackStrength()
	homeAttack *= homeAttack
	awayAttack *= awayAttack
	if s.stream.Chance(homeAttack / (homeAttack + awayAttack)) {
		return s.home
	}
	return s.away
}

func (s *simulation) defendingSide() *sideState {
	if s.stream.Chance(0.5) {
		return s.home
	}
	return s.away
}

func (s *simulation) opponentOf(side *sideState) *sideState {
	if side == s.home {
		return s.away
	}
	return s.home
}

func (s *simulation) resolveGoal(attacking *sideState, penalty bool) {
	scorer := s.pickScorer(attacking, penalty)
	if scorer == "" {
		return
	}

	assist := ""
	if !penalty && s.stream.Chance(0.60) {
		assist = s.pickAssister(attacking, scorer)
	}

	attacking.score++
	attacking.stats.Shots++
	attacking.stats.ShotsOnTarget++
	attacking.goals[scorer]++
	if assist != "" {
		attacking.assists[assist]++
	}
	if penalty {
		attacking.stats.PenaltyGoals++
	}

	s.emit(&event.Goal{
		InMatch:  s.inMatch(s.minute),
		TeamID:   attacking.input.Team.ID,
		ScorerID: scorer,
		AssistID: assist,
		Penalty:  penalty,
	})
	s.say(goalLine(s.minute, attacking.players[scorer].Name, attacking.input.Team.Name, penalty))
}

// pickScorer restricts to attacking positions for 85% of samples, any
// outfielder otherwise, weighted by shooting + pace + form.
func (s *simulation) pickScorer(side *sideState, penalty bool) string {
	pool := side.onFieldPlayers(func(p *player.Player) bool { return p.Position.IsAttacking() })
	if penalty || len(pool) == 0 || !s.stream.Chance(0.85) {
		if outfield := side.onFieldPlayers(isOutfielder); len(outfield) > 0 {
			pool = outfield
		}
	}
	if len(pool) == 0 {
		return ""
	}

	weight := func(p *player.Player) float64 {
		return float64(p.Shooting + p.Pace + p.Form)
	}
	if penalty {
		weight = func(p *player.Player) float64 { return float64(p.Shooting) }
	}
	return s.pickPlayer(pool, weight)
}

func (s *simulation) pickAssister(side *sideState, scorer string) string {
	pool := side.onFieldPlayers(func(p *player.Player) bool {
		return isOutfielder(p) && p.ID != scorer
	})
	if len(pool) == 0 {
		return ""
	}
	return s.pickPlayer(pool, func(p *player.Player) float64 { return float64(p.Passing) })
}

func (s *simulation) resolveFoul() {
	side := s.defendingSide()
	pool := side.onFieldPlayers(isOutfielder)
	if len(pool) == 0 {
		return
	}
	offender := s.pickPlayer(pool, func(p *player.Player) float64 { return float64(100 - p.Defending) })

	severity := "soft"
	switch roll := s.stream.Float64(); {
	case roll < 0.10:
		severity = "dangerous"
	case roll < 0.40:
		severity = "hard"
	}

	side.stats.Fouls++
	s.emit(&event.Foul{
		InMatch:  s.inMatch(s.minute),
		TeamID:   side.input.Team.ID,
		PlayerID: offender,
		Severity: severity,
	})
}

func (s *simulation) resolveYellow() {
	side := s.defendingSide()
	pool := side.onFieldPlayers(isOutfielder)
	if len(pool) == 0 {
		return
	}
	offender := s.pickPlayer(pool, func(p *player.Player) float64 { return float64(100 - p.Morale) })

	if side.yellows[offender] >= 1 {
		s.sendOff(side, offender, "second bookable offence", true)
		return
	}

	side.yellows[offender]++
	side.stats.Yellows++
	s.emit(&event.YellowCard{
		InMatch:  s.inMatch(s.minute),
		TeamID:   side.input.Team.ID,
		PlayerID: offender,
		Reason:   "reckless challenge",
	})
	s.say(cardLine(s.minute, "Yellow card", side.players[offender].Name, side.input.Team.Name))
}

func (s *simulation) resolveRed() {
	side := s.defendingSide()
	pool := side.onFieldPlayers(isOutfielder)
	if len(pool) == 0 {
		return
	}
	offender := s.pickPlayer(pool, func(p *player.Player) float64 {
		return float64((100 - p.Morale) + (100 - p.Defending))
	})
	s.sendOff(side, offender, "serious foul play", false)
}

func (s *simulation) sendOff(side *sideState, playerID, reason string, secondYellow bool) {
	side.sentOff[playerID] = true
	side.leftAt[playerID] = s.minute
	side.removeFromField(playerID)
	side.stats.Reds++

	s.emit(&event.RedCard{
		InMatch:      s.inMatch(s.minute),
		TeamID:       side.input.Team.ID,
		PlayerID:     playerID,
		Reason:       reason,
		SecondYellow: secondYellow,
	})
	s.say(cardLine(s.minute, "RED CARD", side.players[playerID].Name, side.input.Team.Name))
}

func (s *simulation) resolveSubstitution() {
	side := s.defendingSide()
	s.trySubstitute(side)
}

// trySubstitute brings off the most tired outfielder for the strongest bench
// player. A no-op before minute 45, after three subs, or with an empty bench.
func (s *simulation) trySubstitute(side *sideState) {
	if s.minute < subsAllowedFrom || side.subsUsed >= maxSubstitutions {
		return
	}

	off := side.lowestFitnessOutfielder(s.minute)
	on := side.bestBenchOutfielder()
	if off == "" || on == "" {
		return
	}

	side.leftAt[off] = s.minute
	side.removeFromField(off)
	side.removeFromBench(on)
	side.onField = append(side.onField, on)
	side.enteredAt[on] = s.minute
	side.subsUsed++

	s.emit(&event.Substitution{
		InMatch:     s.inMatch(s.minute),
		TeamID:      side.input.Team.ID,
		PlayerOffID: off,
		PlayerOnID:  on,
	})
	s.say(subLine(s.minute, side.players[on].Name, side.players[off].Name, side.input.Team.Name))
}

func (s *simulation) resolveCorner() {
	side := s.attackingSide()
	side.stats.Corners++
	if s.stream.Chance(0.5) {
		side.stats.Shots++
		if s.stream.Chance(ShotOnTargetFraction) {
			side.stats.ShotsOnTarget++
		}
	}
	s.emit(&event.CornerKick{InMatch: s.inMatch(s.minute), TeamID: side.input.Team.ID})
	s.say(cornerLine(s.minute, side.input.Team.Name))
}

func (s *simulation) resolveFreeKick() {
	side := s.attackingSide()
	kickType := "indirect"
	if s.stream.Chance(DirectFreeKickShare) {
		kickType = "direct"
	}
	location := "safe"
	if s.stream.Chance(DangerousFreeKickShare) {
		location = "dangerous"
	}

	side.stats.FreeKicks++
	if kickType == "direct" && location == "dangerous" {
		side.stats.Shots++
		if s.stream.Chance(ShotOnTargetFraction) {
			side.stats.ShotsOnTarget++
		}
	}

	s.emit(&event.FreeKick{
		InMatch:  s.inMatch(s.minute),
		TeamID:   side.input.Team.ID,
		Type:     kickType,
		Location: location,
	})
	s.say(freeKickLine(s.minute, side.input.Team.Name, location))
}

func (s *simulation) resolveOffside() {
	side := s.attackingSide()
	pool := side.onFieldPlayers(func(p *player.Player) bool { return p.Position.IsForward() })
	if len(pool) == 0 {
		pool = side.onFieldPlayers(isOutfielder)
	}
	if len(pool) == 0 {
		return
	}
	caught := s.pickPlayer(pool, func(p *player.Player) float64 { return float64(p.Pace) })

	side.stats.Offsides++
	s.emit(&event.Offside{
		InMatch:  s.inMatch(s.minute),
		TeamID:   side.input.Team.ID,
		PlayerID: caught,
	})
	s.say(offsideLine(s.minute, side.players[caught].Name))
}

var injuryTypes = []string{
	"hamstring strain", "ankle sprain", "knee ligament damage",
	"muscle tear", "groin strain", "concussion",
}

func (s *simulation) resolveInjury() {
	side := s.defendingSide()
	if len(side.onField) == 0 {
		return
	}
	hurt := s.pickPlayer(side.onFieldAll(), func(p *player.Player) float64 {
		return 101 - currentFitness(side, p, s.minute)
	})

	severity, weeksOut := s.rollInjurySeverity()
	injuryType := injuryTypes[s.stream.IntN(len(injuryTypes))]

	side.leftAt[hurt] = s.minute
	side.removeFromField(hurt)

	s.emit(&event.Injury{
		InMatch:    s.inMatch(s.minute),
		TeamID:     side.input.Team.ID,
		PlayerID:   hurt,
		InjuryType: injuryType,
		Severity:   severity,
		WeeksOut:   weeksOut,
	})
	s.say(injuryLine(s.minute, side.players[hurt].Name, injuryType))

	// The injured player is replaced when a substitution is still possible.
	s.trySubstitute(side)
}

// rollInjurySeverity: minor 60% (1-2 weeks), moderate 30% (3-6), severe 10% (7-16).
func (s *simulation) rollInjurySeverity() (string, int) {
	switch roll := s.stream.Float64(); {
	case roll < 0.60:
		return "minor", s.stream.IntBetween(1, 2)
	case roll < 0.90:
		return "moderate", s.stream.IntBetween(3, 6)
	default:
		return "severe", s.stream.IntBetween(7, 16)
	}
}

func (s *simulation) resolvePenalty() {
	side := s.attackingSide()

	side.stats.Penalties++
	s.emit(&event.PenaltyAwarded{
		InMatch: s.inMatch(s.minute),
		TeamID:  side.input.Team.ID,
		Reason:  "foul in the penalty area",
	})
	s.say(penaltyLine(s.minute, side.input.Team.Name))

	if s.stream.Chance(PenaltyConversion) {
		s.resolveGoal(side, true)
		return
	}
	// Saved or wide; a penalty always counts as an attempt on goal.
	side.stats.Shots++
	side.stats.ShotsOnTarget++
	s.say(penaltyMissLine(s.minute, side.input.Team.Name))
}

// pickPlayer is the single actor-resolution pathway: weighted choice with
// deterministic lexicographic tie-breaks on player id.
func (s *simulation) pickPlayer(pool []*player.Player, weight func(*player.Player) float64) string {
	candidates := make([]rng.Weighted, 0, len(pool))
	for _, p := range pool {
		w := weight(p)
		if w <= 0 {
			w = 1
		}
		candidates = append(candidates, rng.Weighted{Key: p.ID, Weight: w})
	}
	idx := s.stream.Pick(candidates)
	if idx < 0 {
		return ""
	}
	return candidates[idx].Key
}

func (s *simulation) tickPossession() {
	homeStrength := s.home.strength() * HomeAdvantage
	awayStrength := s.away.strength()
	if s.stream.Chance(homeStrength / (homeStrength + awayStrength)) {
		s.possessionHomeMinutes++
	}
}

func (s *simulation) inMatch(minute int) event.InMatch {
	return event.InMatch{
		MatchID:   s.in.Match.ID,
		Minute:    minute,
		HomeScore: s.home.score,
		AwayScore: s.away.score,
	}
}

func (s *simulation) emit(payload event.Payload) {
	s.events = append(s.events, payload)
}

func (s *simulation) say(line string) {
	s.commentary = append(s.commentary, line)
}

func (s *simulation) buildMatchEnded() *event.MatchEnded {
	homePossession := int(math.Round(float64(s.possessionHomeMinutes) / matchMinutes * 100))
	s.home.stats.Possession = homePossession
	s.away.stats.Possession = 100 - homePossession

	ratings := make(map[string]float64)
	minutes := make(map[string]int)
	for _, side := range []*sideState{s.home, s.away} {
		conceded := s.opponentOf(side).score
		for id, played := range side.minutesPlayed() {
			minutes[id] = played
			ratings[id] = side.rating(id, conceded)
		}
	}

	return &event.MatchEnded{
		MatchID:       s.in.Match.ID,
		LeagueID:      s.in.Match.LeagueID,
		Season:        s.in.Match.Season,
		Matchday:      s.in.Match.Matchday,
		HomeTeamID:    s.home.input.Team.ID,
		AwayTeamID:    s.away.input.Team.ID,
		HomeScore:     s.home.score,
		AwayScore:     s.away.score,
		HomeStats:     s.home.stats,
		AwayStats:     s.away.stats,
		PlayerRatings: ratings,
		PlayerMinutes: minutes,
		Commentary:    s.commentary,
	}
}

// Side helpers.

func isOutfielder(p *player.Player) bool {
	return p.Position != player.PositionGK
}

func (s *sideState) onFieldPlayers(match func(*player.Player) bool) []*player.Player {
	out := make([]*player.Player, 0, len(s.onField))
	for _, id := range s.onField {
		if p := s.players[id]; p != nil && match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *sideState) onFieldAll() []*player.Player {
	return s.onFieldPlayers(func(*player.Player) bool { return true })
}

// strength is the mean overall rating of the current eleven, scaled down
// when the side plays short-handed.
func (s *sideState) strength() float64 {
	if len(s.onField) == 0 {
		return 1
	}
	sum := 0
	for _, id := range s.onField {
		sum += s.players[id].OverallRating()
	}
	mean := float64(sum) / float64(len(s.onField))
	return mean * float64(len(s.onField)) / startingElevenSize
}

// attackStrength blends shooting and pace over the current eleven with the
// squad's mean fitness; tired teams create less.
func (s *sideState) attackStrength() float64 {
	if len(s.onField) == 0 {
		return 1
	}
	attack, fitness := 0.0, 0.0
	for _, id := range s.onField {
		p := s.players[id]
		attack += float64(p.Shooting)*0.6 + float64(p.Pace)*0.4
		fitness += float64(p.Fitness)
	}
	attack /= float64(len(s.onField))
	fitness /= float64(len(s.onField))
	return attack * (0.7 + 0.3*fitness/100) * float64(len(s.onField)) / startingElevenSize
}

func (s *sideState) removeFromField(playerID string) {
	for i, id := range s.onField {
		if id == playerID {
			s.onField = append(s.onField[:i], s.onField[i+1:]...)
			return
		}
	}
}

func (s *sideState) removeFromBench(playerID string) {
	for i, id := range s.bench {
		if id == playerID {
			s.bench = append(s.bench[:i], s.bench[i+1:]...)
			return
		}
	}
}

// lowestFitnessOutfielder finds the most tired outfielder still on the
// pitch, ties broken by player id ascending.
func (s *sideState) lowestFitnessOutfielder(minute int) string {
	best, bestFitness := "", math.MaxFloat64
	for _, id := range sortedIDs(s.onField) {
		p := s.players[id]
		if !isOutfielder(p) {
			continue
		}
		if f := float64(currentFitness(s, p, minute)); f < bestFitness {
			best, bestFitness = id, f
		}
	}
	return best
}

func (s *sideState) bestBenchOutfielder() string {
	best, bestRating := "", -1
	for _, id := range sortedIDs(s.bench) {
		p := s.players[id]
		if !isOutfielder(p) || !p.Available() {
			continue
		}
		if r := p.OverallRating(); r > bestRating {
			best, bestRating = id, r
		}
	}
	return best
}

// currentFitness is the player's current fitness after in-match drain of
// half a point per minute on the pitch.
func currentFitness(s *sideState, p *player.Player, minute int) float64 {
	return float64(p.Fitness) - 0.5*float64(minute-s.enteredAt[p.ID])
}

func (s *sideState) minutesPlayed() map[string]int {
	out := make(map[string]int)
	for id, entered := range s.enteredAt {
		left := matchMinutes
		if at, ok := s.leftAt[id]; ok {
			left = at
		}
		if left > entered {
			out[id] = left - entered
		}
	}
	for _, id := range s.onField {
		if _, ok := out[id]; !ok {
			out[id] = matchMinutes
		}
	}
	for id, at := range s.leftAt {
		if _, entered := s.enteredAt[id]; entered {
			continue
		}
		if _, ok := out[id]; !ok && at > 0 {
			out[id] = at
		}
	}
	return out
}

// rating: base 6.0, +1.0 per goal, +0.5 per assist, -0.3 per yellow,
// -1.5 for a red, keeper clean sheet +1.0 / conceding >3 -1.0, form bonus
// up to +-1.0, fitness penalty up to -1.0. Clamped to [1.0,10.0].
func (s *sideState) rating(playerID string, conceded int) float64 {
	p := s.players[playerID]
	r := 6.0
	r += float64(s.goals[playerID]) * 1.0
	r += float64(s.assists[playerID]) * 0.5
	r -= float64(s.yellows[playerID]) * 0.3
	if s.sentOff[playerID] {
		r -= 1.5
	}
	if p.Position == player.PositionGK {
		if conceded == 0 {
			r += 1.0
		} else if conceded > 3 {
			r -= 1.0
		}
	}
	r += (float64(p.Form) - 50) / 50
	r -= (100 - float64(p.Fitness)) / 100

	r = math.Max(1.0, math.Min(10.0, r))
	return math.Round(r*10) / 10
}

func sortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
