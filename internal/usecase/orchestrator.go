package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/mraditya/leaguesim/internal/brain"
	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/match"
	"github.com/mraditya/leaguesim/internal/domain/world"
	"github.com/mraditya/leaguesim/internal/engine"
	"github.com/mraditya/leaguesim/internal/eventlog"
	"github.com/mraditya/leaguesim/internal/platform/cache"
	"github.com/mraditya/leaguesim/internal/platform/logging"
	"github.com/mraditya/leaguesim/internal/schedule"
)

const (
	defaultWorkerCount      = 10
	defaultSnapshotEvery    = 2000
	defaultSoftStateTimeout = 30 * time.Second

	// projectionCachePrefix scopes cached projections so an advance can
	// invalidate them all in one sweep.
	projectionCachePrefix = "proj:"
)

type OrchestratorConfig struct {
	Store            *eventlog.Store
	Provider         brain.Provider
	Logger           *logging.Logger
	Cache            *cache.Store
	Seed             uint64
	WorkerCount      int
	SnapshotEvery    int64
	StrictReplay     bool
	SoftStateTimeout time.Duration

	// OnAppend is invoked with each batch of persisted events, inside the
	// write critical section; implementations must not block.
	OnAppend func([]event.Envelope)
}

// Orchestrator owns the only write path into the world. Reads go through
// View under a reader lock; every mutation flows append-then-apply through
// the event log so the in-memory world never diverges from the history.
type Orchestrator struct {
	mu    sync.RWMutex
	world *world.World

	store     *eventlog.Store
	provider  brain.Provider
	validator *SoftStateValidator
	logger    *logging.Logger
	cache     *cache.Store

	seed             uint64
	workers          int
	snapshotEvery    int64
	strictReplay     bool
	softStateTimeout time.Duration
	onAppend         func([]event.Envelope)

	lastSnapshot int64
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	snapshotEvery := cfg.SnapshotEvery
	if snapshotEvery <= 0 {
		snapshotEvery = defaultSnapshotEvery
	}
	timeout := cfg.SoftStateTimeout
	if timeout <= 0 {
		timeout = defaultSoftStateTimeout
	}

	return &Orchestrator{
		world:            world.New(),
		store:            cfg.Store,
		provider:         cfg.Provider,
		validator:        NewSoftStateValidator(),
		logger:           logger,
		cache:            cfg.Cache,
		seed:             cfg.Seed,
		workers:          workers,
		snapshotEvery:    snapshotEvery,
		strictReplay:     cfg.StrictReplay,
		softStateTimeout: timeout,
		onAppend:         cfg.OnAppend,
	}
}

// Bootstrap initializes the world: genesis on an empty log, snapshot plus
// replay otherwise.
func (o *Orchestrator) Bootstrap(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "orchestrator.bootstrap")
	defer span.End()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.store.LastSequence() == 0 {
		return o.genesis(ctx)
	}
	return o.replay(ctx)
}

func (o *Orchestrator) genesis(ctx context.Context) error {
	season := world.GenesisSeason
	start := time.Date(season, time.August, 9, 0, 0, 0, 0, time.UTC)

	// A scratch world supplies the league list before the real genesis
	// event exists; both are pure functions of the seed.
	scratch := world.New()
	world.Genesis(scratch, o.seed)

	if _, err := o.appendAndApply(ctx, start, []event.Payload{&event.WorldInitialized{
		Season:  season,
		Seed:    o.seed,
		Date:    start.Format(world.DateLayout),
		Leagues: scratch.LeagueIDs(),
	}}); err != nil {
		return err
	}

	if err := o.scheduleSeason(ctx, season, start); err != nil {
		return err
	}

	o.logger.InfoContext(ctx, "world created",
		"seed", o.seed, "season", season,
		"leagues", len(o.world.Leagues), "teams", len(o.world.Teams), "players", len(o.world.Players))
	return nil
}

func (o *Orchestrator) scheduleSeason(ctx context.Context, season int, start time.Time) error {
	for _, leagueID := range o.world.LeagueIDs() {
		l := o.world.Leagues[leagueID]
		scheduled := schedule.Build(o.world, l, season, start)
		payloads := make([]event.Payload, 0, len(scheduled))
		for _, s := range scheduled {
			payloads = append(payloads, s)
		}
		if _, err := o.appendAndApply(ctx, start, payloads); err != nil {
			return errors.Wrapf(err, "schedule league %s season %d", leagueID, season)
		}
	}
	return nil
}

func (o *Orchestrator) replay(ctx context.Context) error {
	w, fromSeq, err := o.store.LoadSnapshot(ctx)
	if err != nil {
		if !errors.Is(err, eventlog.ErrNoSnapshot) {
			return errors.Wrap(err, "load snapshot")
		}
		w, fromSeq = world.New(), 0
	}
	o.world = w
	o.lastSnapshot = fromSeq

	replayed := 0
	err = o.store.ReadFrom(ctx, fromSeq+1, o.strictReplay, func(env event.Envelope) error {
		replayed++
		return errors.Wrapf(o.world.Apply(env), "replay sequence %d", env.Sequence)
	})
	if err != nil {
		return err
	}
	if err := o.world.Validate(); err != nil {
		return errors.Wrap(err, "replayed world failed validation")
	}

	o.logger.InfoContext(ctx, "world replayed",
		"snapshot_sequence", fromSeq, "events_replayed", replayed, "season", o.world.Season)
	return nil
}

// AdvanceSummary is what POST /v1/advance and the CLI report per call.
type AdvanceSummary struct {
	Status         string `json:"status"`
	Season         int    `json:"season"`
	Matchday       int    `json:"matchday"`
	Date           string `json:"date"`
	MatchesPlayed  int    `json:"matches_played"`
	MatchesAborted int    `json:"matches_aborted"`
	EventsAppended int    `json:"events_appended"`
	SeasonEnded    bool   `json:"season_ended"`
}

// Advance plays the current matchday across all leagues, then moves the
// calendar a week. Matches run in parallel on worker tasks; results are
// reordered canonically before appending, so the log is identical for a
// given seed no matter how workers interleave.
func (o *Orchestrator) Advance(ctx context.Context) (*AdvanceSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "orchestrator.advance")
	defer span.End()

	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.world.Leagues) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "world not bootstrapped")
	}

	before := o.store.LastSequence()
	summary := &AdvanceSummary{
		Status:   "ok",
		Season:   o.world.Season,
		Matchday: o.currentMatchday(),
		Date:     o.world.CurrentDate.Format(world.DateLayout),
	}

	pending := o.pendingFixtures()
	if len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.runSoftState(ctx, brain.PhasePreMatch, nil)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := o.simulateParallel(pending)
		if err != nil {
			return nil, err
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		finished, err := o.appendResults(ctx, pending, results, summary)
		if err != nil {
			return nil, err
		}

		o.runSoftState(ctx, brain.PhasePostMatch, finished)
		o.emitNarratives(ctx, finished)
	} else {
		summary.Status = "no_fixtures"
	}

	if err := o.advanceCalendar(ctx, summary); err != nil {
		return nil, err
	}
	if err := o.maybeSnapshot(ctx); err != nil {
		return nil, err
	}

	o.invalidateProjections(ctx)
	summary.EventsAppended = int(o.store.LastSequence() - before)
	return summary, nil
}

// currentMatchday is the lowest in-progress matchday across leagues.
func (o *Orchestrator) currentMatchday() int {
	current := 0
	for _, id := range o.world.LeagueIDs() {
		l := o.world.Leagues[id]
		if l.SeasonComplete() {
			continue
		}
		if current == 0 || l.CurrentMatchday < current {
			current = l.CurrentMatchday
		}
	}
	return current
}

// pendingFixtures collects the unfinished matches of every league's current
// matchday in canonical (league, home, away) order; league ids are sorted
// and fixtures are stored in scheduler order, which is already canonical.
func (o *Orchestrator) pendingFixtures() []*match.Match {
	var out []*match.Match
	for _, leagueID := range o.world.LeagueIDs() {
		l := o.world.Leagues[leagueID]
		if l.SeasonComplete() {
			continue
		}
		for _, matchID := range l.FixturesFor(l.CurrentMatchday) {
			if m, ok := o.world.Matches[matchID]; ok && !m.Finished {
				out = append(out, m)
			}
		}
	}
	return out
}

type simOutcome struct {
	result *engine.Result
	err    error
}

// simulateParallel fans the matchday out over an ants pool. Workers only
// read world state; nothing is appended or applied until every match is in
// and ordered.
func (o *Orchestrator) simulateParallel(pending []*match.Match) ([]simOutcome, error) {
	pool, err := ants.NewPool(o.workers)
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	outcomes := make([]simOutcome, len(pending))
	var wg sync.WaitGroup
	for i, m := range pending {
		i, m := i, m
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			result, simErr := engine.Simulate(engine.Input{
				Match: m,
				Home:  o.teamInput(m.HomeTeamID),
				Away:  o.teamInput(m.AwayTeamID),
				Seed:  o.world.Seed,
			})
			outcomes[i] = simOutcome{result: result, err: simErr}
		}); err != nil {
			wg.Done()
			return nil, errors.Wrap(err, "submit match to worker pool")
		}
	}
	wg.Wait()
	return outcomes, nil
}

func (o *Orchestrator) teamInput(teamID string) engine.TeamInput {
	t := o.world.Teams[teamID]
	return engine.TeamInput{Team: t, Players: o.world.SquadOf(t)}
}

// appendResults serializes the matchday in canonical order. An aborted
// match contributes a single MatchAborted record instead of its events and
// never blocks the rest of the matchday.
func (o *Orchestrator) appendResults(ctx context.Context, pending []*match.Match, outcomes []simOutcome, summary *AdvanceSummary) ([]*event.MatchEnded, error) {
	ts := o.world.CurrentDate
	var finished []*event.MatchEnded
	for i, m := range pending {
		if outcomes[i].err != nil {
			o.logger.WithMatch(m.ID).WarnContext(ctx, "match aborted", "error", outcomes[i].err)
			if _, err := o.appendAndApply(ctx, ts, []event.Payload{&event.MatchAborted{
				MatchID: m.ID,
				Reason:  outcomes[i].err.Error(),
			}}); err != nil {
				return nil, err
			}
			summary.MatchesAborted++
			continue
		}

		if _, err := o.appendAndApply(ctx, ts, outcomes[i].result.Events); err != nil {
			return nil, errors.Wrapf(err, "append match %s", m.ID)
		}
		ended := outcomes[i].result.Ended
		if _, err := o.appendAndApply(ctx, ts, []event.Payload{&event.HeadToHeadUpdated{
			MatchID:    ended.MatchID,
			HomeTeamID: ended.HomeTeamID,
			AwayTeamID: ended.AwayTeamID,
			Result:     resultTag(ended),
		}}); err != nil {
			return nil, err
		}
		finished = append(finished, ended)
		summary.MatchesPlayed++
	}
	return finished, nil
}

func resultTag(ended *event.MatchEnded) string {
	switch {
	case ended.HomeScore > ended.AwayScore:
		return "home_win"
	case ended.HomeScore < ended.AwayScore:
		return "away_win"
	default:
		return "draw"
	}
}

// runSoftState consults the collaborator and folds validated updates into
// the log. Collaborator failures degrade to empty updates plus a
// ValidationFailed marker; they never fail the advance.
func (o *Orchestrator) runSoftState(ctx context.Context, phase brain.Phase, results []*event.MatchEnded) {
	softCtx, cancel := context.WithTimeout(ctx, o.softStateTimeout)
	defer cancel()

	mc := brain.MatchdayContext{
		Season:   o.world.Season,
		Matchday: o.currentMatchday(),
		Date:     o.world.CurrentDate.Format(world.DateLayout),
		TeamIDs:  o.teamsPlayingToday(),
		Results:  results,
	}

	proposals, err := o.provider.Propose(softCtx, o.world, phase, mc)
	if err != nil {
		o.logger.WarnContext(ctx, "soft-state collaborator failed", "phase", string(phase), "error", err)
		if _, appendErr := o.appendAndApply(ctx, o.world.CurrentDate, []event.Payload{&event.ValidationFailed{
			TargetKind: "collaborator",
			TargetID:   string(phase),
			Reason:     err.Error(),
		}}); appendErr != nil {
			o.logger.ErrorContext(ctx, "record collaborator failure", "error", appendErr)
		}
		return
	}

	accepted, rejected := o.validator.Validate(o.world, proposals)
	o.logger.WithMatchday(o.world.Season, mc.Matchday).DebugContext(ctx, "soft-state proposals validated",
		"phase", string(phase), "accepted", len(accepted), "rejected", len(rejected))
	payloads := make([]event.Payload, 0, len(accepted)+len(rejected))
	for _, update := range accepted {
		payloads = append(payloads, update)
	}
	for _, failure := range rejected {
		payloads = append(payloads, failure)
	}
	if len(payloads) == 0 {
		return
	}
	if _, err := o.appendAndApply(ctx, o.world.CurrentDate, payloads); err != nil {
		o.logger.ErrorContext(ctx, "apply soft-state updates", "error", err)
	}
}

func (o *Orchestrator) teamsPlayingToday() []string {
	var out []string
	for _, m := range o.pendingFixtures() {
		out = append(out, m.HomeTeamID, m.AwayTeamID)
	}
	return out
}

// advanceCalendar closes the matchday: either the season ends (honours,
// rollover, fresh fixtures) or every unfinished league steps one matchday
// forward. Both paths move the date a week and trigger weekly recovery.
func (o *Orchestrator) advanceCalendar(ctx context.Context, summary *AdvanceSummary) error {
	nextDate := o.world.CurrentDate.AddDate(0, 0, 7).Format(world.DateLayout)

	if o.seasonFinished() {
		endedSeason := o.world.Season
		if err := o.endSeason(ctx); err != nil {
			return err
		}
		if _, err := o.appendAndApply(ctx, o.world.CurrentDate, []event.Payload{&event.MatchdayAdvanced{
			Date: nextDate,
		}}); err != nil {
			return err
		}
		if err := o.scheduleSeason(ctx, o.world.Season, o.world.CurrentDate); err != nil {
			return err
		}
		summary.SeasonEnded = true
		o.logger.InfoContext(ctx, "season rolled over",
			"ended_season", endedSeason, "new_season", o.world.Season)
		return nil
	}

	var advancing []string
	for _, id := range o.world.LeagueIDs() {
		if !o.world.Leagues[id].SeasonComplete() {
			advancing = append(advancing, id)
		}
	}
	_, err := o.appendAndApply(ctx, o.world.CurrentDate, []event.Payload{&event.MatchdayAdvanced{
		Date:    nextDate,
		Leagues: advancing,
	}})
	return err
}

// seasonFinished reports whether every league just played its final
// matchday to completion.
func (o *Orchestrator) seasonFinished() bool {
	for _, id := range o.world.LeagueIDs() {
		l := o.world.Leagues[id]
		if l.CurrentMatchday != l.TotalMatchdays {
			return false
		}
		for _, matchID := range l.FixturesFor(l.CurrentMatchday) {
			if m, ok := o.world.Matches[matchID]; ok && !m.Finished {
				return false
			}
		}
	}
	return len(o.world.Leagues) > 0
}

func (o *Orchestrator) endSeason(ctx context.Context) error {
	season := o.world.Season
	payloads := make([]event.Payload, 0, len(o.world.Leagues))
	for _, leagueID := range o.world.LeagueIDs() {
		payloads = append(payloads, o.seasonHonours(leagueID, season))
	}
	_, err := o.appendAndApply(ctx, o.world.CurrentDate, payloads)
	return err
}

func (o *Orchestrator) maybeSnapshot(ctx context.Context) error {
	last := o.store.LastSequence()
	if last-o.lastSnapshot < o.snapshotEvery {
		return nil
	}
	if err := o.store.SaveSnapshot(ctx, last, o.world); err != nil {
		return errors.Wrap(err, "save snapshot")
	}
	o.lastSnapshot = last
	return nil
}

func (o *Orchestrator) invalidateProjections(ctx context.Context) {
	if o.cache != nil {
		o.cache.DeletePrefix(ctx, projectionCachePrefix)
	}
}

// appendAndApply is the one pathway that touches both the log and the
// world: persist first, fold second. An apply failure after a successful
// append means the world and log disagree, which is fatal.
func (o *Orchestrator) appendAndApply(ctx context.Context, ts time.Time, payloads []event.Payload) ([]event.Envelope, error) {
	if len(payloads) == 0 {
		return nil, nil
	}

	envs := make([]event.Envelope, len(payloads))
	for i, payload := range payloads {
		envs[i] = event.Envelope{Timestamp: ts, Kind: payload.Kind(), Payload: payload}
	}

	envs, err := o.store.Append(ctx, envs)
	if err != nil {
		return nil, errors.Wrap(err, "append events")
	}
	for _, env := range envs {
		if err := o.world.Apply(env); err != nil {
			return nil, errors.Wrapf(err, "apply sequence %d", env.Sequence)
		}
	}

	if o.onAppend != nil {
		o.onAppend(envs)
	}
	return envs, nil
}

// View runs fn under the reader lock. fn must not retain the world.
func (o *Orchestrator) View(fn func(w *world.World) error) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return fn(o.world)
}

// ReadEvents streams the persisted log from the given sequence.
func (o *Orchestrator) ReadEvents(ctx context.Context, from int64, fn func(event.Envelope) error) error {
	return o.store.ReadFrom(ctx, from, o.strictReplay, fn)
}

func (o *Orchestrator) LastSequence() int64 {
	return o.store.LastSequence()
}

// Reset wipes the log and rebuilds the world from a fresh genesis.
func (o *Orchestrator) Reset(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.Reset(ctx); err != nil {
		return err
	}
	o.world = world.New()
	o.lastSnapshot = 0
	o.invalidateProjections(ctx)
	return o.genesis(ctx)
}
