package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/mraditya/leaguesim/internal/app"
	"github.com/mraditya/leaguesim/internal/config"
	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/platform/logging"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	reset := fs.Bool("reset", false, "clear the event store before starting")
	seed := fs.Uint64("seed", 0, "override the world seed (only honored on an empty store)")
	dbPath := fs.String("db", "", "path to the event store database")
	matchdays := fs.Int("matchdays", 1, "number of matchdays to simulate")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return exitConfig
	}
	if *reset {
		cfg.ResetDB = true
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	seedOverridden := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedOverridden = true
		}
	})
	if seedOverridden {
		cfg.WorldSeed = *seed
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer logger.Sync()
	logging.SetDefault(logger)

	switch command {
	case "serve":
		return runServe(cfg, logger)
	case "simulate":
		return runSimulate(cfg, logger, *matchdays)
	case "test":
		return runSelfTest(cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q: valid commands are serve, simulate, test\n", command)
		return exitConfig
	}
}

func runServe(cfg config.Config, logger *logging.Logger) int {
	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return exitRuntime
	}
	defer application.Close()

	srv, err := application.HTTPServer()
	if err != nil {
		logger.Error("build http server", "error", err)
		return exitConfig
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
		return exitRuntime
	case <-signalCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return exitRuntime
	}

	logger.Info("http server stopped")
	return exitOK
}

func runSimulate(cfg config.Config, logger *logging.Logger, matchdays int) int {
	if matchdays < 1 {
		fmt.Fprintln(os.Stderr, "simulate: --matchdays must be >= 1")
		return exitConfig
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return exitRuntime
	}
	defer application.Close()

	for i := 0; i < matchdays; i++ {
		summary, err := application.Orchestrator.Advance(ctx)
		if err != nil {
			logger.Error("advance failed", "matchday", i+1, "error", err)
			return exitRuntime
		}
		logger.Info("matchday simulated",
			"season", summary.Season,
			"matchday", summary.Matchday,
			"matches_played", summary.MatchesPlayed,
			"matches_aborted", summary.MatchesAborted,
			"events_appended", summary.EventsAppended,
			"season_ended", summary.SeasonEnded)
	}

	return printTables(ctx, application)
}

func printTables(ctx context.Context, application *app.Application) int {
	summary, err := application.Projections.WorldSummary(ctx)
	if err != nil {
		application.Logger.Error("world summary failed", "error", err)
		return exitRuntime
	}

	out := make(map[string]any, len(summary.Leagues))
	for _, l := range summary.Leagues {
		rows, err := application.Projections.LeagueTable(ctx, l.ID)
		if err != nil {
			application.Logger.Error("league table failed", "league_id", l.ID, "error", err)
			return exitRuntime
		}
		out[l.ID] = rows
	}

	encoded, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
	if err != nil {
		application.Logger.Error("encode tables failed", "error", err)
		return exitRuntime
	}
	fmt.Println(string(encoded))
	return exitOK
}

// runSelfTest exercises the core determinism guarantee end to end: two
// fresh stores driven by the same seed must produce identical logs.
func runSelfTest(cfg config.Config, logger *logging.Logger) int {
	ctx := context.Background()
	tmp, err := os.MkdirTemp("", "leaguesim-selftest-*")
	if err != nil {
		logger.Error("create temp dir", "error", err)
		return exitRuntime
	}
	defer os.RemoveAll(tmp)

	const advances = 2
	var logs [2][]event.Envelope
	for i := range logs {
		runCfg := cfg
		runCfg.DBPath = filepath.Join(tmp, fmt.Sprintf("run%d.db", i))
		runCfg.ResetDB = false
		runCfg.LLMProvider = config.ProviderLocal

		application, err := app.New(ctx, runCfg, logging.NewNop())
		if err != nil {
			logger.Error("self-test bootstrap failed", "run", i, "error", err)
			return exitRuntime
		}
		for j := 0; j < advances; j++ {
			if _, err := application.Orchestrator.Advance(ctx); err != nil {
				logger.Error("self-test advance failed", "run", i, "error", err)
				application.Close()
				return exitRuntime
			}
		}
		logs[i], err = application.Store.ReadAll(ctx, true)
		application.Close()
		if err != nil {
			logger.Error("self-test read log failed", "run", i, "error", err)
			return exitRuntime
		}
	}

	if len(logs[0]) != len(logs[1]) {
		logger.Error("self-test failed: log lengths differ",
			"first", len(logs[0]), "second", len(logs[1]))
		return exitRuntime
	}
	for i := range logs[0] {
		a, errA := sonic.ConfigStd.Marshal(logs[0][i])
		b, errB := sonic.ConfigStd.Marshal(logs[1][i])
		if errA != nil || errB != nil || string(a) != string(b) {
			logger.Error("self-test failed: logs diverge", "sequence", logs[0][i].Sequence)
			return exitRuntime
		}
	}

	logger.Info("self-test passed",
		"seed", cfg.WorldSeed, "advances", advances, "events", len(logs[0]))
	return exitOK
}
