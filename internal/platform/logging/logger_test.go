package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return fromZap(zap.New(core)), logs
}

func TestWithMatchScopesEveryEntry(t *testing.T) {
	logger, logs := observed()

	logger.WithMatch("premier_fantasy-s2025-md01-united_dragons-vs-city_phoenix").
		Warn("match aborted", "error", assert.AnError)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "premier_fantasy-s2025-md01-united_dragons-vs-city_phoenix", fields["match_id"])
	assert.Equal(t, assert.AnError.Error(), fields["error"])
}

func TestWithMatchdayCarriesSeasonAndMatchday(t *testing.T) {
	logger, logs := observed()

	logger.WithMatchday(2025, 7).WithLeague("la_fantasia").Info("matchday played")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 2025, fields["season"])
	assert.EqualValues(t, 7, fields["matchday"])
	assert.Equal(t, "la_fantasia", fields["league_id"])
}

func TestOddArgumentsNeverPanic(t *testing.T) {
	logger, logs := observed()

	logger.Info("dangling key", "seed")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "seed")
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("advance complete", "matches", 10)
		assert.NoError(t, logger.Sync())
	})
}
