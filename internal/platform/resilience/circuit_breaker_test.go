package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	})

	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	require.NoError(t, b.Allow(), "closed breaker must allow")

	b.RecordFailure()
	require.Equal(t, CircuitStateClosed, b.State(), "one failure stays closed")

	b.RecordFailure()
	require.Equal(t, CircuitStateOpen, b.State(), "threshold failures open the circuit")

	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	now = now.Add(6 * time.Second)
	require.NoError(t, b.Allow(), "half-open probe after the open timeout")
	require.Equal(t, CircuitStateHalfOpen, b.State())

	b.RecordSuccess()
	require.Equal(t, CircuitStateClosed, b.State(), "successful probe closes the circuit")
}
