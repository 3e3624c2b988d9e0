package brain

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/world"
)

// ErrProviderUnavailable marks failures where the collaborator could not be
// reached at all: an open circuit, a transport error or a non-200 reply.
// Malformed content from a live server is not marked; that is the provider
// misbehaving, not missing.
var ErrProviderUnavailable = errors.New("soft-state provider unavailable")

// Phase tells the provider where in the matchday cycle it is being consulted.
type Phase string

const (
	PhasePreMatch  Phase = "pre_match"
	PhasePostMatch Phase = "post_match"
)

// Proposal is one suggested soft-state write. Nothing in a proposal is
// trusted: the validator clamps, caps and drops before anything reaches the
// world.
type Proposal struct {
	TargetKind string `json:"target_kind" validate:"required,oneof=player team owner staff"`
	TargetID   string `json:"target_id" validate:"required"`
	Field      string `json:"field" validate:"required"`
	Value      int    `json:"value"`
	Reason     string `json:"reason,omitempty"`
}

// MatchdayContext is what the provider may reason over beyond the world
// snapshot. Results is populated only in the post-match phase.
type MatchdayContext struct {
	Season   int
	Matchday int
	Date     string
	TeamIDs  []string
	Results  []*event.MatchEnded
}

// Provider is the soft-state collaborator contract. Implementations must be
// pure-output: same inputs, same proposals, no hidden state between calls.
type Provider interface {
	Propose(ctx context.Context, w *world.World, phase Phase, mc MatchdayContext) ([]Proposal, error)
}
