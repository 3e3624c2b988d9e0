package usecase

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/mraditya/leaguesim/internal/brain"
	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/world"
)

// reputationDeltaCap bounds how far reputation may move per matchday,
// whatever the collaborator asks for.
const reputationDeltaCap = 5

// writableFields maps target kind to the soft-state fields the collaborator
// may write. Derived state (recent form, head-to-head, counters) is absent
// on purpose: proposals against it are dropped with a ValidationFailed.
var writableFields = map[string]map[string]bool{
	"player": {"form": true, "morale": true, "fitness": true, "reputation": true},
	"team":   {"morale": true, "reputation": true, "tactical_familiarity": true},
	"owner":  {"public_approval": true},
	"staff":  {"team_rapport": true},
}

// SoftStateValidator is the gate between collaborator output and the world.
// It never mutates anything itself; it turns proposals into SoftStateUpdated
// events the orchestrator appends and applies, and every denial into a
// ValidationFailed event so bad proposals stay observable.
type SoftStateValidator struct {
	validate *validator.Validate
}

func NewSoftStateValidator() *SoftStateValidator {
	return &SoftStateValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate processes a batch in stable (target-id, field) order so the
// resulting event sequence is deterministic regardless of how the
// collaborator ordered its output.
func (v *SoftStateValidator) Validate(w *world.World, proposals []brain.Proposal) ([]*event.SoftStateUpdated, []*event.ValidationFailed) {
	batch := append([]brain.Proposal(nil), proposals...)
	sort.SliceStable(batch, func(i, j int) bool {
		if batch[i].TargetID != batch[j].TargetID {
			return batch[i].TargetID < batch[j].TargetID
		}
		return batch[i].Field < batch[j].Field
	})

	var accepted []*event.SoftStateUpdated
	var rejected []*event.ValidationFailed
	for _, proposal := range batch {
		update, failure := v.check(w, proposal)
		if failure != nil {
			rejected = append(rejected, failure)
		}
		if update != nil {
			accepted = append(accepted, update)
		}
	}
	return accepted, rejected
}

func (v *SoftStateValidator) check(w *world.World, p brain.Proposal) (*event.SoftStateUpdated, *event.ValidationFailed) {
	if err := v.validate.Struct(p); err != nil {
		return nil, deny(p, fmt.Sprintf("malformed proposal: %v", err))
	}

	fields, ok := writableFields[p.TargetKind]
	if !ok {
		return nil, deny(p, fmt.Sprintf("unknown target kind %q", p.TargetKind))
	}
	if !fields[p.Field] {
		return nil, deny(p, fmt.Sprintf("field %q is not writable on %s", p.Field, p.TargetKind))
	}

	value := p.Value
	switch p.Field {
	case "reputation":
		current, ok := currentReputation(w, p.TargetKind, p.TargetID)
		if !ok {
			return nil, deny(p, fmt.Sprintf("unknown %s %q", p.TargetKind, p.TargetID))
		}
		value = capDelta(current, value, reputationDeltaCap)
		value = clamp(value, 1, 100)
	default:
		if !targetExists(w, p.TargetKind, p.TargetID) {
			return nil, deny(p, fmt.Sprintf("unknown %s %q", p.TargetKind, p.TargetID))
		}
		value = clamp(value, 0, 100)
	}

	update := &event.SoftStateUpdated{
		TargetKind: p.TargetKind,
		TargetID:   p.TargetID,
		Field:      p.Field,
		Value:      value,
		Reason:     p.Reason,
	}
	// Out-of-range proposals still apply at the clamped value, but the
	// original ask stays on the record.
	if value != p.Value {
		return update, deny(p, fmt.Sprintf("value %d out of range, clamped to %d", p.Value, value))
	}
	return update, nil
}

func deny(p brain.Proposal, reason string) *event.ValidationFailed {
	return &event.ValidationFailed{
		TargetKind: p.TargetKind,
		TargetID:   p.TargetID,
		Field:      p.Field,
		Value:      p.Value,
		Reason:     reason,
	}
}

func targetExists(w *world.World, kind, id string) bool {
	switch kind {
	case "player":
		_, ok := w.Players[id]
		return ok
	case "team":
		_, ok := w.Teams[id]
		return ok
	case "owner":
		_, ok := w.Owners[id]
		return ok
	case "staff":
		_, ok := w.Staff[id]
		return ok
	default:
		return false
	}
}

func currentReputation(w *world.World, kind, id string) (int, bool) {
	switch kind {
	case "player":
		if p, ok := w.Players[id]; ok {
			return p.Reputation, true
		}
	case "team":
		if t, ok := w.Teams[id]; ok {
			return t.Reputation, true
		}
	}
	return 0, false
}

func capDelta(current, proposed, limit int) int {
	if proposed > current+limit {
		return current + limit
	}
	if proposed < current-limit {
		return current - limit
	}
	return proposed
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
