package engine

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/mraditya/leaguesim/internal/domain/player"
)

// ErrLineup marks a squad that cannot field a legal starting eleven. The
// orchestrator aborts only that match; other matches are unaffected.
var ErrLineup = errors.New("cannot form starting eleven")

const startingElevenSize = 11

// selectStartingEleven picks the eleven by overall rating subject to the
// position constraints: exactly one goalkeeper, at least three defenders, at
// least one forward. The rest of the available squad becomes the bench.
func selectStartingEleven(squad []*player.Player) (onField, bench []string, err error) {
	available := make([]*player.Player, 0, len(squad))
	for _, p := range squad {
		if p.Available() {
			available = append(available, p)
		}
	}
	if len(available) < startingElevenSize {
		return nil, nil, errors.Wrapf(ErrLineup, "only %d of %d players available", len(available), len(squad))
	}

	sort.Slice(available, func(i, j int) bool {
		a, b := available[i], available[j]
		if ra, rb := a.OverallRating(), b.OverallRating(); ra != rb {
			return ra > rb
		}
		return a.ID < b.ID
	})

	picked := make(map[string]bool, startingElevenSize)
	take := func(match func(*player.Player) bool, n int) int {
		taken := 0
		for _, p := range available {
			if taken == n {
				break
			}
			if !picked[p.ID] && match(p) {
				picked[p.ID] = true
				taken++
			}
		}
		return taken
	}

	if take(func(p *player.Player) bool { return p.Position == player.PositionGK }, 1) < 1 {
		return nil, nil, errors.Wrap(ErrLineup, "no available goalkeeper")
	}
	if got := take(func(p *player.Player) bool { return p.Position.IsDefender() }, 3); got < 3 {
		return nil, nil, errors.Wrapf(ErrLineup, "only %d available defenders, need 3", got)
	}
	if take(func(p *player.Player) bool { return p.Position.IsForward() }, 1) < 1 {
		return nil, nil, errors.Wrap(ErrLineup, "no available forward")
	}
	take(func(p *player.Player) bool { return p.Position != player.PositionGK }, startingElevenSize-len(picked))

	if len(picked) < startingElevenSize {
		return nil, nil, errors.Wrapf(ErrLineup, "only %d outfielders available to fill the eleven", len(picked)-1)
	}

	for _, p := range available {
		if picked[p.ID] {
			onField = append(onField, p.ID)
		} else {
			bench = append(bench, p.ID)
		}
	}
	return onField, bench, nil
}
