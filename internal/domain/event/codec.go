package event

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
)

// ErrUnknownKind marks a kind tag the registry does not recognize. Replay
// treats it as fatal in strict mode and skips (with a log line) otherwise.
type ErrUnknownKind struct {
	KindTag string
}

func (e ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown event kind %q", e.KindTag)
}

var registry = map[string]func() Payload{
	KindWorldInitialized:  func() Payload { return &WorldInitialized{} },
	KindMatchScheduled:    func() Payload { return &MatchScheduled{} },
	KindMatchStarted:      func() Payload { return &MatchStarted{} },
	KindKickOff:           func() Payload { return &KickOff{} },
	KindGoal:              func() Payload { return &Goal{} },
	KindYellowCard:        func() Payload { return &YellowCard{} },
	KindRedCard:           func() Payload { return &RedCard{} },
	KindSubstitution:      func() Payload { return &Substitution{} },
	KindInjury:            func() Payload { return &Injury{} },
	KindCornerKick:        func() Payload { return &CornerKick{} },
	KindFoul:              func() Payload { return &Foul{} },
	KindFreeKick:          func() Payload { return &FreeKick{} },
	KindPenaltyAwarded:    func() Payload { return &PenaltyAwarded{} },
	KindOffside:           func() Payload { return &Offside{} },
	KindMatchEnded:        func() Payload { return &MatchEnded{} },
	KindMatchAborted:      func() Payload { return &MatchAborted{} },
	KindMatchdayAdvanced:  func() Payload { return &MatchdayAdvanced{} },
	KindSoftStateUpdated:  func() Payload { return &SoftStateUpdated{} },
	KindValidationFailed:  func() Payload { return &ValidationFailed{} },
	KindSeasonEnded:       func() Payload { return &SeasonEnded{} },
	KindMediaStory:        func() Payload { return &MediaStory{} },
	KindOwnerStatement:    func() Payload { return &OwnerStatement{} },
	KindHeadToHeadUpdated: func() Payload { return &HeadToHeadUpdated{} },
}

// KnownKind reports whether the registry can decode the given tag.
func KnownKind(kind string) bool {
	_, ok := registry[kind]
	return ok
}

// Kinds returns every registered kind tag. Test helper for codec coverage.
func Kinds() []string {
	out := make([]string, 0, len(registry))
	for kind := range registry {
		out = append(out, kind)
	}
	return out
}

// Encode serializes one payload to its stable JSON record.
func Encode(payload Payload) ([]byte, error) {
	data, err := sonic.ConfigStd.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", payload.Kind(), err)
	}
	return data, nil
}

// Decode rebuilds a payload from its kind tag and JSON record.
func Decode(kind string, data []byte) (Payload, error) {
	factory, ok := registry[kind]
	if !ok {
		return nil, ErrUnknownKind{KindTag: kind}
	}

	payload := factory()
	if err := sonic.ConfigStd.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", kind, err)
	}

	return payload, nil
}
