package eventlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/world"
	"github.com/mraditya/leaguesim/internal/platform/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "events.db"), logging.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testBatch(n int) []event.Envelope {
	ts := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]event.Envelope, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, event.Envelope{
			Timestamp: ts,
			Payload: &event.MediaStory{
				OutletID:  "the-fantasy-gazette",
				Headline:  "Transfer rumours swirl",
				StoryType: "rumour",
				Sentiment: "neutral",
			},
		})
	}
	return out
}

func TestAppendAssignsContiguousSequences(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.Append(ctx, testBatch(3))
	if err != nil {
		t.Fatalf("append first batch: %v", err)
	}
	second, err := store.Append(ctx, testBatch(2))
	if err != nil {
		t.Fatalf("append second batch: %v", err)
	}

	for i, env := range first {
		if env.Sequence != int64(i+1) {
			t.Fatalf("first batch item %d: sequence = %d, want %d", i, env.Sequence, i+1)
		}
	}
	if second[0].Sequence != 4 || second[1].Sequence != 5 {
		t.Fatalf("second batch sequences = %d, %d, want 4, 5", second[0].Sequence, second[1].Sequence)
	}
	if store.LastSequence() != 5 {
		t.Fatalf("last sequence = %d, want 5", store.LastSequence())
	}
}

func TestReadFromRoundTripsPayloads(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := &event.Goal{
		InMatch: event.InMatch{
			MatchID:   "premier_fantasy-s2025-md01-united_dragons-vs-city_phoenix",
			Minute:    23,
			HomeScore: 1,
		},
		TeamID:   "united_dragons",
		ScorerID: "united_dragons-p15",
		AssistID: "united_dragons-p12",
	}
	if _, err := store.Append(ctx, []event.Envelope{{
		Timestamp: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Payload:   want,
	}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := store.ReadAll(ctx, true)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("read %d events, want 1", len(got))
	}
	goal, ok := got[0].Payload.(*event.Goal)
	if !ok {
		t.Fatalf("payload type = %T, want *event.Goal", got[0].Payload)
	}
	if goal.MatchID != want.MatchID || goal.Minute != want.Minute || goal.ScorerID != want.ScorerID {
		t.Fatalf("round trip mismatch: got %+v want %+v", goal, want)
	}
}

func TestReadFromRespectsOffset(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Append(ctx, testBatch(5)); err != nil {
		t.Fatalf("append: %v", err)
	}

	var sequences []int64
	err := store.ReadFrom(ctx, 3, true, func(env event.Envelope) error {
		sequences = append(sequences, env.Sequence)
		return nil
	})
	if err != nil {
		t.Fatalf("read from 3: %v", err)
	}
	if len(sequences) != 3 || sequences[0] != 3 || sequences[2] != 5 {
		t.Fatalf("sequences = %v, want [3 4 5]", sequences)
	}
}

func TestUnknownKindStrictAndLenient(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Append(ctx, testBatch(2)); err != nil {
		t.Fatalf("append: %v", err)
	}
	// Forge a record written by a newer schema revision.
	if _, err := store.db.Exec(
		`INSERT INTO events (sequence, timestamp, kind, payload) VALUES (3, '2025-08-01T00:00:00Z', 'FutureKind', '{}')`,
	); err != nil {
		t.Fatalf("forge unknown record: %v", err)
	}
	store.last = 3

	err := store.ReadFrom(ctx, 1, true, func(event.Envelope) error { return nil })
	var corrupt *CorruptRecordError
	if !errors.As(err, &corrupt) {
		t.Fatalf("strict read error = %v, want CorruptRecordError", err)
	}
	if corrupt.Sequence != 3 || corrupt.Kind != "FutureKind" {
		t.Fatalf("corrupt record at sequence %d kind %q, want 3 FutureKind", corrupt.Sequence, corrupt.Kind)
	}

	var count int
	if err := store.ReadFrom(ctx, 1, false, func(event.Envelope) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("lenient read: %v", err)
	}
	if count != 2 {
		t.Fatalf("lenient read delivered %d events, want 2", count)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, _, err := store.LoadSnapshot(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("load on empty store: err = %v, want ErrNoSnapshot", err)
	}

	w := world.New()
	world.Genesis(w, 42)
	w.Season = 2025
	w.CurrentDate = time.Date(2025, 8, 9, 0, 0, 0, 0, time.UTC)

	if err := store.SaveSnapshot(ctx, 17, w); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	got, seq, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if seq != 17 {
		t.Fatalf("snapshot sequence = %d, want 17", seq)
	}
	if len(got.Teams) != len(w.Teams) || len(got.Players) != len(w.Players) {
		t.Fatalf("snapshot world has %d teams %d players, want %d %d",
			len(got.Teams), len(got.Players), len(w.Teams), len(w.Players))
	}
	if got.Season != 2025 {
		t.Fatalf("snapshot season = %d, want 2025", got.Season)
	}
}

func TestResetClearsEverything(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Append(ctx, testBatch(4)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.SaveSnapshot(ctx, 4, world.New()); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if store.LastSequence() != 0 {
		t.Fatalf("last sequence after reset = %d, want 0", store.LastSequence())
	}
	events, err := store.ReadAll(ctx, true)
	if err != nil {
		t.Fatalf("read after reset: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("read %d events after reset, want 0", len(events))
	}

	// Sequences restart from 1 on a reset log.
	batch, err := store.Append(ctx, testBatch(1))
	if err != nil {
		t.Fatalf("append after reset: %v", err)
	}
	if batch[0].Sequence != 1 {
		t.Fatalf("sequence after reset = %d, want 1", batch[0].Sequence)
	}
}
