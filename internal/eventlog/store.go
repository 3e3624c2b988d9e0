package eventlog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/domain/world"
	"github.com/mraditya/leaguesim/internal/platform/logging"
	qb "github.com/mraditya/leaguesim/internal/platform/querybuilder"
)

// ErrNoSnapshot is returned by LoadSnapshot when no snapshot has been taken.
var ErrNoSnapshot = errors.New("no snapshot")

// CorruptRecordError names the exact log position that failed to decode so
// operators can inspect the row instead of guessing.
type CorruptRecordError struct {
	Sequence int64
	Kind     string
	Err      error
}

func (e *CorruptRecordError) Error() string {
	return errors.Wrapf(e.Err, "corrupt event record at sequence %d (kind %q)", e.Sequence, e.Kind).Error()
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }

const schema = `CREATE TABLE IF NOT EXISTS events (
	sequence  INTEGER PRIMARY KEY,
	timestamp TEXT    NOT NULL,
	kind      TEXT    NOT NULL,
	payload   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_kind ON events (kind, sequence);

CREATE TABLE IF NOT EXISTS snapshots (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	sequence INTEGER NOT NULL,
	taken_at TEXT    NOT NULL,
	world    TEXT    NOT NULL
);`

// Store is the append-only event log backed by SQLite. Appends are batched
// and atomic; sequences are assigned here, contiguously from 1, and are never
// reused. A single writer is assumed (SetMaxOpenConns(1) enforces it at the
// connection level too).
type Store struct {
	db     *sqlx.DB
	logger *logging.Logger

	mu   sync.Mutex
	last int64
}

func Open(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create event log dir")
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite event log")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init event log schema")
	}

	var last int64
	if err := db.Get(&last, `SELECT COALESCE(MAX(sequence), 0) FROM events`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "read last sequence")
	}

	logger.Info("event log opened", "path", path, "last_sequence", last)
	return &Store{db: db, logger: logger, last: last}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LastSequence returns the highest sequence persisted so far, 0 when empty.
func (s *Store) LastSequence() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Append stamps the batch with contiguous sequences after the current tail
// and writes every record in one transaction. Either the whole batch lands
// or none of it does.
func (s *Store) Append(ctx context.Context, batch []event.Envelope) ([]event.Envelope, error) {
	if len(batch) == 0 {
		return batch, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	insert := qb.InsertInto("events").Columns("sequence", "timestamp", "kind", "payload")
	next := s.last
	for i := range batch {
		next++
		batch[i].Sequence = next
		batch[i].Kind = batch[i].Payload.Kind()

		data, err := event.Encode(batch[i].Payload)
		if err != nil {
			return nil, errors.Wrapf(err, "append batch item %d", i)
		}
		insert.Values(batch[i].Sequence, batch[i].Timestamp.UTC().Format(time.RFC3339), batch[i].Kind, string(data))
	}

	query, args, err := insert.ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build append query")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin append tx")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "insert event batch")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit event batch")
	}

	s.last = next
	return batch, nil
}

type eventRow struct {
	Sequence  int64  `db:"sequence"`
	Timestamp string `db:"timestamp"`
	Kind      string `db:"kind"`
	Payload   string `db:"payload"`
}

// ReadFrom streams every event with sequence >= from, in order, to fn. In
// strict mode an undecodable record aborts the read with a
// CorruptRecordError; otherwise unknown kinds are logged and skipped so old
// binaries can replay logs written by newer ones.
func (s *Store) ReadFrom(ctx context.Context, from int64, strict bool, fn func(event.Envelope) error) error {
	query, args, err := qb.Select("sequence", "timestamp", "kind", "payload").
		From("events").
		Where(qb.Expr("sequence >= ?", from)).
		OrderBy("sequence ASC").
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build read query")
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "select events")
	}
	defer rows.Close()

	for rows.Next() {
		var row eventRow
		if err := rows.StructScan(&row); err != nil {
			return errors.Wrap(err, "scan event row")
		}

		env, err := decodeRow(row)
		if err != nil {
			var unknown event.ErrUnknownKind
			if errors.As(err, &unknown) && !strict {
				s.logger.Warn("skipping unknown event kind",
					"sequence", row.Sequence, "kind", row.Kind)
				continue
			}
			return &CorruptRecordError{Sequence: row.Sequence, Kind: row.Kind, Err: err}
		}

		if err := fn(env); err != nil {
			return err
		}
	}
	return errors.Wrap(rows.Err(), "iterate events")
}

// ReadAll collects the full log into memory. Convenience for tests and the
// event query surface; replay paths should prefer ReadFrom.
func (s *Store) ReadAll(ctx context.Context, strict bool) ([]event.Envelope, error) {
	var out []event.Envelope
	err := s.ReadFrom(ctx, 1, strict, func(env event.Envelope) error {
		out = append(out, env)
		return nil
	})
	return out, err
}

func decodeRow(row eventRow) (event.Envelope, error) {
	payload, err := event.Decode(row.Kind, []byte(row.Payload))
	if err != nil {
		return event.Envelope{}, err
	}
	ts, err := time.Parse(time.RFC3339, row.Timestamp)
	if err != nil {
		return event.Envelope{}, errors.Wrap(err, "parse timestamp")
	}
	return event.Envelope{
		Sequence:  row.Sequence,
		Timestamp: ts,
		Kind:      row.Kind,
		Payload:   payload,
	}, nil
}

// SaveSnapshot persists the world as of the given sequence, replacing any
// previous snapshot. Snapshots are an optimization only; the log remains the
// source of truth.
func (s *Store) SaveSnapshot(ctx context.Context, sequence int64, w *world.World) error {
	data, err := sonic.ConfigStd.Marshal(w)
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}

	query, args, err := qb.InsertInto("snapshots").
		Columns("id", "sequence", "taken_at", "world").
		Values(1, sequence, w.CurrentDate.Format(world.DateLayout), string(data)).
		Suffix("ON CONFLICT (id) DO UPDATE SET sequence = excluded.sequence, taken_at = excluded.taken_at, world = excluded.world").
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build snapshot query")
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "write snapshot")
	}

	s.logger.Info("snapshot saved", "sequence", sequence)
	return nil
}

// LoadSnapshot returns the stored world and the sequence it reflects.
func (s *Store) LoadSnapshot(ctx context.Context) (*world.World, int64, error) {
	var row struct {
		Sequence int64  `db:"sequence"`
		World    string `db:"world"`
	}
	query, args, err := qb.Select("sequence", "world").
		From("snapshots").
		Where(qb.Eq("id", 1)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build snapshot query")
	}
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNoSnapshot
		}
		return nil, 0, errors.Wrap(err, "read snapshot")
	}

	w := world.New()
	if err := sonic.ConfigStd.Unmarshal([]byte(row.World), w); err != nil {
		return nil, 0, errors.Wrap(err, "decode snapshot")
	}
	return w, row.Sequence, nil
}

// Reset drops every event and snapshot. Used by --reset and the scenario
// runner; irreversible.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin reset tx")
	}
	for _, stmt := range []string{`DELETE FROM events`, `DELETE FROM snapshots`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "reset event log")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit reset")
	}

	s.last = 0
	s.logger.Info("event log reset")
	return nil
}
