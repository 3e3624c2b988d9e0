package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("sequence", "kind", "payload").
		From("events").
		Where(Expr("sequence >= ?", int64(10)), Eq("kind", "Goal")).
		OrderBy("sequence ASC").
		Limit(100).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT sequence, kind, payload FROM events WHERE sequence >= ? AND kind = ? ORDER BY sequence ASC LIMIT 100"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(10) || args[1] != "Goal" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("events").
		Columns("sequence", "kind", "payload").
		Values(int64(1), "WorldInitialized", `{"seed":42}`).
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO events (sequence, kind, payload) VALUES (?, ?, ?)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != int64(1) || args[1] != "WorldInitialized" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderUpsertSuffix(t *testing.T) {
	query, args, err := InsertInto("snapshots").
		Columns("id", "sequence", "world").
		Values(1, int64(500), `{"season":2025}`).
		Suffix("ON CONFLICT(id) DO UPDATE SET sequence = excluded.sequence, world = excluded.world").
		ToSQL()
	if err != nil {
		t.Fatalf("build upsert query: %v", err)
	}

	wantQuery := "INSERT INTO snapshots (id, sequence, world) VALUES (?, ?, ?) " +
		"ON CONFLICT(id) DO UPDATE SET sequence = excluded.sequence, world = excluded.world"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != 1 || args[1] != int64(500) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderRequiresTable(t *testing.T) {
	if _, _, err := Select("sequence").ToSQL(); err == nil {
		t.Fatal("expected an error for a select without a table")
	}
}
