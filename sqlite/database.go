package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hupe1980/entdb"
	"github.com/hupe1980/entdb/codec"
	"github.com/hupe1980/entdb/core"
	"github.com/hupe1980/entdb/ent"
	"github.com/hupe1980/entdb/query"
)

const schema = `
CREATE TABLE IF NOT EXISTS ents (
	id      INTEGER PRIMARY KEY,
	etype   TEXT NOT NULL,
	created INTEGER NOT NULL,
	updated INTEGER NOT NULL,
	data    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ents_etype ON ents(etype);

CREATE TABLE IF NOT EXISTS edge_refs (
	edge   TEXT NOT NULL,
	target INTEGER NOT NULL,
	src    INTEGER NOT NULL,
	PRIMARY KEY (edge, target, src)
);
CREATE INDEX IF NOT EXISTS idx_edge_refs_target ON edge_refs(target);
CREATE INDEX IF NOT EXISTS idx_edge_refs_src ON edge_refs(src);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Database is a persistent backend on an embedded SQLite file.
//
// Ents are stored codec-encoded alongside an edge_refs reverse-index table;
// insert and remove run inside SQL transactions, which is what makes the
// remove cascade atomic. The codec name is recorded in the meta table so
// existing files are self-describing.
type Database struct {
	mu     sync.Mutex // serializes mutations; reads go straight to the pool
	db     *sql.DB
	codec  codec.Codec
	logger *entdb.Logger
}

// Option configures the sqlite backend.
type Option func(*Database)

// WithCodec sets the codec used to encode ents. It only affects newly
// created database files; existing files select their recorded codec.
func WithCodec(c codec.Codec) Option {
	return func(db *Database) {
		if c != nil {
			db.codec = c
		}
	}
}

// WithLogger sets the logger used for mutation tracing.
func WithLogger(l *entdb.Logger) Option {
	return func(db *Database) {
		if l != nil {
			db.logger = l
		}
	}
}

// Open opens or creates a database file. Use ":memory:" for a throwaway
// in-process file.
func Open(path string, opts ...Option) (*Database, error) {
	if path == "" {
		return nil, errors.New("sqlite: database path cannot be empty")
	}

	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// One connection keeps ":memory:" databases coherent across the pool
	// and sidesteps writer contention on file databases.
	sdb.SetMaxOpenConns(1)

	db := &Database{
		db:     sdb,
		codec:  codec.Default,
		logger: entdb.NoopLogger(),
	}
	for _, opt := range opts {
		opt(db)
	}
	db.logger = db.logger.WithBackend("sqlite")

	if err := db.init(); err != nil {
		_ = sdb.Close()
		return nil, err
	}
	return db, nil
}

func (db *Database) init() error {
	if _, err := db.db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		return fmt.Errorf("sqlite: pragma: %w", err)
	}
	if _, err := db.db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: create schema: %w", err)
	}

	// Pin the codec the file was created with.
	var name string
	err := db.db.QueryRow(`SELECT value FROM meta WHERE key = 'codec'`).Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.db.Exec(`INSERT INTO meta (key, value) VALUES ('codec', ?)`, db.codec.Name()); err != nil {
			return fmt.Errorf("sqlite: record codec: %w", err)
		}
	case err != nil:
		return fmt.Errorf("sqlite: read codec: %w", err)
	default:
		c, ok := codec.ByName(name)
		if !ok {
			return fmt.Errorf("sqlite: unknown codec %q recorded in database", name)
		}
		db.codec = c
	}

	_, err = db.db.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('next_id', '1')`)
	if err != nil {
		return fmt.Errorf("sqlite: init allocator: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (db *Database) Close() error { return db.db.Close() }

// Get returns the live ent at id, or nil when none exists.
func (db *Database) Get(ctx context.Context, id core.ID) (*ent.Ent, error) {
	var data []byte
	err := db.db.QueryRowContext(ctx, `SELECT data FROM ents WHERE id = ?`, int64(id)).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, entdb.NewStoreError("get", err)
	}
	return db.decode(data)
}

// GetAll returns the live ents for the given ids, omitting the dead ones.
func (db *Database) GetAll(ctx context.Context, ids []core.ID) ([]*ent.Ent, error) {
	out := make([]*ent.Ent, 0, len(ids))
	for _, id := range ids {
		e, err := db.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// Insert stores e and returns its final id; see the Database contract.
func (db *Database) Insert(ctx context.Context, e *ent.Ent) (core.ID, error) {
	if e == nil {
		return core.Ephemeral, entdb.NewStoreError("insert", errors.New("sqlite: nil ent"))
	}

	e.ClearCache()

	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Ephemeral, entdb.NewStoreError("insert", err)
	}
	defer func() { _ = tx.Rollback() }()

	next, err := nextID(tx)
	if err != nil {
		return core.Ephemeral, entdb.NewStoreError("insert", err)
	}

	id := e.ID()
	if id.IsEphemeral() {
		id = core.ID(next)
		next++
	} else if uint64(id) >= next {
		next = uint64(id) + 1
	}

	now := time.Now()
	created := e.Created()
	if created.IsZero() {
		var prevCreated int64
		err := tx.QueryRow(`SELECT created FROM ents WHERE id = ?`, int64(id)).Scan(&prevCreated)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			created = now
		case err != nil:
			return core.Ephemeral, entdb.NewStoreError("insert", err)
		default:
			created = time.Unix(0, prevCreated).UTC()
		}
	}
	// Nonzero timestamps carried by the caller (snapshot restores) stick.
	updated := e.Updated()
	if updated.IsZero() {
		updated = now
	}

	stored := e.Clone()
	stored.SetID(id)
	stored.Stamp(created, updated)

	if err := upsert(tx, stored, db.codec); err != nil {
		return core.Ephemeral, entdb.NewStoreError("insert", err)
	}
	if err := setNextID(tx, next); err != nil {
		return core.Ephemeral, entdb.NewStoreError("insert", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Ephemeral, entdb.NewStoreError("insert", err)
	}

	e.SetID(id)
	e.Stamp(created, updated)

	db.logger.WithEnt(id).Debug("insert", "type", stored.Type())
	return id, nil
}

// Remove deletes the ent at id with an atomic cascade; the enclosing SQL
// transaction guarantees no partial state is ever committed.
func (db *Database) Remove(ctx context.Context, id core.ID) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return false, entdb.NewStoreError("remove", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRow(`SELECT 1 FROM ents WHERE id = ?`, int64(id)).Scan(&exists)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, entdb.NewStoreError("remove", err)
	}

	refs, err := referencers(tx, id)
	if err != nil {
		return false, entdb.NewStoreError("remove", err)
	}

	cascaded := 0
	for _, refID := range refs {
		if refID == id {
			continue
		}
		var data []byte
		if err := tx.QueryRow(`SELECT data FROM ents WHERE id = ?`, int64(refID)).Scan(&data); err != nil {
			return false, entdb.NewStoreError("remove", err)
		}
		referencer, err := db.decode(data)
		if err != nil {
			return false, err
		}
		if _, err := referencer.RemoveTarget(id); err != nil {
			return false, entdb.NewMutationError(refID, err)
		}
		if err := upsert(tx, referencer, db.codec); err != nil {
			return false, entdb.NewStoreError("remove", err)
		}
		cascaded++
	}

	if _, err := tx.Exec(`DELETE FROM ents WHERE id = ?`, int64(id)); err != nil {
		return false, entdb.NewStoreError("remove", err)
	}
	if _, err := tx.Exec(`DELETE FROM edge_refs WHERE src = ? OR target = ?`, int64(id), int64(id)); err != nil {
		return false, entdb.NewStoreError("remove", err)
	}
	if err := tx.Commit(); err != nil {
		return false, entdb.NewStoreError("remove", err)
	}

	db.logger.WithEnt(id).Debug("remove", "cascaded", cascaded)
	return true, nil
}

// FindAll loads candidates (narrowed by the type filter) and evaluates the
// query in process.
func (db *Database) FindAll(ctx context.Context, q *query.Query) ([]*ent.Ent, error) {
	if q == nil {
		q = query.New()
	}

	var (
		rows *sql.Rows
		err  error
	)
	if q.Type != "" {
		rows, err = db.db.QueryContext(ctx, `SELECT data FROM ents WHERE etype = ?`, q.Type)
	} else {
		rows, err = db.db.QueryContext(ctx, `SELECT data FROM ents`)
	}
	if err != nil {
		return nil, entdb.NewStoreError("find_all", err)
	}
	defer rows.Close()

	var results []*ent.Ent
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, entdb.NewStoreError("find_all", err)
		}
		e, err := db.decode(data)
		if err != nil {
			return nil, err
		}
		if q.Matches(e) {
			results = append(results, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, entdb.NewStoreError("find_all", err)
	}

	q.Sort(results)
	return q.Page(results), nil
}

func (db *Database) decode(data []byte) (*ent.Ent, error) {
	var e ent.Ent
	if err := db.codec.Unmarshal(data, &e); err != nil {
		return nil, entdb.NewStoreError("decode", err)
	}
	return &e, nil
}

// upsert writes the ent row and rebuilds its edge_refs rows.
func upsert(tx *sql.Tx, e *ent.Ent, c codec.Codec) error {
	data, err := c.Marshal(e)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT OR REPLACE INTO ents (id, etype, created, updated, data) VALUES (?, ?, ?, ?, ?)`,
		int64(e.ID()), e.Type(), e.Created().UnixNano(), e.Updated().UnixNano(), data,
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM edge_refs WHERE src = ?`, int64(e.ID())); err != nil {
		return err
	}
	for _, name := range e.EdgeNames() {
		ev, _ := e.Edge(name)
		for _, target := range ev.Targets() {
			_, err := tx.Exec(
				`INSERT INTO edge_refs (edge, target, src) VALUES (?, ?, ?)`,
				name, int64(target), int64(e.ID()),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// referencers returns the distinct ids of ents holding an edge to target.
func referencers(tx *sql.Tx, target core.ID) ([]core.ID, error) {
	rows, err := tx.Query(`SELECT DISTINCT src FROM edge_refs WHERE target = ? ORDER BY src`, int64(target))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.ID
	for rows.Next() {
		var src int64
		if err := rows.Scan(&src); err != nil {
			return nil, err
		}
		out = append(out, core.ID(src))
	}
	return out, rows.Err()
}

func nextID(tx *sql.Tx) (uint64, error) {
	var raw string
	if err := tx.QueryRow(`SELECT value FROM meta WHERE key = 'next_id'`).Scan(&raw); err != nil {
		return 0, err
	}
	var next uint64
	if _, err := fmt.Sscanf(raw, "%d", &next); err != nil {
		return 0, fmt.Errorf("corrupt next_id %q: %w", raw, err)
	}
	return next, nil
}

func setNextID(tx *sql.Tx, next uint64) error {
	_, err := tx.Exec(`UPDATE meta SET value = ? WHERE key = 'next_id'`, fmt.Sprintf("%d", next))
	return err
}
