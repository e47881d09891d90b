package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/financaspro/financas/internal/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id INTEGER NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE TABLE IF NOT EXISTS sequences (
	collection TEXT PRIMARY KEY,
	last_id INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Options controls SQLite initialization.
type Options struct {
	Path   string
	Logger *slog.Logger
}

// SQLite is a RecordStore backed by a single SQLite file.
type SQLite struct {
	path   string
	logger *slog.Logger

	ready   chan struct{}
	db      *sql.DB
	initErr error
}

var _ RecordStore = (*SQLite)(nil)

// Open starts initializing the database at opts.Path in the background and
// returns immediately. Use Ready to wait for it.
func Open(opts Options) *SQLite {
	s := newSQLite(opts)
	go s.initialize()
	return s
}

// OpenReady opens the store and waits until it is ready.
func OpenReady(ctx context.Context, opts Options) (*SQLite, error) {
	s := Open(opts)
	if err := s.Ready(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func newSQLite(opts Options) *SQLite {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLite{
		path:   opts.Path,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

func (s *SQLite) initialize() {
	defer close(s.ready)

	db, err := openDB(s.path, s.logger)
	if err != nil {
		s.initErr = err
		s.logger.Error("record store initialization failed", "path", s.path, "err", err)
		return
	}
	s.db = db
	s.logger.Info("record store initialized", "path", s.path)
}

func openDB(path string, logger *slog.Logger) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("db path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one connection serializes every transaction
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Ready waits for initialization to finish.
func (s *SQLite) Ready(ctx context.Context) error {
	select {
	case <-s.ready:
		if s.initErr != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, s.initErr)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// conn returns the database handle without waiting.
func (s *SQLite) conn() (*sql.DB, error) {
	select {
	case <-s.ready:
		if s.initErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, s.initErr)
		}
		return s.db, nil
	default:
		return nil, fmt.Errorf("%w: initialization in progress", ErrStoreUnavailable)
	}
}

// Close waits for initialization and releases the database.
func (s *SQLite) Close() error {
	<-s.ready
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetAll returns the records of collection in id order. For the settings
// collection each record is {"key": ..., "value": ...}.
func (s *SQLite) GetAll(ctx context.Context, collection string) (records []Record, err error) {
	defer func() { metrics.ObserveStore("get_all", collection, err) }()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if collection == Settings {
		return querySettings(ctx, db)
	}
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	return queryRecords(ctx, db, collection)
}

// Get returns one record.
func (s *SQLite) Get(ctx context.Context, collection string, id int64) (rec Record, err error) {
	defer func() { metrics.ObserveStore("get", collection, err) }()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	var data string
	err = db.QueryRowContext(ctx, "SELECT data FROM records WHERE collection = ? AND id = ?", collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", collection, id, err)
	}
	return decodeRow(id, data)
}

// Add inserts rec. Without an id the next id of the collection is assigned;
// an explicit id that already exists fails with ErrWriteConflict.
func (s *SQLite) Add(ctx context.Context, collection string, rec Record) (id int64, err error) {
	defer func() { metrics.ObserveStore("add", collection, err) }()

	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	err = withTx(ctx, db, s.logger, func(tx *sql.Tx) error {
		var err error
		id, err = insertRecord(ctx, tx, collection, rec, false)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("record added", "collection", collection, "id", id)
	return id, nil
}

// Put inserts rec or replaces the record with the same id.
func (s *SQLite) Put(ctx context.Context, collection string, rec Record) (id int64, err error) {
	defer func() { metrics.ObserveStore("put", collection, err) }()

	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	err = withTx(ctx, db, s.logger, func(tx *sql.Tx) error {
		var err error
		id, err = insertRecord(ctx, tx, collection, rec, true)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("record stored", "collection", collection, "id", id)
	return id, nil
}

// Delete removes a record. Deleting a missing id is not an error.
func (s *SQLite) Delete(ctx context.Context, collection string, id int64) (err error) {
	defer func() { metrics.ObserveStore("delete", collection, err) }()

	db, err := s.conn()
	if err != nil {
		return err
	}
	if err := checkCollection(collection); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM records WHERE collection = ? AND id = ?", collection, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", collection, id, err)
	}
	s.logger.Debug("record deleted", "collection", collection, "id", id)
	return nil
}

// GetSetting returns the raw JSON value stored under key.
func (s *SQLite) GetSetting(ctx context.Context, key string) (value json.RawMessage, err error) {
	defer func() { metrics.ObserveStore("get", Settings, err) }()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	var data string
	err = db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get setting %q: %w", key, err)
	}
	return json.RawMessage(data), nil
}

// PutSetting stores value under key, replacing any previous value.
func (s *SQLite) PutSetting(ctx context.Context, key string, value any) (err error) {
	defer func() { metrics.ObserveStore("put", Settings, err) }()

	db, err := s.conn()
	if err != nil {
		return err
	}
	if key == "" {
		return errors.New("setting key is required")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}
	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, string(data)); err != nil {
		return fmt.Errorf("put setting %q: %w", key, err)
	}
	return nil
}

// Reset empties every collection and restarts id sequences.
func (s *SQLite) Reset(ctx context.Context) (err error) {
	defer func() { metrics.ObserveStore("reset", "*", err) }()

	db, err := s.conn()
	if err != nil {
		return err
	}
	err = withTx(ctx, db, s.logger, func(tx *sql.Tx) error {
		for _, table := range []string{"records", "sequences", "settings"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
		return nil
	})
	if err == nil {
		s.logger.Info("record store reset")
	}
	return err
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryRecords(ctx context.Context, q queryer, collection string) ([]Record, error) {
	rows, err := q.QueryContext(ctx, "SELECT id, data FROM records WHERE collection = ? ORDER BY id", collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var id int64
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		rec, err := decodeRow(id, data)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return records, nil
}

func querySettings(ctx context.Context, q queryer) ([]Record, error) {
	rows, err := q.QueryContext(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("scan settings: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(data), &value); err != nil {
			return nil, fmt.Errorf("decode setting %q: %w", key, err)
		}
		records = append(records, Record{"key": key, "value": value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return records, nil
}

func decodeRow(id int64, data string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record %d: %w", id, err)
	}
	if rec == nil {
		rec = Record{}
	}
	rec["id"] = id
	return rec, nil
}

// insertRecord writes rec inside tx. With replace=false an existing id is a
// conflict. Explicit ids advance the collection sequence so generated ids
// never collide with them.
func insertRecord(ctx context.Context, tx *sql.Tx, collection string, rec Record, replace bool) (int64, error) {
	var last int64
	err := tx.QueryRowContext(ctx, "SELECT last_id FROM sequences WHERE collection = ?", collection).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read sequence %s: %w", collection, err)
	}

	id, explicit := rec.ID()
	if v, present := rec["id"]; present && v != nil && !explicit {
		return 0, fmt.Errorf("%s: record id must be an integer", collection)
	}
	if !explicit {
		id = last + 1
	} else if !replace {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM records WHERE collection = ? AND id = ?)", collection, id).Scan(&exists); err != nil {
			return 0, fmt.Errorf("check %s %d: %w", collection, id, err)
		}
		if exists {
			return 0, fmt.Errorf("%s %d: %w", collection, id, ErrWriteConflict)
		}
	}

	stored := make(Record, len(rec)+1)
	for k, v := range rec {
		stored[k] = v
	}
	stored["id"] = id
	data, err := json.Marshal(stored)
	if err != nil {
		return 0, fmt.Errorf("encode %s record: %w", collection, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO records (collection, id, data) VALUES (?, ?, ?)", collection, id, string(data)); err != nil {
		return 0, fmt.Errorf("write %s %d: %w", collection, id, err)
	}
	if id > last {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO sequences (collection, last_id) VALUES (?, ?)", collection, id); err != nil {
			return 0, fmt.Errorf("advance sequence %s: %w", collection, err)
		}
	}
	return id, nil
}
