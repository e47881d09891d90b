package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/financaspro/financas/internal/metrics"
)

// Export reads every collection into one snapshot. Empty collections are
// present with an empty record list.
func (s *SQLite) Export(ctx context.Context) (snap Snapshot, err error) {
	defer func() { metrics.ObserveStore("export", "*", err) }()

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	snap = make(Snapshot, len(Collections))
	err = withTx(ctx, db, s.logger, func(tx *sql.Tx) error {
		for _, c := range Collections {
			var records []Record
			var err error
			if c == Settings {
				records, err = querySettings(ctx, tx)
			} else {
				records, err = queryRecords(ctx, tx, c)
			}
			if err != nil {
				return err
			}
			snap[c] = records
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Import replaces the contents of every collection that the snapshot carries
// with at least one record. Collections missing from the snapshot, or given as
// an empty list, keep their records. Unknown collection names are skipped. The
// whole import is one transaction.
func (s *SQLite) Import(ctx context.Context, snap Snapshot) (err error) {
	defer func() { metrics.ObserveStore("import", "*", err) }()

	db, err := s.conn()
	if err != nil {
		return err
	}

	for name := range snap {
		if !knownCollection(name) {
			s.logger.Warn("import skips unknown collection", "collection", name)
		}
	}

	return withTx(ctx, db, s.logger, func(tx *sql.Tx) error {
		for _, c := range Collections {
			records := snap[c]
			if len(records) == 0 {
				continue
			}
			if c == Settings {
				if err := importSettings(ctx, tx, records); err != nil {
					return err
				}
			} else if err := importRecords(ctx, tx, c, records); err != nil {
				return err
			}
			s.logger.Info("collection imported", "collection", c, "records", len(records))
		}
		return nil
	})
}

func importRecords(ctx context.Context, tx *sql.Tx, collection string, records []Record) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	for _, rec := range records {
		if _, err := insertRecord(ctx, tx, collection, rec, true); err != nil {
			return fmt.Errorf("import %s: %w", collection, err)
		}
	}
	return nil
}

func importSettings(ctx context.Context, tx *sql.Tx, records []Record) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	for _, rec := range records {
		key, _ := rec["key"].(string)
		if key == "" {
			return fmt.Errorf("import settings: record without key")
		}
		data, err := json.Marshal(rec["value"])
		if err != nil {
			return fmt.Errorf("import setting %q: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)", key, string(data)); err != nil {
			return fmt.Errorf("import setting %q: %w", key, err)
		}
	}
	return nil
}

// MarshalSnapshot renders snap as indented JSON.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

// UnmarshalSnapshot parses a snapshot produced by MarshalSnapshot. The
// document must be a JSON object. Members that are not arrays of objects are
// dropped, so Import leaves those collections untouched.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if members == nil {
		return nil, fmt.Errorf("parse snapshot: document is not an object")
	}

	snap := make(Snapshot, len(members))
	for name, raw := range members {
		var records []Record
		if err := json.Unmarshal(raw, &records); err != nil || records == nil {
			continue
		}
		snap[name] = records
	}
	return snap, nil
}
