// Package store is the local record store: named collections of JSON records
// with store-assigned integer ids, a key/value settings collection, and whole
// store export/import as a single JSON snapshot.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names.
const (
	Investments = "investments"
	History     = "history"
	Settings    = "settings"
	Scenarios   = "scenarios"
	Comments    = "comments"
	Incomes     = "receitas"
	Expenses    = "despesas"
)

// Collections lists every collection in export order.
var Collections = []string{Investments, History, Settings, Scenarios, Comments, Incomes, Expenses}

var (
	// ErrStoreUnavailable is returned while the store is not initialized, or
	// when initialization failed.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrWriteConflict is returned when an add targets an id that already exists.
	ErrWriteConflict = errors.New("write conflict")
	// ErrNotFound is returned by lookups of a single record or setting.
	ErrNotFound = errors.New("not found")
	// ErrUnknownCollection is returned for collection names outside Collections.
	ErrUnknownCollection = errors.New("unknown collection")
)

// Record is one stored JSON object. The "id" field holds the store key.
type Record map[string]any

// Snapshot maps a collection name to all of its records.
type Snapshot map[string][]Record

// RecordStore is what the rest of the application needs from storage.
type RecordStore interface {
	// Ready blocks until initialization has finished and returns its error.
	Ready(ctx context.Context) error
	GetAll(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, collection string, id int64) (Record, error)
	// Add inserts rec and returns its id. An id already present in rec is kept.
	Add(ctx context.Context, collection string, rec Record) (int64, error)
	// Put inserts or replaces rec.
	Put(ctx context.Context, collection string, rec Record) (int64, error)
	Delete(ctx context.Context, collection string, id int64) error
	GetSetting(ctx context.Context, key string) (json.RawMessage, error)
	PutSetting(ctx context.Context, key string, value any) error
	Export(ctx context.Context) (Snapshot, error)
	Import(ctx context.Context, snap Snapshot) error
	Reset(ctx context.Context) error
}

// ID returns the record's id when it holds a whole number.
func (r Record) ID() (int64, bool) {
	switch v := r["id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Encode turns v into a Record through its JSON form.
func Encode(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return rec, nil
}

// Decode fills v from rec through its JSON form.
func Decode(rec Record, v any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// DecodeAll decodes every record into a new T.
func DecodeAll[T any](records []Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var v T
		if err := Decode(rec, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func knownCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

func checkCollection(name string) error {
	if !knownCollection(name) {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	if name == Settings {
		return fmt.Errorf("%w: %q is keyed by name, use the setting methods", ErrUnknownCollection, name)
	}
	return nil
}
