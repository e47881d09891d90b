package finance

import (
	"context"
	"fmt"

	"github.com/financaspro/financas/internal/store"
)

// Export returns a JSON backup of every collection.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	snap, err := s.store.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return store.MarshalSnapshot(snap)
}

// Import restores a backup produced by Export. Collections that are empty or
// absent in the backup keep their current records.
func (s *Service) Import(ctx context.Context, data []byte) error {
	snap, err := store.UnmarshalSnapshot(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.store.Import(ctx, snap); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	s.logger.Info("backup imported", "collections", len(snap))
	return nil
}

// Reset clears every collection.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.logger.Warn("all data cleared")
	return nil
}
