package journal

import (
	"context"

	"rsimaster/internal/model"
)

// Store persists one JournalDay per calendar date. Implementations must
// make Save atomic (replace-on-write or a transaction) so that a crash
// mid-write never leaves a torn record. Read-modify-write sequencing is
// the Journal's responsibility: it assumes a single logical writer.
type Store interface {
	// Load returns the stored record for the date and whether it existed.
	Load(ctx context.Context, date string) (*model.JournalDay, bool, error)

	// Save atomically replaces the record for day.Date.
	Save(ctx context.Context, day *model.JournalDay) error

	Close() error
}
