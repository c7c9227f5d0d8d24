package paste

import (
	"context"
	"time"
)

// Repository is the paste store. It owns persistence and id generation.
// Absence is reported through the bool results, not as an error.
type Repository interface {
	Create(ctx context.Context, p NewPaste) (Paste, error)
	GetByID(ctx context.Context, id string) (Paste, bool, error)
	// IncrementViewCount atomically adds one view and returns the updated
	// record. Concurrent callers each observe their own increment.
	IncrementViewCount(ctx context.Context, id string) (Paste, error)
	// IncrementViewCountIfAvailable adds one view only while the paste is
	// unexpired at now and below its cap, in a single atomic statement.
	IncrementViewCountIfAvailable(ctx context.Context, id string, now time.Time) (Paste, bool, error)
}
