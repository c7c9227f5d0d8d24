package paste

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is the single outcome reported for pastes that are missing,
// expired, or out of views. Callers cannot tell the three apart.
var ErrUnavailable = errors.New("paste unavailable")

// ValidationError rejects a create request. Its message is written for the
// client that sent the request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Paste is a stored text blob with optional expiration and view limits.
type Paste struct {
	ID        string
	Content   string
	ExpiresAt *time.Time // nil: never expires
	MaxViews  *int       // nil: unlimited
	ViewCount int
	CreatedAt time.Time
}

// NewPaste carries the fields a caller supplies at creation; the store
// assigns ID, ViewCount and CreatedAt.
type NewPaste struct {
	Content   string
	ExpiresAt *time.Time
	MaxViews  *int
}

// Validate checks the invariants every stored paste must satisfy.
func (p Paste) Validate() error {
	if p.ViewCount < 0 {
		return fmt.Errorf("paste %s: negative view count %d", p.ID, p.ViewCount)
	}
	if p.MaxViews != nil && *p.MaxViews < 1 {
		return fmt.Errorf("paste %s: non-positive max views %d", p.ID, *p.MaxViews)
	}
	return nil
}

// RemainingViews returns MaxViews-ViewCount, or nil when views are unlimited.
func (p Paste) RemainingViews() *int {
	if p.MaxViews == nil {
		return nil
	}
	n := max(*p.MaxViews-p.ViewCount, 0)
	return &n
}

// View is the read result handed to the boundary, shaped after any
// increment performed by the read.
type View struct {
	ID             string
	Content        string
	RemainingViews *int
	ExpiresAt      *time.Time
	ViewCount      int
}

func newView(p Paste) View {
	return View{
		ID:             p.ID,
		Content:        p.Content,
		RemainingViews: p.RemainingViews(),
		ExpiresAt:      p.ExpiresAt,
		ViewCount:      p.ViewCount,
	}
}
