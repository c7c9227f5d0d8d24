package paste

import "time"

// State is where a paste sits in its lifecycle at a given instant.
// Expired and Exhausted are terminal.
type State uint8

const (
	Active State = iota
	Expired
	Exhausted
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Expired:
		return "expired"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// StateAt reports the lifecycle state of p at now. Expiry is checked before
// the view budget.
func (p Paste) StateAt(now time.Time) State {
	if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
		return Expired
	}
	if p.MaxViews != nil && p.ViewCount >= *p.MaxViews {
		return Exhausted
	}
	return Active
}

// Decision is the outcome of Evaluate. The policy never mutates a paste;
// when Increment is set the caller applies it through the store.
type Decision struct {
	Allow     bool
	Increment bool
	State     State
}

// Evaluate decides whether a read of p at now is permitted and whether it
// consumes a view. Denial is a normal outcome, not an error.
func Evaluate(p Paste, now time.Time, count bool) Decision {
	state := p.StateAt(now)
	if state != Active {
		return Decision{State: state}
	}
	return Decision{
		Allow:     true,
		Increment: count,
		State:     Active,
	}
}
