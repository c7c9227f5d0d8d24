package paste

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sundayezeilo/pastebin/internal/errx"
	"github.com/sundayezeilo/pastebin/internal/metrics"
)

// maxTTLSeconds keeps now+ttl within time.Duration range.
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

// CreatePasteRequest represents the parameters for creating a new paste.
type CreatePasteRequest struct {
	Content    string
	TTLSeconds *int      // Optional: nil means the paste never expires
	MaxViews   *int      // Optional: nil means unlimited views
	Now        time.Time // Zero means the service clock
}

// ReadPasteRequest represents a single read of a paste.
type ReadPasteRequest struct {
	ID string
	// CountView consumes one unit of the view budget. Display-only reads,
	// such as the HTML preview page, leave it false.
	CountView bool
	Now       time.Time
}

// Service defines the business logic operations for pastes.
type Service interface {
	Create(ctx context.Context, req CreatePasteRequest) (Paste, error)
	Read(ctx context.Context, req ReadPasteRequest) (View, error)
}

// service implements the Service interface.
type service struct {
	repo    Repository
	now     func() time.Time
	lenient bool
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	Clock func() time.Time
	// LenientViewCap applies counted reads with a plain increment after the
	// availability check. Concurrent reads racing between the two calls may
	// then push the counter past MaxViews. The default applies the increment
	// conditionally and reports a lost race as unavailable.
	LenientViewCap bool
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	return &service{
		repo:    repo,
		now:     clock,
		lenient: config.LenientViewCap,
	}
}

// Create validates the request and persists a new paste.
func (s *service) Create(ctx context.Context, req CreatePasteRequest) (Paste, error) {
	const op = "paste.service.Create"

	if err := validateCreate(req); err != nil {
		return Paste{}, errx.E(op, errx.Invalid, err)
	}

	now := s.clock(req.Now)

	var expiresAt *time.Time
	if req.TTLSeconds != nil {
		t := now.Add(time.Duration(*req.TTLSeconds) * time.Second)
		expiresAt = &t
	}

	created, err := s.repo.Create(ctx, NewPaste{
		Content:   req.Content,
		ExpiresAt: expiresAt,
		MaxViews:  req.MaxViews,
	})
	if err != nil {
		return Paste{}, errx.Wrap(op, err)
	}

	metrics.PastesCreated.Inc()
	return created, nil
}

// Read fetches a paste and applies the access policy. Missing, expired and
// exhausted pastes all yield a NotFound error wrapping ErrUnavailable.
func (s *service) Read(ctx context.Context, req ReadPasteRequest) (View, error) {
	const op = "paste.service.Read"

	mode := metrics.ModeOf(req.CountView)

	if req.ID == "" {
		metrics.PasteReads.WithLabelValues(mode, metrics.OutcomeUnavailable).Inc()
		return View{}, errx.E(op, errx.NotFound, ErrUnavailable)
	}

	now := s.clock(req.Now)

	p, found, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		metrics.PasteReads.WithLabelValues(mode, metrics.OutcomeError).Inc()
		return View{}, errx.Wrap(op, err)
	}
	if !found {
		metrics.PasteReads.WithLabelValues(mode, metrics.OutcomeUnavailable).Inc()
		return View{}, errx.E(op, errx.NotFound, ErrUnavailable)
	}

	if err := p.Validate(); err != nil {
		metrics.PasteReads.WithLabelValues(mode, metrics.OutcomeError).Inc()
		return View{}, errx.E(op, errx.Internal, err)
	}

	decision := Evaluate(p, now, req.CountView)
	if !decision.Allow {
		metrics.PasteReads.WithLabelValues(mode, metrics.OutcomeUnavailable).Inc()
		return View{}, errx.E(op, errx.NotFound, ErrUnavailable)
	}

	if decision.Increment {
		updated, applied, err := s.increment(ctx, p.ID, now)
		if err != nil {
			metrics.PasteReads.WithLabelValues(mode, metrics.OutcomeError).Inc()
			return View{}, errx.Wrap(op, err)
		}
		if !applied {
			metrics.PasteReads.WithLabelValues(mode, metrics.OutcomeUnavailable).Inc()
			return View{}, errx.E(op, errx.NotFound, ErrUnavailable)
		}
		p = updated
	}

	metrics.PasteReads.WithLabelValues(mode, metrics.OutcomeServed).Inc()
	return newView(p), nil
}

func (s *service) increment(ctx context.Context, id string, now time.Time) (Paste, bool, error) {
	if s.lenient {
		p, err := s.repo.IncrementViewCount(ctx, id)
		if errx.Is(err, errx.NotFound) {
			return Paste{}, false, nil
		}
		return p, err == nil, err
	}
	return s.repo.IncrementViewCountIfAvailable(ctx, id, now)
}

func (s *service) clock(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}

func validateCreate(req CreatePasteRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return &ValidationError{Message: "content is required"}
	}
	if req.TTLSeconds != nil {
		if *req.TTLSeconds < 1 {
			return &ValidationError{Message: "ttl_seconds must be >= 1"}
		}
		if int64(*req.TTLSeconds) > maxTTLSeconds {
			return &ValidationError{Message: "ttl_seconds is too large"}
		}
	}
	if req.MaxViews != nil {
		if *req.MaxViews < 1 {
			return &ValidationError{Message: "max_views must be >= 1"}
		}
		if int64(*req.MaxViews) > math.MaxInt32 {
			return &ValidationError{Message: "max_views is too large"}
		}
	}
	return nil
}
