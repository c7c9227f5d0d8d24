package paste

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/sundayezeilo/pastebin/internal/db/sqlc"
	"github.com/sundayezeilo/pastebin/internal/errx"
	"github.com/sundayezeilo/pastebin/internal/idgen"
)

const DefaultIDMaxRetries = 3

// querier is an internal interface that abstracts *db.Queries
type querier interface {
	CreatePaste(ctx context.Context, arg db.CreatePasteParams) (db.Paste, error)
	GetPasteByID(ctx context.Context, id string) (db.Paste, error)
	IncrementViewCount(ctx context.Context, id string) (db.Paste, error)
	IncrementViewCountIfAvailable(ctx context.Context, arg db.IncrementViewCountIfAvailableParams) (db.Paste, error)
}

type repo struct {
	q            querier
	ids          idgen.Generator
	idMaxRetries int
}

// RepositoryConfig holds configuration for the repository
type RepositoryConfig struct {
	IDGenerator  idgen.Generator
	IDMaxRetries int // attempts when a generated id collides (default: 3)
}

// NewRepository creates a PostgreSQL-backed Repository.
func NewRepository(q querier, config *RepositoryConfig) Repository {
	if config == nil {
		config = &RepositoryConfig{}
	}

	ids := config.IDGenerator
	if ids == nil {
		ids = idgen.NewBase62(idgen.DefaultBase62Length)
	}

	retries := config.IDMaxRetries
	if retries <= 0 {
		retries = DefaultIDMaxRetries
	}

	return &repo{
		q:            q,
		ids:          ids,
		idMaxRetries: retries,
	}
}

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time, nil
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func intPtr(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func toInt4(n *int) pgtype.Int4 {
	if n == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*n), Valid: true}
}

func toDomainPaste(x db.Paste) (Paste, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return Paste{}, err
	}

	return Paste{
		ID:        x.ID,
		Content:   x.Content,
		ExpiresAt: timePtr(x.ExpiresAt),
		MaxViews:  intPtr(x.MaxViews),
		ViewCount: int(x.ViewCount),
		CreatedAt: createdAt,
	}, nil
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case isIDUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	case isCheckViolation(err):
		return errx.E(op, errx.Invalid, err)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *repo) Create(ctx context.Context, p NewPaste) (Paste, error) {
	const op = "paste.repo.Create"

	for range r.idMaxRetries {
		id, err := r.ids.Generate()
		if err != nil {
			return Paste{}, errx.E(op, errx.Unavailable, err)
		}

		row, err := r.q.CreatePaste(ctx, db.CreatePasteParams{
			ID:        id,
			Content:   p.Content,
			ExpiresAt: toTimestamptz(p.ExpiresAt),
			MaxViews:  toInt4(p.MaxViews),
		})
		if err == nil {
			return r.toDomain(op, row)
		}

		err = mapRepoError(op, err)
		if !errx.Is(err, errx.Conflict) {
			return Paste{}, err
		}
	}

	return Paste{}, errx.E(op, errx.Unavailable,
		fmt.Errorf("could not generate unique id after %d attempts", r.idMaxRetries))
}

func (r *repo) GetByID(ctx context.Context, id string) (Paste, bool, error) {
	const op = "paste.repo.GetByID"

	row, err := r.q.GetPasteByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Paste{}, false, nil
	}
	if err != nil {
		return Paste{}, false, mapRepoError(op, err)
	}

	p, err := r.toDomain(op, row)
	if err != nil {
		return Paste{}, false, err
	}
	return p, true, nil
}

func (r *repo) IncrementViewCount(ctx context.Context, id string) (Paste, error) {
	const op = "paste.repo.IncrementViewCount"

	row, err := r.q.IncrementViewCount(ctx, id)
	if err != nil {
		return Paste{}, mapRepoError(op, err)
	}
	return r.toDomain(op, row)
}

func (r *repo) IncrementViewCountIfAvailable(ctx context.Context, id string, now time.Time) (Paste, bool, error) {
	const op = "paste.repo.IncrementViewCountIfAvailable"

	row, err := r.q.IncrementViewCountIfAvailable(ctx, db.IncrementViewCountIfAvailableParams{
		ID:  id,
		Now: pgtype.Timestamptz{Time: now, Valid: true},
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Paste{}, false, nil
	}
	if err != nil {
		return Paste{}, false, mapRepoError(op, err)
	}

	p, err := r.toDomain(op, row)
	if err != nil {
		return Paste{}, false, err
	}
	return p, true, nil
}

func (r *repo) toDomain(op string, row db.Paste) (Paste, error) {
	p, err := toDomainPaste(row)
	if err != nil {
		return Paste{}, errx.E(op, errx.Internal, err)
	}
	return p, nil
}
