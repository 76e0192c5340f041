package guidelines

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/guidesync/pkg/query"
	"github.com/JaimeStill/guidesync/pkg/repository"
)

const insertGuideline = `
	INSERT INTO guidelines(id, trust_name, title, description, medical_speciality, file_type, url, content, storage_key, page_count, tags, is_active, created_by, updated_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const updateGuideline = `
	UPDATE guidelines
	SET trust_name = $2, title = $3, description = $4, medical_speciality = $5, file_type = $6, url = $7, content = $8,
		storage_key = $9, page_count = $10, tags = $11, is_active = $12, updated_by = $13, updated_at = $14
	WHERE id = $1`

const selectTrusts = `
	SELECT DISTINCT trust_name FROM guidelines
	WHERE is_active
	ORDER BY trust_name`

type repo struct {
	db *sql.DB
}

// NewRepository creates a PostgreSQL-backed Store.
func NewRepository(db *sql.DB) Store {
	return &repo{db: db}
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (Guideline, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	g, err := repository.QueryOne(ctx, r.db, q, args, scanGuideline)
	if err != nil {
		return Guideline{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return g, nil
}

// Query runs the count and window statements concurrently.
func (r *repo) Query(ctx context.Context, q Query) ([]Guideline, int, error) {
	qb := q.apply(query.NewBuilder(projection, recentSort...))

	countSQL, countArgs := qb.BuildCount()
	pageSQL, pageArgs := qb.BuildPage(q.Page, q.Limit)

	var (
		total int
		items []Guideline
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.db.QueryRowContext(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count guidelines: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		items, err = repository.QueryMany(gctx, r.db, pageSQL, pageArgs, scanGuideline)
		if err != nil {
			return fmt.Errorf("query guidelines: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *repo) Insert(ctx context.Context, g Guideline) error {
	fileType, url, text, key := contentColumns(g.Content)

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(
			ctx, insertGuideline,
			g.ID,
			g.TrustName,
			g.Title,
			g.Description,
			string(g.Speciality),
			fileType,
			url,
			text,
			key,
			g.PageCount,
			pq.Array(g.Tags),
			g.IsActive,
			g.CreatedBy,
			g.UpdatedBy,
			g.CreatedAt,
			g.UpdatedAt,
		)
		return struct{}{}, err
	})

	return mapWriteError(err)
}

func (r *repo) Update(ctx context.Context, g Guideline) error {
	fileType, url, text, key := contentColumns(g.Content)

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx, updateGuideline,
			g.ID,
			g.TrustName,
			g.Title,
			g.Description,
			string(g.Speciality),
			fileType,
			url,
			text,
			key,
			g.PageCount,
			pq.Array(g.Tags),
			g.IsActive,
			g.UpdatedBy,
			g.UpdatedAt,
		)
	})

	return mapWriteError(err)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM guidelines WHERE id = $1",
			id,
		)
	})

	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) Trusts(ctx context.Context) ([]string, error) {
	trusts, err := repository.QueryMany(ctx, r.db, selectTrusts, nil, scanTrust)
	if err != nil {
		return nil, fmt.Errorf("query trusts: %w", err)
	}
	return trusts, nil
}

// mapWriteError reports a schema CHECK rejection as a validation failure.
func mapWriteError(err error) error {
	if repository.Code(err) == repository.CodeCheckViolation {
		return fmt.Errorf("%w: violates %s", ErrValidation, repository.Constraint(err))
	}
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}
