package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/clima-rs/internal/bulletin"
)

// Querier abstracts the subset of pgxpool.Pool used by BulletinRepository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// BulletinRepository stores bulletins in PostgreSQL.
type BulletinRepository struct {
	q Querier
}

// NewBulletinRepository constructs a BulletinRepository backed by the given pool.
func NewBulletinRepository(pool *pgxpool.Pool) *BulletinRepository {
	return &BulletinRepository{q: pool}
}

// NewBulletinRepositoryWithQuerier constructs a BulletinRepository with a custom Querier (for tests).
func NewBulletinRepositoryWithQuerier(q Querier) *BulletinRepository {
	return &BulletinRepository{q: q}
}

// List returns every bulletin, newest first.
func (r *BulletinRepository) List(ctx context.Context) ([]bulletin.Bulletin, error) {
	const q = `
		SELECT id, data, descricao, imagens_url, created_at
		FROM bulletins
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying bulletins: %w", err)
	}
	defer rows.Close()

	results := []bulletin.Bulletin{}
	for rows.Next() {
		var b bulletin.Bulletin
		if err := rows.Scan(&b.ID, &b.Date, &b.Description, &b.ImageURLs, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning bulletin row: %w", err)
		}
		results = append(results, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bulletin rows: %w", err)
	}

	return results, nil
}

// Get returns one bulletin or bulletin.ErrNotFound.
func (r *BulletinRepository) Get(ctx context.Context, id uuid.UUID) (*bulletin.Bulletin, error) {
	const q = `
		SELECT id, data, descricao, imagens_url, created_at
		FROM bulletins
		WHERE id = $1
	`

	var b bulletin.Bulletin
	err := r.q.QueryRow(ctx, q, id).Scan(&b.ID, &b.Date, &b.Description, &b.ImageURLs, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bulletin.ErrNotFound
		}
		return nil, fmt.Errorf("querying bulletin %s: %w", id, err)
	}

	return &b, nil
}

// Create validates in and inserts a new bulletin.
func (r *BulletinRepository) Create(ctx context.Context, in bulletin.Input) (*bulletin.Bulletin, error) {
	in, err := bulletin.Validate(in)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO bulletins (id, data, descricao, imagens_url, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	b := bulletin.Bulletin{
		ID:          uuid.New(),
		Date:        in.Date,
		Description: in.Description,
		ImageURLs:   in.ImageURLs,
	}
	if err := r.q.QueryRow(ctx, q, b.ID, b.Date, b.Description, b.ImageURLs).Scan(&b.CreatedAt); err != nil {
		return nil, fmt.Errorf("inserting bulletin: %w", err)
	}

	return &b, nil
}

// Update validates in, replaces the bulletin's content and refreshes created_at.
func (r *BulletinRepository) Update(ctx context.Context, id uuid.UUID, in bulletin.Input) (*bulletin.Bulletin, error) {
	in, err := bulletin.Validate(in)
	if err != nil {
		return nil, err
	}

	const q = `
		UPDATE bulletins
		SET data        = $2,
		    descricao   = $3,
		    imagens_url = $4,
		    created_at  = NOW()
		WHERE id = $1
		RETURNING created_at
	`

	b := bulletin.Bulletin{
		ID:          id,
		Date:        in.Date,
		Description: in.Description,
		ImageURLs:   in.ImageURLs,
	}
	if err := r.q.QueryRow(ctx, q, id, b.Date, b.Description, b.ImageURLs).Scan(&b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bulletin.ErrNotFound
		}
		return nil, fmt.Errorf("updating bulletin %s: %w", id, err)
	}

	return &b, nil
}

// Delete removes a bulletin.
func (r *BulletinRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM bulletins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting bulletin %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return bulletin.ErrNotFound
	}
	return nil
}
