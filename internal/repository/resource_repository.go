package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leolibre/leolibre-backend/internal/model"
)

// ResourceRepository handles reading resource data access.
type ResourceRepository struct {
	pool *pgxpool.Pool
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

// Create inserts a new reading resource.
func (r *ResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO reading_resources (club_id, title, author, biblio_ref, description, url, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		res.ClubID, res.Title, res.Author, res.BiblioRef, res.Description, res.URL, model.ResourceStatusActive,
	).Scan(&res.ID, &res.CreatedAt)
}

// GetByID retrieves an active resource by id.
func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*model.Resource, error) {
	res := &model.Resource{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, club_id, title, author, biblio_ref, description, url, status, created_at
		 FROM reading_resources WHERE id = $1 AND status = $2`,
		id, model.ResourceStatusActive,
	).Scan(&res.ID, &res.ClubID, &res.Title, &res.Author, &res.BiblioRef,
		&res.Description, &res.URL, &res.Status, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByClub retrieves a club's active resources with pagination.
func (r *ResourceRepository) ListByClub(ctx context.Context, clubID int64, limit, offset int) ([]model.Resource, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reading_resources WHERE club_id = $1 AND status = $2`,
		clubID, model.ResourceStatusActive,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, club_id, title, author, biblio_ref, description, url, status, created_at
		 FROM reading_resources
		 WHERE club_id = $1 AND status = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		clubID, model.ResourceStatusActive, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var resources []model.Resource
	for rows.Next() {
		var res model.Resource
		if err := rows.Scan(&res.ID, &res.ClubID, &res.Title, &res.Author, &res.BiblioRef,
			&res.Description, &res.URL, &res.Status, &res.CreatedAt); err != nil {
			return nil, 0, err
		}
		resources = append(resources, res)
	}
	return resources, total, rows.Err()
}

// SoftDelete marks a resource inactive.
func (r *ResourceRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reading_resources SET status = $1 WHERE id = $2 AND status = $3`,
		model.ResourceStatusInactive, id, model.ResourceStatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
