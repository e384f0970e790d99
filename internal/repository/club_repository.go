package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leolibre/leolibre-backend/internal/model"
)

// ClubRepository handles club data access.
type ClubRepository struct {
	pool *pgxpool.Pool
}

// NewClubRepository creates a new ClubRepository.
func NewClubRepository(pool *pgxpool.Pool) *ClubRepository {
	return &ClubRepository{pool: pool}
}

// Create inserts a new club. The club code is generated server-side.
func (r *ClubRepository) Create(ctx context.Context, club *model.Club) error {
	club.Code = strings.ToUpper(uuid.New().String()[:8])
	return r.pool.QueryRow(ctx,
		`INSERT INTO clubs (code, name, description, is_private, is_academic, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		club.Code, club.Name, club.Description, club.IsPrivate, club.IsAcademic, model.ClubStatusActive,
	).Scan(&club.ID, &club.CreatedAt)
}

// GetByID retrieves an active club by id.
func (r *ClubRepository) GetByID(ctx context.Context, id int64) (*model.Club, error) {
	c := &model.Club{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, description, is_private, is_academic, status, created_at
		 FROM clubs WHERE id = $1 AND status = $2`, id, model.ClubStatusActive,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.IsPrivate, &c.IsAcademic, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List retrieves active clubs with pagination.
func (r *ClubRepository) List(ctx context.Context, limit, offset int) ([]model.Club, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM clubs WHERE status = $1`, model.ClubStatusActive,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, description, is_private, is_academic, status, created_at
		 FROM clubs
		 WHERE status = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, model.ClubStatusActive, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clubs []model.Club
	for rows.Next() {
		var c model.Club
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.IsPrivate, &c.IsAcademic, &c.Status, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		clubs = append(clubs, c)
	}
	return clubs, total, rows.Err()
}

// Update modifies club fields. Only non-zero request fields are applied.
func (r *ClubRepository) Update(ctx context.Context, id int64, req *model.UpdateClubRequest) error {
	club, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if req.Name != "" {
		club.Name = req.Name
	}
	if req.Description != "" {
		club.Description = req.Description
	}
	if req.IsPrivate != nil {
		club.IsPrivate = *req.IsPrivate
	}
	if req.IsAcademic != nil {
		club.IsAcademic = *req.IsAcademic
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE clubs SET name = $1, description = $2, is_private = $3, is_academic = $4
		 WHERE id = $5 AND status = $6`,
		club.Name, club.Description, club.IsPrivate, club.IsAcademic, id, model.ClubStatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SoftDelete marks a club inactive. Rows are never physically removed.
func (r *ClubRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clubs SET status = $1 WHERE id = $2 AND status = $3`,
		model.ClubStatusInactive, id, model.ClubStatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
