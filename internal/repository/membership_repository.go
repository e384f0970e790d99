package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leolibre/leolibre-backend/internal/model"
)

// MembershipRepository handles club participants and join requests.
type MembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// GetParticipant retrieves a user's active membership in a club.
func (r *MembershipRepository) GetParticipant(ctx context.Context, clubID, userID int64) (*model.Participant, error) {
	p := &model.Participant{}
	err := r.pool.QueryRow(ctx,
		`SELECT club_id, user_id, role, nickname,
		        quantity_quizzes_solved, quantity_questions_answered,
		        quantity_perfect_quizzes, quantity_resources_read,
		        total_score, status, created_at
		 FROM club_participants
		 WHERE club_id = $1 AND user_id = $2 AND status = $3`,
		clubID, userID, model.ParticipantStatusActive,
	).Scan(&p.ClubID, &p.UserID, &p.Role, &p.Nickname,
		&p.QuizzesSolved, &p.QuestionsAnswered,
		&p.PerfectQuizzes, &p.ResourcesRead,
		&p.TotalScore, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AddParticipant inserts a new active participant. A user removed from a
// club and re-admitted gets their old row reactivated with counters intact.
func (r *MembershipRepository) AddParticipant(ctx context.Context, clubID, userID int64, role model.Role, nickname string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO club_participants (club_id, user_id, role, nickname, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (club_id, user_id)
		 DO UPDATE SET status = $5, nickname = $4`,
		clubID, userID, role, nickname, model.ParticipantStatusActive)
	return err
}

// RemoveParticipant marks a membership removed. Counters are kept.
func (r *MembershipRepository) RemoveParticipant(ctx context.Context, clubID, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE club_participants SET status = $1
		 WHERE club_id = $2 AND user_id = $3 AND status = $4`,
		model.ParticipantStatusRemoved, clubID, userID, model.ParticipantStatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListParticipants retrieves a club's active members.
func (r *MembershipRepository) ListParticipants(ctx context.Context, clubID int64) ([]model.Participant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT club_id, user_id, role, nickname,
		        quantity_quizzes_solved, quantity_questions_answered,
		        quantity_perfect_quizzes, quantity_resources_read,
		        total_score, status, created_at
		 FROM club_participants
		 WHERE club_id = $1 AND status = $2
		 ORDER BY created_at ASC`, clubID, model.ParticipantStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ClubID, &p.UserID, &p.Role, &p.Nickname,
			&p.QuizzesSolved, &p.QuestionsAnswered,
			&p.PerfectQuizzes, &p.ResourcesRead,
			&p.TotalScore, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// CreateRequest records a pending join request for a private club.
// Returns pgx.ErrNoRows when a pending request already exists.
func (r *MembershipRepository) CreateRequest(ctx context.Context, clubID, userID int64) error {
	var created bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO club_requests (club_id, user_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (club_id, user_id) DO NOTHING
		 RETURNING true`,
		clubID, userID, model.RequestStatusPending,
	).Scan(&created)
	return err
}

// GetRequest retrieves a pending join request.
func (r *MembershipRepository) GetRequest(ctx context.Context, clubID, userID int64) (*model.MembershipRequest, error) {
	req := &model.MembershipRequest{}
	err := r.pool.QueryRow(ctx,
		`SELECT club_id, user_id, status, requested_at
		 FROM club_requests
		 WHERE club_id = $1 AND user_id = $2 AND status = $3`,
		clubID, userID, model.RequestStatusPending,
	).Scan(&req.ClubID, &req.UserID, &req.Status, &req.RequestedAt)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListPendingRequests retrieves a club's pending join requests.
func (r *MembershipRepository) ListPendingRequests(ctx context.Context, clubID int64) ([]model.MembershipRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT club_id, user_id, status, requested_at
		 FROM club_requests
		 WHERE club_id = $1 AND status = $2
		 ORDER BY requested_at ASC`, clubID, model.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []model.MembershipRequest
	for rows.Next() {
		var req model.MembershipRequest
		if err := rows.Scan(&req.ClubID, &req.UserID, &req.Status, &req.RequestedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// ResolveRequest transitions a pending request to approved or rejected.
func (r *MembershipRepository) ResolveRequest(ctx context.Context, clubID, userID int64, status model.RequestStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE club_requests SET status = $1, resolved_at = NOW()
		 WHERE club_id = $2 AND user_id = $3 AND status = $4`,
		status, clubID, userID, model.RequestStatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkResourceRead increments the reader counter for a participant.
func (r *MembershipRepository) MarkResourceRead(ctx context.Context, clubID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE club_participants
		 SET quantity_resources_read = quantity_resources_read + 1
		 WHERE club_id = $1 AND user_id = $2 AND status = $3`,
		clubID, userID, model.ParticipantStatusActive)
	return err
}
