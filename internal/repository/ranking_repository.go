package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leolibre/leolibre-backend/internal/model"
)

// RankingRepository builds rankings from accumulated participant scores
// and stored quiz results.
type RankingRepository struct {
	pool *pgxpool.Pool
}

// NewRankingRepository creates a new RankingRepository.
func NewRankingRepository(pool *pgxpool.Pool) *RankingRepository {
	return &RankingRepository{pool: pool}
}

// ClubRanking retrieves a club's members ordered by total accumulated
// score, highest first. Ties break on join order.
func (r *RankingRepository) ClubRanking(ctx context.Context, clubID int64) ([]model.ClubRankingEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, nickname, total_score
		 FROM club_participants
		 WHERE club_id = $1 AND status = $2
		 ORDER BY total_score DESC, created_at ASC`,
		clubID, model.ParticipantStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ClubRankingEntry
	for rows.Next() {
		var e model.ClubRankingEntry
		if err := rows.Scan(&e.UserID, &e.Nickname, &e.TotalScore); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ResourceRanking retrieves the per-quiz ranking for a resource: everyone
// who answered the resource's quiz, best score first, faster time breaking
// ties.
func (r *RankingRepository) ResourceRanking(ctx context.Context, clubID, resourceID int64) ([]model.ResourceRankingEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT qr.user_id, cp.nickname, qr.score, qr.time_spent
		 FROM quiz_results qr
		 JOIN quizzes q ON q.id = qr.quiz_id
		 JOIN club_participants cp
		   ON cp.club_id = qr.club_id AND cp.user_id = qr.user_id
		 WHERE qr.club_id = $1 AND q.resource_id = $2
		 ORDER BY qr.score DESC, qr.time_spent ASC`,
		clubID, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ResourceRankingEntry
	for rows.Next() {
		var e model.ResourceRankingEntry
		if err := rows.Scan(&e.UserID, &e.Nickname, &e.Score, &e.TimeSpent); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
