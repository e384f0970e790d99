package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leolibre/leolibre-backend/internal/model"
)

// QuizRepository handles quiz and quiz result data access. Quiz content
// columns (questions, options, correct answers) are JSONB and scan directly
// into their slice fields.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// GetByResource retrieves the quiz attached to a resource. Each resource
// has at most one quiz.
func (r *QuizRepository) GetByResource(ctx context.Context, resourceID int64) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, resource_id, questions, options, correct_answers,
		        quantity_questions, minutes_to_answer, created_at, updated_at
		 FROM quizzes WHERE resource_id = $1`, resourceID,
	).Scan(&q.ID, &q.ResourceID, &q.Questions, &q.Options, &q.CorrectAnswers,
		&q.QuantityQuestions, &q.MinutesToAnswer, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Save persists a freshly normalized quiz for a resource.
func (r *QuizRepository) Save(ctx context.Context, resourceID int64, content *model.QuizContent) (*model.Quiz, error) {
	q := &model.Quiz{
		ResourceID:        resourceID,
		Questions:         content.Questions,
		Options:           content.Options,
		CorrectAnswers:    content.CorrectAnswers,
		QuantityQuestions: content.QuantityQuestions,
		MinutesToAnswer:   content.MinutesToAnswer,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (resource_id, questions, options, correct_answers,
		                      quantity_questions, minutes_to_answer)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		resourceID, content.Questions, content.Options, content.CorrectAnswers,
		content.QuantityQuestions, content.MinutesToAnswer,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Replace overwrites a resource's quiz content in place. The quiz id is
// preserved so existing results keep pointing at it.
func (r *QuizRepository) Replace(ctx context.Context, resourceID int64, content *model.QuizContent) (*model.Quiz, error) {
	q := &model.Quiz{
		ResourceID:        resourceID,
		Questions:         content.Questions,
		Options:           content.Options,
		CorrectAnswers:    content.CorrectAnswers,
		QuantityQuestions: content.QuantityQuestions,
		MinutesToAnswer:   content.MinutesToAnswer,
	}
	err := r.pool.QueryRow(ctx,
		`UPDATE quizzes
		 SET questions = $2, options = $3, correct_answers = $4,
		     quantity_questions = $5, minutes_to_answer = $6, updated_at = NOW()
		 WHERE resource_id = $1
		 RETURNING id, created_at, updated_at`,
		resourceID, content.Questions, content.Options, content.CorrectAnswers,
		content.QuantityQuestions, content.MinutesToAnswer,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetResult retrieves a user's stored result for a quiz in a club.
func (r *QuizRepository) GetResult(ctx context.Context, userID, clubID, quizID int64) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, club_id, quiz_id, role, quantity_correct_answers,
		        score, time_spent, created_at
		 FROM quiz_results
		 WHERE user_id = $1 AND club_id = $2 AND quiz_id = $3`,
		userID, clubID, quizID,
	).Scan(&res.UserID, &res.ClubID, &res.QuizID, &res.Role,
		&res.QuantityCorrectAnswers, &res.Score, &res.TimeSpent, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// InsertResult stores a graded result exactly once per (user, club, quiz).
// The primary key is the authoritative guard against duplicates: on
// conflict nothing is written and (nil, pgx.ErrNoRows) is returned, letting
// the caller fetch the original row.
func (r *QuizRepository) InsertResult(ctx context.Context, res *model.Result) (*model.Result, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quiz_results (user_id, club_id, quiz_id, role,
		                           quantity_correct_answers, score, time_spent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, club_id, quiz_id) DO NOTHING
		 RETURNING created_at`,
		res.UserID, res.ClubID, res.QuizID, res.Role,
		res.QuantityCorrectAnswers, res.Score, res.TimeSpent,
	).Scan(&res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// HasResult reports whether the user already answered the quiz.
func (r *QuizRepository) HasResult(ctx context.Context, userID, clubID, quizID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM quiz_results
		   WHERE user_id = $1 AND club_id = $2 AND quiz_id = $3
		 )`, userID, clubID, quizID,
	).Scan(&exists)
	return exists, err
}
