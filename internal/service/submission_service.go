package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/config"
	"github.com/leolibre/leolibre-backend/internal/model"
)

// ErrAnswerCountMismatch is returned when a submission does not carry
// exactly one answer per question.
var ErrAnswerCountMismatch = errors.New("answer count does not match question count")

// MaxQuizScore is the number of points a perfect quiz is worth before the
// time multiplier.
const MaxQuizScore = 5.0

// Time multiplier bands. Finishing within a quarter of the allowed time
// earns the top bonus; bounds are inclusive.
const (
	multiplierFast   = 1.3
	multiplierQuick  = 1.2
	multiplierSteady = 1.1
	multiplierBase   = 1.0
)

// ResultStore is the persistence surface for graded submissions.
type ResultStore interface {
	GetResult(ctx context.Context, userID, clubID, quizID int64) (*model.Result, error)
	InsertResult(ctx context.Context, res *model.Result) (*model.Result, error)
	HasResult(ctx context.Context, userID, clubID, quizID int64) (bool, error)
}

// RankingNotifier is pinged after a fresh submission so live ranking
// streams can refresh.
type RankingNotifier interface {
	NotifyClubRanking(ctx context.Context, clubID int64)
}

// SubmissionService grades quiz submissions, records results exactly once
// per member, and feeds the stats pipeline.
type SubmissionService struct {
	quizzes  QuizStore
	results  ResultStore
	rdb      *redis.Client
	rankings RankingNotifier
	log      zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(quizzes QuizStore, results ResultStore, rdb *redis.Client, rankings RankingNotifier, log zerolog.Logger) *SubmissionService {
	return &SubmissionService{
		quizzes:  quizzes,
		results:  results,
		rdb:      rdb,
		rankings: rankings,
		log:      log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit grades a member's answers against the resource's quiz. The first
// submission per (user, club, quiz) is stored; any later one returns the
// stored outcome untouched, with AlreadyAnswered set.
func (s *SubmissionService) Submit(ctx context.Context, userID, clubID int64, role model.Role, resourceID int64, req *model.SubmitQuizRequest) (*model.SubmissionOutcome, error) {
	quiz, err := s.quizzes.GetByResource(ctx, resourceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("load quiz: %w", err)
	}

	// A retry replays the stored outcome before any validation or grading;
	// whatever answers it carries are ignored.
	existing, err := s.results.GetResult(ctx, userID, clubID, quiz.ID)
	if err == nil {
		return storedOutcome(quiz, existing), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load existing result: %w", err)
	}

	if len(req.Answers) != quiz.QuantityQuestions {
		return nil, ErrAnswerCountMismatch
	}

	correct := 0
	for i, answer := range req.Answers {
		if answer == quiz.CorrectAnswers[i] {
			correct++
		}
	}

	score := computeScore(correct, quiz.QuantityQuestions, req.TimeSpent, quiz.MinutesToAnswer)

	result := &model.Result{
		UserID:                 userID,
		ClubID:                 clubID,
		QuizID:                 quiz.ID,
		Role:                   role,
		QuantityCorrectAnswers: correct,
		Score:                  score,
		TimeSpent:              req.TimeSpent,
	}

	if _, err := s.results.InsertResult(ctx, result); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race to a concurrent submission: the stored row wins.
			stored, err := s.results.GetResult(ctx, userID, clubID, quiz.ID)
			if err != nil {
				return nil, fmt.Errorf("load existing result: %w", err)
			}
			return storedOutcome(quiz, stored), nil
		}
		return nil, fmt.Errorf("store result: %w", err)
	}

	s.enqueueStats(ctx, result, quiz.QuantityQuestions)
	if s.rankings != nil {
		s.rankings.NotifyClubRanking(ctx, clubID)
	}

	s.log.Info().
		Int64("user_id", userID).
		Int64("club_id", clubID).
		Int64("quiz_id", quiz.ID).
		Float64("score", score).
		Msg("submission graded")

	return &model.SubmissionOutcome{
		CorrectAnswers:         quiz.CorrectAnswers,
		Score:                  score,
		QuantityCorrectAnswers: correct,
		AlreadyAnswered:        false,
	}, nil
}

// storedOutcome replays a previously graded result.
func storedOutcome(quiz *model.Quiz, res *model.Result) *model.SubmissionOutcome {
	return &model.SubmissionOutcome{
		CorrectAnswers:         quiz.CorrectAnswers,
		Score:                  res.Score,
		QuantityCorrectAnswers: res.QuantityCorrectAnswers,
		AlreadyAnswered:        true,
	}
}

// HasAnswered reports whether the user already has a stored result for the
// resource's quiz.
func (s *SubmissionService) HasAnswered(ctx context.Context, userID, clubID, resourceID int64) (bool, error) {
	quiz, err := s.quizzes.GetByResource(ctx, resourceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrQuizNotFound
		}
		return false, fmt.Errorf("load quiz: %w", err)
	}
	answered, err := s.results.HasResult(ctx, userID, clubID, quiz.ID)
	if err != nil {
		return false, fmt.Errorf("check result: %w", err)
	}
	return answered, nil
}

// enqueueStats pushes the graded submission onto the stats queue. The
// stats worker folds it into the participant counters asynchronously; a
// push failure is logged but never fails the submission.
func (s *SubmissionService) enqueueStats(ctx context.Context, result *model.Result, questions int) {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":   result.UserID,
		"club_id":   result.ClubID,
		"score":     result.Score,
		"correct":   result.QuantityCorrectAnswers,
		"questions": questions,
		"perfect":   result.QuantityCorrectAnswers == questions,
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistStatsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Int64("user_id", result.UserID).Msg("stats enqueue failed")
	}
}

// computeScore turns a correct-answer count into the final score: each
// question is worth an equal share of MaxQuizScore, scaled by the time
// multiplier and truncated to three decimals.
func computeScore(correct, quantity int, timeSpent float64, minutesToAnswer int) float64 {
	if quantity == 0 {
		return 0
	}
	base := float64(correct) * (MaxQuizScore / float64(quantity))
	return truncateScore(base * timeMultiplier(timeSpent, minutesToAnswer))
}

// timeMultiplier rewards finishing early. Band bounds are inclusive:
// exactly a quarter of the allowance still earns the top bonus.
func timeMultiplier(timeSpent float64, minutesToAnswer int) float64 {
	limit := float64(minutesToAnswer) * 60
	if limit <= 0 {
		return multiplierBase
	}
	switch {
	case timeSpent <= limit*0.25:
		return multiplierFast
	case timeSpent <= limit*0.50:
		return multiplierQuick
	case timeSpent <= limit*0.75:
		return multiplierSteady
	default:
		return multiplierBase
	}
}

// truncateScore cuts a score to three decimals without rounding.
func truncateScore(score float64) float64 {
	return math.Floor(score*1000) / 1000
}
