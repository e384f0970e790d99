package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/generator"
	"github.com/leolibre/leolibre-backend/internal/model"
)

// ErrQuizNotFound is returned when a resource has no quiz yet.
var ErrQuizNotFound = errors.New("quiz not found")

// QuizStore is the persistence surface the quiz lifecycle needs.
type QuizStore interface {
	GetByResource(ctx context.Context, resourceID int64) (*model.Quiz, error)
	Save(ctx context.Context, resourceID int64, content *model.QuizContent) (*model.Quiz, error)
	Replace(ctx context.Context, resourceID int64, content *model.QuizContent) (*model.Quiz, error)
}

// ResourceURLProvider resolves a club resource to a fetchable document URL.
type ResourceURLProvider interface {
	ResourceURL(ctx context.Context, clubID, resourceID int64) (string, error)
}

// QuizGenerator produces a raw quiz from a document URL.
type QuizGenerator interface {
	Generate(ctx context.Context, resourceURL string, userID int64) (*generator.RawQuizResponse, error)
}

// QuizService manages the quiz lifecycle for reading resources: lazy
// creation on first founder access, explicit regeneration, and the member
// view with answers stripped.
type QuizService struct {
	quizzes QuizStore
	urls    ResourceURLProvider
	gen     QuizGenerator
	log     zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizzes QuizStore, urls ResourceURLProvider, gen QuizGenerator, log zerolog.Logger) *QuizService {
	return &QuizService{
		quizzes: quizzes,
		urls:    urls,
		gen:     gen,
		log:     log.With().Str("component", "quiz_service").Logger(),
	}
}

// GetOrCreate returns the resource's quiz, generating and persisting one
// on first access. The boolean reports whether a new quiz was created.
// Only founders reach this path, so correct answers are included.
func (s *QuizService) GetOrCreate(ctx context.Context, clubID, resourceID, userID int64) (*model.Quiz, bool, error) {
	quiz, err := s.quizzes.GetByResource(ctx, resourceID)
	if err == nil {
		return quiz, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("load quiz: %w", err)
	}

	content, err := s.generate(ctx, clubID, resourceID, userID)
	if err != nil {
		return nil, false, err
	}

	quiz, err = s.quizzes.Save(ctx, resourceID, content)
	if err != nil {
		return nil, false, fmt.Errorf("save quiz: %w", err)
	}
	s.log.Info().Int64("resource_id", resourceID).Int("questions", quiz.QuantityQuestions).Msg("quiz created")
	return quiz, true, nil
}

// Regenerate replaces the resource's quiz with a freshly generated one,
// keeping the quiz id stable so stored results stay attached. A resource
// without a quiz yet gets one created.
func (s *QuizService) Regenerate(ctx context.Context, clubID, resourceID, userID int64) (*model.Quiz, error) {
	content, err := s.generate(ctx, clubID, resourceID, userID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.quizzes.Replace(ctx, resourceID, content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			quiz, err = s.quizzes.Save(ctx, resourceID, content)
			if err != nil {
				return nil, fmt.Errorf("save quiz: %w", err)
			}
			return quiz, nil
		}
		return nil, fmt.Errorf("replace quiz: %w", err)
	}
	s.log.Info().Int64("resource_id", resourceID).Int("questions", quiz.QuantityQuestions).Msg("quiz regenerated")
	return quiz, nil
}

// ViewForMember returns the quiz for a resource with correct answers
// stripped. Members never trigger generation: a missing quiz is an error.
func (s *QuizService) ViewForMember(ctx context.Context, resourceID int64) (*model.MemberQuiz, error) {
	quiz, err := s.quizzes.GetByResource(ctx, resourceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	return quiz.ForMember(), nil
}

// generate runs the full pipeline: resolve the document URL, call the
// generator, normalize the raw payload into canonical form.
func (s *QuizService) generate(ctx context.Context, clubID, resourceID, userID int64) (*model.QuizContent, error) {
	url, err := s.urls.ResourceURL(ctx, clubID, resourceID)
	if err != nil {
		return nil, err
	}

	raw, err := s.gen.Generate(ctx, url, userID)
	if err != nil {
		return nil, err
	}

	content, err := generator.Normalize(raw)
	if err != nil {
		s.log.Warn().Err(err).Int64("resource_id", resourceID).Msg("generator payload rejected")
		return nil, err
	}
	return content, nil
}
