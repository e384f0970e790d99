package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/generator"
	"github.com/leolibre/leolibre-backend/internal/model"
)

// ─── Fakes ──────────────────────────────────────────────────────────

type fakeQuizStore struct {
	byResource map[int64]*model.Quiz
	nextID     int64
	saveCalls  int
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{byResource: make(map[int64]*model.Quiz), nextID: 1}
}

func (f *fakeQuizStore) GetByResource(_ context.Context, resourceID int64) (*model.Quiz, error) {
	q, ok := f.byResource[resourceID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return q, nil
}

func (f *fakeQuizStore) Save(_ context.Context, resourceID int64, content *model.QuizContent) (*model.Quiz, error) {
	f.saveCalls++
	q := &model.Quiz{
		ID:                f.nextID,
		ResourceID:        resourceID,
		Questions:         content.Questions,
		Options:           content.Options,
		CorrectAnswers:    content.CorrectAnswers,
		QuantityQuestions: content.QuantityQuestions,
		MinutesToAnswer:   content.MinutesToAnswer,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	f.nextID++
	f.byResource[resourceID] = q
	return q, nil
}

func (f *fakeQuizStore) Replace(_ context.Context, resourceID int64, content *model.QuizContent) (*model.Quiz, error) {
	q, ok := f.byResource[resourceID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	q.Questions = content.Questions
	q.Options = content.Options
	q.CorrectAnswers = content.CorrectAnswers
	q.QuantityQuestions = content.QuantityQuestions
	q.MinutesToAnswer = content.MinutesToAnswer
	q.UpdatedAt = time.Now()
	return q, nil
}

type fakeURLProvider struct{}

func (fakeURLProvider) ResourceURL(context.Context, int64, int64) (string, error) {
	return "https://storage.test/doc.pdf", nil
}

type fakeGenerator struct {
	raw   *generator.RawQuizResponse
	err   error
	calls int
}

func (f *fakeGenerator) Generate(context.Context, string, int64) (*generator.RawQuizResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

func validRaw() *generator.RawQuizResponse {
	return &generator.RawQuizResponse{
		Questions: []string{"1. First?", "2. Second?"},
		Options: generator.RawOptions{
			Shape: generator.OptionsShapeEmbedded,
			Entries: []string{
				"A-a B-b C-c D-d",
				"A-e B-f C-g D-h",
			},
		},
		Answers:         []string{"A", "B"},
		MinutesToAnswer: 5,
	}
}

func newQuizService(store *fakeQuizStore, gen *fakeGenerator) *QuizService {
	return NewQuizService(store, fakeURLProvider{}, gen, zerolog.Nop())
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestGetOrCreateGeneratesOnce(t *testing.T) {
	store := newFakeQuizStore()
	gen := &fakeGenerator{raw: validRaw()}
	svc := newQuizService(store, gen)
	ctx := context.Background()

	quiz, created, err := svc.GetOrCreate(ctx, 1, 10, 99)
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if !created {
		t.Fatal("expected created=true on first access")
	}
	if quiz.QuantityQuestions != 2 {
		t.Errorf("quantity = %d, want 2", quiz.QuantityQuestions)
	}

	again, created, err := svc.GetOrCreate(ctx, 1, 10, 99)
	if err != nil {
		t.Fatalf("second GetOrCreate returned error: %v", err)
	}
	if created {
		t.Fatal("expected created=false on second access")
	}
	if again.ID != quiz.ID {
		t.Errorf("quiz id changed: %d != %d", again.ID, quiz.ID)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestGetOrCreatePersistsNothingOnUpstreamFailure(t *testing.T) {
	store := newFakeQuizStore()
	gen := &fakeGenerator{err: generator.ErrUpstreamInvalid}
	svc := newQuizService(store, gen)

	_, _, err := svc.GetOrCreate(context.Background(), 1, 10, 99)
	if !errors.Is(err, generator.ErrUpstreamInvalid) {
		t.Fatalf("err = %v, want ErrUpstreamInvalid", err)
	}
	if store.saveCalls != 0 {
		t.Errorf("saveCalls = %d, want 0", store.saveCalls)
	}
	if len(store.byResource) != 0 {
		t.Error("quiz was persisted despite generation failure")
	}
}

func TestGetOrCreateRejectsMalformedPayload(t *testing.T) {
	raw := validRaw()
	raw.Answers = raw.Answers[:1]
	store := newFakeQuizStore()
	svc := newQuizService(store, &fakeGenerator{raw: raw})

	_, _, err := svc.GetOrCreate(context.Background(), 1, 10, 99)
	if !errors.Is(err, generator.ErrInconsistentQuizShape) {
		t.Fatalf("err = %v, want ErrInconsistentQuizShape", err)
	}
	if len(store.byResource) != 0 {
		t.Error("malformed quiz was persisted")
	}
}

func TestRegeneratePreservesQuizID(t *testing.T) {
	store := newFakeQuizStore()
	gen := &fakeGenerator{raw: validRaw()}
	svc := newQuizService(store, gen)
	ctx := context.Background()

	original, _, err := svc.GetOrCreate(ctx, 1, 10, 99)
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}

	gen.raw = &generator.RawQuizResponse{
		Questions: []string{"1. New question?"},
		Options: generator.RawOptions{
			Shape:   generator.OptionsShapeEmbedded,
			Entries: []string{"A-w B-x C-y D-z"},
		},
		Answers: []string{"C"},
	}

	regenerated, err := svc.Regenerate(ctx, 1, 10, 99)
	if err != nil {
		t.Fatalf("Regenerate returned error: %v", err)
	}
	if regenerated.ID != original.ID {
		t.Errorf("quiz id changed on regenerate: %d != %d", regenerated.ID, original.ID)
	}
	if regenerated.Questions[0] != "New question?" {
		t.Errorf("content not replaced: %q", regenerated.Questions[0])
	}
	if regenerated.QuantityQuestions != 1 {
		t.Errorf("quantity = %d, want 1", regenerated.QuantityQuestions)
	}
}

func TestRegenerateCreatesWhenMissing(t *testing.T) {
	store := newFakeQuizStore()
	svc := newQuizService(store, &fakeGenerator{raw: validRaw()})

	quiz, err := svc.Regenerate(context.Background(), 1, 10, 99)
	if err != nil {
		t.Fatalf("Regenerate returned error: %v", err)
	}
	if quiz.ID == 0 {
		t.Error("expected persisted quiz with id")
	}
}

func TestViewForMemberStripsAnswers(t *testing.T) {
	store := newFakeQuizStore()
	gen := &fakeGenerator{raw: validRaw()}
	svc := newQuizService(store, gen)
	ctx := context.Background()

	if _, _, err := svc.GetOrCreate(ctx, 1, 10, 99); err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}

	view, err := svc.ViewForMember(ctx, 10)
	if err != nil {
		t.Fatalf("ViewForMember returned error: %v", err)
	}
	if len(view.Questions) != 2 || len(view.Options) != 2 {
		t.Errorf("view incomplete: %d questions, %d option sets", len(view.Questions), len(view.Options))
	}
	if gen.calls != 1 {
		t.Errorf("member view triggered generation: %d calls", gen.calls)
	}
}

func TestViewForMemberMissingQuiz(t *testing.T) {
	svc := newQuizService(newFakeQuizStore(), &fakeGenerator{raw: validRaw()})

	_, err := svc.ViewForMember(context.Background(), 10)
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
}
