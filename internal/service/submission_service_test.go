package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/config"
	"github.com/leolibre/leolibre-backend/internal/model"
)

// ─── Fakes ──────────────────────────────────────────────────────────

type resultKey struct {
	userID, clubID, quizID int64
}

type fakeResultStore struct {
	results map[resultKey]*model.Result
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: make(map[resultKey]*model.Result)}
}

func (f *fakeResultStore) GetResult(_ context.Context, userID, clubID, quizID int64) (*model.Result, error) {
	r, ok := f.results[resultKey{userID, clubID, quizID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func (f *fakeResultStore) InsertResult(_ context.Context, res *model.Result) (*model.Result, error) {
	key := resultKey{res.UserID, res.ClubID, res.QuizID}
	if _, exists := f.results[key]; exists {
		return nil, pgx.ErrNoRows
	}
	res.CreatedAt = time.Now()
	f.results[key] = res
	return res, nil
}

func (f *fakeResultStore) HasResult(_ context.Context, userID, clubID, quizID int64) (bool, error) {
	_, ok := f.results[resultKey{userID, clubID, quizID}]
	return ok, nil
}

type spyNotifier struct {
	clubIDs []int64
}

func (s *spyNotifier) NotifyClubRanking(_ context.Context, clubID int64) {
	s.clubIDs = append(s.clubIDs, clubID)
}

func seedQuiz(store *fakeQuizStore, resourceID int64, minutes int) *model.Quiz {
	q, _ := store.Save(context.Background(), resourceID, &model.QuizContent{
		Questions:         []string{"First?", "Second?", "Third?", "Fourth?", "Fifth?"},
		Options:           [][]string{{"a", "b", "c", "d"}, {"a", "b", "c", "d"}, {"a", "b", "c", "d"}, {"a", "b", "c", "d"}, {"a", "b", "c", "d"}},
		CorrectAnswers:    []string{"A", "B", "C", "D", "A"},
		QuantityQuestions: 5,
		MinutesToAnswer:   minutes,
	})
	return q
}

func newSubmissionService(t *testing.T, store *fakeQuizStore, results *fakeResultStore, notifier RankingNotifier) (*SubmissionService, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewSubmissionService(store, results, rdb, notifier, zerolog.Nop()), rdb
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestSubmitGradesAndStores(t *testing.T) {
	store := newFakeQuizStore()
	seedQuiz(store, 10, 10) // 10 minutes = 600s allowance
	results := newFakeResultStore()
	notifier := &spyNotifier{}
	svc, rdb := newSubmissionService(t, store, results, notifier)
	ctx := context.Background()

	// 4 of 5 correct, 400s spent: within 75% of 600s -> multiplier 1.1.
	// 4 * (5/5) * 1.1 = 4.4.
	outcome, err := svc.Submit(ctx, 1, 2, model.RoleMember, 10, &model.SubmitQuizRequest{
		Answers:   []string{"A", "B", "C", "D", "B"},
		TimeSpent: 400,
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if outcome.AlreadyAnswered {
		t.Error("first submission flagged already_answered")
	}
	if outcome.QuantityCorrectAnswers != 4 {
		t.Errorf("correct = %d, want 4", outcome.QuantityCorrectAnswers)
	}
	if got, want := outcome.Score, truncateScore(4*1.1); got != want {
		t.Errorf("score = %v, want %v", got, want)
	}
	if len(outcome.CorrectAnswers) != 5 {
		t.Error("outcome must reveal the correct answers")
	}
	if len(notifier.clubIDs) != 1 || notifier.clubIDs[0] != 2 {
		t.Errorf("ranking notified for %v, want [2]", notifier.clubIDs)
	}

	// Stats payload landed on the queue.
	item, err := rdb.LPop(ctx, config.WorkerKey.PersistStatsQueue).Result()
	if err != nil {
		t.Fatalf("stats queue empty: %v", err)
	}
	var payload struct {
		UserID    int64   `json:"user_id"`
		ClubID    int64   `json:"club_id"`
		Score     float64 `json:"score"`
		Questions int     `json:"questions"`
		Perfect   bool    `json:"perfect"`
	}
	if err := json.Unmarshal([]byte(item), &payload); err != nil {
		t.Fatalf("bad stats payload: %v", err)
	}
	if payload.UserID != 1 || payload.ClubID != 2 || payload.Questions != 5 || payload.Perfect {
		t.Errorf("stats payload = %+v", payload)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	store := newFakeQuizStore()
	seedQuiz(store, 10, 10)
	results := newFakeResultStore()
	notifier := &spyNotifier{}
	svc, rdb := newSubmissionService(t, store, results, notifier)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, 2, model.RoleMember, 10, &model.SubmitQuizRequest{
		Answers:   []string{"A", "B", "C", "D", "A"},
		TimeSpent: 500,
	})
	if err != nil {
		t.Fatalf("first Submit returned error: %v", err)
	}

	// A repeat with a much faster time must not change the stored result.
	second, err := svc.Submit(ctx, 1, 2, model.RoleMember, 10, &model.SubmitQuizRequest{
		Answers:   []string{"A", "B", "C", "D", "A"},
		TimeSpent: 10,
	})
	if err != nil {
		t.Fatalf("second Submit returned error: %v", err)
	}
	if !second.AlreadyAnswered {
		t.Error("repeat submission not flagged already_answered")
	}
	if second.Score != first.Score {
		t.Errorf("stored score changed: %v != %v", second.Score, first.Score)
	}

	// Only the first submission may feed stats or rankings.
	if n, _ := rdb.LLen(ctx, config.WorkerKey.PersistStatsQueue).Result(); n != 1 {
		t.Errorf("stats queue length = %d, want 1", n)
	}
	if len(notifier.clubIDs) != 1 {
		t.Errorf("ranking notified %d times, want 1", len(notifier.clubIDs))
	}
}

func TestSubmitGradingIsCaseSensitive(t *testing.T) {
	store := newFakeQuizStore()
	seedQuiz(store, 10, 10)
	svc, _ := newSubmissionService(t, store, newFakeResultStore(), &spyNotifier{})

	// Stored answers are "A".."A"; lowercase letters are different strings
	// and earn nothing.
	outcome, err := svc.Submit(context.Background(), 1, 2, model.RoleMember, 10, &model.SubmitQuizRequest{
		Answers:   []string{"a", "b", "c", "d", "a"},
		TimeSpent: 100,
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if outcome.QuantityCorrectAnswers != 0 {
		t.Errorf("correct = %d, want 0", outcome.QuantityCorrectAnswers)
	}
	if outcome.Score != 0 {
		t.Errorf("score = %v, want 0", outcome.Score)
	}
}

func TestSubmitRetrySkipsValidation(t *testing.T) {
	store := newFakeQuizStore()
	seedQuiz(store, 10, 10)
	results := newFakeResultStore()
	svc, _ := newSubmissionService(t, store, results, &spyNotifier{})
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, 2, model.RoleMember, 10, &model.SubmitQuizRequest{
		Answers:   []string{"A", "B", "C", "D", "A"},
		TimeSpent: 500,
	})
	if err != nil {
		t.Fatalf("first Submit returned error: %v", err)
	}

	// A retry replays the stored result even when its answers would not
	// pass validation.
	second, err := svc.Submit(ctx, 1, 2, model.RoleMember, 10, &model.SubmitQuizRequest{
		Answers:   []string{"A", "B"},
		TimeSpent: 10,
	})
	if err != nil {
		t.Fatalf("retry Submit returned error: %v", err)
	}
	if !second.AlreadyAnswered {
		t.Error("retry not flagged already_answered")
	}
	if second.Score != first.Score {
		t.Errorf("stored score changed: %v != %v", second.Score, first.Score)
	}
}

func TestSubmitAnswerCountMismatch(t *testing.T) {
	store := newFakeQuizStore()
	seedQuiz(store, 10, 10)
	svc, _ := newSubmissionService(t, store, newFakeResultStore(), &spyNotifier{})

	_, err := svc.Submit(context.Background(), 1, 2, model.RoleMember, 10, &model.SubmitQuizRequest{
		Answers:   []string{"A", "B"},
		TimeSpent: 100,
	})
	if !errors.Is(err, ErrAnswerCountMismatch) {
		t.Fatalf("err = %v, want ErrAnswerCountMismatch", err)
	}
}

func TestSubmitMissingQuiz(t *testing.T) {
	svc, _ := newSubmissionService(t, newFakeQuizStore(), newFakeResultStore(), &spyNotifier{})

	_, err := svc.Submit(context.Background(), 1, 2, model.RoleMember, 10, &model.SubmitQuizRequest{
		Answers:   []string{"A"},
		TimeSpent: 100,
	})
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
}

func TestTimeMultiplierBands(t *testing.T) {
	// 10 minutes = 600s allowance.
	cases := []struct {
		name      string
		timeSpent float64
		want      float64
	}{
		{"quarter boundary inclusive", 150, 1.3},
		{"just past quarter", 150.01, 1.2},
		{"half boundary inclusive", 300, 1.2},
		{"three-quarter boundary inclusive", 450, 1.1},
		{"full allowance", 600, 1.0},
		{"over allowance", 900, 1.0},
		{"zero time", 0, 1.3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := timeMultiplier(tc.timeSpent, 10); got != tc.want {
				t.Errorf("timeMultiplier(%v, 10) = %v, want %v", tc.timeSpent, got, tc.want)
			}
		})
	}
}

func TestComputeScoreTruncates(t *testing.T) {
	// 2 of 3 correct in the fast band: 2 * (5/3) * 1.3 = 4.33333... -> 4.333.
	got := computeScore(2, 3, 0, 10)
	if got != 4.333 {
		t.Errorf("score = %v, want 4.333", got)
	}

	// A perfect fast quiz lands above the 5-point base but still truncated.
	if got := computeScore(5, 5, 0, 10); got != 6.5 {
		t.Errorf("perfect fast score = %v, want 6.5", got)
	}
}

func TestHasAnswered(t *testing.T) {
	store := newFakeQuizStore()
	seedQuiz(store, 10, 10)
	results := newFakeResultStore()
	svc, _ := newSubmissionService(t, store, results, &spyNotifier{})
	ctx := context.Background()

	answered, err := svc.HasAnswered(ctx, 1, 2, 10)
	if err != nil {
		t.Fatalf("HasAnswered returned error: %v", err)
	}
	if answered {
		t.Error("answered=true before any submission")
	}

	if _, err := svc.Submit(ctx, 1, 2, model.RoleMember, 10, &model.SubmitQuizRequest{
		Answers:   []string{"A", "B", "C", "D", "A"},
		TimeSpent: 100,
	}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	answered, err = svc.HasAnswered(ctx, 1, 2, 10)
	if err != nil {
		t.Fatalf("HasAnswered returned error: %v", err)
	}
	if !answered {
		t.Error("answered=false after submission")
	}
}
