package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/config"
)

const (
	StatsBatchSize    = 50
	StatsBatchTimeout = 2 * time.Second
	StatsPollTimeout  = 1 * time.Second
)

// StatsWorker drains graded-submission payloads off the stats queue and
// folds them into the participant counters. Writes are batched; a failed
// batch falls back to per-row updates and requeues what still fails.
type StatsWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewStatsWorker creates a new StatsWorker.
func NewStatsWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *StatsWorker {
	return &StatsWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "stats_worker").Logger(),
	}
}

type statsPayload struct {
	UserID    int64   `json:"user_id"`
	ClubID    int64   `json:"club_id"`
	Score     float64 `json:"score"`
	Correct   int     `json:"correct"`
	Questions int     `json:"questions"`
	Perfect   bool    `json:"perfect"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *StatsWorker) Start(ctx context.Context) {
	w.log.Info().Msg("StatsWorker started")

	batch := make([]*statsPayload, 0, StatsBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= StatsBatchSize || time.Since(lastFlush) >= StatsBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, StatsPollTimeout, config.WorkerKey.PersistStatsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p statsPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// ----------------------------------------------------------------
// Batch update wrapper
// ----------------------------------------------------------------

func (w *StatsWorker) flushSafe(ctx context.Context, batch []*statsPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpdateStats(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk stats update failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistStatsQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPDATE using UNNEST + alias
// ----------------------------------------------------------------

func (w *StatsWorker) bulkUpdateStats(ctx context.Context, batch []*statsPayload) error {
	n := len(batch)

	clubs := make([]int64, 0, n)
	users := make([]int64, 0, n)
	scores := make([]float64, 0, n)
	questions := make([]int, 0, n)
	perfects := make([]int, 0, n)

	for _, p := range batch {
		clubs = append(clubs, p.ClubID)
		users = append(users, p.UserID)
		scores = append(scores, p.Score)
		questions = append(questions, p.Questions)
		perfect := 0
		if p.Perfect {
			perfect = 1
		}
		perfects = append(perfects, perfect)
	}

	query := `
		UPDATE club_participants AS cp
		SET quantity_quizzes_solved = cp.quantity_quizzes_solved + 1,
		    quantity_questions_answered = cp.quantity_questions_answered + t.questions,
		    quantity_perfect_quizzes = cp.quantity_perfect_quizzes + t.perfect,
		    total_score = cp.total_score + t.score
		FROM (
			SELECT
				u.club_id,
				u.user_id,
				u.score,
				u.questions,
				u.perfect
			FROM UNNEST(
				$1::bigint[],
				$2::bigint[],
				$3::float8[],
				$4::int[],
				$5::int[]
			) AS u (club_id, user_id, score, questions, perfect)
		) AS t
		WHERE cp.club_id = t.club_id
		  AND cp.user_id = t.user_id
	`

	_, err := w.pool.Exec(ctx, query, clubs, users, scores, questions, perfects)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single update
// ----------------------------------------------------------------

func (w *StatsWorker) persistSingle(ctx context.Context, p *statsPayload) error {
	perfect := 0
	if p.Perfect {
		perfect = 1
	}

	_, err := w.pool.Exec(ctx,
		`UPDATE club_participants
		 SET quantity_quizzes_solved = quantity_quizzes_solved + 1,
		     quantity_questions_answered = quantity_questions_answered + $1,
		     quantity_perfect_quizzes = quantity_perfect_quizzes + $2,
		     total_score = total_score + $3
		 WHERE club_id = $4 AND user_id = $5`,
		p.Questions, perfect, p.Score, p.ClubID, p.UserID,
	)

	return err
}
