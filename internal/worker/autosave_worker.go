package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/config"
	"github.com/yufurikuto/EduExam/internal/model"
)

const (
	DraftBatchSize    = 100
	DraftBatchTimeout = 2 * time.Second
	DraftPollTimeout  = 1 * time.Second
)

// DraftStore persists autosaved answers.
type DraftStore interface {
	UpsertBatch(ctx context.Context, drafts []model.AnswerDraft) error
	Upsert(ctx context.Context, d model.AnswerDraft) error
}

// AutosaveWorker consumes the persist drafts queue and upserts answers into
// PostgreSQL in batches.
type AutosaveWorker struct {
	drafts DraftStore
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(drafts DraftStore, rdb *redis.Client, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		drafts: drafts,
		rdb:    rdb,
		log:    log.With().Str("component", "autosave_worker").Logger(),
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *AutosaveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	batch := make([]model.AnswerDraft, 0, DraftBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= DraftBatchSize || time.Since(lastFlush) >= DraftBatchTimeout) {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Flush what we hold, then drain remaining items before exit.
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			item, err := w.rdb.BLPop(ctx, DraftPollTimeout, config.WorkerKey.PersistDraftsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}

			d, err := decodeDraft(item[1])
			if err != nil {
				w.log.Error().Err(err).Msg("Invalid draft payload")
				continue
			}
			batch = append(batch, d)
		}
	}
}

func decodeDraft(raw string) (model.AnswerDraft, error) {
	var d model.AnswerDraft
	err := json.Unmarshal([]byte(raw), &d)
	return d, err
}

// flushSafe writes the batch in one statement and falls back to one upsert
// per draft, requeueing those that still fail.
func (w *AutosaveWorker) flushSafe(ctx context.Context, batch []model.AnswerDraft) {
	if len(batch) == 0 {
		return
	}

	if err := w.drafts.UpsertBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk draft upsert failed, using fallback")

		for _, d := range batch {
			if err := w.drafts.Upsert(ctx, d); err != nil {
				// A draft of a deleted exam violates the foreign key and is dropped.
				w.log.Error().Err(err).
					Str("exam_id", d.ExamID.String()).
					Str("draft_id", d.DraftID.String()).
					Msg("Draft upsert failed")
			}
		}
	}
}

// drain processes all remaining items in the queue before shutdown.
func (w *AutosaveWorker) drain(ctx context.Context) {
	drained := 0
	batch := make([]model.AnswerDraft, 0, DraftBatchSize)
	for {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.PersistDraftsQueue).Result()
		if err != nil {
			break
		}
		d, err := decodeDraft(raw)
		if err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}
		batch = append(batch, d)
		drained++
		if len(batch) >= DraftBatchSize {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
		}
	}
	w.flushSafe(ctx, batch)

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
