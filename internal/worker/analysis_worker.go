package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/yufurikuto/EduExam/internal/analysis"
	"github.com/yufurikuto/EduExam/internal/config"
)

const (
	AnalysisBatchSize    = 50
	AnalysisBatchTimeout = 2 * time.Second
	AnalysisPollTimeout  = 1 * time.Second
)

// AnalysisRefresher recomputes and caches the analysis of one exam.
type AnalysisRefresher interface {
	Refresh(ctx context.Context, examID uuid.UUID) (*analysis.Report, error)
}

// AnalysisWorker rebuilds cached exam analyses after submissions and manual
// grading. A burst of submissions to one exam costs a single recompute per batch.
type AnalysisWorker struct {
	refresher AnalysisRefresher
	rdb       *redis.Client
	log       zerolog.Logger
}

func NewAnalysisWorker(refresher AnalysisRefresher, rdb *redis.Client, log zerolog.Logger) *AnalysisWorker {
	return &AnalysisWorker{
		refresher: refresher,
		rdb:       rdb,
		log:       log.With().Str("component", "analysis_worker").Logger(),
	}
}

// ─── Worker loop with batching ──────────────────────────────────────

func (w *AnalysisWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AnalysisWorker started")

	batch := make([]string, 0, AnalysisBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AnalysisBatchSize || time.Since(lastFlush) >= AnalysisBatchTimeout) {
			w.flush(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			// Pending refreshes are dropped; the next read recomputes.
			w.log.Info().Int("pending", len(batch)).Msg("AnalysisWorker stopped")
			return
		default:
			item, err := w.rdb.BLPop(ctx, AnalysisPollTimeout, config.WorkerKey.RefreshAnalysisQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}
			if len(item) < 2 {
				continue
			}
			batch = append(batch, item[1])
		}
	}
}

func (w *AnalysisWorker) flush(ctx context.Context, batch []string) {
	for _, id := range UniqueExamIDs(batch) {
		if _, err := w.refresher.Refresh(ctx, id); err != nil {
			w.log.Error().Err(err).Str("exam_id", id.String()).Msg("Analysis refresh failed")
		}
	}
}

// UniqueExamIDs parses queued exam ids, dropping malformed and repeated ones
// while keeping first-seen order.
func UniqueExamIDs(raw []string) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
