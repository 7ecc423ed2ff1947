package usecase

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/examdocs/internal/core/domain"
	"github.com/kirillkom/examdocs/internal/core/ports"
)

// ConvertObserver receives batch/file telemetry. Implemented by the
// prometheus worker metrics; a no-op stands in everywhere else.
type ConvertObserver interface {
	StartFile()
	FinishFile(status domain.Phase, duration time.Duration)
	ObserveQuality(quality float64)
	ObserveBatch(size int)
}

type nopObserver struct{}

func (nopObserver) StartFile()                             {}
func (nopObserver) FinishFile(domain.Phase, time.Duration) {}
func (nopObserver) ObserveQuality(float64)                 {}
func (nopObserver) ObserveBatch(int)                       {}

// ConvertBatchUseCase fans a batch out over a bounded worker pool. Files
// share no mutable state and are fully independent: one file's failure or
// cancellation never touches its siblings, and the batch always runs to
// completion.
type ConvertBatchUseCase struct {
	files    ports.FileConverter
	workers  int
	observer ConvertObserver
	logger   *slog.Logger
}

func NewConvertBatchUseCase(files ports.FileConverter, workers int, observer ConvertObserver, logger *slog.Logger) *ConvertBatchUseCase {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvertBatchUseCase{
		files:    files,
		workers:  workers,
		observer: observer,
		logger:   logger,
	}
}

func (uc *ConvertBatchUseCase) ConvertBatch(ctx context.Context, authorityID string, docs []domain.Document) *domain.BatchResult {
	batch := &domain.BatchResult{
		ID:          uuid.NewString(),
		AuthorityID: authorityID,
		StartedAt:   time.Now().UTC(),
		Files:       make([]domain.FileResult, len(docs)),
	}
	uc.observer.ObserveBatch(len(docs))

	workers := uc.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(docs) {
		workers = len(docs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				batch.Files[i] = uc.convertOne(ctx, authorityID, docs[i])
			}
		}()
	}
	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	batch.FinishedAt = time.Now().UTC()
	batch.Success = len(docs) > 0
	for _, f := range batch.Files {
		if f.Status != domain.PhaseSuccess {
			batch.Success = false
			break
		}
	}

	uc.logger.Info("batch finished",
		"batch_id", batch.ID,
		"authority", authorityID,
		"files", len(docs),
		"success", batch.Success,
		"duration_ms", float64(batch.FinishedAt.Sub(batch.StartedAt).Microseconds())/1000.0,
	)
	return batch
}

func (uc *ConvertBatchUseCase) convertOne(ctx context.Context, authorityID string, doc domain.Document) domain.FileResult {
	// One cancellation scope per file: aborting it releases this file's
	// buffers without touching sibling tasks.
	fileCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.AuthorityID == "" {
		doc.AuthorityID = authorityID
	}

	uc.observer.StartFile()
	start := time.Now()
	result := uc.files.ConvertFile(fileCtx, doc)
	uc.observer.FinishFile(result.Status, time.Since(start))
	if result.Conversion != nil && result.Conversion.Quality > 0 {
		uc.observer.ObserveQuality(result.Conversion.Quality)
	}
	return result
}
