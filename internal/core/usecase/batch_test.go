package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

type fakeFileConverter struct {
	mu       sync.Mutex
	seen     []domain.Document
	failName string
}

func (f *fakeFileConverter) ConvertFile(ctx context.Context, doc domain.Document) domain.FileResult {
	f.mu.Lock()
	f.seen = append(f.seen, doc)
	f.mu.Unlock()

	result := domain.FileResult{FileID: doc.ID, OriginalName: doc.OriginalName, Status: domain.PhaseSuccess}
	if doc.OriginalName == f.failName {
		result.Status = domain.PhaseError
		result.Err = domain.ErrSpecNotFound
		result.Error = domain.ErrSpecNotFound.Error()
	}
	return result
}

type countObserver struct {
	mu        sync.Mutex
	started   int
	finished  map[domain.Phase]int
	qualities []float64
	batches   []int
}

func newCountObserver() *countObserver {
	return &countObserver{finished: make(map[domain.Phase]int)}
}

func (o *countObserver) StartFile() {
	o.mu.Lock()
	o.started++
	o.mu.Unlock()
}

func (o *countObserver) FinishFile(status domain.Phase, _ time.Duration) {
	o.mu.Lock()
	o.finished[status]++
	o.mu.Unlock()
}

func (o *countObserver) ObserveQuality(quality float64) {
	o.mu.Lock()
	o.qualities = append(o.qualities, quality)
	o.mu.Unlock()
}

func (o *countObserver) ObserveBatch(size int) {
	o.mu.Lock()
	o.batches = append(o.batches, size)
	o.mu.Unlock()
}

func TestConvertBatchAllSuccess(t *testing.T) {
	files := &fakeFileConverter{}
	observer := newCountObserver()
	uc := NewConvertBatchUseCase(files, 2, observer, nil)

	docs := []domain.Document{
		{OriginalName: "photo.jpg"},
		{OriginalName: "sign.png"},
		{OriginalName: "marksheet.pdf"},
	}
	batch := uc.ConvertBatch(context.Background(), "jee", docs)

	if !batch.Success {
		t.Fatal("expected batch success")
	}
	if batch.ID == "" {
		t.Fatal("expected generated batch id")
	}
	if batch.AuthorityID != "jee" {
		t.Fatalf("authority = %q", batch.AuthorityID)
	}
	if len(batch.Files) != 3 {
		t.Fatalf("files = %d", len(batch.Files))
	}
	// Results stay aligned with input order regardless of worker scheduling.
	for i, doc := range docs {
		if batch.Files[i].OriginalName != doc.OriginalName {
			t.Errorf("files[%d] = %q, want %q", i, batch.Files[i].OriginalName, doc.OriginalName)
		}
		if batch.Files[i].FileID == "" {
			t.Errorf("files[%d] missing generated id", i)
		}
	}
	if observer.started != 3 || observer.finished[domain.PhaseSuccess] != 3 {
		t.Fatalf("observer started=%d finished=%v", observer.started, observer.finished)
	}
	if len(observer.batches) != 1 || observer.batches[0] != 3 {
		t.Fatalf("observer batches = %v", observer.batches)
	}
}

func TestConvertBatchOneFailureDoesNotTouchSiblings(t *testing.T) {
	files := &fakeFileConverter{failName: "stamp.png"}
	uc := NewConvertBatchUseCase(files, 4, nil, nil)

	batch := uc.ConvertBatch(context.Background(), "upsc", []domain.Document{
		{OriginalName: "photo.jpg"},
		{OriginalName: "stamp.png"},
		{OriginalName: "sign.png"},
	})

	if batch.Success {
		t.Fatal("batch with a failed file must not report success")
	}
	statuses := map[domain.Phase]int{}
	for _, f := range batch.Files {
		statuses[f.Status]++
	}
	if statuses[domain.PhaseSuccess] != 2 || statuses[domain.PhaseError] != 1 {
		t.Fatalf("statuses = %v", statuses)
	}
	if !errors.Is(batch.Files[1].Err, domain.ErrSpecNotFound) {
		t.Fatalf("files[1].Err = %v", batch.Files[1].Err)
	}
}

func TestConvertBatchAssignsAuthority(t *testing.T) {
	files := &fakeFileConverter{}
	uc := NewConvertBatchUseCase(files, 1, nil, nil)

	uc.ConvertBatch(context.Background(), "gate", []domain.Document{{OriginalName: "a.jpg"}, {OriginalName: "b.jpg"}})

	for _, doc := range files.seen {
		if doc.AuthorityID != "gate" {
			t.Fatalf("doc %q carries authority %q", doc.OriginalName, doc.AuthorityID)
		}
		if doc.ID == "" {
			t.Fatalf("doc %q missing id", doc.OriginalName)
		}
	}
}

func TestConvertBatchEmpty(t *testing.T) {
	uc := NewConvertBatchUseCase(&fakeFileConverter{}, 0, nil, nil)

	batch := uc.ConvertBatch(context.Background(), "jee", nil)

	if batch.Success {
		t.Fatal("empty batch must not report success")
	}
	if len(batch.Files) != 0 {
		t.Fatalf("files = %d", len(batch.Files))
	}
	if batch.FinishedAt.Before(batch.StartedAt) {
		t.Fatal("finished before started")
	}
}

func TestConvertBatchDefaultWorkerCount(t *testing.T) {
	files := &fakeFileConverter{}
	uc := NewConvertBatchUseCase(files, 0, nil, nil)

	docs := make([]domain.Document, 16)
	for i := range docs {
		docs[i] = domain.Document{OriginalName: "f.jpg"}
	}
	batch := uc.ConvertBatch(context.Background(), "jee", docs)

	if len(batch.Files) != 16 {
		t.Fatalf("files = %d", len(batch.Files))
	}
	if !batch.Success {
		t.Fatal("expected success")
	}
}
