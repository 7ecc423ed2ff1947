package ports

import (
	"context"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// Classifier infers a document's category and education level from its name
// and optional content text. It never fails; absence of evidence yields the
// default category with confidence zero.
type Classifier interface {
	Classify(filename, contentText string) domain.ClassificationResult
}

// ProfileCatalog resolves authority requirement tables. Read-only.
type ProfileCatalog interface {
	Authorities() []string
	Profile(authorityID string) (*domain.ExamProfile, error)
	Resolve(authorityID string, category domain.DocumentCategory) (domain.Specification, error)
}

// ConversionEngine re-encodes a document to satisfy a specification. The
// detected category feeds the standardized output name.
type ConversionEngine interface {
	Convert(ctx context.Context, doc domain.Document, spec domain.Specification, category domain.DocumentCategory) (*domain.Conversion, error)
	Kind() domain.EngineKind
}

// ContentExtractor produces best-effort plain text from a source document
// for content-based classification.
type ContentExtractor interface {
	Extract(ctx context.Context, filename, mediaType string, data []byte) (string, error)
}

// ProgressSink receives phase checkpoints. Implementations must not block
// the pipeline; errors are logged by the caller and otherwise ignored.
type ProgressSink interface {
	Publish(ctx context.Context, event domain.ProgressEvent) error
}

// OutcomeRepository records batch outcomes for later retrieval. It is an
// audit surface only; conversion never reads it.
type OutcomeRepository interface {
	SaveBatch(ctx context.Context, batch *domain.BatchResult) error
	GetBatch(ctx context.Context, id string) (*domain.BatchResult, error)
}

// OutputStore persists converted bytes for later download.
type OutputStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) ([]byte, error)
}

// ReportExporter renders a batch result as a downloadable workbook.
type ReportExporter interface {
	ExportBatch(batch *domain.BatchResult) ([]byte, error)
}
