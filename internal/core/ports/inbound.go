package ports

import (
	"context"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// BatchConverter is the inbound contract for converting a set of files for
// one authority.
type BatchConverter interface {
	ConvertBatch(ctx context.Context, authorityID string, docs []domain.Document) *domain.BatchResult
}

// FileConverter is the inbound contract for the per-file pipeline.
type FileConverter interface {
	ConvertFile(ctx context.Context, doc domain.Document) domain.FileResult
}
