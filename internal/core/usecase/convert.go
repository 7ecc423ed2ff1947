package usecase

import (
	"context"
	"log/slog"

	"github.com/kirillkom/examdocs/internal/core/domain"
	"github.com/kirillkom/examdocs/internal/core/ports"
)

// ConvertFileUseCase drives one file through
// analyzing → converting → success|error, emitting a checkpoint at each
// transition. Steps within a file are strictly sequential; the
// classification output feeds resolution and conversion.
type ConvertFileUseCase struct {
	classifier ports.Classifier
	catalog    ports.ProfileCatalog
	engine     ports.ConversionEngine
	extractor  ports.ContentExtractor
	progress   ports.ProgressSink
	logger     *slog.Logger
}

func NewConvertFileUseCase(
	classifier ports.Classifier,
	catalog ports.ProfileCatalog,
	engine ports.ConversionEngine,
	extractor ports.ContentExtractor,
	progress ports.ProgressSink,
	logger *slog.Logger,
) *ConvertFileUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvertFileUseCase{
		classifier: classifier,
		catalog:    catalog,
		engine:     engine,
		extractor:  extractor,
		progress:   progress,
		logger:     logger,
	}
}

func (uc *ConvertFileUseCase) ConvertFile(ctx context.Context, doc domain.Document) domain.FileResult {
	uc.checkpoint(ctx, doc.ID, domain.PhaseAnalyzing, domain.PercentAnalyzing)

	classification := uc.classifier.Classify(doc.OriginalName, uc.contentText(ctx, doc))
	uc.checkpoint(ctx, doc.ID, domain.PhaseConverting, domain.PercentConverting)

	result := domain.FileResult{
		FileID:         doc.ID,
		OriginalName:   doc.OriginalName,
		Classification: classification,
	}

	spec, err := uc.catalog.Resolve(doc.AuthorityID, classification.Category)
	if err != nil {
		return uc.fail(ctx, result, err)
	}

	conversion, err := uc.engine.Convert(ctx, doc, spec, classification.Category)
	if err != nil {
		// A best-effort conversion (floor-quality over budget) stays on the
		// failed result so the caller can still inspect it.
		result.Conversion = conversion
		return uc.fail(ctx, result, err)
	}

	result.Status = domain.PhaseSuccess
	result.Conversion = conversion
	uc.checkpoint(ctx, doc.ID, domain.PhaseSuccess, domain.PercentDone)
	return result
}

// contentText best-effort extracts text for content-based classification.
// Extraction failures never fail the file.
func (uc *ConvertFileUseCase) contentText(ctx context.Context, doc domain.Document) string {
	if uc.extractor == nil {
		return ""
	}
	text, err := uc.extractor.Extract(ctx, doc.OriginalName, doc.MediaType, doc.Bytes)
	if err != nil {
		uc.logger.Debug("content extraction skipped", "file_id", doc.ID, "error", err)
		return ""
	}
	return text
}

func (uc *ConvertFileUseCase) fail(ctx context.Context, result domain.FileResult, err error) domain.FileResult {
	result.Status = domain.PhaseError
	result.Err = err
	result.Error = err.Error()
	uc.logger.Warn("file conversion failed",
		"file_id", result.FileID,
		"original_name", result.OriginalName,
		"error", err,
	)
	uc.checkpoint(ctx, result.FileID, domain.PhaseError, domain.PercentDone)
	return result
}

// checkpoint never blocks the pipeline: sink errors are logged and dropped.
func (uc *ConvertFileUseCase) checkpoint(ctx context.Context, fileID string, phase domain.Phase, percent int) {
	event := domain.ProgressEvent{FileID: fileID, Phase: phase, Percent: percent}
	if err := uc.progress.Publish(ctx, event); err != nil {
		uc.logger.Debug("progress checkpoint dropped", "file_id", fileID, "phase", phase, "error", err)
	}
}
