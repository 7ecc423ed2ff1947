// Package xlsx renders batch outcomes as a downloadable workbook for
// applicants who want an offline record of what was produced.
package xlsx

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

func (e *Exporter) ExportBatch(batch *domain.BatchResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Conversion Report"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{
		"Original Name",
		"Status",
		"Category",
		"Level",
		"Confidence",
		"Output Name",
		"Format",
		"Size (bytes)",
		"Dimensions",
		"Quality",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, file := range batch.Files {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, file.OriginalName)
		write(2, string(file.Status))
		write(3, string(file.Classification.Category))
		write(4, string(file.Classification.Level))
		write(5, fmt.Sprintf("%.2f", file.Classification.Confidence))
		if conv := file.Conversion; conv != nil {
			write(6, conv.OutputName)
			write(7, conv.Format)
			write(8, conv.SizeBytes)
			if conv.Width > 0 && conv.Height > 0 {
				write(9, fmt.Sprintf("%dx%d", conv.Width, conv.Height))
			}
			if conv.Quality > 0 {
				write(10, fmt.Sprintf("%.1f", conv.Quality))
			}
		}
		write(11, file.Error)
		row++
	}

	summaryRow := row + 1
	writeSummary := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, summaryRow)
		_ = f.SetCellValue(sheet, cell, v)
	}
	writeSummary(1, fmt.Sprintf("Batch %s (%s)", batch.ID, batch.AuthorityID))
	writeSummary(2, outcomeLabel(batch.Success))

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "F", "F", 28)
	_ = f.SetColWidth(sheet, "K", "K", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	e.logger.Debug("batch report rendered",
		"batch_id", batch.ID,
		"files", len(batch.Files),
		"bytes", buf.Len(),
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return buf.Bytes(), nil
}

func outcomeLabel(success bool) string {
	if success {
		return "ALL FILES CONVERTED"
	}
	return "COMPLETED WITH ERRORS"
}
