// Command batch converts a directory of files for one authority without
// running the API server. Outputs land next to the inputs in an out/
// directory; progress goes to the log.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kirillkom/examdocs/internal/config"
	"github.com/kirillkom/examdocs/internal/core/domain"
	"github.com/kirillkom/examdocs/internal/core/usecase"
	"github.com/kirillkom/examdocs/internal/infrastructure/catalog"
	"github.com/kirillkom/examdocs/internal/infrastructure/classifier"
	"github.com/kirillkom/examdocs/internal/infrastructure/engine"
	"github.com/kirillkom/examdocs/internal/infrastructure/extractor/doctext"
	"github.com/kirillkom/examdocs/internal/infrastructure/progress"
	"github.com/kirillkom/examdocs/internal/observability/logging"
)

func main() {
	authority := flag.String("authority", "", "authority id (see -list)")
	dir := flag.String("dir", ".", "directory with source files")
	out := flag.String("out", "", "output directory (default <dir>/out)")
	list := flag.Bool("list", false, "list supported authorities and exit")
	baseline := flag.Bool("baseline", false, "force the baseline decoder")
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewJSONLogger("examdocs-batch", cfg.LogLevel)

	profiles, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	if *list {
		for _, id := range profiles.Authorities() {
			fmt.Println(id)
		}
		return
	}
	if *authority == "" {
		log.Fatal("flag -authority is required")
	}
	if _, err := profiles.Profile(strings.ToLower(*authority)); err != nil {
		log.Fatalf("unknown authority %q", *authority)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, err := readDir(*dir)
	if err != nil {
		log.Fatalf("read input dir: %v", err)
	}
	if len(docs) == 0 {
		log.Fatalf("no files in %s", *dir)
	}

	decoder := engine.ProbeDecoder(*baseline, logger)
	converter := engine.New(decoder, logger)
	logger.Info("conversion engine selected", "kind", converter.Kind())

	fileUC := usecase.NewConvertFileUseCase(
		classifier.New(),
		profiles,
		converter,
		doctext.NewExtractor(),
		progress.NewLogSink(logger),
		logger,
	)
	batchUC := usecase.NewConvertBatchUseCase(fileUC, cfg.WorkerPoolSize, nil, logger)

	batch := batchUC.ConvertBatch(ctx, strings.ToLower(*authority), docs)

	outDir := *out
	if outDir == "" {
		outDir = filepath.Join(*dir, "out")
	}
	if err := writeOutputs(outDir, batch); err != nil {
		log.Fatalf("write outputs: %v", err)
	}

	summary, _ := json.MarshalIndent(batch, "", "  ")
	fmt.Println(string(summary))
	if !batch.Success {
		os.Exit(1)
	}
}

func readDir(dir string) ([]domain.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, domain.Document{
			OriginalName: entry.Name(),
			MediaType:    mime.TypeByExtension(filepath.Ext(entry.Name())),
			Bytes:        data,
		})
	}
	return docs, nil
}

func writeOutputs(outDir string, batch *domain.BatchResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	// Two files of the same category share an output name. The first one
	// keeps the plain name; later ones fall back to the file-ID key.
	used := make(map[string]bool)
	for _, file := range batch.Files {
		conv := file.Conversion
		if conv == nil || len(conv.Bytes) == 0 {
			continue
		}
		name := conv.OutputName
		if used[name] {
			name = file.OutputKey()
		}
		used[name] = true
		if err := os.WriteFile(filepath.Join(outDir, name), conv.Bytes, 0o644); err != nil {
			return err
		}
	}
	return nil
}
