package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirillkom/examdocs/internal/core/domain"
	"github.com/kirillkom/examdocs/internal/core/ports"
)

// maxUploadBytes caps one multipart upload. Exam portals rarely accept
// source files above a few megabytes each.
const maxUploadBytes = 64 << 20

type Router struct {
	batches  ports.BatchConverter
	catalog  ports.ProfileCatalog
	outcomes ports.OutcomeRepository
	store    ports.OutputStore
	reports  ports.ReportExporter
	logger   *slog.Logger

	rateLimitRPS   float64
	rateLimitBurst int
}

type RouterOptions struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(
	batches ports.BatchConverter,
	catalog ports.ProfileCatalog,
	outcomes ports.OutcomeRepository,
	store ports.OutputStore,
	reports ports.ReportExporter,
	logger *slog.Logger,
	options RouterOptions,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		batches:        batches,
		catalog:        catalog,
		outcomes:       outcomes,
		store:          store,
		reports:        reports,
		logger:         logger,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/authorities", rt.listAuthorities)
	mux.HandleFunc("/v1/batches", rt.createBatch)
	mux.HandleFunc("/v1/batches/", rt.batchSubresource)

	var handler http.Handler = mux
	handler = rateLimitMiddleware(rt.rateLimitRPS, rt.rateLimitBurst, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listAuthorities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authorities": rt.catalog.Authorities()})
}

func (rt *Router) createBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		rt.writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse multipart form", err))
		return
	}

	authorityID := strings.ToLower(strings.TrimSpace(r.FormValue("authority")))
	if authorityID == "" {
		rt.writeError(w, domain.WrapError(domain.ErrInvalidInput, "read authority field", fmt.Errorf("multipart field 'authority' is required")))
		return
	}
	if _, err := rt.catalog.Profile(authorityID); err != nil {
		rt.writeError(w, err)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		rt.writeError(w, domain.WrapError(domain.ErrInvalidInput, "read files field", fmt.Errorf("at least one 'files' part is required")))
		return
	}

	docs := make([]domain.Document, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			rt.writeError(w, domain.WrapError(domain.ErrInvalidInput, "open upload", err))
			return
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			rt.writeError(w, domain.WrapError(domain.ErrInvalidInput, "read upload", err))
			return
		}
		docs = append(docs, domain.Document{
			OriginalName: header.Filename,
			MediaType:    header.Header.Get("Content-Type"),
			Bytes:        data,
		})
	}

	batch := rt.batches.ConvertBatch(r.Context(), authorityID, docs)
	rt.persistOutputs(r, batch)

	if rt.outcomes != nil {
		if err := rt.outcomes.SaveBatch(r.Context(), batch); err != nil {
			rt.logger.Error("persist batch outcome failed", "batch_id", batch.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, batch)
}

// persistOutputs stores converted bytes, best-effort ones included, so
// downloads and reports survive the request. Keys carry the file ID because
// two files of the same category share one output name.
func (rt *Router) persistOutputs(r *http.Request, batch *domain.BatchResult) {
	if rt.store == nil {
		return
	}
	for _, file := range batch.Files {
		conv := file.Conversion
		if conv == nil || len(conv.Bytes) == 0 {
			continue
		}
		key := batch.ID + "/" + file.OutputKey()
		if err := rt.store.Save(r.Context(), key, conv.Bytes); err != nil {
			rt.logger.Error("store output failed", "batch_id", batch.ID, "key", key, "error", err)
		}
	}
}

// batchSubresource dispatches /v1/batches/{id}, /{id}/report and
// /{id}/files/{name}.
func (rt *Router) batchSubresource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/batches/")
	parts := strings.SplitN(rest, "/", 3)
	id := parts[0]
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch id is required"})
		return
	}

	switch {
	case len(parts) == 1:
		rt.getBatch(w, r, id)
	case len(parts) == 2 && parts[1] == "report":
		rt.getBatchReport(w, r, id)
	case len(parts) == 3 && parts[1] == "files" && parts[2] != "":
		rt.getBatchFile(w, r, id, parts[2])
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown batch resource"})
	}
}

func (rt *Router) getBatch(w http.ResponseWriter, r *http.Request, id string) {
	if rt.outcomes == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "outcome persistence is disabled"})
		return
	}
	batch, err := rt.outcomes.GetBatch(r.Context(), id)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (rt *Router) getBatchReport(w http.ResponseWriter, r *http.Request, id string) {
	if rt.outcomes == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "outcome persistence is disabled"})
		return
	}
	batch, err := rt.outcomes.GetBatch(r.Context(), id)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	data, err := rt.reports.ExportBatch(batch)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "batch_"+id+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) getBatchFile(w http.ResponseWriter, r *http.Request, id, name string) {
	if rt.store == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "output storage is disabled"})
		return
	}
	data, err := rt.store.Open(r.Context(), id+"/"+name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "output not found"})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
