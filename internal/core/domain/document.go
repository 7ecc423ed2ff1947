package domain

import "time"

type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseConverting Phase = "converting"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// Checkpoint percentages reported to the progress channel at each phase
// transition.
const (
	PercentAnalyzing  = 20
	PercentConverting = 50
	PercentDone       = 100
)

// Document is an uploaded file awaiting conversion. It is immutable once
// ingested and owned exclusively by the task processing it.
type Document struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	MediaType    string `json:"media_type"`
	AuthorityID  string `json:"authority_id"`
	Bytes        []byte `json:"-"`
}

// ProgressEvent is one checkpoint on the progress channel. The pipeline
// never blocks on its consumer.
type ProgressEvent struct {
	FileID  string `json:"file_id"`
	Phase   Phase  `json:"phase"`
	Percent int    `json:"percent"`
}

// Conversion is the product of a successful (or best-effort) conversion.
type Conversion struct {
	OutputName  string        `json:"output_name"`
	Format      string        `json:"format"`
	Bytes       []byte        `json:"-"`
	SizeBytes   int64         `json:"size_bytes"`
	Width       int           `json:"width,omitempty"`
	Height      int           `json:"height,omitempty"`
	Quality     float64       `json:"quality,omitempty"`
	AppliedSpec Specification `json:"applied_spec"`
}

// FileResult is the per-file outcome. A new attempt produces a new result,
// never a patched one.
type FileResult struct {
	FileID         string               `json:"file_id"`
	OriginalName   string               `json:"original_name"`
	Status         Phase                `json:"status"`
	Classification ClassificationResult `json:"classification"`
	Conversion     *Conversion          `json:"conversion,omitempty"`
	Error          string               `json:"error,omitempty"`
	Err            error                `json:"-"`
}

// OutputKey names this file's stored output. Output names repeat whenever two
// files in a batch resolve to the same category, so the file ID keeps keys
// unique while OutputName stays the display name.
func (f FileResult) OutputKey() string {
	if f.Conversion == nil {
		return ""
	}
	return f.FileID + "_" + f.Conversion.OutputName
}

// BatchResult aggregates one conversion run. Success is true only when every
// file reached success; a failed file never halts its siblings.
type BatchResult struct {
	ID          string       `json:"id"`
	AuthorityID string       `json:"authority_id"`
	Success     bool         `json:"success"`
	Files       []FileResult `json:"files"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
}

// EngineKind is the conversion backend variant, decided once at process
// start via an availability probe and passed explicitly, never read from
// shared global state.
type EngineKind string

const (
	EngineEnhanced EngineKind = "enhanced"
	EngineBaseline EngineKind = "baseline"
)
