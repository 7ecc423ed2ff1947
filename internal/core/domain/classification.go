package domain

type DocumentCategory string

// CategoryDocument is the fallback category when no registered category
// scores above zero. It is not an error.
const CategoryDocument DocumentCategory = "document"

type EducationLevel string

// ClassificationResult is the classifier's verdict for one file.
// Confidence is the arithmetic mean of the category and education-level
// sub-scores, each clamped to 1.0 before averaging. It is a heuristic
// score, not a probability.
type ClassificationResult struct {
	Category      DocumentCategory `json:"category"`
	Level         EducationLevel   `json:"level,omitempty"`
	Confidence    float64          `json:"confidence"`
	SuggestedName string           `json:"suggested_name"`
}
