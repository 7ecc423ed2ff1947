// Package classifier infers a document's semantic category and education
// level from its filename and optional content text, using fixed keyword
// and pattern tables. Scoring is heuristic: weights accumulate per table
// row and are clamped to 1.0, and the overall confidence is the mean of
// the two clamped sub-scores.
package classifier

import (
	"regexp"
	"strings"

	"github.com/kirillkom/examdocs/internal/core/domain"
)

// Weights for category detection.
const (
	categoryKeywordWeight = 0.3
	categoryPatternWeight = 0.4
	categoryContentWeight = 0.2
)

// Weights for education-level detection.
const (
	levelKeywordWeight = 0.4
	levelPatternWeight = 0.5
	levelContentWeight = 0.3
)

type Keyword struct{}

func New() *Keyword {
	return &Keyword{}
}

// Classify never fails: when nothing matches it returns the default
// category with confidence zero.
func (k *Keyword) Classify(filename, contentText string) domain.ClassificationResult {
	name := strings.ToLower(filename)
	content := strings.ToLower(contentText)

	category, categoryScore := detectCategory(name, content)
	level, levelScore := detectLevel(name, content)

	return domain.ClassificationResult{
		Category:      category,
		Level:         level,
		Confidence:    (categoryScore + levelScore) / 2,
		SuggestedName: suggestedName(category, level, filename),
	}
}

func detectCategory(name, content string) (domain.DocumentCategory, float64) {
	best := domain.CategoryDocument
	bestScore := 0.0

	for _, entry := range categories {
		score := score(name, content, entry.keywords, entry.patterns,
			categoryKeywordWeight, categoryPatternWeight, categoryContentWeight)
		// Strictly-higher wins; ties keep the earlier registration.
		if score > bestScore {
			bestScore = score
			best = entry.id
		}
	}
	return best, clamp(bestScore)
}

func detectLevel(name, content string) (domain.EducationLevel, float64) {
	var best domain.EducationLevel
	bestScore := 0.0

	for _, entry := range levels {
		score := score(name, content, entry.keywords, entry.patterns,
			levelKeywordWeight, levelPatternWeight, levelContentWeight)
		if score > bestScore {
			bestScore = score
			best = entry.id
		}
	}
	return best, clamp(bestScore)
}

func score(name, content string, keywords []string, patterns []*regexp.Regexp, keywordW, patternW, contentW float64) float64 {
	total := 0.0

	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			total += keywordW
		}
	}

	for _, p := range patterns {
		if p.MatchString(name) {
			total += patternW
			break
		}
	}

	if content != "" {
		for _, kw := range keywords {
			if strings.Contains(content, kw) {
				total += contentW
				break
			}
		}
	}

	return total
}

func clamp(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}

func suggestedName(category domain.DocumentCategory, level domain.EducationLevel, original string) string {
	ext := "pdf"
	if idx := strings.LastIndex(original, "."); idx >= 0 && idx < len(original)-1 {
		ext = original[idx+1:]
	}

	parts := make([]string, 0, 2)
	if level != "" {
		for _, l := range levels {
			if l.id == level {
				parts = append(parts, l.label)
				break
			}
		}
	}
	parts = append(parts, categoryLabel(category))

	return strings.Join(parts, "_") + "." + ext
}
