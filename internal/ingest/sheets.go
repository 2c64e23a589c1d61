package ingest

import (
	"strings"

	"trainpulse/pkg/contracts/domain"
)

// locateSheet picks the best-matching worksheet for a logical dataset using
// name-substring heuristics. The courses dataset is mandatory and falls back
// to the first worksheet when no name matches; every other dataset reports
// ok=false when unmatched, which means the dataset is skipped, not an error.
func locateSheet(names []string, dataset domain.Dataset) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	for _, name := range names {
		lower := strings.ToLower(strings.TrimSpace(name))
		switch dataset {
		case domain.DatasetCourses:
			if strings.Contains(lower, "curso") {
				return name, true
			}
		case domain.DatasetEvaluations:
			if strings.Contains(lower, "resultados") || strings.Contains(lower, "ev") {
				return name, true
			}
		case domain.DatasetQuestions:
			if strings.Contains(lower, "preguntas") || strings.Contains(lower, "respuestas") {
				return name, true
			}
		case domain.DatasetOpenSurvey:
			if strings.Contains(lower, "abiertas") || strings.Contains(lower, "feedback") ||
				strings.Contains(lower, "comentarios") ||
				(strings.Contains(lower, "encuesta") && !strings.Contains(lower, "multi")) {
				return name, true
			}
		case domain.DatasetMultipleChoice:
			if strings.Contains(lower, "multiples") || strings.Contains(lower, "múltiples") ||
				(strings.Contains(lower, "encuestas") && strings.Contains(lower, "multi")) {
				return name, true
			}
		}
	}
	if dataset == domain.DatasetCourses {
		return names[0], true
	}
	return "", false
}
