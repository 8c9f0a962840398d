package oracle

import (
	"context"
	"fmt"
	"strings"

	"dsa-interview-service/internal/domain"
)

// Heuristic is a local oracle that scores by answer length and concept
// mentions. It serves as a standalone implementation when no LLM is
// configured and as the degraded path behind the client.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Analyze(_ context.Context, q domain.Question, answer string) (domain.AnswerAnalysis, error) {
	words := len(strings.Fields(answer))
	score := words / 10
	if score < 2 {
		score = 2
	}
	if score > 8 {
		score = 8
	}

	lower := strings.ToLower(answer)
	var covered, missing []string
	for _, concept := range q.KeyConcepts {
		if strings.Contains(lower, strings.ToLower(concept)) {
			covered = append(covered, concept)
		} else {
			missing = append(missing, concept)
		}
	}

	quality := "fair"
	depth := "shallow"
	if len(covered) > len(missing) {
		quality = "good"
		depth = "adequate"
	}

	return domain.AnswerAnalysis{
		Score:            score,
		NormalizedScore:  float64(score) / 10.0,
		Quality:          quality,
		Depth:            depth,
		ConceptsCovered:  covered,
		MissingConcepts:  missing,
		DetailedAnalysis: fmt.Sprintf("Heuristic scoring based on answer length (%d words) and concept mentions.", words),
		Raw:              "heuristic",
	}, nil
}

func (h *Heuristic) Feedback(_ context.Context, _ domain.Question, _ string, analysis domain.AnswerAnalysis) (string, error) {
	switch {
	case analysis.Score >= 7:
		return fmt.Sprintf("Great answer! You demonstrated good understanding. Score: %d/10. Try to include more specific DSA concepts.", analysis.Score), nil
	case analysis.Score >= 5:
		return fmt.Sprintf("Good response with room for improvement. Score: %d/10. Focus on addressing all key concepts.", analysis.Score), nil
	default:
		return fmt.Sprintf("Your answer needs improvement. Score: %d/10. Please provide more detailed explanations and cover the key concepts.", analysis.Score), nil
	}
}
