// Package oracle is the boundary to the external answer-evaluation service.
// The state machine only consumes its output contract; everything here can be
// swapped without touching session logic.
package oracle

import (
	"context"

	"dsa-interview-service/internal/domain"
)

// Oracle scores one answer against one question and produces textual feedback.
type Oracle interface {
	Analyze(ctx context.Context, q domain.Question, answer string) (domain.AnswerAnalysis, error)
	Feedback(ctx context.Context, q domain.Question, answer string, analysis domain.AnswerAnalysis) (string, error)
}
