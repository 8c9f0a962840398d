package question

import (
	"fmt"

	"dsa-interview-service/internal/domain"
)

// SynthesizeFollowup produces a narrower re-prompt for the same base question.
// followupNumber is 1-based: the first follow-up for a question is 1. The text
// is drawn from the question's canned follow-ups when one exists for that
// slot, otherwise templated from the first missing concept. Deterministic.
func SynthesizeFollowup(base domain.Question, missing []string, followupNumber int) domain.Question {
	text := ""
	if followupNumber >= 1 && followupNumber <= len(base.FollowUps) {
		text = base.FollowUps[followupNumber-1]
	} else if len(missing) > 0 {
		text = fmt.Sprintf("Your answer didn't touch on %s. Can you explain how %s applies here?", missing[0], missing[0])
	} else {
		text = fmt.Sprintf("Can you go deeper on your previous answer? Walk through the trade-offs in more detail. (%s)", base.Text)
	}
	return domain.Question{
		ID:          base.ID,
		Text:        text,
		Difficulty:  base.Difficulty,
		KeyConcepts: base.KeyConcepts,
		IsFollowup:  true,
	}
}
