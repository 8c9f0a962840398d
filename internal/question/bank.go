package question

import (
	"sort"

	"dsa-interview-service/internal/domain"
)

// Bank is an ordered, indexable pool of questions. It holds no per-session
// state; sessions track which ids they have asked.
type Bank struct {
	questions []domain.Question
}

// NewBank copies and orders the pool by ascending id.
func NewBank(bank domain.QuestionBank) *Bank {
	qs := make([]domain.Question, len(bank.Questions))
	copy(qs, bank.Questions)
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return &Bank{questions: qs}
}

// Next returns the lowest-id question not yet in asked.
func (b *Bank) Next(asked map[int]bool) (domain.Question, error) {
	for _, q := range b.questions {
		if !asked[q.ID] {
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrBankExhausted
}

// Len reports the pool size.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Validate checks at startup that the pool can serve a full interview.
func (b *Bank) Validate(questionsPerSession int) error {
	if len(b.questions) < questionsPerSession {
		return domain.ErrBankExhausted
	}
	return nil
}

// Default returns the built-in DSA question pool.
func Default() domain.QuestionBank {
	return domain.QuestionBank{
		ID: "dsa-core",
		Questions: []domain.Question{
			{
				ID:          1,
				Text:        "What's the difference between arrays and linked lists? When would you use each?",
				Difficulty:  domain.DifficultyMedium,
				KeyConcepts: []string{"arrays", "linked lists", "time complexity", "memory access", "use cases"},
				FollowUps: []string{
					"Can you explain the time complexity of insertions in both?",
					"How does cache performance differ between arrays and linked lists?",
					"When would you prefer a linked list over an array for dynamic data?",
				},
			},
			{
				ID:          2,
				Text:        "How would you detect a cycle in a linked list?",
				Difficulty:  domain.DifficultyMedium,
				KeyConcepts: []string{"cycle detection", "Floyd's algorithm", "two pointers", "time complexity"},
				FollowUps: []string{
					"Can you describe Floyd's tortoise and hare algorithm in detail?",
					"What is the time and space complexity of your approach?",
					"How would you find the start of the cycle?",
				},
			},
			{
				ID:          3,
				Text:        "Explain binary search and its time complexity.",
				Difficulty:  domain.DifficultyEasy,
				KeyConcepts: []string{"binary search", "sorted array", "O(log n)", "divide and conquer"},
				FollowUps: []string{
					"What happens if the array is not sorted?",
					"Can you implement binary search recursively?",
					"How does binary search handle duplicate elements?",
				},
			},
			{
				ID:          4,
				Text:        "What is dynamic programming? Give an example.",
				Difficulty:  domain.DifficultyHard,
				KeyConcepts: []string{"dynamic programming", "memoization", "overlapping subproblems", "optimization"},
				FollowUps: []string{
					"What's the difference between memoization and tabulation?",
					"Can you provide a code example for a dynamic programming problem?",
					"When would dynamic programming be inefficient?",
				},
			},
			{
				ID:          5,
				Text:        "Explain how hash tables work and handle collisions.",
				Difficulty:  domain.DifficultyMedium,
				KeyConcepts: []string{"hash tables", "hash functions", "collision resolution", "chaining", "open addressing"},
				FollowUps: []string{
					"What makes a good hash function?",
					"How does chaining compare to open addressing for collision resolution?",
					"How does load factor affect hash table performance?",
				},
			},
		},
	}
}
