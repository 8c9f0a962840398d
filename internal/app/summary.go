package app

import (
	"fmt"
	"sort"
	"strings"

	"dsa-interview-service/internal/domain"
)

// conceptAdvice maps a weakness concept to a canned recommendation. Concepts
// without an entry fall back to a generic review template.
var conceptAdvice = map[string]string{
	"arrays":               "Practice array manipulation problems and study contiguous memory trade-offs.",
	"linked lists":         "Implement singly and doubly linked lists from scratch, including insertion and deletion.",
	"time complexity":      "Work through Big-O analysis of common operations until it becomes second nature.",
	"memory access":        "Study how cache locality affects array and pointer-based structures.",
	"cycle detection":      "Study Floyd's tortoise and hare algorithm and implement it on sample lists.",
	"two pointers":         "Drill two-pointer patterns: fast/slow, left/right, and sliding windows.",
	"binary search":        "Drill binary search variants: first/last occurrence, rotated arrays, boundaries.",
	"sorted array":         "Practice problems that exploit sortedness: merging, partitioning, searching.",
	"divide and conquer":   "Revisit merge sort and quickselect as canonical divide and conquer examples.",
	"dynamic programming":  "Solve classic DP problems (knapsack, longest common subsequence) both bottom-up and top-down.",
	"memoization":          "Convert recursive solutions to memoized ones and compare their complexity.",
	"hash tables":          "Review hash function design and the chaining vs open addressing trade-off.",
	"hash functions":       "Study what makes a hash function uniform and cheap to compute.",
	"collision resolution": "Compare chaining and open addressing under different load factors.",
}

const summaryTopN = 3

// BuildSummary aggregates finalized performance records into the terminal
// summary. Concept ranking is by frequency, ties broken lexicographically, so
// the result is deterministic for a given record list.
func BuildSummary(performance []domain.PerformanceRecord) domain.Summary {
	summary := domain.Summary{
		QuestionsAnswered: len(performance),
	}

	if len(performance) == 0 {
		summary.Text = "Interview complete! No questions were answered."
		return summary
	}

	total := 0
	covered := make([][]string, 0, len(performance))
	missing := make([][]string, 0, len(performance))
	for _, record := range performance {
		total += record.Analysis.Score
		summary.FollowupsUsed += record.Followups
		covered = append(covered, record.Analysis.ConceptsCovered)
		missing = append(missing, record.Analysis.MissingConcepts)
	}
	summary.AverageScore = float64(total) / float64(len(performance))
	summary.Strengths = rankByFrequency(covered, summaryTopN)
	summary.Weaknesses = rankByFrequency(missing, summaryTopN)

	for _, weakness := range summary.Weaknesses {
		if advice, ok := conceptAdvice[weakness]; ok {
			summary.Recommendations = append(summary.Recommendations, advice)
		} else {
			summary.Recommendations = append(summary.Recommendations, fmt.Sprintf("Review the fundamentals of %s.", weakness))
		}
	}

	summary.Text = renderSummaryText(summary)
	return summary
}

func rankByFrequency(lists [][]string, top int) []string {
	counts := make(map[string]int)
	for _, list := range lists {
		for _, concept := range list {
			name := strings.ToLower(strings.TrimSpace(concept))
			if name != "" {
				counts[name]++
			}
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) > top {
		names = names[:top]
	}
	return names
}

func renderSummaryText(s domain.Summary) string {
	var b strings.Builder
	b.WriteString("Interview complete!\n\n")
	fmt.Fprintf(&b, "Average score: %.1f/10 (%.0f%%)\n", s.AverageScore, s.AverageScore*10)
	fmt.Fprintf(&b, "Questions answered: %d\n", s.QuestionsAnswered)
	fmt.Fprintf(&b, "Follow-ups used: %d\n", s.FollowupsUsed)

	if len(s.Strengths) > 0 {
		fmt.Fprintf(&b, "\nStrengths: %s\n", strings.Join(s.Strengths, ", "))
	}
	if len(s.Weaknesses) > 0 {
		fmt.Fprintf(&b, "Areas for improvement: %s\n", strings.Join(s.Weaknesses, ", "))
	}
	if len(s.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range s.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
