package app_test

import (
	"reflect"
	"strings"
	"testing"

	"dsa-interview-service/internal/app"
	"dsa-interview-service/internal/domain"
)

func record(score int, covered, missing []string, followups int) domain.PerformanceRecord {
	return domain.PerformanceRecord{
		Analysis: domain.AnswerAnalysis{
			Score:           score,
			NormalizedScore: float64(score) / 10.0,
			ConceptsCovered: covered,
			MissingConcepts: missing,
		},
		Followups: followups,
	}
}

func TestBuildSummaryAggregates(t *testing.T) {
	summary := app.BuildSummary([]domain.PerformanceRecord{
		record(8, []string{"arrays", "time complexity"}, []string{"use cases"}, 0),
		record(4, []string{"time complexity"}, []string{"memoization", "use cases"}, 1),
		record(6, []string{"binary search"}, nil, 0),
	})

	if summary.QuestionsAnswered != 3 {
		t.Fatalf("expected 3 answered, got %d", summary.QuestionsAnswered)
	}
	if summary.AverageScore != 6.0 {
		t.Fatalf("expected average 6.0, got %f", summary.AverageScore)
	}
	if summary.FollowupsUsed != 1 {
		t.Fatalf("expected 1 follow-up used, got %d", summary.FollowupsUsed)
	}

	// time complexity appears twice, others once with lexicographic tie-break.
	wantStrengths := []string{"time complexity", "arrays", "binary search"}
	if !reflect.DeepEqual(summary.Strengths, wantStrengths) {
		t.Fatalf("strengths mismatch: %v", summary.Strengths)
	}
	wantWeaknesses := []string{"use cases", "memoization"}
	if !reflect.DeepEqual(summary.Weaknesses, wantWeaknesses) {
		t.Fatalf("weaknesses mismatch: %v", summary.Weaknesses)
	}

	if len(summary.Recommendations) != len(summary.Weaknesses) {
		t.Fatalf("expected one recommendation per weakness, got %d", len(summary.Recommendations))
	}
	// memoization has a canned recommendation, use cases falls back.
	if !strings.Contains(summary.Recommendations[0], "use cases") {
		t.Fatalf("expected fallback advice for use cases, got %q", summary.Recommendations[0])
	}
	if !strings.Contains(summary.Recommendations[1], "memoized") {
		t.Fatalf("expected canned advice for memoization, got %q", summary.Recommendations[1])
	}
}

func TestBuildSummaryCapsRankedConcepts(t *testing.T) {
	summary := app.BuildSummary([]domain.PerformanceRecord{
		record(5, []string{"a", "b", "c", "d", "e"}, nil, 0),
	})
	if len(summary.Strengths) != 3 {
		t.Fatalf("expected top 3, got %v", summary.Strengths)
	}
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := app.BuildSummary(nil)
	if summary.QuestionsAnswered != 0 || summary.AverageScore != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
	if !strings.Contains(summary.Text, "No questions were answered") {
		t.Fatalf("unexpected empty-summary text: %q", summary.Text)
	}
}

func TestBuildSummaryDeterministic(t *testing.T) {
	records := []domain.PerformanceRecord{
		record(7, []string{"hash tables", "chaining"}, []string{"open addressing"}, 0),
		record(3, []string{"chaining"}, []string{"hash functions", "open addressing"}, 1),
	}
	a := app.BuildSummary(records)
	b := app.BuildSummary(records)
	if a.Text != b.Text {
		t.Fatalf("summary text not deterministic")
	}
	if !reflect.DeepEqual(a.Weaknesses, b.Weaknesses) {
		t.Fatalf("weakness ranking not deterministic")
	}
}

func TestSummaryTextRendersSections(t *testing.T) {
	summary := app.BuildSummary([]domain.PerformanceRecord{
		record(9, []string{"binary search"}, []string{"divide and conquer"}, 0),
	})
	for _, want := range []string{"Average score: 9.0/10 (90%)", "Questions answered: 1", "Strengths: binary search", "Areas for improvement: divide and conquer", "Recommendations:"} {
		if !strings.Contains(summary.Text, want) {
			t.Fatalf("expected %q in summary text:\n%s", want, summary.Text)
		}
	}
}
