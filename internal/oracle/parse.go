package oracle

import (
	"regexp"
	"strconv"
	"strings"

	"dsa-interview-service/internal/domain"
)

var (
	scoreRe    = regexp.MustCompile(`SCORE:\s*(\d+)`)
	coveredRe  = regexp.MustCompile(`CONCEPTS_COVERED:\s*([^\n]*)`)
	missingRe  = regexp.MustCompile(`MISSING_CONCEPTS:\s*([^\n]*)`)
	qualityRe  = regexp.MustCompile(`QUALITY:\s*([^\n]*)`)
	depthRe    = regexp.MustCompile(`DEPTH:\s*([^\n]*)`)
	detailedRe = regexp.MustCompile(`DETAILED_ANALYSIS:\s*([^\n]*)`)
)

// ParseAnalysis extracts a structured analysis from the oracle's line-tagged
// response format. Missing fields fall back to neutral defaults rather than
// failing the whole analysis.
func ParseAnalysis(raw string) domain.AnswerAnalysis {
	score := 5
	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			score = v
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	return domain.AnswerAnalysis{
		Score:            score,
		NormalizedScore:  float64(score) / 10.0,
		Quality:          matchOr(qualityRe, raw, "fair"),
		Depth:            matchOr(depthRe, raw, "adequate"),
		ConceptsCovered:  splitConcepts(matchOr(coveredRe, raw, "none")),
		MissingConcepts:  splitConcepts(matchOr(missingRe, raw, "none")),
		DetailedAnalysis: matchOr(detailedRe, raw, "Analysis unavailable."),
		Raw:              raw,
	}
}

func matchOr(re *regexp.Regexp, raw, fallback string) string {
	if m := re.FindStringSubmatch(raw); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v
		}
	}
	return fallback
}

func splitConcepts(raw string) []string {
	if raw == "" || strings.EqualFold(raw, "none") {
		return nil
	}
	parts := strings.Split(raw, ",")
	concepts := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := strings.TrimSpace(p); c != "" {
			concepts = append(concepts, c)
		}
	}
	return concepts
}
