// Package client holds the browser-equivalent pieces: reconstructing a linear
// transcript from the server's event stream and keeping a connection alive.
package client

import (
	"encoding/json"
	"fmt"
	"time"

	"dsa-interview-service/internal/domain"
)

// Reconstructor folds the per-connection event stream into one linear,
// append-only transcript. Events within an answer cycle semantically overlap
// (feedback and analysis describe the same answer), so each cycle carries
// local "already rendered" flags that reset exactly when a new question or
// follow-up arrives. Late or duplicate analysis for an advanced cycle is
// dropped and counted as an anomaly instead of double-rendering.
type Reconstructor struct {
	sessionID string
	turns     []domain.Turn
	notices   []string
	analyzed  bool
	fedBack   bool
	complete  bool
	anomalies int
	now       func() time.Time
}

func NewReconstructor() *Reconstructor {
	return &Reconstructor{now: time.Now}
}

// NewReconstructorWithClock is test-only for deterministic timestamps.
func NewReconstructorWithClock(now func() time.Time) *Reconstructor {
	return &Reconstructor{now: now}
}

type questionEnvelope struct {
	SessionID string          `json:"session_id"`
	Question  domain.Question `json:"question"`
}

type sessionStartedEnvelope struct {
	SessionID     string          `json:"session_id"`
	Welcome       string          `json:"welcome"`
	FirstQuestion domain.Question `json:"first_question"`
}

type analysisEnvelope struct {
	SessionID string                `json:"session_id"`
	Analysis  domain.AnswerAnalysis `json:"analysis"`
}

type feedbackEnvelope struct {
	SessionID string `json:"session_id"`
	Feedback  string `json:"feedback"`
}

type summaryEnvelope struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

// AppendUserMessage records an outbound submission as a user turn immediately
// before it is sent.
func (r *Reconstructor) AppendUserMessage(text string) {
	r.append(domain.RoleUser, text)
}

// Apply folds one inbound event into the transcript.
func (r *Reconstructor) Apply(eventType string, data json.RawMessage) error {
	switch eventType {
	case "session_started":
		var ev sessionStartedEnvelope
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode session_started: %w", err)
		}
		r.sessionID = ev.SessionID
		r.append(domain.RoleBot, ev.Welcome)
		r.append(domain.RoleBot, ev.FirstQuestion.Text)
		r.resetCycle()

	case "next_question", "followup_question":
		var ev questionEnvelope
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		if !r.forThisSession(ev.SessionID) {
			return nil
		}
		r.append(domain.RoleBot, ev.Question.Text)
		r.resetCycle()

	case "analysis":
		var ev analysisEnvelope
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode analysis: %w", err)
		}
		if !r.forThisSession(ev.SessionID) {
			return nil
		}
		if r.analyzed {
			// late or duplicate delivery for an already-analyzed cycle
			r.anomalies++
			return nil
		}
		r.analyzed = true
		r.append(domain.RoleBot, renderAnalysis(ev.Analysis))

	case "feedback":
		var ev feedbackEnvelope
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode feedback: %w", err)
		}
		if !r.forThisSession(ev.SessionID) {
			return nil
		}
		if r.fedBack {
			r.anomalies++
			return nil
		}
		r.fedBack = true
		r.append(domain.RoleBot, ev.Feedback)

	case "interview_summary":
		var ev summaryEnvelope
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode interview_summary: %w", err)
		}
		if !r.forThisSession(ev.SessionID) {
			return nil
		}
		if r.complete {
			r.anomalies++
			return nil
		}
		r.complete = true
		r.append(domain.RoleBot, ev.Summary)

	case "error":
		var ev errorEnvelope
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode error event: %w", err)
		}
		// Non-blocking notice: the transcript is not terminated and input
		// stays usable.
		r.notices = append(r.notices, ev.Message)

	case "bot_typing", "pong":
		// presentation-only, nothing to fold

	default:
		r.anomalies++
	}
	return nil
}

func (r *Reconstructor) forThisSession(sessionID string) bool {
	if r.sessionID == "" || sessionID == r.sessionID {
		return true
	}
	r.anomalies++
	return false
}

func (r *Reconstructor) resetCycle() {
	r.analyzed = false
	r.fedBack = false
}

func (r *Reconstructor) append(role domain.Role, text string) {
	r.turns = append(r.turns, domain.Turn{Role: role, Text: text, Timestamp: r.now()})
}

// SessionID returns the id learned from session_started, for resume.
func (r *Reconstructor) SessionID() string { return r.sessionID }

// Turns returns the transcript so far.
func (r *Reconstructor) Turns() []domain.Turn {
	return append([]domain.Turn(nil), r.turns...)
}

// Notices returns error-event texts surfaced as non-blocking notices.
func (r *Reconstructor) Notices() []string {
	return append([]string(nil), r.notices...)
}

// Anomalies counts dropped duplicate/late/foreign events.
func (r *Reconstructor) Anomalies() int { return r.anomalies }

// Complete reports whether the interview summary has arrived.
func (r *Reconstructor) Complete() bool { return r.complete }

func renderAnalysis(a domain.AnswerAnalysis) string {
	return fmt.Sprintf("Score: %d/10 (%s, %s). %s", a.Score, a.Quality, a.Depth, a.DetailedAnalysis)
}
