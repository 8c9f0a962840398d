package app

import "dsa-interview-service/internal/domain"

// Outbound protocol event types. For one answer cycle the state machine emits
// them in the fixed order typing -> feedback -> analysis -> (next | followup | summary).
const (
	EventSessionStarted   = "session_started"
	EventBotTyping        = "bot_typing"
	EventFeedback         = "feedback"
	EventAnalysis         = "analysis"
	EventNextQuestion     = "next_question"
	EventFollowupQuestion = "followup_question"
	EventInterviewSummary = "interview_summary"
	EventError            = "error"
)

// Emitter carries the state machine's outbound events back onto the
// originating connection. Implementations must preserve emission order.
type Emitter interface {
	Emit(eventType string, data any)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(eventType string, data any)

func (f EmitterFunc) Emit(eventType string, data any) { f(eventType, data) }

type TypingPayload struct {
	SessionID string `json:"session_id"`
}

type FeedbackPayload struct {
	SessionID string `json:"session_id"`
	Feedback  string `json:"feedback"`
}

type AnalysisPayload struct {
	SessionID string                `json:"session_id"`
	Analysis  domain.AnswerAnalysis `json:"analysis"`
}

type QuestionPayload struct {
	SessionID string          `json:"session_id"`
	Question  domain.Question `json:"question"`
}

type SummaryPayload struct {
	SessionID string         `json:"session_id"`
	Summary   string         `json:"summary"`
	Report    domain.Summary `json:"report"`
}
