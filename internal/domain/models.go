package domain

import "time"

// Difficulty classifies a question; it is a static property of the bank.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Stage identifies where a session sits in the interview state machine.
type Stage string

const (
	StageAwaitingAnswer   Stage = "awaiting_answer"
	StageAnalyzing        Stage = "analyzing"
	StageDecidingFollowup Stage = "deciding_followup"
	StageComplete         Stage = "complete"
)

// Question is an immutable entry of the question bank. A follow-up keeps the
// id of its base question and carries IsFollowup=true with refined text.
type Question struct {
	ID          int        `json:"id"`
	Text        string     `json:"question"`
	Difficulty  Difficulty `json:"difficulty"`
	KeyConcepts []string   `json:"keyConcepts,omitempty"`
	FollowUps   []string   `json:"followUps,omitempty"`
	IsFollowup  bool       `json:"isFollowup,omitempty"`
}

// QuestionBank is the loadable pool of questions for one interview track.
type QuestionBank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// AnswerAnalysis is the oracle's verdict for one (question, answer) pair.
// Immutable once produced.
type AnswerAnalysis struct {
	Score            int      `json:"score"`
	NormalizedScore  float64  `json:"normalizedScore"`
	Quality          string   `json:"quality"`
	Depth            string   `json:"depth"`
	ConceptsCovered  []string `json:"conceptsCovered"`
	MissingConcepts  []string `json:"missingConcepts"`
	DetailedAnalysis string   `json:"detailedAnalysis"`
	Raw              string   `json:"rawAnalysis,omitempty"`
}

// PerformanceRecord finalizes one base question after its follow-ups are
// exhausted. The analysis is the most recent one for the question cycle, so a
// follow-up's analysis supersedes its parent's. Append-only, never mutated.
type PerformanceRecord struct {
	Question  Question       `json:"question"`
	Answer    string         `json:"answer"`
	Analysis  AnswerAnalysis `json:"analysis"`
	Feedback  string         `json:"feedback,omitempty"`
	Followups int            `json:"followups"`
	Timestamp time.Time      `json:"timestamp"`
}

// Role tags a conversation turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Turn is one entry of the durable conversation transcript.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is synthesized once when a session reaches COMPLETE.
type Summary struct {
	AverageScore      float64  `json:"averageScore"`
	QuestionsAnswered int      `json:"questionsAnswered"`
	FollowupsUsed     int      `json:"followupsUsed"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	Recommendations   []string `json:"recommendations"`
	Text              string   `json:"text"`
}

// SessionSnapshot is a read-only view of a session's state, served over the
// REST surface and embedded in exports.
type SessionSnapshot struct {
	SessionID       string              `json:"sessionId"`
	CandidateName   string              `json:"candidateName"`
	Stage           Stage               `json:"stage"`
	QuestionIndex   int                 `json:"questionIndex"`
	QuestionsAsked  int                 `json:"questionsAsked"`
	CurrentQuestion *Question           `json:"currentQuestion,omitempty"`
	FollowupCount   int                 `json:"followupCount"`
	PerformanceData []PerformanceRecord `json:"performanceData"`
	History         []Turn              `json:"conversationHistory"`
	Summary         *Summary            `json:"summary,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// SessionExport is a self-contained serializable document for one session.
type SessionExport struct {
	SessionSnapshot
	ExportedAt time.Time `json:"exportedAt"`
}
