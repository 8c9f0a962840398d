package app

import (
	"sync"
	"time"

	"dsa-interview-service/internal/domain"
	"dsa-interview-service/internal/question"
)

// Session is one candidate's interview run. All fields behind mu are mutated
// only by the state machine while holding the lock, so concurrent events for
// the same session id are processed strictly one at a time.
type Session struct {
	id            string
	candidateName string
	createdAt     time.Time
	now           func() time.Time

	mu            sync.Mutex
	stage         domain.Stage
	bank          *question.Bank
	asked         map[int]bool
	questionIndex int // 0-based pointer into the sequence of posed prompts
	current       *domain.Question
	base          domain.Question // the base question behind the current cycle
	followupCount int
	cycle         int // bumps every time a new prompt is posed; stale oracle results are discarded against it
	performance   []domain.PerformanceRecord
	history       []domain.Turn
	summary       *domain.Summary
	updatedAt     time.Time
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id, candidateName string, bank *question.Bank) *Session {
	return newSessionWithClock(id, candidateName, bank, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id, candidateName string, bank *question.Bank, now func() time.Time) *Session {
	return newSessionWithClock(id, candidateName, bank, now)
}

func newSessionWithClock(id, candidateName string, bank *question.Bank, now func() time.Time) *Session {
	return &Session{
		id:            id,
		candidateName: candidateName,
		createdAt:     now(),
		updatedAt:     now(),
		now:           now,
		bank:          bank,
		asked:         make(map[int]bool),
		stage:         domain.StageAwaitingAnswer,
	}
}

// ID returns the immutable session identifier.
func (s *Session) ID() string {
	return s.id
}

// Stage reports the current state-machine stage.
func (s *Session) Stage() domain.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// CurrentQuestion returns the prompt currently posed, or nil once COMPLETE.
func (s *Session) CurrentQuestion() *domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	q := *s.current
	return &q
}

// Snapshot copies the session state for the REST surface and exports.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		SessionID:       s.id,
		CandidateName:   s.candidateName,
		Stage:           s.stage,
		QuestionIndex:   s.questionIndex,
		QuestionsAsked:  len(s.asked),
		FollowupCount:   s.followupCount,
		PerformanceData: append([]domain.PerformanceRecord(nil), s.performance...),
		History:         append([]domain.Turn(nil), s.history...),
		CreatedAt:       s.createdAt,
		UpdatedAt:       s.updatedAt,
	}
	if s.current != nil {
		q := *s.current
		snap.CurrentQuestion = &q
	}
	if s.summary != nil {
		sum := *s.summary
		snap.Summary = &sum
	}
	return snap
}

func (s *Session) appendTurnLocked(role domain.Role, text string) {
	s.history = append(s.history, domain.Turn{Role: role, Text: text, Timestamp: s.now()})
	s.updatedAt = s.now()
}

// poseLocked installs a new prompt and starts a fresh answer cycle.
func (s *Session) poseLocked(q domain.Question) {
	s.current = &q
	if !q.IsFollowup {
		s.base = q
		s.asked[q.ID] = true
	}
	s.cycle++
	s.questionIndex = s.cycle - 1
	s.stage = domain.StageAwaitingAnswer
	s.updatedAt = s.now()
}
