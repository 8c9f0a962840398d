package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"dsa-interview-service/internal/domain"
	"dsa-interview-service/internal/oracle"
	"dsa-interview-service/internal/question"
)

// SessionRepository abstracts how interview sessions are registered
// (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Add(session *Session)
	Get(id string) (*Session, bool)
	Remove(id string)
	Count() int
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// ExportArchiver persists session exports outside process memory. Optional;
// archiving is best-effort and never fails an export.
type ExportArchiver interface {
	Archive(ctx context.Context, export domain.SessionExport) error
}

// Config carries the named interview knobs. The follow-up threshold and cap
// are deliberately configuration, not constants. A negative MaxFollowups
// disables follow-ups entirely; zero means unset and takes the default.
type Config struct {
	BankID              string
	QuestionsPerSession int
	MaxFollowups        int
	FollowupThreshold   float64
	OracleTimeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.BankID == "" {
		c.BankID = "dsa-core"
	}
	if c.QuestionsPerSession <= 0 {
		c.QuestionsPerSession = 5
	}
	if c.MaxFollowups == 0 {
		c.MaxFollowups = 1
	}
	if c.MaxFollowups < 0 {
		c.MaxFollowups = 0
	}
	if c.FollowupThreshold <= 0 {
		c.FollowupThreshold = 0.5
	}
	if c.OracleTimeout <= 0 {
		c.OracleTimeout = 30 * time.Second
	}
	return c
}

// InterviewService owns session progression: question delivery, answer
// analysis, follow-up branching, and completion. It is the single writer of
// session state; each session is serialized on its own lock while events for
// different sessions proceed in parallel.
type InterviewService struct {
	cfg      Config
	sessions SessionRepository
	banks    BankRepository
	oracle   oracle.Oracle
	archive  ExportArchiver
	newID    func() string
	now      func() time.Time
}

func NewInterviewService(cfg Config, sessions SessionRepository, banks BankRepository, o oracle.Oracle, archive ExportArchiver) *InterviewService {
	return &InterviewService{
		cfg:      cfg.withDefaults(),
		sessions: sessions,
		banks:    banks,
		oracle:   o,
		archive:  archive,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// NewInterviewServiceWithClock is test-only for deterministic ids and timestamps.
func NewInterviewServiceWithClock(cfg Config, sessions SessionRepository, banks BankRepository, o oracle.Oracle, archive ExportArchiver, newID func() string, now func() time.Time) *InterviewService {
	svc := NewInterviewService(cfg, sessions, banks, o, archive)
	svc.newID = newID
	svc.now = now
	return svc
}

// StartResult is the session_started response payload.
type StartResult struct {
	SessionID     string          `json:"session_id"`
	Welcome       string          `json:"welcome"`
	FirstQuestion domain.Question `json:"first_question"`
}

// StartSession creates a session, poses the first question, and registers it.
func (s *InterviewService) StartSession(ctx context.Context, candidateName string) (StartResult, error) {
	if strings.TrimSpace(candidateName) == "" {
		candidateName = "Candidate"
	}

	bankData, err := s.banks.GetBank(ctx, s.cfg.BankID)
	if err != nil {
		return StartResult{}, fmt.Errorf("load question bank: %w", err)
	}
	bank := question.NewBank(bankData)
	if err := bank.Validate(s.cfg.QuestionsPerSession); err != nil {
		return StartResult{}, fmt.Errorf("bank %q too small for %d questions: %w", s.cfg.BankID, s.cfg.QuestionsPerSession, err)
	}

	sess := newSessionWithClock(s.newID(), candidateName, bank, s.now)
	first, err := bank.Next(sess.asked)
	if err != nil {
		return StartResult{}, err
	}

	welcome := s.welcomeText()
	sess.mu.Lock()
	sess.poseLocked(first)
	sess.appendTurnLocked(domain.RoleBot, welcome)
	sess.appendTurnLocked(domain.RoleBot, first.Text)
	sess.mu.Unlock()

	s.sessions.Add(sess)
	log.Printf("started interview session %s for %s", sess.id, candidateName)

	return StartResult{SessionID: sess.id, Welcome: welcome, FirstQuestion: first}, nil
}

// ProcessMessage runs one answer cycle: validates the stage, invokes the
// oracle outside the session lock, then decides follow-up vs advance vs
// complete. Emission order per cycle is typing -> feedback -> analysis ->
// (next_question | followup_question | interview_summary).
func (s *InterviewService) ProcessMessage(ctx context.Context, sessionID, message string, em Emitter) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.ErrEmptyMessage
	}

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	if sess.stage != domain.StageAwaitingAnswer || sess.current == nil {
		sess.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	posed := *sess.current
	cycle := sess.cycle
	sess.stage = domain.StageAnalyzing
	sess.appendTurnLocked(domain.RoleUser, message)
	sess.mu.Unlock()

	em.Emit(EventBotTyping, TypingPayload{SessionID: sessionID})

	octx, cancel := context.WithTimeout(ctx, s.cfg.OracleTimeout)
	analysis, err := s.oracle.Analyze(octx, posed, message)
	if err != nil {
		cancel()
		s.rollbackCycle(sess, cycle)
		if errors.Is(err, domain.ErrOracleFailure) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrOracleFailure, err)
	}
	feedback, ferr := s.oracle.Feedback(octx, posed, message, analysis)
	cancel()
	if ferr != nil {
		// Feedback is optional; analysis alone is enough to continue the cycle.
		log.Printf("session %s: feedback generation failed: %v", sessionID, ferr)
		feedback = ""
	}

	// The oracle call was the suspension point: the session may have been
	// removed or force-ended meanwhile. Never write to a deleted session.
	if current, ok := s.sessions.Get(sessionID); !ok || current != sess {
		log.Printf("session %s: discarding analysis for removed session", sessionID)
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.stage != domain.StageAnalyzing || sess.cycle != cycle {
		log.Printf("session %s: discarding stale analysis for cycle %d", sessionID, cycle)
		return nil
	}
	sess.stage = domain.StageDecidingFollowup

	if feedback != "" {
		sess.appendTurnLocked(domain.RoleBot, feedback)
		em.Emit(EventFeedback, FeedbackPayload{SessionID: sessionID, Feedback: feedback})
	}
	em.Emit(EventAnalysis, AnalysisPayload{SessionID: sessionID, Analysis: analysis})

	if analysis.NormalizedScore < s.cfg.FollowupThreshold && sess.followupCount < s.cfg.MaxFollowups {
		sess.followupCount++
		followup := question.SynthesizeFollowup(sess.base, analysis.MissingConcepts, sess.followupCount)
		sess.poseLocked(followup)
		sess.appendTurnLocked(domain.RoleBot, followup.Text)
		em.Emit(EventFollowupQuestion, QuestionPayload{SessionID: sessionID, Question: followup})
		return nil
	}

	sess.performance = append(sess.performance, domain.PerformanceRecord{
		Question:  sess.base,
		Answer:    message,
		Analysis:  analysis,
		Feedback:  feedback,
		Followups: sess.followupCount,
		Timestamp: sess.now(),
	})
	sess.followupCount = 0

	if len(sess.performance) >= s.cfg.QuestionsPerSession {
		summary := s.completeLocked(sess)
		em.Emit(EventInterviewSummary, SummaryPayload{SessionID: sessionID, Summary: summary.Text, Report: summary})
		return nil
	}

	next, err := sess.bank.Next(sess.asked)
	if err != nil {
		// Bank size is validated at start, so exhaustion here means the
		// configuration changed under us; close out rather than wedge.
		summary := s.completeLocked(sess)
		em.Emit(EventInterviewSummary, SummaryPayload{SessionID: sessionID, Summary: summary.Text, Report: summary})
		return nil
	}
	sess.poseLocked(next)
	sess.appendTurnLocked(domain.RoleBot, next.Text)
	em.Emit(EventNextQuestion, QuestionPayload{SessionID: sessionID, Question: next})
	return nil
}

// rollbackCycle reverts a failed ANALYZING attempt so the same question is
// re-posed. Performance data is untouched and no counters move.
func (s *InterviewService) rollbackCycle(sess *Session, cycle int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.stage == domain.StageAnalyzing && sess.cycle == cycle {
		sess.stage = domain.StageAwaitingAnswer
		sess.updatedAt = sess.now()
	}
}

// completeLocked transitions the session to COMPLETE and synthesizes the
// summary exactly once. Callers hold sess.mu.
func (s *InterviewService) completeLocked(sess *Session) domain.Summary {
	if sess.summary != nil {
		return *sess.summary
	}
	summary := BuildSummary(sess.performance)
	sess.summary = &summary
	sess.stage = domain.StageComplete
	sess.current = nil
	sess.followupCount = 0
	sess.appendTurnLocked(domain.RoleBot, summary.Text)
	log.Printf("session %s complete: average score %.1f over %d questions", sess.id, summary.AverageScore, summary.QuestionsAnswered)
	return summary
}

// EndSession forces COMPLETE and returns the summary, computed from whatever
// performance data exists so far.
func (s *InterviewService) EndSession(_ context.Context, sessionID string) (domain.Summary, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Summary{}, domain.ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.completeLocked(sess), nil
}

// Snapshot returns the current session state.
func (s *InterviewService) Snapshot(sessionID string) (domain.SessionSnapshot, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return sess.Snapshot(), nil
}

// Export produces a self-contained document for the session and archives it
// best-effort when an archiver is configured.
func (s *InterviewService) Export(ctx context.Context, sessionID string) (domain.SessionExport, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionExport{}, domain.ErrSessionNotFound
	}
	export := domain.SessionExport{
		SessionSnapshot: sess.Snapshot(),
		ExportedAt:      s.now(),
	}
	if s.archive != nil {
		if err := s.archive.Archive(ctx, export); err != nil {
			log.Printf("session %s: archive failed: %v", sessionID, err)
		}
	}
	return export, nil
}

// Remove evicts the session from the registry. In-flight oracle results for
// it are discarded when they resolve.
func (s *InterviewService) Remove(sessionID string) {
	s.sessions.Remove(sessionID)
}

// ActiveSessions reports the registry size.
func (s *InterviewService) ActiveSessions() int {
	return s.sessions.Count()
}

// expiredLister is implemented by registries whose liveness markers can lapse.
type expiredLister interface {
	Expired(ctx context.Context) []string
}

// CleanupExpired evicts sessions whose liveness marker has lapsed. Registries
// without expiry report nothing and the sweep is a no-op.
func (s *InterviewService) CleanupExpired(ctx context.Context) int {
	lister, ok := s.sessions.(expiredLister)
	if !ok {
		return 0
	}
	expired := lister.Expired(ctx)
	for _, id := range expired {
		s.sessions.Remove(id)
		log.Printf("removed expired session %s", id)
	}
	return len(expired)
}

func (s *InterviewService) welcomeText() string {
	return fmt.Sprintf(`Welcome to your Data Structures & Algorithms practice interview!

Format:
- %d DSA questions covering core concepts
- Each answer is analyzed for technical accuracy and depth
- Personalized feedback with improvement suggestions
- Follow-up questions when an answer needs more depth
- A performance summary at the end

Let's begin!`, s.cfg.QuestionsPerSession)
}
