package redis_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"dsa-interview-service/internal/app"
	"dsa-interview-service/internal/domain"
	"dsa-interview-service/internal/infra/memory"
	redisinfra "dsa-interview-service/internal/infra/redis"
	"dsa-interview-service/internal/oracle"
	"dsa-interview-service/internal/question"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSessionStoreMarksLiveness(t *testing.T) {
	mr, client := newTestRedis(t)
	store := redisinfra.NewSessionStore(client, time.Hour)
	bank := question.NewBank(question.Default())

	sess := app.NewSession("s-1", "Alice", bank)
	store.Add(sess)

	if !mr.Exists("interview:session:s-1") {
		t.Fatalf("expected liveness key")
	}
	ttl := mr.TTL("interview:session:s-1")
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	got, ok := store.Get("s-1")
	if !ok || got != sess {
		t.Fatalf("expected same session pointer back")
	}
	if store.Count() != 1 {
		t.Fatalf("expected count 1, got %d", store.Count())
	}

	store.Remove("s-1")
	if mr.Exists("interview:session:s-1") {
		t.Fatalf("expected liveness key deleted")
	}
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed from registry")
	}
}

func TestCleanupExpiredSweepsLapsedSessions(t *testing.T) {
	mr, client := newTestRedis(t)
	store := redisinfra.NewSessionStore(client, time.Minute)
	bank := question.NewBank(question.Default())

	store.Add(app.NewSession("s-live", "Alice", bank))
	store.Add(app.NewSession("s-stale", "Bob", bank))

	// The stale session's liveness marker lapses; the session itself stays
	// registered until the sweep runs.
	mr.Del("interview:session:s-stale")

	expired := store.Expired(context.Background())
	if len(expired) != 1 || expired[0] != "s-stale" {
		t.Fatalf("expected only s-stale expired, got %v", expired)
	}

	svc := app.NewInterviewService(app.Config{}, store,
		memory.NewBankRepository(memory.NewDefaultBankLoader(), time.Minute),
		oracle.NewHeuristic(), nil)
	if removed := svc.CleanupExpired(context.Background()); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok := store.Get("s-stale"); ok {
		t.Fatalf("expected stale session evicted")
	}
	if _, ok := store.Get("s-live"); !ok {
		t.Fatalf("expected live session kept")
	}
}

type countingLoader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (l *countingLoader) LoadBank(_ context.Context, _ string) (domain.QuestionBank, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	if l.err != nil {
		return domain.QuestionBank{}, l.err
	}
	return question.Default(), nil
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, client := newTestRedis(t)
	loader := &countingLoader{}
	repo := redisinfra.NewBankRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background(), "dsa-core")
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if len(bank.Questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(bank.Questions))
	}
	if !mr.Exists("bank:dsa-core:questions") {
		t.Fatalf("expected cached bank key")
	}

	if _, err := repo.GetBank(context.Background(), "dsa-core"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected single loader hit, got %d", loader.count())
	}
}

func TestBankRepositoryReloadsOnCorruptCache(t *testing.T) {
	mr, client := newTestRedis(t)
	loader := &countingLoader{}
	repo := redisinfra.NewBankRepository(client, loader, time.Minute)

	mr.Set("bank:dsa-core:questions", "{not json")

	bank, err := repo.GetBank(context.Background(), "dsa-core")
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if len(bank.Questions) != 5 {
		t.Fatalf("expected reload from loader, got %d questions", len(bank.Questions))
	}
	if loader.count() != 1 {
		t.Fatalf("expected one loader hit, got %d", loader.count())
	}
}

func TestBankRepositoryPropagatesLoaderError(t *testing.T) {
	_, client := newTestRedis(t)
	loader := &countingLoader{err: domain.ErrBankNotFound}
	repo := redisinfra.NewBankRepository(client, loader, time.Minute)

	if _, err := repo.GetBank(context.Background(), "missing"); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected bank not found, got %v", err)
	}
}

func TestExportArchiveRoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	archive := redisinfra.NewExportArchive(client, time.Hour)

	export := domain.SessionExport{
		SessionSnapshot: domain.SessionSnapshot{
			SessionID:     "s-9",
			CandidateName: "Alice",
			Stage:         domain.StageComplete,
			PerformanceData: []domain.PerformanceRecord{
				{
					Question: question.Default().Questions[0],
					Answer:   "an answer",
					Analysis: domain.AnswerAnalysis{Score: 7, NormalizedScore: 0.7},
				},
			},
		},
		ExportedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := archive.Archive(context.Background(), export); err != nil {
		t.Fatalf("archive: %v", err)
	}

	raw, err := mr.Get("interview:export:s-9")
	if err != nil {
		t.Fatalf("expected export key: %v", err)
	}
	var stored domain.SessionExport
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored export not valid json: %v", err)
	}

	loaded, err := archive.Load(context.Background(), "s-9")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.SessionID != "s-9" || loaded.Stage != domain.StageComplete {
		t.Fatalf("unexpected export: %+v", loaded.SessionSnapshot)
	}
	if len(loaded.PerformanceData) != 1 || loaded.PerformanceData[0].Analysis.Score != 7 {
		t.Fatalf("performance data lost in round trip")
	}
}

func TestExportArchiveExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	archive := redisinfra.NewExportArchive(client, time.Minute)

	export := domain.SessionExport{SessionSnapshot: domain.SessionSnapshot{SessionID: "s-ttl"}}
	if err := archive.Archive(context.Background(), export); err != nil {
		t.Fatalf("archive: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := archive.Load(context.Background(), "s-ttl"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired export to be gone, got %v", err)
	}
}
