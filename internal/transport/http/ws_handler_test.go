package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dsa-interview-service/internal/app"
	"dsa-interview-service/internal/domain"
	"dsa-interview-service/internal/infra/memory"
	"dsa-interview-service/internal/oracle"
	transporthttp "dsa-interview-service/internal/transport/http"
)

type wsEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, o oracle.Oracle) (*httptest.Server, *websocket.Conn) {
	t.Helper()

	svc := app.NewInterviewService(
		app.Config{MaxFollowups: 1},
		memory.NewSessionStore(),
		memory.NewBankRepository(memory.NewDefaultBankLoader(), 5*time.Minute),
		o,
		nil,
	)
	handler := transporthttp.NewWSHandler(svc)
	server := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return server, conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": msgType, "data": json.RawMessage(payload)}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var env wsEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func receiveType(t *testing.T, conn *websocket.Conn, want string) wsEnvelope {
	t.Helper()
	env := receive(t, conn)
	if env.Type != want {
		t.Fatalf("expected %s, got %s (%s)", want, env.Type, env.Data)
	}
	return env
}

func TestStartSessionOverWebsocket(t *testing.T) {
	_, conn := newTestServer(t, staticOracle{score: 9})

	send(t, conn, "start_session", map[string]string{"candidate_name": "Alice"})

	env := receiveType(t, conn, app.EventSessionStarted)
	var result app.StartResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("unmarshal session_started: %v", err)
	}
	if result.SessionID == "" {
		t.Fatalf("expected session id")
	}
	if result.FirstQuestion.ID != 1 {
		t.Fatalf("expected first question id 1, got %d", result.FirstQuestion.ID)
	}
}

func TestAnswerCycleEventSequence(t *testing.T) {
	_, conn := newTestServer(t, staticOracle{score: 9})

	send(t, conn, "start_session", map[string]string{"candidate_name": "Alice"})
	env := receiveType(t, conn, app.EventSessionStarted)
	var result app.StartResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	send(t, conn, "user_message", map[string]string{
		"session_id": result.SessionID,
		"message":    "arrays are contiguous memory, linked lists use pointers",
	})

	receiveType(t, conn, app.EventBotTyping)
	receiveType(t, conn, app.EventFeedback)
	receiveType(t, conn, app.EventAnalysis)
	next := receiveType(t, conn, app.EventNextQuestion)

	var payload app.QuestionPayload
	if err := json.Unmarshal(next.Data, &payload); err != nil {
		t.Fatalf("unmarshal next_question: %v", err)
	}
	if payload.Question.ID != 2 {
		t.Fatalf("expected question 2, got %d", payload.Question.ID)
	}
}

func TestWeakAnswerYieldsFollowupOverWire(t *testing.T) {
	_, conn := newTestServer(t, staticOracle{score: 3})

	send(t, conn, "start_session", nil)
	env := receiveType(t, conn, app.EventSessionStarted)
	var result app.StartResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	send(t, conn, "user_message", map[string]string{
		"session_id": result.SessionID,
		"message":    "they differ",
	})

	receiveType(t, conn, app.EventBotTyping)
	receiveType(t, conn, app.EventFeedback)
	receiveType(t, conn, app.EventAnalysis)
	followup := receiveType(t, conn, app.EventFollowupQuestion)

	var payload app.QuestionPayload
	if err := json.Unmarshal(followup.Data, &payload); err != nil {
		t.Fatalf("unmarshal followup: %v", err)
	}
	if payload.Question.ID != 1 || !payload.Question.IsFollowup {
		t.Fatalf("expected follow-up for question 1, got %+v", payload.Question)
	}
}

func TestMalformedAndUnknownMessages(t *testing.T) {
	_, conn := newTestServer(t, staticOracle{score: 9})

	send(t, conn, "user_message", map[string]string{"session_id": "", "message": ""})
	env := receiveType(t, conn, app.EventError)
	if !strings.Contains(string(env.Data), "Message is required") {
		t.Fatalf("unexpected error payload: %s", env.Data)
	}

	send(t, conn, "time_travel", nil)
	env = receiveType(t, conn, app.EventError)
	if !strings.Contains(string(env.Data), "unsupported message type") {
		t.Fatalf("unexpected error payload: %s", env.Data)
	}

	send(t, conn, "user_message", map[string]string{"session_id": "nope", "message": "hi"})
	env = receiveType(t, conn, app.EventError)
	if !strings.Contains(string(env.Data), "Session not found") {
		t.Fatalf("unexpected error payload: %s", env.Data)
	}
}

func TestPingPong(t *testing.T) {
	_, conn := newTestServer(t, staticOracle{score: 9})

	send(t, conn, "ping", nil)
	env := receiveType(t, conn, "pong")
	if !strings.Contains(string(env.Data), "timestamp") {
		t.Fatalf("expected timestamp in pong, got %s", env.Data)
	}
}

// staticOracle returns the same score for every answer.
type staticOracle struct {
	score int
}

func (o staticOracle) Analyze(_ context.Context, q domain.Question, _ string) (domain.AnswerAnalysis, error) {
	return domain.AnswerAnalysis{
		Score:            o.score,
		NormalizedScore:  float64(o.score) / 10.0,
		Quality:          "good",
		Depth:            "adequate",
		ConceptsCovered:  q.KeyConcepts,
		DetailedAnalysis: "static analysis",
	}, nil
}

func (o staticOracle) Feedback(_ context.Context, _ domain.Question, _ string, _ domain.AnswerAnalysis) (string, error) {
	return "static feedback", nil
}
