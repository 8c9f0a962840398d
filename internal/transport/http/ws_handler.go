package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dsa-interview-service/internal/app"
	"dsa-interview-service/internal/domain"
)

// WSHandler is the protocol dispatcher: it binds inbound transport events to
// state-machine operations and serializes emitted events back onto the
// originating connection.
type WSHandler struct {
	service  *app.InterviewService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.InterviewService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outboundMessage[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

type startSessionPayload struct {
	CandidateName string `json:"candidate_name"`
}

type userMessagePayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type pongPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

// connEmitter funnels state-machine events into the connection's single
// writer goroutine. Emission order is preserved by the channel; a session's
// events are produced under its lock, so cycles never interleave.
type connEmitter struct {
	send         chan outboundMessage[any]
	closeSignals chan struct{}
	closeOnce    sync.Once
}

func newConnEmitter() *connEmitter {
	return &connEmitter{
		send:         make(chan outboundMessage[any], 64),
		closeSignals: make(chan struct{}),
	}
}

// Emit blocks until the writer drains a slot or the connection is torn down,
// so a slow reader applies backpressure instead of losing cycle events.
func (e *connEmitter) Emit(eventType string, data any) {
	select {
	case e.send <- outboundMessage[any]{Type: eventType, Data: data}:
	case <-e.closeSignals:
	}
}

func (e *connEmitter) close() {
	e.closeOnce.Do(func() { close(e.closeSignals) })
}

// ServeWS upgrades HTTP requests to websockets and runs the event loop. The
// server keeps sessions alive in the registry independent of connection
// presence, so a client can resume by session_id after reconnecting.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	emitter := newConnEmitter()
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-emitter.send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					// unblock emitters so a dead connection never wedges a cycle
					emitter.close()
					return
				}
			case <-emitter.closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r.Context(), inbound, emitter)
	}

	emitter.close()
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, inbound inboundMessage, emitter *connEmitter) {
	switch inbound.Type {
	case "start_session":
		var payload startSessionPayload
		if len(inbound.Data) > 0 {
			if err := json.Unmarshal(inbound.Data, &payload); err != nil {
				emitter.Emit(app.EventError, errorPayload{Message: "invalid start_session payload"})
				return
			}
		}
		result, err := h.service.StartSession(ctx, payload.CandidateName)
		if err != nil {
			emitter.Emit(app.EventError, errorPayload{Message: errorMessage(err)})
			return
		}
		emitter.Emit(app.EventSessionStarted, result)

	case "user_message":
		var payload userMessagePayload
		if err := json.Unmarshal(inbound.Data, &payload); err != nil {
			emitter.Emit(app.EventError, errorPayload{Message: "invalid user_message payload"})
			return
		}
		if payload.SessionID == "" || strings.TrimSpace(payload.Message) == "" {
			emitter.Emit(app.EventError, errorPayload{Message: errorMessage(domain.ErrMalformedEvent)})
			return
		}
		// The oracle call has non-trivial latency; run the cycle off the read
		// loop so one slow analysis never blocks other inbound events. The
		// background context lets an in-flight call finish after a disconnect;
		// its result is discarded if the session was removed meanwhile.
		go func() {
			if err := h.service.ProcessMessage(context.Background(), payload.SessionID, payload.Message, emitter); err != nil {
				emitter.Emit(app.EventError, errorPayload{Message: errorMessage(err)})
			}
		}()

	case "ping":
		emitter.Emit("pong", pongPayload{Timestamp: time.Now()})

	default:
		emitter.Emit(app.EventError, errorPayload{Message: "unsupported message type: " + inbound.Type})
	}
}

// errorMessage maps domain error kinds to client-facing text without leaking
// internals.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "Message not allowed in the current interview stage"
	case errors.Is(err, domain.ErrOracleFailure):
		return "Answer analysis failed, please resubmit your answer"
	case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMalformedEvent):
		return "Message is required"
	case errors.Is(err, domain.ErrBankNotFound), errors.Is(err, domain.ErrBankExhausted):
		return "Interview questions are not available"
	default:
		return "Internal error"
	}
}
