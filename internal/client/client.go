package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

// Client is a websocket consumer with bounded reconnection. The server keeps
// the session alive independent of connection presence, so after a reconnect
// the client resumes with the session id it already holds.
type Client struct {
	url         string
	dialer      *websocket.Dialer
	rec         *Reconstructor
	maxAttempts uint64

	mu   sync.Mutex
	conn *websocket.Conn
}

func New(url string) *Client {
	return &Client{
		url:         url,
		dialer:      websocket.DefaultDialer,
		rec:         NewReconstructor(),
		maxAttempts: 5,
	}
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Connect dials the server, retrying with exponential backoff up to the
// attempt bound.
func (c *Client) Connect(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 0

	dial := func() error {
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			log.Printf("ws dial %s failed: %v", c.url, err)
			return err
		}
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		return nil
	}
	return backoff.Retry(dial, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxAttempts), ctx))
}

// StartSession asks the server for a new interview.
func (c *Client) StartSession(candidateName string) error {
	return c.write("start_session", map[string]string{"candidate_name": candidateName})
}

// SendAnswer appends the user turn locally, then submits the answer under the
// resumed session id.
func (c *Client) SendAnswer(text string) error {
	sessionID := c.rec.SessionID()
	if sessionID == "" {
		return fmt.Errorf("no active session")
	}
	c.rec.AppendUserMessage(text)
	return c.write("user_message", map[string]string{"session_id": sessionID, "message": text})
}

// Listen reads events into the transcript until the context ends or the
// summary arrives. Dropped connections are re-dialed with backoff; the
// partially ordered stream is folded by the Reconstructor either way.
func (c *Client) Listen(ctx context.Context) error {
	for {
		conn := c.current()
		if conn == nil {
			return fmt.Errorf("not connected")
		}

		var ev envelope
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.rec.Complete() {
				return nil
			}
			log.Printf("ws read failed, reconnecting: %v", err)
			if rerr := c.Connect(ctx); rerr != nil {
				return fmt.Errorf("reconnect: %w", rerr)
			}
			continue
		}
		if err := c.rec.Apply(ev.Type, ev.Data); err != nil {
			log.Printf("dropping undecodable %s event: %v", ev.Type, err)
		}
		if c.rec.Complete() {
			return nil
		}
	}
}

// Transcript returns the reconstructed conversation so far.
func (c *Client) Transcript() *Reconstructor { return c.rec }

// Close tears the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) write(eventType string, data any) error {
	conn := c.current()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(envelope{Type: eventType, Data: raw})
}
