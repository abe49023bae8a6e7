// Package player implements the player side of the protocol: a passive
// mirrored state machine that only reacts to host messages and forwards
// user actions upward.
package player

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"yupp-live-quiz/internal/domain"
	"yupp-live-quiz/internal/protocol"
)

var (
	ErrBadPin = errors.New("game PIN must be 6 digits")

	pinPattern = regexp.MustCompile(`^\d{6}$`)
)

// EventType tags client events delivered to the player's UI.
type EventType string

const (
	EventJoined       EventType = "joined"
	EventRejected     EventType = "rejected"
	EventRoster       EventType = "roster"
	EventGameStarting EventType = "gameStarting"
	EventQuestion     EventType = "question"
	EventRoundResult  EventType = "roundResult"
	EventGameOver     EventType = "gameOver"
	EventDisconnected EventType = "disconnected"
)

// Event is one host-driven state change, with the fields for its type set.
type Event struct {
	Type        EventType
	QuizTitle   string
	Count       int // question count on joined
	Message     string
	Players     []string
	Question    *protocol.QuestionPayload
	Result      *protocol.RoundResultPayload
	Leaderboard []domain.LeaderboardEntry
}

// Client is one player's connection to a host session.
type Client struct {
	name   string
	conn   *websocket.Conn
	log    *zap.Logger
	events chan Event

	mu           sync.Mutex
	quiz         *domain.Quiz
	questionOpen bool
	answered     bool

	closeOnce sync.Once
}

// Dial connects to the host at baseURL (ws:// or wss://), joins the session
// behind the PIN under the given name, and starts the read loop. The join
// outcome arrives as the first Joined or Rejected event.
func Dial(ctx context.Context, baseURL, pin, name string, log *zap.Logger) (*Client, error) {
	if !pinPattern.MatchString(pin) {
		return nil, ErrBadPin
	}
	if log == nil {
		log = zap.NewNop()
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, baseURL+"/ws?pin="+pin, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	frame, err := protocol.Encode(protocol.KindJoin, protocol.JoinPayload{PlayerName: name})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		conn.Close()
		return nil, err
	}

	c := &Client{
		name:   name,
		conn:   conn,
		log:    log,
		events: make(chan Event, 16),
	}
	go c.readLoop()
	return c, nil
}

// Events delivers host-driven state changes. The channel closes when the
// connection drops or Leave is called.
func (c *Client) Events() <-chan Event { return c.events }

func (c *Client) Name() string { return c.name }

// Quiz returns the full quiz once the host has pushed it, nil before.
func (c *Client) Quiz() *domain.Quiz {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quiz
}

// Submit sends the chosen answer for the current question. The mirror
// enforces the same rules the host will: one answer per question, only
// while a question is open.
func (c *Client) Submit(choice int) error {
	c.mu.Lock()
	if !c.questionOpen {
		c.mu.Unlock()
		return domain.ErrRoundNotOpen
	}
	if c.answered {
		c.mu.Unlock()
		return domain.ErrAlreadyAnswered
	}
	c.answered = true
	c.mu.Unlock()

	frame, err := protocol.Encode(protocol.KindAnswer, protocol.AnswerPayload{
		PlayerName: c.name,
		Answer:     choice,
		Timestamp:  time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// Leave closes the connection; the host treats this as leaving the session.
func (c *Client) Leave() {
	c.closeOnce.Do(func() { _ = c.conn.Close() })
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.Leave()
			c.emit(Event{Type: EventDisconnected})
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			c.log.Debug("malformed frame from host", zap.Error(err))
			continue
		}
		switch env.Type {
		case protocol.KindJoined:
			var payload protocol.JoinedPayload
			if json.Unmarshal(env.Payload, &payload) == nil {
				c.emit(Event{Type: EventJoined, QuizTitle: payload.QuizTitle, Count: payload.QuestionCount})
			}
		case protocol.KindError:
			var payload protocol.ErrorPayload
			_ = json.Unmarshal(env.Payload, &payload)
			c.emit(Event{Type: EventRejected, Message: payload.Message})
		case protocol.KindRosterChanged:
			var payload protocol.RosterPayload
			if json.Unmarshal(env.Payload, &payload) == nil {
				c.emit(Event{Type: EventRoster, Players: payload.Players})
			}
		case protocol.KindGameStarting:
			var payload protocol.GameStartingPayload
			if json.Unmarshal(env.Payload, &payload) == nil {
				c.mu.Lock()
				c.quiz = &payload.Quiz
				c.mu.Unlock()
				c.emit(Event{Type: EventGameStarting, QuizTitle: payload.Quiz.Title})
			}
		case protocol.KindQuestion:
			var payload protocol.QuestionPayload
			if json.Unmarshal(env.Payload, &payload) == nil {
				c.mu.Lock()
				c.questionOpen = true
				c.answered = false
				c.mu.Unlock()
				c.emit(Event{Type: EventQuestion, Question: &payload})
			}
		case protocol.KindRoundResult:
			var payload protocol.RoundResultPayload
			if json.Unmarshal(env.Payload, &payload) == nil {
				c.mu.Lock()
				c.questionOpen = false
				c.mu.Unlock()
				c.emit(Event{Type: EventRoundResult, Result: &payload})
			}
		case protocol.KindGameOver:
			var payload protocol.GameOverPayload
			if json.Unmarshal(env.Payload, &payload) == nil {
				c.emit(Event{Type: EventGameOver, Leaderboard: payload.Leaderboard})
			}
		default:
			// Unknown kinds are ignored, not fatal.
		}
	}
}

// emit never blocks the read loop; if the UI lags, the oldest queued event
// is dropped in its favour.
func (c *Client) emit(event Event) {
	select {
	case c.events <- event:
	default:
		select {
		case <-c.events:
		default:
		}
		select {
		case c.events <- event:
		default:
		}
	}
}
