package game

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"yupp-live-quiz/internal/domain"
)

// PinReserver guards session PINs against collisions between host instances.
// Reservations are best-effort; the engine never requires global uniqueness.
type PinReserver interface {
	Reserve(ctx context.Context, pin string) (bool, error)
	Release(ctx context.Context, pin string)
}

// Hub owns the live sessions of one host process, keyed by PIN. Sessions are
// fully isolated from each other; the hub only maps ids to instances.
type Hub struct {
	log  *zap.Logger
	pins PinReserver
	pin  func() string
	opts []Option

	mu       sync.RWMutex
	sessions map[string]*Session
}

type HubOption func(*Hub)

func WithHubLogger(log *zap.Logger) HubOption {
	return func(h *Hub) { h.log = log }
}

// WithPinReserver plugs in cross-instance PIN reservation (e.g. Redis).
func WithPinReserver(pins PinReserver) HubOption {
	return func(h *Hub) { h.pins = pins }
}

// WithPinSource overrides PIN generation, mainly for tests.
func WithPinSource(pin func() string) HubOption {
	return func(h *Hub) { h.pin = pin }
}

// WithSessionOptions forwards options to every created session.
func WithSessionOptions(opts ...Option) HubOption {
	return func(h *Hub) { h.opts = opts }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		log:      zap.NewNop(),
		pin:      RandomPin,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

const pinAttempts = 10

// Create builds a session for the quiz under a freshly generated PIN,
// retrying generation on collision.
func (h *Hub) Create(ctx context.Context, quiz domain.Quiz, opts ...Option) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := 0; i < pinAttempts; i++ {
		pin := h.pin()
		if _, taken := h.sessions[pin]; taken {
			continue
		}
		if h.pins != nil {
			ok, err := h.pins.Reserve(ctx, pin)
			if err != nil {
				h.log.Warn("pin reservation unavailable", zap.Error(err))
			} else if !ok {
				continue
			}
		}
		session, err := NewSession(pin, quiz, append(h.opts, opts...)...)
		if err != nil {
			if h.pins != nil {
				h.pins.Release(ctx, pin)
			}
			return nil, err
		}
		h.sessions[pin] = session
		h.log.Info("session created", zap.String("session", pin), zap.String("quiz", quiz.Title))
		return session, nil
	}
	return nil, errPinExhausted
}

var errPinExhausted = errors.New("could not allocate an unused session pin")

func (h *Hub) Get(pin string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	session, ok := h.sessions[pin]
	return session, ok
}

// Remove shuts the session down and releases its PIN.
func (h *Hub) Remove(ctx context.Context, pin string) {
	h.mu.Lock()
	session, ok := h.sessions[pin]
	if ok {
		delete(h.sessions, pin)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	session.Shutdown()
	if h.pins != nil {
		h.pins.Release(ctx, pin)
	}
}

// Shutdown tears down every live session.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*Session)
	h.mu.Unlock()
	for pin, session := range sessions {
		session.Shutdown()
		if h.pins != nil {
			h.pins.Release(ctx, pin)
		}
	}
}
