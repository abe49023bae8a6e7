package ws

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"yupp-live-quiz/internal/protocol"
)

var errConnClosed = errors.New("connection closed")

// Conn adapts a websocket to the engine's Sender. Outbound frames go
// through a buffered channel drained by a single writer goroutine, so a
// broadcast never blocks on one slow peer; when the buffer is full the
// frame is dropped, matching the fire-and-forget contract.
type Conn struct {
	id   string
	ws   *websocket.Conn
	log  *zap.Logger
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newConn(ws *websocket.Conn, log *zap.Logger) *Conn {
	c := &Conn{
		id:   uuid.NewString(),
		ws:   ws,
		log:  log,
		send: make(chan []byte, 32),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *Conn) ID() string { return c.id }

// Send encodes and queues one frame. It never blocks.
func (c *Conn) Send(kind string, payload any) error {
	frame, err := protocol.Encode(kind, payload)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return errConnClosed
	case c.send <- frame:
		return nil
	default:
		c.log.Warn("dropping frame for slow peer", zap.String("conn", c.id), zap.String("kind", kind))
		return nil
	}
}

// Close stops the writer; the socket itself is closed by the writer
// goroutine once the frames queued before Close have been flushed.
func (c *Conn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *Conn) writeLoop() {
	defer c.ws.Close()
	for {
		select {
		case <-c.done:
			// Flush frames queued before the close so a final message,
			// such as a join rejection, still reaches the peer.
			for {
				select {
				case frame := <-c.send:
					if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
						return
					}
				default:
					return
				}
			}
		case frame := <-c.send:
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("write failed", zap.String("conn", c.id), zap.Error(err))
				_ = c.Close()
				return
			}
		}
	}
}
