// Package ws is the host-side transport adapter: it upgrades HTTP requests
// to websockets and funnels decoded player messages into the session engine.
package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"yupp-live-quiz/internal/game"
	"yupp-live-quiz/internal/protocol"
)

type Handler struct {
	hub      *game.Hub
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *game.Hub, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS handles one player connection for the session named by the pin
// query parameter. The connection's first accepted join fixes its identity;
// a disconnect at any point becomes an implicit leave.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	pin := r.URL.Query().Get("pin")
	session, ok := h.hub.Get(pin)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	conn := newConn(socket, h.log)
	defer conn.Close()

	var playerName string
	for {
		_, data, err := socket.ReadMessage()
		if err != nil {
			break
		}
		env, err := protocol.Decode(data)
		if err != nil {
			h.log.Debug("malformed frame", zap.String("conn", conn.ID()), zap.Error(err))
			continue
		}
		switch env.Type {
		case protocol.KindJoin:
			if playerName != "" {
				continue // already joined on this connection
			}
			var payload protocol.JoinPayload
			if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.PlayerName == "" {
				_ = conn.Send(protocol.KindError, protocol.ErrorPayload{Message: "invalid join payload"})
				continue
			}
			if err := session.Join(payload.PlayerName, conn); err != nil {
				// Join rejection is fatal to this connection but surfaced
				// only to the affected player.
				_ = conn.Send(protocol.KindError, protocol.ErrorPayload{Message: err.Error()})
				return
			}
			playerName = payload.PlayerName
		case protocol.KindAnswer:
			if playerName == "" {
				continue
			}
			var payload protocol.AnswerPayload
			if err := json.Unmarshal(env.Payload, &payload); err != nil {
				continue
			}
			// The joined name is authoritative; the payload name is ignored
			// so one player cannot answer for another.
			if err := session.Submit(playerName, payload.Answer, payload.Timestamp); err != nil {
				h.log.Debug("submission rejected",
					zap.String("session", pin),
					zap.String("player", playerName),
					zap.Error(err),
				)
			}
		default:
			// Unknown kinds are ignored, not fatal.
		}
	}

	if playerName != "" {
		session.Leave(playerName)
	}
}
