package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// NewRouter wires the REST surface and mounts the websocket endpoint the
// players dial.
func NewRouter(s *Server, serveWS http.HandlerFunc) *httprouter.Router {
	router := httprouter.New()

	router.GET("/healthz", s.health)
	router.GET("/version", s.serveVersion)
	router.GET("/quizzes", s.listQuizzes)

	router.POST("/sessions", s.createSession)
	router.GET("/sessions/:pin", s.getSession)
	router.POST("/sessions/:pin/start", s.startSession)
	router.POST("/sessions/:pin/advance", s.advanceSession)
	router.DELETE("/sessions/:pin", s.deleteSession)
	router.GET("/sessions/:pin/qr", s.sessionQR)

	router.HandlerFunc(http.MethodGet, "/ws", serveWS)

	return router
}
