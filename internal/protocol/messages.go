// Package protocol defines the wire vocabulary exchanged between the host and
// each player. Every message is a self-contained JSON envelope with a string
// kind and a typed payload; receivers ignore kinds they do not understand.
package protocol

import (
	"encoding/json"

	"yupp-live-quiz/internal/domain"
)

// Message kinds. Players send join/answer; the host sends everything else.
const (
	KindJoin          = "join"
	KindJoined        = "joined"
	KindError         = "error"
	KindRosterChanged = "rosterChanged"
	KindGameStarting  = "gameStarting"
	KindQuestion      = "question"
	KindAnswer        = "answer"
	KindRoundResult   = "roundResult"
	KindGameOver      = "gameOver"
)

// Envelope is the outer frame of every message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload is a player's request to enter the session.
type JoinPayload struct {
	PlayerName string `json:"playerName"`
}

// JoinedPayload confirms a join and describes the quiz ahead.
type JoinedPayload struct {
	QuizTitle     string `json:"quizTitle"`
	QuestionCount int    `json:"questionCount"`
}

// ErrorPayload carries a human-readable rejection or fatal notice.
type ErrorPayload struct {
	Message string `json:"message"`
}

// RosterPayload is the full lobby roster in join order.
type RosterPayload struct {
	Players []string `json:"players"`
}

// GameStartingPayload pushes the full quiz once, ahead of the first question.
type GameStartingPayload struct {
	Quiz domain.Quiz `json:"quiz"`
}

// QuestionPayload opens a round on the player side.
type QuestionPayload struct {
	QuestionNumber int      `json:"questionNumber"` // 1-based
	TotalQuestions int      `json:"totalQuestions"`
	Question       string   `json:"question"`
	Answers        []string `json:"answers"`
	TimeLimit      int      `json:"timeLimit"` // seconds
}

// AnswerPayload is a submission attempt for the current round.
type AnswerPayload struct {
	PlayerName string `json:"playerName"`
	Answer     int    `json:"answer"`
	Timestamp  int64  `json:"timestamp"` // epoch millis at the player
}

// RoundResultPayload reveals the correct answer and current standings.
type RoundResultPayload struct {
	CorrectAnswer int                       `json:"correctAnswer"`
	Leaderboard   []domain.LeaderboardEntry `json:"leaderboard"`
}

// GameOverPayload carries the final standings.
type GameOverPayload struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

// Encode wraps a payload into a marshaled envelope.
func Encode(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: kind, Payload: raw})
}

// Decode parses the outer envelope, leaving the payload raw for the
// receiver's state machine to interpret.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
