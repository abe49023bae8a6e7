package game

import "yupp-live-quiz/internal/domain"

// EventType tags engine events delivered to the rendering layer.
type EventType string

const (
	EventRoster         EventType = "roster"
	EventGameStarting   EventType = "gameStarting"
	EventRoundOpened    EventType = "roundOpened"
	EventCountdown      EventType = "countdown"
	EventAnswerProgress EventType = "answerProgress"
	EventRoundResult    EventType = "roundResult"
	EventGameOver       EventType = "gameOver"
)

// Event is a host-side state change for display purposes. Only the fields
// relevant to the tagged type are populated.
type Event struct {
	Type           EventType                 `json:"type"`
	Players        []string                  `json:"players,omitempty"`
	Remaining      int                       `json:"remaining,omitempty"`
	QuestionNumber int                       `json:"questionNumber,omitempty"` // 1-based
	TotalQuestions int                       `json:"totalQuestions,omitempty"`
	Answered       int                       `json:"answered,omitempty"`
	TotalPlayers   int                       `json:"totalPlayers,omitempty"`
	Result         *domain.RoundResult       `json:"result,omitempty"`
	Leaderboard    []domain.LeaderboardEntry `json:"leaderboard,omitempty"`
}
