package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"yupp-live-quiz/internal/domain"
	"yupp-live-quiz/internal/game"
	"yupp-live-quiz/internal/player"
)

func testQuiz() domain.Quiz {
	return domain.Quiz{
		ID:              "general",
		Title:           "General Knowledge Quiz",
		TimePerQuestion: 20,
		Questions: []domain.Question{
			{Text: "What is 2 + 2?", Answers: []string{"3", "4", "5", "6"}, CorrectAnswer: 1, Points: 100},
			{Text: "Largest planet?", Answers: []string{"Mars", "Venus", "Jupiter", "Saturn"}, CorrectAnswer: 2, Points: 200},
		},
	}
}

func newGameServer(t *testing.T) (*game.Session, string) {
	t.Helper()
	hub := game.NewHub(game.WithSessionOptions(
		game.WithStartDelay(10*time.Millisecond),
		game.WithGraceDelay(10*time.Millisecond),
		game.WithTickInterval(time.Hour), // rounds close via the all-answered path
	))
	session, err := hub.Create(context.Background(), testQuiz())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewHandler(hub, zap.NewNop()).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Cleanup(func() { hub.Shutdown(context.Background()) })

	return session, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dialPlayer(t *testing.T, url, pin, name string) *player.Client {
	t.Helper()
	client, err := player.Dial(context.Background(), url, pin, name, zap.NewNop())
	if err != nil {
		t.Fatalf("dial %s: %v", name, err)
	}
	t.Cleanup(client.Leave)
	return client
}

// waitEvent reads until the wanted event type arrives, tolerating
// interleaved roster and countdown traffic.
func waitEvent(t *testing.T, c *player.Client, want player.EventType) player.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-c.Events():
			if !ok {
				t.Fatalf("%s: events closed while waiting for %s", c.Name(), want)
			}
			if ev.Type == want {
				return ev
			}
			if ev.Type == player.EventRejected {
				t.Fatalf("%s: rejected while waiting for %s: %s", c.Name(), want, ev.Message)
			}
		case <-deadline:
			t.Fatalf("%s: timed out waiting for %s", c.Name(), want)
		}
	}
}

func TestFullGameOverWebsocket(t *testing.T) {
	session, url := newGameServer(t)

	ava := dialPlayer(t, url, session.ID(), "Ava")
	ben := dialPlayer(t, url, session.ID(), "Ben")

	joined := waitEvent(t, ava, player.EventJoined)
	if joined.QuizTitle != "General Knowledge Quiz" || joined.Count != 2 {
		t.Fatalf("unexpected joined payload: %+v", joined)
	}
	waitEvent(t, ben, player.EventJoined)

	if err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitEvent(t, ava, player.EventGameStarting)
	q1 := waitEvent(t, ava, player.EventQuestion)
	if q1.Question.QuestionNumber != 1 || q1.Question.TimeLimit != 20 {
		t.Fatalf("unexpected question payload: %+v", q1.Question)
	}
	waitEvent(t, ben, player.EventQuestion)

	// Both answer question 1 correctly; the round closes via the grace path
	// with the full time bonus still on the clock.
	if err := ava.Submit(1); err != nil {
		t.Fatalf("ava submit: %v", err)
	}
	if err := ben.Submit(1); err != nil {
		t.Fatalf("ben submit: %v", err)
	}
	result := waitEvent(t, ava, player.EventRoundResult)
	if result.Result.CorrectAnswer != 1 {
		t.Fatalf("unexpected correct answer: %d", result.Result.CorrectAnswer)
	}
	for _, entry := range result.Result.Leaderboard {
		if entry.Score != 600 {
			t.Fatalf("expected 600 points each (100 base + 500 bonus), got %+v", entry)
		}
	}
	waitEvent(t, ben, player.EventRoundResult)

	// Question 2: Ava is right, Ben is wrong.
	if err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	waitEvent(t, ava, player.EventQuestion)
	waitEvent(t, ben, player.EventQuestion)
	if err := ava.Submit(2); err != nil {
		t.Fatalf("ava submit q2: %v", err)
	}
	if err := ben.Submit(0); err != nil {
		t.Fatalf("ben submit q2: %v", err)
	}
	waitEvent(t, ava, player.EventRoundResult)

	if err := session.Advance(); err != nil {
		t.Fatalf("final advance: %v", err)
	}
	over := waitEvent(t, ben, player.EventGameOver)
	if len(over.Leaderboard) != 2 {
		t.Fatalf("expected 2 leaderboard entries, got %+v", over.Leaderboard)
	}
	if over.Leaderboard[0].Name != "Ava" || over.Leaderboard[0].Score != 1300 {
		t.Fatalf("expected Ava leading with 1300, got %+v", over.Leaderboard[0])
	}
	if over.Leaderboard[1].Name != "Ben" || over.Leaderboard[1].Score != 600 {
		t.Fatalf("expected Ben on 600, got %+v", over.Leaderboard[1])
	}
}

func TestDuplicateNameRejectedOverWebsocket(t *testing.T) {
	session, url := newGameServer(t)

	ava := dialPlayer(t, url, session.ID(), "Ava")
	waitEvent(t, ava, player.EventJoined)

	imposter := dialPlayer(t, url, session.ID(), "Ava")
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-imposter.Events():
			if !ok {
				t.Fatalf("events closed before rejection arrived")
			}
			if ev.Type == player.EventRejected {
				if !strings.Contains(ev.Message, "name already taken") {
					t.Fatalf("unexpected rejection message: %s", ev.Message)
				}
				if len(session.Roster()) != 1 {
					t.Fatalf("rejected join changed the roster: %+v", session.Roster())
				}
				return
			}
			if ev.Type == player.EventJoined {
				t.Fatalf("duplicate name was admitted")
			}
		case <-deadline:
			t.Fatalf("timed out waiting for rejection")
		}
	}
}

func TestDialUnknownPin(t *testing.T) {
	_, url := newGameServer(t)
	if _, err := player.Dial(context.Background(), url, "999999", "Ava", zap.NewNop()); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDialRejectsMalformedPin(t *testing.T) {
	if _, err := player.Dial(context.Background(), "ws://irrelevant", "12", "Ava", zap.NewNop()); err != player.ErrBadPin {
		t.Fatalf("expected ErrBadPin, got %v", err)
	}
}

func TestDisconnectBecomesLeave(t *testing.T) {
	session, url := newGameServer(t)

	ava := dialPlayer(t, url, session.ID(), "Ava")
	ben := dialPlayer(t, url, session.ID(), "Ben")
	waitEvent(t, ava, player.EventJoined)
	waitEvent(t, ben, player.EventJoined)

	ben.Leave()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(session.Roster()) == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("departed player still on the roster: %+v", session.Roster())
}
