package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"yupp-live-quiz/internal/domain"
)

func TestQuizCacheServesFromCache(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
		"general": sampleQuiz(),
	})}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "general"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if _, err := cache.GetQuiz(context.Background(), "general"); err != nil {
		t.Fatalf("get quiz again: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected a single load, got %d", loader.calls)
	}
}

func TestQuizCacheExpires(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
		"general": sampleQuiz(),
	})}
	cache := NewQuizCache(loader, time.Minute)

	now := time.Now()
	cache.clock = func() time.Time { return now }
	if _, err := cache.GetQuiz(context.Background(), "general"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cache.GetQuiz(context.Background(), "general"); err != nil {
		t.Fatalf("get quiz after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, got %d calls", loader.calls)
	}
}

func TestQuizCachePropagatesNotFound(t *testing.T) {
	cache := NewQuizCache(NewStaticQuizLoader(nil), time.Minute)
	if _, err := cache.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:              "general",
		Title:           "General Knowledge Quiz",
		TimePerQuestion: 20,
		Questions: []domain.Question{
			{Text: "What is 2 + 2?", Answers: []string{"3", "4"}, CorrectAnswer: 1, Points: 100},
		},
	}
}
