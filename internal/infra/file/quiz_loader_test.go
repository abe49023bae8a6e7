package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"yupp-live-quiz/internal/domain"
)

const sampleYAML = `
title: General Knowledge Quiz
timePerQuestion: 20
questions:
  - question: What is 2 + 2?
    answers: ["3", "4", "5", "6"]
    correctAnswer: 1
    points: 100
`

const sampleJSON = `{
  "title": "Capitals",
  "timePerQuestion": 15,
  "questions": [
    {"question": "Capital of France?", "answers": ["Paris", "Lyon"], "correctAnswer": 0, "points": 200}
  ]
}`

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestLoadQuizYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "general.yaml", sampleYAML)
	writeFixture(t, dir, "capitals.json", sampleJSON)
	loader := NewQuizLoader(dir)

	quiz, err := loader.LoadQuiz(context.Background(), "general")
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if quiz.ID != "general" || quiz.TimePerQuestion != 20 || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}

	quiz, err = loader.LoadQuiz(context.Background(), "capitals")
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if quiz.Title != "Capitals" || quiz.Questions[0].CorrectAnswer != 0 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
}

func TestLoadQuizMissing(t *testing.T) {
	loader := NewQuizLoader(t.TempDir())
	if _, err := loader.LoadQuiz(context.Background(), "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestLoadQuizRejectsInvalidContent(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "broken.yaml", "title: Broken\ntimePerQuestion: 0\nquestions: []\n")
	loader := NewQuizLoader(dir)
	if _, err := loader.LoadQuiz(context.Background(), "broken"); !errors.Is(err, domain.ErrQuizInvalid) {
		t.Fatalf("expected ErrQuizInvalid, got %v", err)
	}
}

func TestLoadQuizRejectsPathTraversal(t *testing.T) {
	loader := NewQuizLoader(t.TempDir())
	if _, err := loader.LoadQuiz(context.Background(), "../secrets"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestListQuizzes(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "b.yaml", sampleYAML)
	writeFixture(t, dir, "a.json", sampleJSON)
	writeFixture(t, dir, "notes.txt", "ignored")
	loader := NewQuizLoader(dir)

	ids, err := loader.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected listing: %v", ids)
	}
}
