// Package file loads quiz definitions from YAML or JSON files on disk,
// one file per quiz, named <id>.yaml / <id>.yml / <id>.json.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"yupp-live-quiz/internal/domain"
)

var extensions = []string{".yaml", ".yml", ".json"}

// QuizLoader reads quizzes from a catalog directory.
type QuizLoader struct {
	dir string
}

func NewQuizLoader(dir string) *QuizLoader {
	return &QuizLoader{dir: dir}
}

// LoadQuiz reads and validates the quiz file for id. YAML 1.2 is a superset
// of JSON, so one decoder covers both formats.
func (l *QuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quizID != filepath.Base(quizID) || strings.HasPrefix(quizID, ".") {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	for _, ext := range extensions {
		data, err := os.ReadFile(filepath.Join(l.dir, quizID+ext))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("%w: %v", domain.ErrQuizLoadFailed, err)
		}
		var quiz domain.Quiz
		if err := yaml.Unmarshal(data, &quiz); err != nil {
			return domain.Quiz{}, fmt.Errorf("%w: parse %s%s: %v", domain.ErrQuizLoadFailed, quizID, ext, err)
		}
		if quiz.ID == "" {
			quiz.ID = quizID
		}
		if err := quiz.Validate(); err != nil {
			return domain.Quiz{}, err
		}
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// ListQuizzes returns the sorted ids of every quiz file in the directory.
func (l *QuizLoader) ListQuizzes(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuizLoadFailed, err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		for _, known := range extensions {
			if ext == known {
				ids = append(ids, strings.TrimSuffix(name, ext))
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
