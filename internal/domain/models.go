package domain

// Question models a single multiple-choice question. CorrectAnswer indexes
// into Answers; Points is the base award before any time bonus.
type Question struct {
	Text          string   `json:"question" yaml:"question"`
	Answers       []string `json:"answers" yaml:"answers"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correctAnswer"`
	Points        int      `json:"points" yaml:"points"`
}

// Quiz is an ordered set of questions with a shared per-question time limit.
// It is immutable once loaded and shared by reference between sessions.
type Quiz struct {
	ID              string     `json:"id" yaml:"id"`
	Title           string     `json:"title" yaml:"title"`
	TimePerQuestion int        `json:"timePerQuestion" yaml:"timePerQuestion"`
	Questions       []Question `json:"questions" yaml:"questions"`
}

// Validate rejects quizzes the engine cannot run.
func (q Quiz) Validate() error {
	if q.TimePerQuestion <= 0 || len(q.Questions) == 0 {
		return ErrQuizInvalid
	}
	for _, question := range q.Questions {
		if len(question.Answers) < 2 {
			return ErrQuizInvalid
		}
		if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Answers) {
			return ErrQuizInvalid
		}
		if question.Points <= 0 {
			return ErrQuizInvalid
		}
	}
	return nil
}

// AnswerRecord is one accepted submission. It lives only for the duration of
// a single round; at most one record exists per player per round.
type AnswerRecord struct {
	PlayerName  string
	Choice      int
	SubmittedAt int64 // epoch millis, as reported by the player
}

// LeaderboardEntry is a snapshot-friendly (name, score) pair.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoundResult is the outcome of a closed round: the correct answer index and
// the leaderboard sorted by descending score, ties broken by join order.
type RoundResult struct {
	CorrectAnswer int                `json:"correctAnswer"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
}
