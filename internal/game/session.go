package game

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"yupp-live-quiz/internal/domain"
	"yupp-live-quiz/internal/protocol"
)

// State is the top-level session state machine position.
type State string

const (
	StateLobby       State = "lobby"
	StateRoundActive State = "roundActive"
	StateRoundScored State = "roundScored"
	StateFinished    State = "finished"
)

const (
	defaultStartDelay = 2 * time.Second
	defaultGraceDelay = time.Second
)

// Session is one hosted quiz from lobby to final results. It is the single
// writer of all session state: inbound messages, host actions and timer
// callbacks all serialize through its mutex, so no two mutations of the
// registry or the active round ever interleave.
type Session struct {
	id   string
	quiz domain.Quiz
	log  *zap.Logger

	startDelay time.Duration
	graceDelay time.Duration
	tickEvery  time.Duration

	mu          sync.Mutex
	state       State
	registry    *Registry
	round       *Round
	current     int // index into quiz.Questions, -1 before the first round
	lastResult  *domain.RoundResult
	subscribers map[chan Event]struct{}
	startTimer  *time.Timer
	closed      bool
}

// Option tweaks session timing and logging, mainly for tests.
type Option func(*Session)

func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

func WithStartDelay(d time.Duration) Option {
	return func(s *Session) { s.startDelay = d }
}

func WithGraceDelay(d time.Duration) Option {
	return func(s *Session) { s.graceDelay = d }
}

func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.tickEvery = d }
}

// NewSession validates the quiz and builds a session in the lobby state.
func NewSession(id string, quiz domain.Quiz, opts ...Option) (*Session, error) {
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		id:          id,
		quiz:        quiz,
		log:         zap.NewNop(),
		startDelay:  defaultStartDelay,
		graceDelay:  defaultGraceDelay,
		tickEvery:   time.Second,
		state:       StateLobby,
		registry:    NewRegistry(),
		current:     -1,
		subscribers: make(map[chan Event]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.SetOnChange(s.rosterChangedLocked)
	return s, nil
}

func (s *Session) ID() string        { return s.id }
func (s *Session) Quiz() domain.Quiz { return s.quiz }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentQuestion returns the 1-based number of the question in play, or 0
// while still in the lobby.
func (s *Session) CurrentQuestion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current + 1
}

// Roster returns (name, score) pairs in join order.
func (s *Session) Roster() []domain.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Snapshot()
}

// Leaderboard returns the standings sorted by descending score with the
// join-order tie-break.
func (s *Session) Leaderboard() []domain.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Leaderboard()
}

// LastResult returns the most recently scored round, if any.
func (s *Session) LastResult() *domain.RoundResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// Join admits a player into the lobby, or between rounds. Joins are refused
// while a round is open (the joiner missed the question broadcast) and once
// the game has finished.
func (s *Session) Join(name string, conn Sender) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed, s.state == StateFinished:
		return domain.ErrSessionClosed
	case s.state == StateRoundActive:
		return domain.ErrGameInProgress
	}
	if s.registry.Has(name) {
		return domain.ErrDuplicateName
	}
	if err := conn.Send(protocol.KindJoined, protocol.JoinedPayload{
		QuizTitle:     s.quiz.Title,
		QuestionCount: len(s.quiz.Questions),
	}); err != nil {
		s.log.Warn("joined confirmation failed", zap.String("player", name), zap.Error(err))
	}
	if err := s.registry.Join(name, conn); err != nil {
		return err
	}
	s.log.Info("player joined", zap.String("session", s.id), zap.String("player", name))
	return nil
}

// Leave removes a player; a lost connection is treated the same way. The
// round's all-answered check is re-evaluated against the shrunken roster so
// a departed player cannot hold a round open.
func (s *Session) Leave(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.registry.Has(name) {
		return
	}
	s.registry.Leave(name)
	s.log.Info("player left", zap.String("session", s.id), zap.String("player", name))
	s.maybeGraceCloseLocked()
}

// Start begins the quiz. It requires at least one joined player, announces
// the start to everyone, then opens the first question after a short delay
// so clients can transition screens.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	// startTimer non-nil means a start is already pending; the state is
	// still Lobby during the start delay.
	if s.state != StateLobby || s.startTimer != nil {
		return domain.ErrGameInProgress
	}
	if s.registry.Len() == 0 {
		return domain.ErrInsufficientPlayers
	}
	s.broadcastLocked(protocol.KindGameStarting, protocol.GameStartingPayload{Quiz: s.quiz})
	s.publishLocked(Event{Type: EventGameStarting, TotalQuestions: len(s.quiz.Questions)})
	s.startTimer = time.AfterFunc(s.startDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.state != StateLobby {
			return
		}
		s.openNextRoundLocked()
	})
	s.log.Info("game starting", zap.String("session", s.id), zap.Int("players", s.registry.Len()))
	return nil
}

// Submit records a player's answer for the open round. Rejections
// (no open round, duplicate answer, unknown player) leave all state intact.
func (s *Session) Submit(name string, choice int, submittedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state != StateRoundActive {
		return domain.ErrRoundNotOpen
	}
	if !s.registry.Has(name) {
		return domain.ErrRoundNotOpen
	}
	if err := s.round.Submit(name, choice, submittedAt); err != nil {
		return err
	}
	s.publishLocked(Event{
		Type:         EventAnswerProgress,
		Answered:     s.round.AnswerCount(),
		TotalPlayers: s.registry.Len(),
	})
	s.maybeGraceCloseLocked()
	return nil
}

// Advance is the host action that moves past a scored round, either opening
// the next question or finishing the game.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	if s.state != StateRoundScored {
		return domain.ErrAdvanceUnavailable
	}
	s.openNextRoundLocked()
	return nil
}

// Subscribe returns a channel of display events. The cancel function must be
// called to release the subscription.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Shutdown tears the session down: pending timers are cancelled, player
// connections closed and subscribers released. No timer callback outlives
// the teardown.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.startTimer != nil {
		s.startTimer.Stop()
	}
	if s.round != nil {
		s.round.Close()
	}
	s.registry.ForEachConn(func(name string, conn Sender) {
		if err := conn.Close(); err != nil {
			s.log.Debug("close connection", zap.String("player", name), zap.Error(err))
		}
	})
	for ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = make(map[chan Event]struct{})
	s.log.Info("session shut down", zap.String("session", s.id))
}

func (s *Session) openNextRoundLocked() {
	s.current++
	if s.current >= len(s.quiz.Questions) {
		s.finishLocked()
		return
	}
	question := s.quiz.Questions[s.current]
	round := NewRound(s.quiz.TimePerQuestion, s.graceDelay)
	round.tickEvery = s.tickEvery
	s.round = round
	s.state = StateRoundActive
	s.broadcastLocked(protocol.KindQuestion, protocol.QuestionPayload{
		QuestionNumber: s.current + 1,
		TotalQuestions: len(s.quiz.Questions),
		Question:       question.Text,
		Answers:        question.Answers,
		TimeLimit:      s.quiz.TimePerQuestion,
	})
	s.publishLocked(Event{
		Type:           EventRoundOpened,
		QuestionNumber: s.current + 1,
		TotalQuestions: len(s.quiz.Questions),
		Remaining:      s.quiz.TimePerQuestion,
	})
	if err := round.Open(func() { s.handleTick(round) }); err != nil {
		s.log.Error("open round", zap.String("session", s.id), zap.Error(err))
	}
}

// handleTick re-enters from the countdown goroutine once per tick.
func (s *Session) handleTick(round *Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.round != round || s.state != StateRoundActive {
		return
	}
	remaining := round.Tick()
	s.publishLocked(Event{Type: EventCountdown, Remaining: remaining})
	if remaining <= 0 {
		s.closeRoundLocked(round)
	}
}

// maybeGraceCloseLocked arms the short grace close once every remaining
// player has answered. The denominator is the live player count at the time
// of the check, so departures shrink it.
func (s *Session) maybeGraceCloseLocked() {
	if s.state != StateRoundActive || s.round == nil {
		return
	}
	if s.registry.Len() == 0 || s.round.AnswerCount() < s.registry.Len() {
		return
	}
	round := s.round
	round.ScheduleGraceClose(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.closeRoundLocked(round)
	})
}

// closeRoundLocked is the single judgment point for a round. The countdown
// expiry and the grace timer may race here; Round.Close lets only the first
// caller through, so scoring runs exactly once.
func (s *Session) closeRoundLocked(round *Round) {
	if s.round != round || !round.Close() {
		return
	}
	question := s.quiz.Questions[s.current]
	remaining := round.Remaining()
	for _, record := range round.Answers() {
		if record.Choice != question.CorrectAnswer {
			continue
		}
		s.registry.AddScore(record.PlayerName, Score(question.Points, remaining, s.quiz.TimePerQuestion))
	}
	result := &domain.RoundResult{
		CorrectAnswer: question.CorrectAnswer,
		Leaderboard:   s.registry.Leaderboard(),
	}
	s.lastResult = result
	s.state = StateRoundScored
	s.broadcastLocked(protocol.KindRoundResult, protocol.RoundResultPayload{
		CorrectAnswer: result.CorrectAnswer,
		Leaderboard:   result.Leaderboard,
	})
	s.publishLocked(Event{Type: EventRoundResult, QuestionNumber: s.current + 1, Result: result})
	s.log.Info("round scored",
		zap.String("session", s.id),
		zap.Int("question", s.current+1),
		zap.Int("answers", round.AnswerCount()),
	)
}

func (s *Session) finishLocked() {
	s.state = StateFinished
	leaderboard := s.registry.Leaderboard()
	s.broadcastLocked(protocol.KindGameOver, protocol.GameOverPayload{Leaderboard: leaderboard})
	s.publishLocked(Event{Type: EventGameOver, Leaderboard: leaderboard})
	s.log.Info("game over", zap.String("session", s.id))
}

// rosterChangedLocked runs as the registry's change hook, already under the
// session lock.
func (s *Session) rosterChangedLocked() {
	names := s.registry.Names()
	s.broadcastLocked(protocol.KindRosterChanged, protocol.RosterPayload{Players: names})
	s.publishLocked(Event{Type: EventRoster, Players: names})
}

// broadcastLocked fans a message out to every player. Sends are independent
// best-effort attempts; one failure never stops the loop.
func (s *Session) broadcastLocked(kind string, payload any) {
	s.registry.ForEachConn(func(name string, conn Sender) {
		if err := conn.Send(kind, payload); err != nil {
			s.log.Warn("broadcast send failed",
				zap.String("session", s.id),
				zap.String("player", name),
				zap.String("kind", kind),
				zap.Error(err),
			)
		}
	})
}

func (s *Session) publishLocked(event Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest queued event rather than block the engine on a
			// slow consumer.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- event:
			default:
			}
		}
	}
}
