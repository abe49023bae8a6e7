package game

import (
	"time"

	"yupp-live-quiz/internal/domain"
)

type roundState int

const (
	roundPending roundState = iota
	roundOpen
	roundClosed
)

// Round drives the timed lifecycle of a single question: Pending -> Open ->
// Closed, exactly once. All methods must be called under the owning
// Session's lock; the countdown goroutine re-enters through the callback
// passed to Open, which is expected to take that same lock.
type Round struct {
	timeLimit  int
	tickEvery  time.Duration
	graceDelay time.Duration

	state     roundState
	remaining int
	answers   map[string]domain.AnswerRecord
	order     []string

	stop        chan struct{}
	tickStopped bool
	grace       *time.Timer
}

func NewRound(timeLimitSeconds int, graceDelay time.Duration) *Round {
	return &Round{
		timeLimit:  timeLimitSeconds,
		tickEvery:  time.Second,
		graceDelay: graceDelay,
		remaining:  timeLimitSeconds,
		answers:    make(map[string]domain.AnswerRecord),
		stop:       make(chan struct{}),
	}
}

// Open starts the countdown. onTick fires once per tick interval from a
// timer goroutine until the round stops ticking; the callback owns
// decrementing the clock via Tick.
func (r *Round) Open(onTick func()) error {
	if r.state != roundPending {
		return domain.ErrRoundAlreadyStarted
	}
	r.state = roundOpen
	go func() {
		ticker := time.NewTicker(r.tickEvery)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				onTick()
			}
		}
	}()
	return nil
}

// Tick decrements the countdown and reports the seconds left. The caller
// closes the round when it reaches zero.
func (r *Round) Tick() int {
	if r.state == roundOpen && r.remaining > 0 {
		r.remaining--
	}
	return r.remaining
}

// Submit records an answer while the round is open. The first submission per
// player wins; later attempts are rejected and the original record kept.
func (r *Round) Submit(playerName string, choice int, submittedAt int64) error {
	if r.state != roundOpen {
		return domain.ErrRoundNotOpen
	}
	if _, ok := r.answers[playerName]; ok {
		return domain.ErrAlreadyAnswered
	}
	r.answers[playerName] = domain.AnswerRecord{
		PlayerName:  playerName,
		Choice:      choice,
		SubmittedAt: submittedAt,
	}
	r.order = append(r.order, playerName)
	return nil
}

func (r *Round) AnswerCount() int { return len(r.answers) }

// Answers returns the accepted records in submission order.
func (r *Round) Answers() []domain.AnswerRecord {
	records := make([]domain.AnswerRecord, 0, len(r.order))
	for _, name := range r.order {
		records = append(records, r.answers[name])
	}
	return records
}

// Remaining is the frozen clock value used for the time bonus once the
// round is judged.
func (r *Round) Remaining() int { return r.remaining }

// ScheduleGraceClose freezes the countdown and arms a one-shot close after
// the grace delay, giving the final submitter's client time to render
// confirmation. Only the first call arms the timer.
func (r *Round) ScheduleGraceClose(fn func()) {
	if r.state != roundOpen || r.grace != nil {
		return
	}
	r.stopTicking()
	r.grace = time.AfterFunc(r.graceDelay, fn)
}

// Close transitions Open -> Closed and cancels the countdown and any grace
// timer. It reports whether this call performed the transition; the expiry
// and grace paths may race, and only the first wins.
func (r *Round) Close() bool {
	if r.state != roundOpen {
		return false
	}
	r.state = roundClosed
	r.stopTicking()
	if r.grace != nil {
		r.grace.Stop()
	}
	return true
}

func (r *Round) stopTicking() {
	if !r.tickStopped {
		r.tickStopped = true
		close(r.stop)
	}
}
