package game

import (
	"testing"
	"time"

	"yupp-live-quiz/internal/domain"
)

func TestRoundLifecycle(t *testing.T) {
	r := NewRound(10, time.Millisecond)
	r.tickEvery = time.Hour // ticks driven manually

	if err := r.Submit("Ava", 1, 1); err != domain.ErrRoundNotOpen {
		t.Fatalf("submit before open: %v", err)
	}
	if err := r.Open(func() {}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := r.Open(func() {}); err != domain.ErrRoundAlreadyStarted {
		t.Fatalf("second open: %v", err)
	}
	if err := r.Submit("Ava", 1, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !r.Close() {
		t.Fatalf("expected first close to perform the transition")
	}
	if err := r.Submit("Ben", 0, 2); err != domain.ErrRoundNotOpen {
		t.Fatalf("submit after close: %v", err)
	}
}

func TestRoundFirstSubmissionWins(t *testing.T) {
	r := NewRound(10, time.Millisecond)
	r.tickEvery = time.Hour
	_ = r.Open(func() {})

	if err := r.Submit("Ava", 2, 100); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := r.Submit("Ava", 3, 200); err != domain.ErrAlreadyAnswered {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	records := r.Answers()
	if len(records) != 1 || records[0].Choice != 2 || records[0].SubmittedAt != 100 {
		t.Fatalf("original record not preserved: %+v", records)
	}
}

func TestRoundDoubleCloseIsSingleTransition(t *testing.T) {
	r := NewRound(10, time.Millisecond)
	r.tickEvery = time.Hour
	_ = r.Open(func() {})

	first := r.Close()
	second := r.Close()
	if !first || second {
		t.Fatalf("expected exactly one winning close, got first=%v second=%v", first, second)
	}
}

func TestRoundTickCountsDownAndFloorsAtZero(t *testing.T) {
	r := NewRound(3, time.Millisecond)
	r.tickEvery = time.Hour
	_ = r.Open(func() {})

	for want := 2; want >= 0; want-- {
		if got := r.Tick(); got != want {
			t.Fatalf("tick: got %d, want %d", got, want)
		}
	}
	if got := r.Tick(); got != 0 {
		t.Fatalf("tick below zero: %d", got)
	}
}

func TestRoundGraceCloseFreezesClockAndFiresOnce(t *testing.T) {
	r := NewRound(10, 5*time.Millisecond)
	r.tickEvery = time.Hour
	_ = r.Open(func() {})

	r.Tick()
	r.Tick() // remaining = 8

	fired := make(chan struct{}, 2)
	r.ScheduleGraceClose(func() { fired <- struct{}{} })
	r.ScheduleGraceClose(func() { fired <- struct{}{} }) // second schedule is a no-op

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("grace close never fired")
	}
	select {
	case <-fired:
		t.Fatalf("grace close fired twice")
	case <-time.After(20 * time.Millisecond):
	}
	if r.Remaining() != 8 {
		t.Fatalf("clock not frozen at grace close: %d", r.Remaining())
	}
}

func TestRoundCountdownTicksFromTimer(t *testing.T) {
	r := NewRound(10, time.Millisecond)
	r.tickEvery = 2 * time.Millisecond

	ticks := make(chan struct{}, 64)
	_ = r.Open(func() { ticks <- struct{}{} })
	defer r.Close()

	for i := 0; i < 3; i++ {
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatalf("countdown goroutine never ticked (%d ticks seen)", i)
		}
	}
}
