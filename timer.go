package lightborne

import "time"

// Timer is a one-shot countdown advanced by explicit deltas. JustFinished is
// true only for the tick on which the duration was reached.
type Timer struct {
	duration     time.Duration
	elapsed      time.Duration
	paused       bool
	finished     bool
	justFinished bool
}

func NewTimer(duration time.Duration) Timer {
	return Timer{duration: duration}
}

func (t *Timer) Tick(dt time.Duration) {
	t.justFinished = false
	if t.paused || t.finished {
		return
	}
	t.elapsed += dt
	if t.elapsed >= t.duration {
		t.elapsed = t.duration
		t.finished = true
		t.justFinished = true
	}
}

func (t *Timer) Reset() {
	t.elapsed = 0
	t.finished = false
	t.justFinished = false
}

func (t *Timer) Pause()   { t.paused = true }
func (t *Timer) Unpause() { t.paused = false }

func (t *Timer) Paused() bool            { return t.paused }
func (t *Timer) Finished() bool          { return t.finished }
func (t *Timer) JustFinished() bool      { return t.justFinished }
func (t *Timer) Elapsed() time.Duration  { return t.elapsed }
func (t *Timer) Duration() time.Duration { return t.duration }

// Stopwatch accumulates every tick it is given.
type Stopwatch struct {
	elapsed time.Duration
}

func (s *Stopwatch) Tick(dt time.Duration) {
	s.elapsed += dt
}

func (s *Stopwatch) Reset()                 { s.elapsed = 0 }
func (s *Stopwatch) Elapsed() time.Duration { return s.elapsed }
