package core

import "time"

// FixedStep paces simulation rounds independently of the render loop. A
// viewer running at 60 frames per second asks ShouldStep every frame and only
// advances the simulation when a full round interval has elapsed.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep controller targeting the given rounds
// per second. The first call to ShouldStep always fires.
func NewFixedStep(rps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetRate(rps)
	fs.accumulator = fs.step
	return fs
}

// SetRate changes the round rate. Non-positive values fall back to 10.
func (f *FixedStep) SetRate(rps int) {
	if rps <= 0 {
		rps = 10
	}
	f.step = time.Second / time.Duration(rps)
}

// Interval returns the time between rounds.
func (f *FixedStep) Interval() time.Duration { return f.step }

// ShouldStep reports whether the simulation should advance by one round.
func (f *FixedStep) ShouldStep() bool {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	delta := now.Sub(f.last)
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		return true
	}
	return false
}
