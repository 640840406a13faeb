// Package fader provides a pull-model linear interpolator used to
// eliminate audible discontinuities on parameter changes.
//
// A Fader never owns a reference to the object it fades a parameter
// for. The caller drives it once per sample and inspects the returned
// completion flag to trigger whatever state transition is appropriate;
// this keeps the fader reusable for volume, phase step, and both
// pan gains without any callback plumbing.
package fader

// Length is the default number of samples a fade takes to complete
// (~5.8ms at 44.1kHz). Individual faders may override it via NewN.
const Length = 256

// Fader linearly interpolates from a start value to a target value
// over a fixed number of steps.
type Fader struct {
	stepsLeft int
	total     int
	start     float32
	target    float32
}

// New creates a fader already at rest at value v, using the default
// fade length.
func New(v float32) *Fader {
	return NewN(v, Length)
}

// NewN creates a fader at rest at value v with a custom fade length.
func NewN(v float32, length int) *Fader {
	if length < 1 {
		length = 1
	}
	return &Fader{start: v, target: v, total: length}
}

// FadeTo restarts the fader from its current value toward target.
func (f *Fader) FadeTo(target float32) {
	f.start = f.Current()
	f.target = target
	f.stepsLeft = f.total
}

// Reset immediately snaps the fader to v with no fade in progress.
func (f *Fader) Reset(v float32) {
	f.start = v
	f.target = v
	f.stepsLeft = 0
}

// Current returns the fader's present value without advancing it.
func (f *Fader) Current() float32 {
	if f.stepsLeft <= 0 {
		return f.target
	}
	k := f.total - f.stepsLeft
	frac := float32(k) / float32(f.total)
	return f.start + (f.target-f.start)*frac
}

// Target returns the value the fader is heading toward (or resting at).
func (f *Fader) Target() float32 {
	return f.target
}

// Active reports whether the fader is still mid-fade.
func (f *Fader) Active() bool {
	return f.stepsLeft > 0
}

// Update advances the fader by one sample step and returns the new
// current value plus whether this call was the one that completed the
// fade (the 1->0 transition). completed is true at most once per
// FadeTo call.
func (f *Fader) Update() (value float32, completed bool) {
	if f.stepsLeft <= 0 {
		return f.target, false
	}
	f.stepsLeft--
	value = f.Current()
	if f.stepsLeft == 0 {
		value = f.target
		completed = true
	}
	return value, completed
}
