// Package oscillator implements a single additive-synthesis voice: a
// wavetable-indexed phase accumulator, a small activation state
// machine, and the four faders that keep every parameter change click
// free.
package oscillator

import (
	"math"

	"github.com/kjbaird/oscbank/internal/dsp/fader"
	"github.com/kjbaird/oscbank/internal/dsp/pan"
	"github.com/kjbaird/oscbank/internal/dsp/wavetable"
)

// State is the voice activation state machine.
type State int

const (
	Uninitialized State = iota
	Active
	Deactivated
	FadingIn
	FadingOutToDeactivated
	FadingOutToUninitialized
)

// Sounding reports whether a state produces audio.
func (s State) Sounding() bool {
	switch s {
	case Active, FadingIn, FadingOutToDeactivated, FadingOutToUninitialized:
		return true
	default:
		return false
	}
}

// Settings is the immutable-at-a-point-in-time snapshot used both to
// create an oscillator and to mirror one on the control side.
type Settings struct {
	Type      wavetable.Kind
	Frequency float32
	Volume    float32
	Pan       float32
}

// Oscillator is a single voice. All methods are called only from the
// realtime thread; there is exactly one writer.
type Oscillator struct {
	sampleRate float32

	kind  wavetable.Kind
	state State

	phaseCounter uint16
	phaseStep    fader.Fader

	volume       fader.Fader
	pendingVol   float32 // volume stored by SetVolume while not sounding; reported by Volume
	leftGain     fader.Fader
	rightGain    fader.Fader

	frequency float32
	pan       float32
}

// New creates an oscillator at rest in the Uninitialized state.
func New(sampleRate float32) *Oscillator {
	o := &Oscillator{sampleRate: sampleRate}
	o.leftGain = *fader.New(1)
	o.rightGain = *fader.New(1)
	o.phaseStep = *fader.New(0)
	o.volume = *fader.New(0)
	return o
}

func stepFor(freq, sampleRate float32) float32 {
	return float32(math.Round(float64(freq) * float64(wavetable.Size) / float64(sampleRate)))
}

// Activate transitions the oscillator into FadingIn, fading its
// volume from its current value up to s.Volume. Whatever the prior
// state, it also takes its waveform, frequency and pan from s, snapping
// the phase-step and pan-gain faders to them without a fade.
func (o *Oscillator) Activate(s Settings) {
	o.kind = s.Type
	o.frequency = s.Frequency
	o.pan = s.Pan
	o.phaseStep.Reset(stepFor(s.Frequency, o.sampleRate))

	l, r := pan.Gains(s.Pan, pan.Linear)
	o.leftGain.Reset(l)
	o.rightGain.Reset(r)

	o.state = FadingIn
	o.volume.FadeTo(s.Volume)
}

// Deactivate fades the volume to zero. If remove is true the
// oscillator returns to Uninitialized (and its slot becomes reusable)
// once the fade completes; otherwise it settles into Deactivated,
// retaining its parameters for a later Activate.
func (o *Oscillator) Deactivate(remove bool) {
	if remove {
		o.state = FadingOutToUninitialized
	} else {
		o.state = FadingOutToDeactivated
	}
	o.volume.FadeTo(0)
}

// SetFrequency fades the phase-step toward the value hz maps to. The
// state is unchanged.
func (o *Oscillator) SetFrequency(hz float32) {
	o.frequency = hz
	o.phaseStep.FadeTo(stepFor(hz, o.sampleRate))
}

// SetVolume fades the volume toward v if the oscillator is sounding;
// otherwise it stores v, without starting a fade, as the value Volume
// reports. Activate does not read the stored value; it fades to the
// volume in its Settings argument.
func (o *Oscillator) SetVolume(v float32) {
	if o.state.Sounding() {
		o.volume.FadeTo(v)
		return
	}
	o.pendingVol = v
}

// SetPan restarts both pan-gain faders toward the gains p implies,
// even if those gains equal the current ones.
func (o *Oscillator) SetPan(p float32) {
	o.pan = p
	l, r := pan.Gains(p, pan.Linear)
	o.leftGain.FadeTo(l)
	o.rightGain.FadeTo(r)
}

// SetType replaces the waveform selector immediately; there is no
// crossfade between tables.
func (o *Oscillator) SetType(k wavetable.Kind) {
	o.kind = k
}

// State returns the oscillator's current activation state.
func (o *Oscillator) State() State { return o.state }

// Type returns the oscillator's current waveform selector.
func (o *Oscillator) Type() wavetable.Kind { return o.kind }

// Frequency returns the oscillator's target frequency in Hz.
func (o *Oscillator) Frequency() float32 { return o.frequency }

// Pan returns the oscillator's target pan.
func (o *Oscillator) Pan() float32 { return o.pan }

// Volume returns the oscillator's target volume (the fade target, not
// necessarily its current mid-fade value).
func (o *Oscillator) Volume() float32 {
	if o.state.Sounding() {
		return o.volume.Target()
	}
	return o.pendingVol
}

// AdvanceSample steps every fader by one sample, advances the phase
// accumulator, drives the activation FSM on volume-fade completion,
// and returns the values the mixer needs. Called once per output
// sample for every non-Uninitialized, non-Deactivated oscillator.
func (o *Oscillator) AdvanceSample() (phase uint16, volume, leftGain, rightGain float32) {
	step, _ := o.phaseStep.Update()
	o.phaseCounter += uint16(math.Round(float64(step)))

	volume, volDone := o.volume.Update()
	if volDone {
		o.onVolumeFadeComplete()
	}

	leftGain, _ = o.leftGain.Update()
	rightGain, _ = o.rightGain.Update()

	return o.phaseCounter, volume, leftGain, rightGain
}

func (o *Oscillator) onVolumeFadeComplete() {
	switch o.state {
	case FadingIn:
		o.state = Active
	case FadingOutToDeactivated:
		o.state = Deactivated
	case FadingOutToUninitialized:
		o.reset()
	}
}

// reset clears the oscillator back to its power-on state, freeing its
// slot for reuse by the bank.
func (o *Oscillator) reset() {
	o.state = Uninitialized
	o.phaseCounter = 0
	o.pendingVol = 0
	o.frequency = 0
	o.pan = 0
	o.volume.Reset(0)
	o.phaseStep.Reset(0)
	o.leftGain.Reset(1)
	o.rightGain.Reset(1)
}

// Sample returns the current wavetable sample at the oscillator's
// phase counter for the given waveform.
func Sample(k wavetable.Kind, phase uint16) float32 {
	return wavetable.Lookup(k, phase)
}
