// Package bank implements the fixed-capacity oscillator collection.
// The slot index is the oscillator id; ids are stable for the life of
// the voice and reused only once its slot returns to Uninitialized.
package bank

import (
	"github.com/kjbaird/oscbank/internal/dsp/oscillator"
	"github.com/kjbaird/oscbank/internal/dsp/wavetable"
)

// DefaultCapacity is the reference bank size.
const DefaultCapacity = 8

// ID identifies an oscillator slot.
type ID = uint8

// Bank is a fixed-capacity array of oscillators, exclusively mutated
// by the realtime thread.
type Bank struct {
	sampleRate float32
	voices     []*oscillator.Oscillator
}

// New creates a bank of the given capacity (defaulting to
// DefaultCapacity when capacity <= 0) with every slot pre-allocated
// and Uninitialized. Pre-allocating at construction keeps the
// realtime-side Add path free of allocation.
func New(capacity int, sampleRate float32) *Bank {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Bank{
		sampleRate: sampleRate,
		voices:     make([]*oscillator.Oscillator, capacity),
	}
	for i := range b.voices {
		b.voices[i] = oscillator.New(sampleRate)
	}
	return b
}

// Capacity returns the number of slots in the bank.
func (b *Bank) Capacity() int { return len(b.voices) }

// Add finds the lowest-indexed Uninitialized slot, activates an
// oscillator there with the given settings, and returns its id. ok is
// false if the bank is full.
func (b *Bank) Add(settings oscillator.Settings) (id ID, ok bool) {
	for i, v := range b.voices {
		if v.State() == oscillator.Uninitialized {
			v.Activate(settings)
			return ID(i), true
		}
	}
	return 0, false
}

// Remove fades the oscillator at id out and frees its slot once the
// fade completes. ok is false if the slot is already Uninitialized.
func (b *Bank) Remove(id ID) bool {
	v, ok := b.at(id)
	if !ok {
		return false
	}
	v.Deactivate(true)
	return true
}

// Deactivate fades the oscillator at id to silence without freeing
// its slot.
func (b *Bank) Deactivate(id ID) bool {
	v, ok := b.at(id)
	if !ok {
		return false
	}
	v.Deactivate(false)
	return true
}

// Activate fades the oscillator at id back in at the given volume.
func (b *Bank) Activate(id ID, volume float32) bool {
	v, ok := b.at(id)
	if !ok {
		return false
	}
	s := oscillator.Settings{
		Type:      v.Type(),
		Frequency: v.Frequency(),
		Volume:    volume,
		Pan:       v.Pan(),
	}
	v.Activate(s)
	return true
}

// SetFrequency retargets the phase-step fader for the oscillator at id.
func (b *Bank) SetFrequency(id ID, hz float32) bool {
	v, ok := b.at(id)
	if !ok {
		return false
	}
	v.SetFrequency(hz)
	return true
}

// SetVolume retargets the volume fader (or the pending volume, if the
// oscillator is inactive) for the oscillator at id.
func (b *Bank) SetVolume(id ID, volume float32) bool {
	v, ok := b.at(id)
	if !ok {
		return false
	}
	v.SetVolume(volume)
	return true
}

// SetPan retargets both pan-gain faders for the oscillator at id.
func (b *Bank) SetPan(id ID, p float32) bool {
	v, ok := b.at(id)
	if !ok {
		return false
	}
	v.SetPan(p)
	return true
}

// SetType switches the waveform selector for the oscillator at id.
func (b *Bank) SetType(id ID, k wavetable.Kind) bool {
	v, ok := b.at(id)
	if !ok {
		return false
	}
	v.SetType(k)
	return true
}

// CountSounding returns the number of slots currently producing audio.
func (b *Bank) CountSounding() int {
	n := 0
	for _, v := range b.voices {
		if v.State().Sounding() {
			n++
		}
	}
	return n
}

// Voices exposes the underlying slots for the generator's mix loop.
// The returned slice must not be mutated by the caller.
func (b *Bank) Voices() []*oscillator.Oscillator {
	return b.voices
}

// at validates id and returns its slot only if initialized.
func (b *Bank) at(id ID) (*oscillator.Oscillator, bool) {
	if int(id) >= len(b.voices) {
		return nil, false
	}
	v := b.voices[id]
	if v.State() == oscillator.Uninitialized {
		return nil, false
	}
	return v, true
}
