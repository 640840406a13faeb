// Package generator mixes a bank's sounding oscillators into an
// interleaved stereo output buffer and applies a hard-clip safety
// limiter.
package generator

import (
	"github.com/kjbaird/oscbank/internal/bank"
	"github.com/kjbaird/oscbank/internal/dsp/buffer"
	"github.com/kjbaird/oscbank/internal/dsp/oscillator"
	"github.com/kjbaird/oscbank/internal/dsp/wavetable"
)

// Render fills out (length 2*frames, interleaved L,R) by mixing every
// sounding oscillator in b, then hard-clips every sample to [-1, 1].
// out must already be sized for frames; Render zeroes it itself.
func Render(b *bank.Bank, out []float32, frames int) {
	need := 2 * frames
	if len(out) < need {
		need = len(out)
	}
	buffer.Clear(out[:need])

	for _, v := range b.Voices() {
		if !v.State().Sounding() {
			continue
		}
		mixVoice(v, out, frames)
	}

	buffer.Clamp(out[:need])
}

func mixVoice(v *oscillator.Oscillator, out []float32, frames int) {
	kind := v.Type()
	limit := frames
	if len(out)/2 < limit {
		limit = len(out) / 2
	}
	for i := 0; i < limit; i++ {
		phase, volume, left, right := v.AdvanceSample()
		s := wavetable.Lookup(kind, phase) * volume
		out[2*i] += s * left
		out[2*i+1] += s * right
	}
}
