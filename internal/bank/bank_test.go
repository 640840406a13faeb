package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjbaird/oscbank/internal/dsp/fader"
	"github.com/kjbaird/oscbank/internal/dsp/oscillator"
	"github.com/kjbaird/oscbank/internal/dsp/wavetable"
)

func settle(b *Bank) {
	for i := 0; i < fader.Length; i++ {
		for _, v := range b.Voices() {
			if v.State().Sounding() {
				v.AdvanceSample()
			}
		}
	}
}

func TestAddFindsLowestFreeSlot(t *testing.T) {
	b := New(4, 44100)
	id0, ok := b.Add(oscillator.Settings{Type: wavetable.Sine, Frequency: 440, Volume: 0.5})
	require.True(t, ok)
	assert.Equal(t, ID(0), id0)

	id1, ok := b.Add(oscillator.Settings{Type: wavetable.Sine, Frequency: 220, Volume: 0.5})
	require.True(t, ok)
	assert.Equal(t, ID(1), id1)
}

func TestAddFailsWhenFull(t *testing.T) {
	b := New(2, 44100)
	_, ok1 := b.Add(oscillator.Settings{Volume: 0.5})
	_, ok2 := b.Add(oscillator.Settings{Volume: 0.5})
	_, ok3 := b.Add(oscillator.Settings{Volume: 0.5})
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3)
}

func TestRemoveFreesSlotOnlyAfterFadeOut(t *testing.T) {
	b := New(1, 44100)
	id, _ := b.Add(oscillator.Settings{Type: wavetable.Sine, Frequency: 440, Volume: 0.5})
	settle(b)

	assert.True(t, b.Remove(id))
	// Immediately after removal the slot is still fading out.
	_, stillFull := b.Add(oscillator.Settings{Volume: 0.1})
	assert.False(t, stillFull)

	settle(b)
	id2, ok := b.Add(oscillator.Settings{Volume: 0.1})
	require.True(t, ok)
	assert.Equal(t, id, id2)
}

func TestRemoveUninitializedFails(t *testing.T) {
	b := New(2, 44100)
	assert.False(t, b.Remove(0))
}

func TestMutatorsFailOnUninitializedSlot(t *testing.T) {
	b := New(2, 44100)
	assert.False(t, b.SetFrequency(0, 220))
	assert.False(t, b.SetVolume(0, 0.5))
	assert.False(t, b.SetPan(0, -1))
	assert.False(t, b.SetType(0, wavetable.Square))
	assert.False(t, b.Deactivate(0))
	assert.False(t, b.Activate(0, 0.5))
}

func TestCountSounding(t *testing.T) {
	b := New(4, 44100)
	assert.Equal(t, 0, b.CountSounding())
	b.Add(oscillator.Settings{Volume: 0.5})
	assert.Equal(t, 1, b.CountSounding())
}

func TestIdStableAcrossParameterChanges(t *testing.T) {
	b := New(4, 44100)
	id, _ := b.Add(oscillator.Settings{Type: wavetable.Sine, Frequency: 440, Volume: 0.5})
	require.True(t, b.SetFrequency(id, 880))
	require.True(t, b.SetVolume(id, 0.3))
	settle(b)
	v := b.Voices()[id]
	assert.InDelta(t, 880, v.Frequency(), 1e-3)
	assert.InDelta(t, 0.3, v.Volume(), 1e-3)
}
