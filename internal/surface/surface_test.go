package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjbaird/oscbank/internal/dsp/fader"
	"github.com/kjbaird/oscbank/internal/dsp/oscillator"
	"github.com/kjbaird/oscbank/internal/dsp/wavetable"
	"github.com/kjbaird/oscbank/internal/engine"
	"github.com/kjbaird/oscbank/internal/mirror"
	"github.com/kjbaird/oscbank/internal/protocol"
)

func TestSyncRowsTracksMirrorMembership(t *testing.T) {
	e := engine.New(engine.WithBankCapacity(4))
	m := mirror.New(nil)
	p := New(e, m)

	assert.Empty(t, p.rows)

	_, ok := m.Enqueue(e, protocol.Request{
		Kind:     protocol.AddOscillator,
		Settings: oscillator.Settings{Type: wavetable.Sine, Frequency: 220, Volume: 0.4},
	})
	require.True(t, ok)

	out := make([]float32, 2*fader.Length)
	e.Render(out, fader.Length)
	m.Process(e)

	p.syncRows()
	assert.Len(t, p.rows, 1)

	var id uint8
	for k := range m.Settings() {
		id = k
	}
	_, ok = m.Enqueue(e, protocol.Request{Kind: protocol.RemoveOscillator, OscID: id})
	require.True(t, ok)

	for i := 0; i < 4; i++ {
		e.Render(out, fader.Length)
		m.Process(e)
	}

	p.syncRows()
	assert.Empty(t, p.rows)
}

func TestRowSeedMapsSettingsOntoSliderRanges(t *testing.T) {
	r := &row{}
	s := oscillator.Settings{Frequency: 880, Volume: 0.75, Pan: -0.5}

	assert.False(t, r.initialized)
	r.freq.Value = s.Frequency / maxFrequency
	r.volume.Value = s.Volume
	r.pan.Value = (s.Pan + 1) / 2
	r.lastFreq, r.lastVolume, r.lastPan = s.Frequency, s.Volume, s.Pan
	r.initialized = true

	assert.InDelta(t, 880.0/maxFrequency, r.freq.Value, 1e-6)
	assert.InDelta(t, 0.75, r.volume.Value, 1e-6)
	assert.InDelta(t, 0.25, r.pan.Value, 1e-6)
}
