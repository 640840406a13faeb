package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjbaird/oscbank/internal/dsp/fader"
	"github.com/kjbaird/oscbank/internal/dsp/oscillator"
	"github.com/kjbaird/oscbank/internal/dsp/wavetable"
	"github.com/kjbaird/oscbank/internal/protocol"
)

func TestAddRemoveRoundTripEmptiesBank(t *testing.T) {
	e := New(WithBankCapacity(4))
	require.True(t, e.PushRequest(protocol.Request{
		ID: 1, Kind: protocol.AddOscillator,
		Settings: oscillator.Settings{Type: wavetable.Sine, Frequency: 440, Volume: 0.5},
	}))

	out := make([]float32, 2*fader.Length)
	e.Render(out, fader.Length)

	resp, ok := e.PopResponse()
	require.True(t, ok)
	assert.True(t, resp.Success)
	assert.Equal(t, uint32(1), resp.RequestID)
	id := resp.OscID

	require.True(t, e.PushRequest(protocol.Request{ID: 2, Kind: protocol.RemoveOscillator, OscID: id}))
	e.Render(out, fader.Length)
	resp2, ok := e.PopResponse()
	require.True(t, ok)
	assert.True(t, resp2.Success)

	// Drive the fade-out to completion.
	for i := 0; i < 4; i++ {
		e.Render(out, fader.Length)
	}
	assert.Equal(t, 0, e.Bank().CountSounding())
}

func TestResponsesArriveInPushOrder(t *testing.T) {
	e := New(WithBankCapacity(8))
	for i := uint32(1); i <= 5; i++ {
		require.True(t, e.PushRequest(protocol.Request{
			ID: i, Kind: protocol.AddOscillator,
			Settings: oscillator.Settings{Type: wavetable.Sine, Frequency: 100 * float32(i), Volume: 0.1},
		}))
	}
	out := make([]float32, 2*64)
	e.Render(out, 64)

	for i := uint32(1); i <= 5; i++ {
		resp, ok := e.PopResponse()
		require.True(t, ok)
		assert.Equal(t, i, resp.RequestID)
	}
}

func TestNoResponseForRequestRejectedByQueuePush(t *testing.T) {
	e := New(WithQueueCapacities(2, 32))
	accepted := 0
	for i := 0; i < 3; i++ {
		if e.PushRequest(protocol.Request{ID: uint32(i), Kind: protocol.AddOscillator}) {
			accepted++
		}
	}
	assert.Equal(t, 2, accepted)

	out := make([]float32, 128)
	e.Render(out, 64)

	count := 0
	for {
		if _, ok := e.PopResponse(); !ok {
			break
		}
		count++
	}
	assert.Equal(t, 2, count)
}

func TestAddPastCapacityFails(t *testing.T) {
	e := New(WithBankCapacity(1))
	require.True(t, e.PushRequest(protocol.Request{ID: 1, Kind: protocol.AddOscillator, Settings: oscillator.Settings{Volume: 0.1}}))
	require.True(t, e.PushRequest(protocol.Request{ID: 2, Kind: protocol.AddOscillator, Settings: oscillator.Settings{Volume: 0.1}}))

	out := make([]float32, 128)
	e.Render(out, 64)

	r1, _ := e.PopResponse()
	r2, _ := e.PopResponse()
	assert.True(t, r1.Success)
	assert.False(t, r2.Success)
}

func TestRequestBeforeCallbackTakesEffectInThatCallback(t *testing.T) {
	e := New()
	require.True(t, e.PushRequest(protocol.Request{
		ID: 1, Kind: protocol.AddOscillator,
		Settings: oscillator.Settings{Type: wavetable.Sine, Frequency: 440, Volume: 1},
	}))
	out := make([]float32, 128)
	e.Render(out, 64)
	assert.Equal(t, 1, e.Bank().CountSounding())
}

func TestQueueFullUnderBurstStillCompletesAcceptedOnes(t *testing.T) {
	e := New(WithQueueCapacities(32, 32))
	accepted := 0
	for i := 0; i < 33; i++ {
		if e.PushRequest(protocol.Request{ID: uint32(i), Kind: protocol.AddOscillator, Settings: oscillator.Settings{Volume: 0.01}}) {
			accepted++
		}
	}
	assert.Equal(t, 32, accepted)

	out := make([]float32, 128)
	e.Render(out, 64)

	count := 0
	var lastID uint32
	for {
		resp, ok := e.PopResponse()
		if !ok {
			break
		}
		assert.GreaterOrEqual(t, resp.RequestID, lastID)
		lastID = resp.RequestID
		count++
	}
	assert.Equal(t, 32, count)
}

func TestRecorderSinkReceivesCopyViaAsyncCaller(t *testing.T) {
	e := New()
	var captured []float32
	e.SetRecorderSink(func(buf []float32) { captured = buf })

	out := make([]float32, 128)
	e.Render(out, 64)

	assert.Nil(t, captured)
	e.Async().Drain()
	require.NotNil(t, captured)
	assert.Len(t, captured, 128)
}
