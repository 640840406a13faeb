// Package driver adapts the engine's pull-based Render to the host
// audio backend, github.com/ebitengine/oto/v3, by exposing an
// io.Reader that oto's player drives from its own callback thread.
package driver

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"

	"github.com/kjbaird/oscbank/internal/engine"
	"github.com/kjbaird/oscbank/internal/telemetry"
)

const bytesPerSample = 4 // float32

// Driver owns the oto context and player and is the realtime side of
// the engine boundary: Read is called from oto's own audio thread and
// must obey the same no-allocation, no-lock discipline as
// engine.Render itself, except when diagnostics are enabled — see
// SetDiagnostics.
type Driver struct {
	ctx    *oto.Context
	player *oto.Player
	engine *engine.Engine

	sampleBuf []float32
	started   atomic.Bool

	profiler *telemetry.Profiler
	analyzer *telemetry.Analyzer
	anomaly  atomic.Pointer[telemetry.Report]
}

// Open creates an oto context at sampleRate and wires e as the sample
// source. The returned Driver is not yet producing sound; call Start.
func Open(e *engine.Engine, sampleRate int) (*Driver, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("driver: open oto context: %w", err)
	}
	<-ready

	d := &Driver{
		ctx:       ctx,
		engine:    e,
		sampleBuf: make([]float32, 4096),
	}
	d.player = ctx.NewPlayer(d)
	return d, nil
}

// SetDiagnostics attaches optional render-time profiling and buffer
// analysis. Both add allocation to the Read path (a profiler stop
// closure per call, an analyzer report on anomalies) and are meant for
// development runs, not production playback; pass nils to disable.
func (d *Driver) SetDiagnostics(p *telemetry.Profiler, a *telemetry.Analyzer) {
	d.profiler, d.analyzer = p, a
}

// LastAnomaly returns the most recent analyzer report that flagged
// clipping or NaN contamination, if diagnostics are enabled and one
// has occurred since the last call. Meant to be polled from the
// control thread; Read itself never logs.
func (d *Driver) LastAnomaly() (telemetry.Report, bool) {
	r := d.anomaly.Swap(nil)
	if r == nil {
		return telemetry.Report{}, false
	}
	return *r, true
}

// Read fills p with interleaved stereo float32 samples rendered by the
// engine. It never allocates once sampleBuf has grown to cover the
// requested size, unless diagnostics are attached.
func (d *Driver) Read(p []byte) (int, error) {
	numSamples := len(p) / bytesPerSample
	if numSamples == 0 {
		return 0, nil
	}
	if cap(d.sampleBuf) < numSamples {
		d.sampleBuf = make([]float32, numSamples)
	}
	buf := d.sampleBuf[:numSamples]

	frames := numSamples / 2
	if d.profiler != nil {
		stop := d.profiler.Start("render")
		d.engine.Render(buf[:frames*2], frames)
		stop()
	} else {
		d.engine.Render(buf[:frames*2], frames)
	}
	for i := frames * 2; i < numSamples; i++ {
		buf[i] = 0
	}

	if d.analyzer != nil {
		if r := d.analyzer.Analyze(buf[:frames*2]); r.Clipping || r.HasNaN {
			d.anomaly.Store(&r)
		}
	}

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&buf[0]))[:len(p)])
	return len(p), nil
}

// Start begins playback. Safe to call once; subsequent calls are a
// no-op.
func (d *Driver) Start() {
	if d.started.CompareAndSwap(false, true) {
		d.player.Play()
	}
}

// Stop halts playback without releasing the underlying context.
func (d *Driver) Stop() {
	if d.started.CompareAndSwap(true, false) {
		d.player.Pause()
	}
}

// Close releases the player and its context.
func (d *Driver) Close() error {
	d.Stop()
	return d.player.Close()
}

// IsRunning reports whether Start has been called without a matching
// Stop.
func (d *Driver) IsRunning() bool {
	return d.started.Load()
}
