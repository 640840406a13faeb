// Package surface is an immediate-mode control panel built on
// gioui.org. It only ever reads the mirror and posts requests through
// the engine's request queue; it never touches the bank directly.
package surface

import (
	"fmt"
	"sort"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/kjbaird/oscbank/internal/bank"
	"github.com/kjbaird/oscbank/internal/dsp/oscillator"
	"github.com/kjbaird/oscbank/internal/dsp/wavetable"
	"github.com/kjbaird/oscbank/internal/engine"
	"github.com/kjbaird/oscbank/internal/mirror"
	"github.com/kjbaird/oscbank/internal/protocol"
)

// maxFrequency scales the 0..1 slider range exposed by widget.Float
// onto a musically useful band.
const maxFrequency = 4000

var typeChoices = [4]wavetable.Kind{wavetable.Sine, wavetable.Square, wavetable.Triangle, wavetable.Saw}

// row holds one oscillator's slider state plus the last value pushed
// to the engine, so we only emit a request when the user actually
// moves something.
type row struct {
	freq, volume, pan widget.Float
	remove            widget.Clickable
	typeBtns          [4]widget.Clickable
	initialized       bool

	lastFreq, lastVolume, lastPan float32
}

// Panel renders the mirrored bank state and turns widget interaction
// into requests pushed onto the engine.
type Panel struct {
	Theme *material.Theme

	engine *engine.Engine
	mirror *mirror.Mirror

	addBtn widget.Clickable
	rows   map[bank.ID]*row
}

// New builds a panel bound to e and m. m is expected to be Processed
// once per frame by the caller before Layout is invoked.
func New(e *engine.Engine, m *mirror.Mirror) *Panel {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	return &Panel{
		Theme:  th,
		engine: e,
		mirror: m,
		rows:   make(map[bank.ID]*row),
	}
}

// Layout draws the panel and dispatches any requests generated by
// this frame's interaction. Call once per gio frame event, after
// mirror.Process.
func (p *Panel) Layout(gtx layout.Context) layout.Dimensions {
	p.syncRows()

	if p.addBtn.Clicked(gtx) {
		p.mirror.Enqueue(p.engine, protocol.Request{Kind: protocol.AddOscillator})
	}

	settings := p.mirror.Settings()
	ids := make([]bank.ID, 0, len(settings))
	for id := range settings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	children := make([]layout.FlexChild, 0, len(ids)+1)
	children = append(children, layout.Rigid(material.Button(p.Theme, &p.addBtn, "Add oscillator").Layout))
	for _, id := range ids {
		id, s, r := id, settings[id], p.rows[id]
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return p.layoutRow(gtx, id, s, r)
		}))
	}
	return layout.Flex{Axis: layout.Vertical, Spacing: layout.SpaceEvenly}.Layout(gtx, children...)
}

// syncRows adds a fresh row for any oscillator id the mirror now
// knows about and drops rows for ids that disappeared.
func (p *Panel) syncRows() {
	settings := p.mirror.Settings()
	for id := range settings {
		if _, ok := p.rows[id]; !ok {
			p.rows[id] = &row{}
		}
	}
	for id := range p.rows {
		if _, ok := settings[id]; !ok {
			delete(p.rows, id)
		}
	}
}

func (p *Panel) layoutRow(gtx layout.Context, id bank.ID, s oscillator.Settings, r *row) layout.Dimensions {
	if !r.initialized {
		r.freq.Value = s.Frequency / maxFrequency
		r.volume.Value = s.Volume
		r.pan.Value = (s.Pan + 1) / 2
		r.lastFreq, r.lastVolume, r.lastPan = s.Frequency, s.Volume, s.Pan
		r.initialized = true
	}

	if r.remove.Clicked(gtx) {
		p.mirror.Enqueue(p.engine, protocol.Request{Kind: protocol.RemoveOscillator, OscID: id})
	}

	if freq := r.freq.Value * maxFrequency; freq != r.lastFreq {
		p.mirror.Enqueue(p.engine, protocol.Request{Kind: protocol.SetOscillatorFrequency, OscID: id, Frequency: freq})
		r.lastFreq = freq
	}
	if r.volume.Value != r.lastVolume {
		p.mirror.Enqueue(p.engine, protocol.Request{Kind: protocol.SetOscillatorVolume, OscID: id, Volume: r.volume.Value})
		r.lastVolume = r.volume.Value
	}
	if pan := r.pan.Value*2 - 1; pan != r.lastPan {
		p.mirror.Enqueue(p.engine, protocol.Request{Kind: protocol.SetOscillatorPan, OscID: id, Pan: pan})
		r.lastPan = pan
	}
	for i, k := range typeChoices {
		if r.typeBtns[i].Clicked(gtx) {
			p.mirror.Enqueue(p.engine, protocol.Request{Kind: protocol.SetOscillatorType, OscID: id, Type: k})
		}
	}

	label := material.Body1(p.Theme, fmt.Sprintf("osc %d  %s  %.0f Hz", id, s.Type, s.Frequency))

	typeRow := make([]layout.FlexChild, len(typeChoices))
	for i, k := range typeChoices {
		i, k := i, k
		typeRow[i] = layout.Rigid(material.Button(p.Theme, &r.typeBtns[i], k.String()).Layout)
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(label.Layout),
		layout.Rigid(material.Slider(p.Theme, &r.freq).Layout),
		layout.Rigid(material.Slider(p.Theme, &r.volume).Layout),
		layout.Rigid(material.Slider(p.Theme, &r.pan).Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, typeRow...)
		}),
		layout.Rigid(material.Button(p.Theme, &r.remove, "Remove").Layout),
	)
}
