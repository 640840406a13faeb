// Package protocol defines the closed request/response vocabulary
// exchanged between the control thread and the realtime callback. Both
// Request and Response are flat, fixed-size structs so they can be
// carried by value through the SPSC queues with no per-request
// allocation and no deferred destruction.
package protocol

import (
	"github.com/kjbaird/oscbank/internal/bank"
	"github.com/kjbaird/oscbank/internal/dsp/oscillator"
	"github.com/kjbaird/oscbank/internal/dsp/wavetable"
)

// Kind discriminates the tagged union carried by Request and Response.
type Kind int

const (
	AddOscillator Kind = iota
	RemoveOscillator
	ActivateOscillator
	DeactivateOscillator
	SetOscillatorFrequency
	SetOscillatorVolume
	SetOscillatorPan
	SetOscillatorType
)

func (k Kind) String() string {
	switch k {
	case AddOscillator:
		return "AddOscillator"
	case RemoveOscillator:
		return "RemoveOscillator"
	case ActivateOscillator:
		return "ActivateOscillator"
	case DeactivateOscillator:
		return "DeactivateOscillator"
	case SetOscillatorFrequency:
		return "SetOscillatorFrequency"
	case SetOscillatorVolume:
		return "SetOscillatorVolume"
	case SetOscillatorPan:
		return "SetOscillatorPan"
	case SetOscillatorType:
		return "SetOscillatorType"
	default:
		return "Unknown"
	}
}

// Request is a single control-plane intent. Only the fields relevant
// to Kind are meaningful; the rest are zero.
type Request struct {
	ID        uint32
	Kind      Kind
	OscID     bank.ID
	Settings  oscillator.Settings
	Frequency float32
	Volume    float32
	Pan       float32
	Type      wavetable.Kind
}

// Response echoes the parameters the control-side mirror needs to
// update its view, plus whether the operation succeeded.
type Response struct {
	RequestID uint32
	Kind      Kind
	Success   bool
	OscID     bank.ID
	Settings  oscillator.Settings
	Frequency float32
	Volume    float32
	Pan       float32
	Type      wavetable.Kind
}
