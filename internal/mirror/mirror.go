// Package mirror implements the control surface's eventually
// consistent replica of the oscillator bank: a keyed settings map plus
// a FIFO of in-flight request ids, updated only from acknowledged
// responses.
package mirror

import (
	"github.com/kjbaird/oscbank/internal/bank"
	"github.com/kjbaird/oscbank/internal/dsp/oscillator"
	"github.com/kjbaird/oscbank/internal/engine"
	"github.com/kjbaird/oscbank/internal/invariant"
	"github.com/kjbaird/oscbank/internal/protocol"
	"github.com/kjbaird/oscbank/internal/telemetry"
)

// Mirror is exclusively mutated by the control thread.
type Mirror struct {
	log *telemetry.Logger

	settings map[bank.ID]oscillator.Settings
	inFlight []uint32
	nextID   uint32
}

// New creates an empty mirror. log may be nil to use the package
// default logger.
func New(log *telemetry.Logger) *Mirror {
	if log == nil {
		log = telemetry.Default()
	}
	return &Mirror{
		log:      log,
		settings: make(map[bank.ID]oscillator.Settings),
	}
}

// Settings returns the mirrored oscillators, keyed by id, for widget
// rendering. The returned map is the mirror's own, not a copy: callers
// must not mutate it, and Process changes it in place.
func (m *Mirror) Settings() map[bank.ID]oscillator.Settings {
	return m.settings
}

// PendingCount reports how many requests are awaiting a response.
func (m *Mirror) PendingCount() int {
	return len(m.inFlight)
}

// Enqueue allocates a fresh request id, appends it to the in-flight
// FIFO, and pushes req (with that id) onto e. If the push is rejected
// the mirror is left untouched and ok is false: it must not reflect an
// intent until a response confirms it.
func (m *Mirror) Enqueue(e *engine.Engine, req protocol.Request) (id uint32, ok bool) {
	id = m.nextID
	req.ID = id
	if !e.PushRequest(req) {
		return id, false
	}
	m.nextID++
	m.inFlight = append(m.inFlight, id)
	return id, true
}

// Process drains the engine's deferred-work channel and every pending
// response, applying successful mutations to the local settings map.
// Call once per control-thread frame, before rendering widgets.
func (m *Mirror) Process(e *engine.Engine) {
	e.Async().Drain()

	for {
		resp, ok := e.PopResponse()
		if !ok {
			return
		}
		m.apply(resp)
	}
}

func (m *Mirror) apply(resp protocol.Response) {
	if len(m.inFlight) == 0 {
		invariant.Check(false, "response %d arrived with no in-flight request", resp.RequestID)
		return
	}
	head := m.inFlight[0]
	if head != resp.RequestID {
		invariant.Check(false, "response order mismatch: expected %d, got %d", head, resp.RequestID)
		return
	}
	m.inFlight = m.inFlight[1:]

	switch resp.Kind {
	case protocol.AddOscillator:
		if !resp.Success {
			// Benign: the bank was full. The mirror never optimistically
			// inserted, so there is nothing to undo.
			m.log.Debug("add rejected: bank full (request %d)", resp.RequestID)
			return
		}
		m.settings[resp.OscID] = resp.Settings

	case protocol.RemoveOscillator:
		if !resp.Success {
			invariant.Check(false, "remove of id %d rejected despite mirror offering it", resp.OscID)
			return
		}
		delete(m.settings, resp.OscID)

	case protocol.ActivateOscillator:
		m.mutateIfPresent(resp.Success, resp.OscID, func(s *oscillator.Settings) { s.Volume = resp.Volume })

	case protocol.DeactivateOscillator:
		m.mutateIfPresent(resp.Success, resp.OscID, func(s *oscillator.Settings) { s.Volume = 0 })

	case protocol.SetOscillatorFrequency:
		m.mutateIfPresent(resp.Success, resp.OscID, func(s *oscillator.Settings) { s.Frequency = resp.Frequency })

	case protocol.SetOscillatorVolume:
		m.mutateIfPresent(resp.Success, resp.OscID, func(s *oscillator.Settings) { s.Volume = resp.Volume })

	case protocol.SetOscillatorPan:
		m.mutateIfPresent(resp.Success, resp.OscID, func(s *oscillator.Settings) { s.Pan = resp.Pan })

	case protocol.SetOscillatorType:
		m.mutateIfPresent(resp.Success, resp.OscID, func(s *oscillator.Settings) { s.Type = resp.Type })

	default:
		invariant.Check(false, "unknown response kind %v for request %d", resp.Kind, resp.RequestID)
	}
}

func (m *Mirror) mutateIfPresent(success bool, id bank.ID, mutate func(*oscillator.Settings)) {
	if !success {
		return
	}
	s, ok := m.settings[id]
	if !ok {
		invariant.Check(false, "mutation acked for id %d not present in mirror", id)
		return
	}
	mutate(&s)
	m.settings[id] = s
}
