// Command oscbank is the interactive additive synthesis engine: a Gio
// control surface driving a host audio output through the engine and
// oscillator bank.
package main

import (
	"flag"
	"os"

	"gioui.org/app"
	"gioui.org/op"

	"github.com/kjbaird/oscbank/internal/driver"
	"github.com/kjbaird/oscbank/internal/engine"
	"github.com/kjbaird/oscbank/internal/mirror"
	"github.com/kjbaird/oscbank/internal/surface"
	"github.com/kjbaird/oscbank/internal/telemetry"
)

func main() {
	sampleRate := flag.Int("samplerate", 48000, "output sample rate in Hz")
	bankCapacity := flag.Int("bank-capacity", 16, "maximum simultaneous oscillators")
	flag.Parse()

	log := telemetry.Default()

	e := engine.New(
		engine.WithSampleRate(float32(*sampleRate)),
		engine.WithBankCapacity(*bankCapacity),
	)

	drv, err := driver.Open(e, *sampleRate)
	if err != nil {
		log.Error("open audio driver: %v", err)
		os.Exit(1)
	}
	drv.Start()
	defer drv.Close()

	m := mirror.New(log)
	panel := surface.New(e, m)

	go func() {
		w := new(app.Window)
		w.Option(app.Title("oscbank"))
		if err := run(w, e, m, panel); err != nil {
			log.Error("window: %v", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func run(w *app.Window, e *engine.Engine, m *mirror.Mirror, panel *surface.Panel) error {
	var ops op.Ops
	for {
		switch ev := w.Event().(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			m.Process(e)
			gtx := app.NewContext(&ops, ev)
			panel.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
