// Command oscbankd runs the additive synthesis engine headless: it
// drives a host audio output, optionally plays back a scripted
// sequence of control requests, and optionally records the mix to a
// WAV file.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kjbaird/oscbank/internal/driver"
	"github.com/kjbaird/oscbank/internal/dsp/oscillator"
	"github.com/kjbaird/oscbank/internal/dsp/wavetable"
	"github.com/kjbaird/oscbank/internal/engine"
	"github.com/kjbaird/oscbank/internal/protocol"
	"github.com/kjbaird/oscbank/internal/recorder"
	"github.com/kjbaird/oscbank/internal/telemetry"
)

func main() {
	sampleRate := flag.Int("samplerate", 48000, "output sample rate in Hz")
	duration := flag.Duration("duration", 5*time.Second, "how long to run before exiting")
	scriptPath := flag.String("script", "", "path to a newline-delimited request script")
	recordPath := flag.String("record", "", "if set, record the mix to this WAV path")
	bankCapacity := flag.Int("bank-capacity", 16, "maximum simultaneous oscillators")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	diagnostics := flag.Bool("diagnostics", false, "profile render time and watch for clipping/NaN output")
	flag.Parse()

	telemetry.Default().SetLevel(parseLevel(*logLevel))
	log := telemetry.Default()

	e := engine.New(
		engine.WithSampleRate(float32(*sampleRate)),
		engine.WithBankCapacity(*bankCapacity),
	)

	var rec *recorder.Recorder
	if *recordPath != "" {
		var err error
		rec, err = recorder.New(*recordPath, uint32(*sampleRate))
		if err != nil {
			log.Error("open recorder: %v", err)
			os.Exit(1)
		}
		e.SetRecorderSink(rec.AppendFrame)
	}

	drv, err := driver.Open(e, *sampleRate)
	if err != nil {
		log.Error("open audio driver: %v", err)
		os.Exit(1)
	}

	var profiler *telemetry.Profiler
	if *diagnostics {
		profiler = telemetry.NewProfiler()
		drv.SetDiagnostics(profiler, telemetry.NewAnalyzer())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Info("caught interrupt, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		drv.Start()
		<-ctx.Done()
		drv.Stop()
		return nil
	})

	if *scriptPath != "" {
		g.Go(func() error {
			return runScript(ctx, *scriptPath, e, log)
		})
	}

	g.Go(func() error {
		return drainLoop(ctx, e, drv, log)
	})

	if err := g.Wait(); err != nil {
		log.Error("run: %v", err)
	}

	if profiler != nil {
		if stats, ok := profiler.Snapshot("render"); ok {
			log.Info("render: count=%d avg=%s max=%s", stats.Count, stats.Avg(), stats.Max)
		}
	}

	if err := drv.Close(); err != nil {
		log.Error("close driver: %v", err)
	}
	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Error("close recorder: %v", err)
		} else {
			log.Info("wrote %d frames to %s", rec.Frames(), *recordPath)
		}
	}
}

// drainLoop pops responses and drains the deferred-work channel on
// behalf of the (nonexistent, in this headless binary) mirror, so the
// async caller's recorder posts actually run. It also polls the
// driver for any diagnostics anomaly, logged here on the control
// thread rather than from the realtime callback.
func drainLoop(ctx context.Context, e *engine.Engine, drv *driver.Driver, log *telemetry.Logger) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.Async().Drain()
			for {
				resp, ok := e.PopResponse()
				if !ok {
					break
				}
				if !resp.Success {
					log.Debug("request %d (%s) failed", resp.RequestID, resp.Kind)
				}
			}
			if r, ok := drv.LastAnomaly(); ok {
				log.Warn("render anomaly: peak=%.3f clipped=%d nan=%d", r.Peak, r.ClippedSamples, r.NaNCount)
			}
		}
	}
}

// runScript reads one request per line from path and pushes it to e,
// pacing lines a fixed 200ms apart. Blank lines and lines starting
// with # are ignored.
//
// Grammar, one request per line:
//
//	add <sine|square|triangle|saw> <freq> <volume> <pan>
//	remove <id>
//	activate <id> <volume>
//	deactivate <id>
//	setfreq <id> <freq>
//	setvol <id> <volume>
//	setpan <id> <pan>
//	settype <id> <sine|square|triangle|saw>
func runScript(ctx context.Context, path string, e *engine.Engine, log *telemetry.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		req, err := parseLine(line)
		if err != nil {
			log.Warn("script: %v", err)
			continue
		}
		if !e.PushRequest(req) {
			log.Warn("script: request queue full, dropped %q", line)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(200 * time.Millisecond):
		}
	}
	return scanner.Err()
}

func parseLine(line string) (protocol.Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return protocol.Request{}, fmt.Errorf("empty line")
	}

	switch fields[0] {
	case "add":
		if len(fields) != 5 {
			return protocol.Request{}, fmt.Errorf("add wants 4 args, got %d", len(fields)-1)
		}
		kind, err := parseWaveKind(fields[1])
		if err != nil {
			return protocol.Request{}, err
		}
		freq, err := parseFloat(fields[2])
		if err != nil {
			return protocol.Request{}, err
		}
		vol, err := parseFloat(fields[3])
		if err != nil {
			return protocol.Request{}, err
		}
		pan, err := parseFloat(fields[4])
		if err != nil {
			return protocol.Request{}, err
		}
		return protocol.Request{
			Kind: protocol.AddOscillator,
			Settings: oscillator.Settings{
				Type:      kind,
				Frequency: freq,
				Volume:    vol,
				Pan:       pan,
			},
		}, nil

	case "remove":
		id, err := parseID(fields, 1)
		if err != nil {
			return protocol.Request{}, err
		}
		return protocol.Request{Kind: protocol.RemoveOscillator, OscID: id}, nil

	case "activate":
		id, err := parseID(fields, 1)
		if err != nil {
			return protocol.Request{}, err
		}
		vol, err := parseFloat(fields[2])
		if err != nil {
			return protocol.Request{}, err
		}
		return protocol.Request{Kind: protocol.ActivateOscillator, OscID: id, Volume: vol}, nil

	case "deactivate":
		id, err := parseID(fields, 1)
		if err != nil {
			return protocol.Request{}, err
		}
		return protocol.Request{Kind: protocol.DeactivateOscillator, OscID: id}, nil

	case "setfreq":
		id, err := parseID(fields, 1)
		if err != nil {
			return protocol.Request{}, err
		}
		freq, err := parseFloat(fields[2])
		if err != nil {
			return protocol.Request{}, err
		}
		return protocol.Request{Kind: protocol.SetOscillatorFrequency, OscID: id, Frequency: freq}, nil

	case "setvol":
		id, err := parseID(fields, 1)
		if err != nil {
			return protocol.Request{}, err
		}
		vol, err := parseFloat(fields[2])
		if err != nil {
			return protocol.Request{}, err
		}
		return protocol.Request{Kind: protocol.SetOscillatorVolume, OscID: id, Volume: vol}, nil

	case "setpan":
		id, err := parseID(fields, 1)
		if err != nil {
			return protocol.Request{}, err
		}
		pan, err := parseFloat(fields[2])
		if err != nil {
			return protocol.Request{}, err
		}
		return protocol.Request{Kind: protocol.SetOscillatorPan, OscID: id, Pan: pan}, nil

	case "settype":
		id, err := parseID(fields, 1)
		if err != nil {
			return protocol.Request{}, err
		}
		kind, err := parseWaveKind(fields[2])
		if err != nil {
			return protocol.Request{}, err
		}
		return protocol.Request{Kind: protocol.SetOscillatorType, OscID: id, Type: kind}, nil

	default:
		return protocol.Request{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseID(fields []string, idx int) (uint8, error) {
	if idx >= len(fields) {
		return 0, fmt.Errorf("missing oscillator id")
	}
	n, err := strconv.ParseUint(fields[idx], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("bad oscillator id %q: %w", fields[idx], err)
	}
	return uint8(n), nil
}

func parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	return float32(v), nil
}

func parseWaveKind(s string) (wavetable.Kind, error) {
	switch strings.ToLower(s) {
	case "sine":
		return wavetable.Sine, nil
	case "square":
		return wavetable.Square, nil
	case "triangle":
		return wavetable.Triangle, nil
	case "saw":
		return wavetable.Saw, nil
	default:
		return 0, fmt.Errorf("unknown waveform %q", s)
	}
}

func parseLevel(s string) telemetry.Level {
	switch strings.ToLower(s) {
	case "debug":
		return telemetry.LevelDebug
	case "warn":
		return telemetry.LevelWarn
	case "error":
		return telemetry.LevelError
	default:
		return telemetry.LevelInfo
	}
}
