// autd3cpu-sim: run the frame-dispatch engine against simulated BRAM and
// EtherCAT, for bench testing the dispatcher without a physical board.
// Frames are read as a JSON-lines trace (pkg/trace.Entry per line) from
// a file or, if none is given, from stdin.
//
// Examples:
//
//	# Run against defaults (249 transducers), reading frames from stdin
//	./autd3cpu-sim < capture.jsonl
//
//	# Run with a saved configuration, a frame file, and verbose logging
//	./autd3cpu-sim -c etc/sim.yaml -f capture.jsonl -v
//
//	# Publish runtime counters on a debug HTTP endpoint
//	./autd3cpu-sim -f capture.jsonl --metrics :6060
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/shinolab/autd3cpu-go/pkg/bram"
	"github.com/shinolab/autd3cpu-go/pkg/cpu"
	"github.com/shinolab/autd3cpu-go/pkg/ecat"
	"github.com/shinolab/autd3cpu-go/pkg/logging"
	"github.com/shinolab/autd3cpu-go/pkg/trace"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "Simulation configuration file (YAML); defaults used if omitted")
	framesPath := pflag.StringP("frames", "f", "", "JSON-lines frame source file; reads stdin if omitted")
	verbose := pflag.BoolP("verbose", "v", false, "Debug-level logging")
	metricsAddr := pflag.String("metrics", "", "Address to serve runtime counters on (e.g. :6060); disabled if empty")
	tickInterval := pflag.Duration("tick", time.Millisecond, "Periodic-context tick interval")
	pflag.Parse()

	level := charmlog.InfoLevel
	if *verbose {
		level = charmlog.DebugLevel
	}
	logger := logging.New(os.Stderr, level)

	cfg := cpu.DefaultSimConfig()
	if *configPath != "" {
		loaded, err := cpu.LoadSimConfig(*configPath)
		if err != nil {
			logger.Fatal("failed to load configuration", "path", *configPath, "err", err)
		}
		cfg = loaded
	}
	logger.Info("starting simulated engine", "transducers", cfg.Transducers, "mod_freq_div", cfg.ModFreqDiv)

	sink := bram.NewSim()
	shared := ecat.NewSim()
	ctx := cpu.New(cfg.Transducers, sink, shared, logger)

	if *metricsAddr != "" {
		ctx.Metrics.Publish("autd3cpu_sim")
		go func() {
			logger.Info("serving runtime counters", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
	}

	frameSrc, closeFrameSrc, err := openFrameSource(*framesPath)
	if err != nil {
		logger.Fatal("failed to open frame source", "path", *framesPath, "err", err)
	}
	defer closeFrameSrc()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go receiveLoop(ctx, shared, logger, done)
	go feedFrames(frameSrc, shared, logger, *tickInterval, done)

	ticker := time.NewTicker(*tickInterval)
	defer ticker.Stop()

	logger.Info("engine running, press Ctrl-C to stop")
	for {
		select {
		case <-ticker.C:
			ctx.Tick()
		case <-stop:
			close(done)
			snap := ctx.Metrics.Snapshot()
			logger.Info("shutting down",
				"frames_classified", snap.FramesClassified,
				"frames_dropped", snap.FramesDropped,
				"ring_full_spins", snap.RingFullSpins)
			return
		}
	}
}

// receiveLoop polls the simulated EtherCAT RX regions and feeds any new
// frame into the classifier, standing in for the real MAC/PHY interrupt
// that would drive OnFrame on hardware.
func receiveLoop(ctx *cpu.Context, shared *ecat.Sim, logger *charmlog.Logger, done <-chan struct{}) {
	var lastHeader []byte
	poll := time.NewTicker(200 * time.Microsecond)
	defer poll.Stop()

	for {
		select {
		case <-done:
			return
		case <-poll.C:
			header := shared.ReadRX1()
			if len(header) == 0 || bytesEqual(header, lastHeader) {
				continue
			}
			lastHeader = header
			body := shared.ReadRX0()
			ctx.OnFrame(header, body)
		}
	}
}

// openFrameSource resolves -frames to a readable stream: the named file,
// or stdin if path is "" or "-". The returned close func is always safe
// to call, including for stdin (where it is a no-op).
func openFrameSource(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open frame source: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// feedFrames decodes a JSON-lines stream of trace.Entry values from src and
// submits each one into shared's RX regions, standing in for the host
// delivering frames over EtherCAT. receiveLoop picks each one up on its
// next poll. Frames are paced at tickInterval so each one stays in the
// RX regions long enough for receiveLoop to see it before the next frame
// overwrites it; consecutive identical headers are still collapsed by
// receiveLoop's change detection.
func feedFrames(src io.Reader, shared *ecat.Sim, logger *charmlog.Logger, pace time.Duration, done <-chan struct{}) {
	dec := json.NewDecoder(src)
	var fed int
	for {
		select {
		case <-done:
			return
		default:
		}

		var e trace.Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("frame source exhausted", "frames_fed", fed)
			} else {
				logger.Error("frame source decode error", "err", err)
			}
			return
		}

		header, err := e.Header()
		if err != nil {
			logger.Error("invalid trace entry header", "err", err)
			continue
		}
		body, err := e.Body()
		if err != nil {
			logger.Error("invalid trace entry body", "err", err)
			continue
		}

		shared.SubmitFrame(header, body)
		fed++

		select {
		case <-done:
			return
		case <-time.After(pace):
		}
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
