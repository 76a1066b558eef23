package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cwbudde/algo-lfo/dsp"
	"github.com/cwbudde/algo-lfo/internal/fitcommon"
	"github.com/cwbudde/algo-lfo/lfo"
	"github.com/cwbudde/algo-lfo/preset"
	"github.com/ebitengine/oto/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	args := flag.String("args", "", "Creation arguments \"type shape damping\" (optional)")
	sampleRate := flag.Int("sample-rate", 48000, "Output sample rate in Hz")
	blockSize := flag.Int("block", 256, "Engine block size in frames")
	target := flag.String("target", "filter", "What the LFO modulates: filter or tremolo")
	carrier := flag.Float64("carrier", 110, "Carrier saw frequency in Hz")
	cutoffLo := flag.Float64("cutoff-lo", 200, "Lowest cutoff in Hz")
	cutoffHi := flag.Float64("cutoff-hi", 4000, "Highest cutoff in Hz")
	resonance := flag.Float64("resonance", 1.2, "Moog resonance")
	gain := flag.Float64("gain", 0.3, "Output gain")
	meter := flag.Duration("meter", 0, "Print status at this interval (0 disables)")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	flag.Parse()

	logger, err := fitcommon.NewLogger(*logLevel)
	if err != nil {
		die("%v", err)
	}

	params := lfo.NewDefaultParams()
	if *presetPath != "" {
		params, err = preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
	}
	if *args != "" {
		if err := params.ApplyArgs(strings.Fields(*args)); err != nil {
			die("invalid -args: %v", err)
		}
	}

	cfg := dsp.DefaultVoiceConfig(float64(*sampleRate))
	cfg.Target, err = dsp.ParseTarget(*target)
	if err != nil {
		die("%v", err)
	}
	cfg.CarrierHz = *carrier
	cfg.CutoffLoHz = *cutoffLo
	cfg.CutoffHiHz = *cutoffHi
	cfg.Resonance = *resonance
	cfg.Gain = *gain
	voice, err := dsp.NewVoice(cfg)
	if err != nil {
		die("invalid voice settings: %v", err)
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	})
	if err != nil {
		die("failed to open audio output: %v", err)
	}
	<-ready

	lines, out, logOut, restore := openConsole()
	defer restore()
	logger, err = fitcommon.NewLoggerTo(logOut, *logLevel)
	if err != nil {
		restore()
		die("%v", err)
	}

	osc := lfo.NewOscillator(float64(*sampleRate), params, lfo.WithLogger(logger))
	queue := lfo.NewQueue(lfo.DefaultQueueSize)
	eng := newEngine(osc, voice, queue, *blockSize)
	player := otoCtx.NewPlayer(eng)
	player.Play()
	defer player.Close()

	fmt.Fprintf(out, "Playing %s into %s (type 'help', 'quit' to stop)\r\n", preset.Describe(params), cfg.Target)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runConsole(gctx, lines, out, queue, eng.status)
	})
	if *meter > 0 {
		g.Go(func() error {
			t := time.NewTicker(*meter)
			defer t.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
					fmt.Fprintf(out, "%s\r\n", formatStatus(eng.status()))
				}
			}
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		restore()
		die("%v", err)
	}
}

// openConsole returns a line channel, the console writer and the log
// writer. On a terminal it switches to raw mode with line editing and both
// writers are the terminal, which expands \n to \r\n; otherwise stdin is
// read as plain lines and logs stay on stderr.
func openConsole() (<-chan string, io.Writer, io.Writer, func()) {
	lines := make(chan string)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		go readLines(scannerLines{sc: bufio.NewScanner(os.Stdin)}, lines)
		return lines, os.Stdout, os.Stderr, func() {}
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console: failed to set raw mode: %v\n", err)
		go readLines(scannerLines{sc: bufio.NewScanner(os.Stdin)}, lines)
		return lines, os.Stdout, os.Stderr, func() {}
	}
	t := newTerminal(os.Stdin, os.Stdout)
	go readLines(t, lines)

	restored := false
	return lines, t, t, func() {
		if !restored {
			restored = true
			_ = term.Restore(fd, oldState)
		}
	}
}

func newTerminal(r io.Reader, w io.Writer) *term.Terminal {
	return term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{r, w}, "lfo> ")
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
