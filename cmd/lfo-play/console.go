package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/algo-lfo/lfo"
)

var errQuit = errors.New("quit")

type lineReader interface {
	ReadLine() (string, error)
}

type scannerLines struct {
	sc *bufio.Scanner
}

func (s scannerLines) ReadLine() (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// readLines forwards lines until the reader fails, then closes out.
func readLines(r lineReader, out chan<- string) {
	defer close(out)
	for {
		line, err := r.ReadLine()
		if err != nil {
			return
		}
		out <- line
	}
}

const helpText = `messages:
  bang                 restart (starts a one-shot in envelope mode)
  looping 0|1          envelope / looping mode
  phase <0..1>         jump (looping mode only)
  rate <hz>            or a bare number
  type <0..5|name>     bounce damped spin overshoot multibounce wobble
  shape <0..1>
  damping <0..1>
commands: status, help, quit`

// runConsole posts parsed messages to q until quit, end of input or ctx
// cancellation. It never touches the oscillator directly.
func runConsole(ctx context.Context, lines <-chan string, w io.Writer, q *lfo.Queue, status func() snapshot) error {
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return errQuit
			}
		}

		cmd := strings.ToLower(strings.TrimSpace(line))
		switch cmd {
		case "":
			continue
		case "quit", "exit":
			return errQuit
		case "help", "?":
			fmt.Fprintln(w, helpText)
			continue
		case "status":
			fmt.Fprintln(w, formatStatus(status()))
			continue
		}

		ev, err := lfo.ParseMessage(cmd)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if !q.Post(ev) {
			fmt.Fprintf(w, "error: control queue full, dropped %q\n", ev)
		}
	}
}

func formatStatus(s snapshot) string {
	mode := "looping"
	if !s.Looping {
		mode = "envelope"
		if s.EnvelopeActive {
			mode += " (active)"
		}
	}
	return fmt.Sprintf("type=%s rate=%gHz shape=%.2f damping=%.2f %s phase=%.3f out=%.3f energy=%.3f bounces=%d cycles=%d",
		s.Kind, s.Rate, s.Shape, s.Damping, mode, s.Phase, s.Output, s.Energy, s.Bounces, s.Cycles)
}
