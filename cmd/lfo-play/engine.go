package main

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cwbudde/algo-lfo/dsp"
	"github.com/cwbudde/algo-lfo/lfo"
)

const channels = 2

// snapshot is the engine state published after every block for the console.
type snapshot struct {
	Kind           lfo.Kind
	Rate           float64
	Shape          float64
	Damping        float64
	Phase          float64
	Energy         float64
	Bounces        int
	Output         float64
	Looping        bool
	EnvelopeActive bool
	Cycles         uint64
}

// engine renders the oscillator and its audible voice as float32LE stereo
// for the audio player. Control events only reach the oscillator through
// the queue, drained at block boundaries.
type engine struct {
	osc   *lfo.Oscillator
	voice *dsp.Voice
	queue *lfo.Queue

	ctrl    []float64
	audio   []float64
	pending []byte

	mu   sync.Mutex
	snap snapshot
}

func newEngine(osc *lfo.Oscillator, voice *dsp.Voice, queue *lfo.Queue, blockSize int) *engine {
	if blockSize <= 0 {
		blockSize = lfo.DefaultBlockSize
	}
	e := &engine{
		osc:     osc,
		voice:   voice,
		queue:   queue,
		ctrl:    make([]float64, blockSize),
		audio:   make([]float64, blockSize),
		pending: make([]byte, 0, blockSize*channels*4),
	}
	e.publish()
	return e
}

// Read implements io.Reader for oto.
func (e *engine) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(e.pending) == 0 {
			if err := e.renderBlock(); err != nil {
				return n, err
			}
		}
		c := copy(p[n:], e.pending)
		e.pending = e.pending[c:]
		n += c
	}
	return n, nil
}

func (e *engine) renderBlock() error {
	e.queue.Drain(e.osc)
	e.osc.Process(nil, e.ctrl)
	if err := e.voice.Process(e.ctrl, e.audio); err != nil {
		return err
	}

	buf := e.pending[:0]
	for _, s := range e.audio {
		bits := math.Float32bits(float32(s))
		for c := 0; c < channels; c++ {
			buf = binary.LittleEndian.AppendUint32(buf, bits)
		}
	}
	e.pending = buf
	e.publish()
	return nil
}

func (e *engine) publish() {
	s := snapshot{
		Kind:           lfo.Kind(e.osc.Held(lfo.InputType)),
		Rate:           e.osc.Held(lfo.InputRate),
		Shape:          e.osc.Held(lfo.InputShape),
		Damping:        e.osc.Held(lfo.InputDamping),
		Phase:          e.osc.Phase(),
		Energy:         e.osc.Energy(),
		Bounces:        e.osc.BounceCount(),
		Output:         e.osc.LastOutput(),
		Looping:        e.osc.Looping(),
		EnvelopeActive: e.osc.EnvelopeActive(),
		Cycles:         e.osc.Cycles(),
	}
	e.mu.Lock()
	e.snap = s
	e.mu.Unlock()
}

func (e *engine) status() snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}
