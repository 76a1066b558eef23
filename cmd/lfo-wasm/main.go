//go:build js && wasm

package main

import (
	"strconv"
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-lfo/lfo"
)

const maxFrames = 128

var (
	globalOsc   *lfo.Oscillator
	globalQueue *lfo.Queue

	outputBuffer []float32
	// JS writes driving signals here before wasmProcessBlock.
	inputBuffers [lfo.NumInputs][]float32

	streams    lfo.Streams
	outScratch []float64
)

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmMessage", js.FuncOf(wasmMessage))
	js.Global().Set("wasmConfigure", js.FuncOf(wasmConfigure))
	js.Global().Set("wasmInputPointer", js.FuncOf(wasmInputPointer))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmStatus", js.FuncOf(wasmStatus))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM physics LFO module loaded")
	<-c
}

// wasmInit(sampleRate, type?, shape?, damping?)
func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Float()

	params, err := lfo.ParseArgs(creationArgs(args[1:]))
	if err != nil {
		println("lfo init:", err.Error())
		params = lfo.NewDefaultParams()
	}

	globalOsc = lfo.NewOscillator(sampleRate, params)
	globalQueue = lfo.NewQueue(lfo.DefaultQueueSize)

	outputBuffer = make([]float32, maxFrames)
	outScratch = make([]float64, maxFrames)
	for i := range inputBuffers {
		inputBuffers[i] = make([]float32, maxFrames)
		streams[i] = make([]float64, maxFrames)
	}

	println("LFO initialized at", int(sampleRate), "Hz")
	return nil
}

// creationArgs renders JS numbers and strings as text for lfo.ParseArgs.
// js.Value.String on a number yields "<number: 4>", so numbers are
// formatted explicitly.
func creationArgs(args []js.Value) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch a.Type() {
		case js.TypeNumber:
			out = append(out, strconv.FormatFloat(a.Float(), 'g', -1, 64))
		case js.TypeBoolean:
			if a.Bool() {
				out = append(out, "1")
			} else {
				out = append(out, "0")
			}
		default:
			out = append(out, a.String())
		}
	}
	return out
}

// wasmMessage("looping 0") queues a text control message. Returns false on
// parse errors or a full queue.
func wasmMessage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalQueue == nil {
		return false
	}
	ev, err := lfo.ParseMessage(args[0].String())
	if err != nil {
		println("lfo message:", err.Error())
		return false
	}
	return globalQueue.Post(ev)
}

// wasmConfigure(sampleRate, rateDriven, typeDriven, shapeDriven, dampingDriven)
func wasmConfigure(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalOsc == nil {
		return nil
	}
	var driven [lfo.NumInputs]bool
	for i := range driven {
		if 1+i < len(args) {
			driven[i] = args[1+i].Truthy()
		}
	}
	globalOsc.Configure(args[0].Float(), driven)
	return nil
}

func wasmInputPointer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalOsc == nil {
		return 0
	}
	i := args[0].Int()
	if i < 0 || i >= int(lfo.NumInputs) {
		return 0
	}
	return js.ValueOf(uintptr(unsafe.Pointer(&inputBuffers[i][0])))
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || globalOsc == nil {
		return 0
	}

	numFrames := args[0].Int()
	if numFrames > maxFrames {
		numFrames = maxFrames
	}
	if numFrames < 0 {
		numFrames = 0
	}

	// Control changes land between blocks only.
	globalQueue.Drain(globalOsc)

	var in lfo.Streams
	for i := range inputBuffers {
		if !globalOsc.Driven(lfo.Input(i)) {
			continue
		}
		s := streams[i][:numFrames]
		for n := range s {
			s[n] = float64(inputBuffers[i][n])
		}
		in[i] = s
	}

	out := outScratch[:numFrames]
	globalOsc.Process(&in, out)
	for n, v := range out {
		outputBuffer[n] = float32(v)
	}

	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmStatus(this js.Value, args []js.Value) interface{} {
	if globalOsc == nil {
		return nil
	}
	return js.ValueOf(map[string]interface{}{
		"phase":          globalOsc.Phase(),
		"energy":         globalOsc.Energy(),
		"bounces":        globalOsc.BounceCount(),
		"output":         globalOsc.LastOutput(),
		"looping":        globalOsc.Looping(),
		"envelopeActive": globalOsc.EnvelopeActive(),
	})
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
