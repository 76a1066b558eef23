package fitcommon

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadWAVMono reads a WAV file and downmixes it to mono.
func ReadWAVMono(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = sum / float64(ch)
	}
	return out, buf.Format.SampleRate, nil
}

// ReadCurveWAV reads a control curve stored with WriteCurveWAV and maps it
// back from [-1,1] to [0,1].
func ReadCurveWAV(path string) ([]float64, int, error) {
	x, sr, err := ReadWAVMono(path)
	if err != nil {
		return nil, 0, err
	}
	// integer PCM decoders hand back raw 16-bit codes
	if Peak(x) > 1.0001 {
		for i := range x {
			x[i] /= 32768
		}
	}
	for i, v := range x {
		x[i] = Clamp(0.5*(v+1), 0, 1)
	}
	return x, sr, nil
}

func ResampleIfNeeded(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// WriteCurveWAV stores a [0,1] control curve as a full-scale mono WAV so it
// can be inspected in any audio editor.
func WriteCurveWAV(path string, curve []float64, sampleRate int) error {
	return WriteMonoWAV(path, CurveSamples(curve), sampleRate)
}

// CurveSamples maps a [0,1] curve onto full-scale [-1,1] samples.
func CurveSamples(curve []float64) []float32 {
	data := make([]float32, len(curve))
	for i, v := range curve {
		data[i] = float32(2*Clamp(v, 0, 1) - 1)
	}
	return data
}

// WriteStereoWAVLR writes two equal-length channels as a stereo file.
func WriteStereoWAVLR(path string, left []float32, right []float32, sampleRate int) error {
	if len(left) != len(right) {
		return fmt.Errorf("left/right length mismatch")
	}
	data := make([]float32, len(left)*2)
	for i := 0; i < len(left); i++ {
		data[i*2] = left[i]
		data[i*2+1] = right[i]
	}
	return writeWAV(path, data, sampleRate, 2)
}

func WriteMonoWAV(path string, data []float32, sampleRate int) error {
	return writeWAV(path, data, sampleRate, 1)
}

func writeWAV(path string, samples []float32, sampleRate int, channels int) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}
