package stringtone

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/almerlucke/stringtone/dsp/envelope"
)

const (
	MaxAmplitude = math.MaxInt16

	DefaultSampleRate = 44100.0
	DefaultDuration   = 2.5
	DefaultGain       = 10000.0
	DefaultDecayRate  = 1.5
)

var (
	ErrInvalidFrequency  = errors.New("frequency must be a positive finite number")
	ErrInvalidDuration   = errors.New("duration must be a positive finite number")
	ErrInvalidSampleRate = errors.New("sample rate must be a positive finite number")
	ErrUnknownVoice      = errors.New("unknown voice")
)

// Buffer holds mono 16-bit PCM samples.
type Buffer []int16

// Peak returns the largest absolute sample value.
func (b Buffer) Peak() int {
	peak := 0
	for _, s := range b {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Voice is an additive synthesizer for a single plucked tone.
type Voice struct {
	// Harmonic weights, index 0 is the fundamental, index k the (k+1)th partial
	Harmonics []float64
	Envelope  envelope.Function
	// Gain scales the enveloped signal when Normalize is false
	Gain float64
	// Normalize scales the buffer so its peak reaches MaxAmplitude
	Normalize bool
}

// OpenStringVoice has four partials under an exponential decay and a fixed gain.
func OpenStringVoice() Voice {
	return Voice{
		Harmonics: []float64{1, 0.4, 0.2, 0.1},
		Envelope:  envelope.Exponential(DefaultDecayRate),
		Gain:      DefaultGain,
	}
}

// ChromaticVoice adds a fifth partial to OpenStringVoice.
func ChromaticVoice() Voice {
	return Voice{
		Harmonics: []float64{1, 0.4, 0.2, 0.1, 0.05},
		Envelope:  envelope.Exponential(DefaultDecayRate),
		Gain:      DefaultGain,
	}
}

// PluckedVoice uses five partials, a fast attack ADSR and peak normalization.
func PluckedVoice() Voice {
	return Voice{
		Harmonics: []float64{1, 0.4, 0.2, 0.1, 0.05},
		Envelope: envelope.ADSR{
			Attack:  0.01,
			Decay:   0.1,
			Sustain: 0.6,
			Release: 0.5,
		}.Generate,
		Normalize: true,
	}
}

// VoiceByName resolves "open", "chromatic" or "plucked".
func VoiceByName(name string) (Voice, error) {
	switch strings.ToLower(name) {
	case "open":
		return OpenStringVoice(), nil
	case "chromatic":
		return ChromaticVoice(), nil
	case "plucked":
		return PluckedVoice(), nil
	}
	return Voice{}, fmt.Errorf("%w: %q", ErrUnknownVoice, name)
}

// NumSamples returns round(duration * sampleRate).
func NumSamples(duration, sampleRate float64) int {
	return int(math.Round(duration * sampleRate))
}

// Synthesize renders frequency for duration seconds at sampleRate. The result
// depends only on its inputs.
func (v Voice) Synthesize(frequency, duration, sampleRate float64) (Buffer, error) {
	if !positive(frequency) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrequency, frequency)
	}
	if !positive(duration) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}
	if !positive(sampleRate) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	n := NumSamples(duration, sampleRate)
	signal := make([]float64, n)

	for i := range signal {
		t := float64(i) / sampleRate
		var s float64
		for k, w := range v.Harmonics {
			s += w * math.Sin(2*math.Pi*frequency*float64(k+1)*t)
		}
		signal[i] = s
	}

	if v.Envelope != nil {
		env := v.Envelope(n, sampleRate)
		for i := range signal {
			signal[i] *= env[i]
		}
	}

	out := make(Buffer, n)

	if !v.Normalize {
		for i, s := range signal {
			out[i] = clamp16(s * v.Gain)
		}
		return out, nil
	}

	// A silent signal stays silent
	peak := peakOf(signal)
	if peak == 0 {
		return out, nil
	}

	for i, s := range signal {
		out[i] = clamp16(s / peak * MaxAmplitude)
	}

	return out, nil
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

func peakOf(signal []float64) float64 {
	var peak float64
	for _, s := range signal {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// clamp16 truncates toward zero and clips to the int16 range.
func clamp16(x float64) int16 {
	x = math.Trunc(x)
	if x > math.MaxInt16 {
		return math.MaxInt16
	} else if x < math.MinInt16 {
		return math.MinInt16
	}
	return int16(x)
}
