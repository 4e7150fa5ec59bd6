package writer

import "math"

type float interface {
	float32 | float64
}

// ToFloat32 converts 16-bit PCM to floats in [-1, 1). buf is reused when it
// has enough capacity.
func ToFloat32(in []int16, buf []float32) []float32 {
	if cap(buf) < len(in) {
		buf = make([]float32, len(in))
	}
	buf = buf[:len(in)]

	for i, s := range in {
		buf[i] = float32(s) / 32768
	}

	return buf
}

// ToPCM16 converts float samples in [-1, 1] back to 16-bit PCM, rounding and
// clipping out of range values.
func ToPCM16[T float](in []T) []int16 {
	out := make([]int16, len(in))

	for i, s := range in {
		v := math.Round(float64(s) * 32768)
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		out[i] = int16(v)
	}

	return out
}
