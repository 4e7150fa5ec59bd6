package envelope

import "math"

// Function is an alias type representing envelope generators. It returns n
// gain values for a signal sampled at sampleRate.
type Function func(n int, sampleRate float64) []float64

// Exponential generates an exponential decay envelope e^(-rate*t)
func Exponential(rate float64) Function {
	return func(n int, sampleRate float64) []float64 {
		r := make([]float64, n)
		for i := 0; i < n; i++ {
			r[i] = math.Exp(-rate * float64(i) / sampleRate)
		}
		return r
	}
}

// ADSR describes a four stage attack/decay/sustain/release envelope. Stage
// lengths are in seconds, Sustain is a level in [0, 1].
type ADSR struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Stages returns the sample count of every stage for a buffer of n samples.
// The counts always sum to n. Sustain absorbs any remainder; when n is too
// short the attack, decay and release stages are clipped in that order.
func (env ADSR) Stages(n int, sampleRate float64) (attack, decay, sustain, release int) {
	remaining := n

	take := func(seconds float64) int {
		c := int(seconds * sampleRate)
		if c < 0 {
			c = 0
		}
		if c > remaining {
			c = remaining
		}
		remaining -= c
		return c
	}

	attack = take(env.Attack)
	decay = take(env.Decay)
	release = take(env.Release)
	sustain = remaining

	return
}

// Generate fills n samples with the envelope. It has the Function signature so
// env.Generate can be passed wherever a Function is expected.
func (env ADSR) Generate(n int, sampleRate float64) []float64 {
	a, d, s, rel := env.Stages(n, sampleRate)

	r := make([]float64, 0, n)
	r = append(r, Linspace(0, 1, a)...)
	r = append(r, Linspace(1, env.Sustain, d)...)
	for i := 0; i < s; i++ {
		r = append(r, env.Sustain)
	}
	r = append(r, Linspace(env.Sustain, 0, rel)...)

	return r
}

// Linspace returns n evenly spaced values from start to stop, both included.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	r := make([]float64, n)
	if n == 1 {
		r[0] = start
		return r
	}

	step := (stop - start) / float64(n-1)
	for i := 0; i < n; i++ {
		r[i] = start + float64(i)*step
	}
	r[n-1] = stop

	return r
}
