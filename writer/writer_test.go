package writer

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/dh1tw/gosamplerate"
)

type recordBackend struct {
	samples []int16
	closed  bool
	failAt  int
}

func (rb *recordBackend) Write(s []int16) error {
	if rb.failAt > 0 && len(rb.samples)+len(s) >= rb.failAt {
		return errors.New("disk full")
	}
	rb.samples = append(rb.samples, s...)
	return nil
}

func (rb *recordBackend) Close() error {
	rb.closed = true
	return nil
}

// --- FileFormat ---

func TestFileFormatExt(t *testing.T) {
	if WAV.Ext() != ".wav" || Opus.Ext() != ".opus" {
		t.Errorf("Ext = %q, %q", WAV.Ext(), Opus.Ext())
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "x"), FileFormat(42), 1, 44100)
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

// --- pass-through ---

func TestPassThrough(t *testing.T) {
	rb := &recordBackend{}
	w, err := NewWithBackend(rb, 1, 44100, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]int16{1, 2, 3}, false); err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]int16{4}, true); err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]int16{5}, true); err == nil {
		t.Error("write after end of input should fail")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !rb.closed {
		t.Error("backend not closed")
	}
	if len(rb.samples) != 4 || w.Frames() != 4 {
		t.Errorf("wrote %d samples, %d frames; want 4", len(rb.samples), w.Frames())
	}
}

func TestBackendErrorPropagates(t *testing.T) {
	rb := &recordBackend{failAt: 2}
	w, err := NewWithBackend(rb, 1, 44100, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]int16{1, 2, 3}, true); err == nil {
		t.Error("expected backend error")
	}
}

func TestRejectsZeroChannels(t *testing.T) {
	if _, err := NewWithBackend(&recordBackend{}, 0, 44100, Options{}); err == nil {
		t.Error("expected error for zero channels")
	}
}

// --- sample rate conversion ---

func TestConvertSampleRate(t *testing.T) {
	rb := &recordBackend{}
	w, err := NewWithBackend(rb, 1, 48000, Options{
		ConvertSampleRate: true,
		InputSampleRate:   44100,
		SrConvQuality:     gosamplerate.SRC_SINC_MEDIUM_QUALITY,
	})
	if err != nil {
		t.Fatal(err)
	}

	in := make([]int16, 44100)
	for i := range in {
		in[i] = int16(10000 * math.Sin(2*math.Pi*110*float64(i)/44100))
	}
	if err := w.Write(in, true); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if got := len(rb.samples); math.Abs(float64(got)-48000) > 480 {
		t.Errorf("converted length = %d, want ~48000", got)
	}
	peak := 0
	for _, s := range rb.samples {
		if v := int(math.Abs(float64(s))); v > peak {
			peak = v
		}
	}
	if peak < 9000 || peak > 11000 {
		t.Errorf("converted peak = %d, want ~10000", peak)
	}
}

// --- conversions ---

func TestPCMRoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 12345}
	out := ToPCM16(ToFloat32(in, nil))
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample[%d] = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestToPCM16Clips(t *testing.T) {
	out := ToPCM16([]float64{2, -2, 0.5})
	if out[0] != math.MaxInt16 || out[1] != math.MinInt16 || out[2] != 16384 {
		t.Errorf("ToPCM16 = %v", out)
	}
}
