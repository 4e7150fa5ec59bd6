package stringtone

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, path string, samples Buffer) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{Data: data, Format: &audio.Format{SampleRate: 44100, NumChannels: 1}}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOpenRoundTrip(t *testing.T) {
	buf, err := OpenStringVoice().Synthesize(110, 0.5, 44100)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "A.wav")
	writeTestWAV(t, path, buf)

	sf, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if sf.NumChannels() != 1 || sf.SampleRate() != 44100 || sf.NumFrames() != int64(len(buf)) {
		t.Errorf("info = %d ch, %v Hz, %d frames", sf.NumChannels(), sf.SampleRate(), sf.NumFrames())
	}
	if sf.Duration() != 0.5 {
		t.Errorf("Duration = %v, want 0.5", sf.Duration())
	}
	if !sf.IsPCM16WAV() {
		t.Error("IsPCM16WAV = false")
	}

	back := sf.Int16(0)
	for i := range buf {
		if back[i] != buf[i] {
			t.Fatalf("sample %d = %d, want %d", i, back[i], buf[i])
		}
	}
	if want := float64(buf.Peak()) / 32768; sf.Peak() != want {
		t.Errorf("Peak = %v, want %v", sf.Peak(), want)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Error("expected error")
	}
}
