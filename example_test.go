package stringtone_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/almerlucke/stringtone"
	"github.com/almerlucke/stringtone/writer"
	"github.com/dh1tw/gosamplerate"
)

func ExampleVoice_Synthesize() {
	buf, err := stringtone.OpenStringVoice().Synthesize(110, 2.5, 44100)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(len(buf), buf[0])
	// Output: 110250 0
}

func ExampleVoice_Synthesize_normalized() {
	buf, err := stringtone.PluckedVoice().Synthesize(196, 2.5, 44100)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(buf.Peak())
	// Output: 32767
}

// Render a note at 44.1 kHz and store it at 48 kHz.
func Example_resampledWAV() {
	dir, err := os.MkdirTemp("", "stringtone")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	buf, err := stringtone.ChromaticVoice().Synthesize(440, 1, 44100)
	if err != nil {
		log.Fatal(err)
	}

	sf, err := writer.NewWithOptions(
		filepath.Join(dir, "A4.wav"),
		writer.WAV,
		1,
		48000.0,
		writer.Options{
			ConvertSampleRate: true,
			InputSampleRate:   44100.0,
			SrConvQuality:     gosamplerate.SRC_SINC_BEST_QUALITY,
		},
	)
	if err != nil {
		log.Fatalf("sf error: %v", err)
	}

	err = sf.Write(buf, true)
	if err != nil {
		log.Fatalf("sf error: %v", err)
	}

	err = sf.Close()
	if err != nil {
		log.Fatalf("sf error: %v", err)
	}

	info, err := stringtone.Open(filepath.Join(dir, "A4.wav"))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(info.SampleRate())
	// Output: 48000
}
