package wav

import (
	"errors"
	"os"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
)

const (
	bitDepth  = 16
	pcmFormat = 1 // uncompressed integer PCM
)

// Wav writes little-endian 16-bit PCM samples to a RIFF/WAVE file.
type Wav struct {
	numChannels  int
	totalSamples int
	wrote        bool
	file         *os.File
	enc          *gowav.Encoder
	buf          *audio.IntBuffer
}

func New(filePath string, numChannels int, sampleRate float64) (*Wav, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, err
	}

	return &Wav{
		numChannels: numChannels,
		file:        file,
		enc:         gowav.NewEncoder(file, int(sampleRate), bitDepth, numChannels, pcmFormat),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  int(sampleRate),
			},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

func (wav *Wav) Write(items []int16) error {
	data := wav.buf.Data[:0]
	for _, item := range items {
		data = append(data, int(item))
	}
	wav.buf.Data = data

	wav.totalSamples += len(items)
	wav.wrote = true

	return wav.enc.Write(wav.buf)
}

// NumFrames returns the number of sample frames written so far.
func (wav *Wav) NumFrames() int {
	return wav.totalSamples / wav.numChannels
}

func (wav *Wav) Close() error {
	var errs []error

	// The encoder only emits its header on the first write
	if !wav.wrote {
		if err := wav.Write(nil); err != nil {
			errs = append(errs, err)
		}
	}

	if err := wav.enc.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := wav.file.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}
