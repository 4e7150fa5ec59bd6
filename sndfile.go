package stringtone

import (
	"fmt"
	"math"

	"github.com/mkb218/gosndfile/sndfile"
)

// SoundFile contains sound file deinterleaved samples
type SoundFile struct {
	// Deinterleaved channels, samples in [-1, 1]
	channels [][]float64
	// Sample rate
	sampleRate float64
	// Number of frames
	numFrames int64
	// Duration in seconds
	duration float64
	// libsndfile major format and subtype
	format sndfile.Format
}

// Open loads a sound file from disk
func Open(filePath string) (*SoundFile, error) {
	info := sndfile.Info{}

	file, err := sndfile.Open(filePath, sndfile.Read, &info)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}

	defer func() {
		_ = file.Close()
	}()

	// Create one big buffer to hold all samples
	fileBuffer := make([]float64, int64(info.Channels)*info.Frames)

	// Create separate channels by splitting buffer into info.Channels parts
	channels := make([][]float64, info.Channels)
	for i := int32(0); i < info.Channels; i++ {
		channels[i] = fileBuffer[int64(i)*info.Frames : int64(i+1)*info.Frames]
	}

	// Deinterleave in blocks
	sampleBlockSize := int64(2048) * int64(info.Channels)
	samples := make([]float64, sampleBlockSize)
	frameIndex := int64(0)

	for {
		framesRead, err := file.ReadFrames(samples)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filePath, err)
		}

		if framesRead == 0 {
			break
		}

		for i := int64(0); i < framesRead; i++ {
			for j := int64(0); j < int64(info.Channels); j++ {
				channels[j][frameIndex+i] = samples[i*int64(info.Channels)+j]
			}
		}

		frameIndex += framesRead
	}

	sf := SoundFile{}
	sf.duration = float64(info.Frames) / float64(info.Samplerate)
	sf.numFrames = info.Frames
	sf.channels = channels
	sf.sampleRate = float64(info.Samplerate)
	sf.format = info.Format

	return &sf, nil
}

func (sf *SoundFile) NumChannels() int {
	return len(sf.channels)
}

func (sf *SoundFile) SampleRate() float64 {
	return sf.sampleRate
}

func (sf *SoundFile) NumFrames() int64 {
	return sf.numFrames
}

func (sf *SoundFile) Duration() float64 {
	return sf.duration
}

// Format returns the libsndfile major format and subtype bits.
func (sf *SoundFile) Format() sndfile.Format {
	return sf.format
}

func (sf *SoundFile) Buffer(channel int) []float64 {
	return sf.channels[channel]
}

// IsPCM16WAV reports whether the file is a WAV container with 16-bit PCM data.
func (sf *SoundFile) IsPCM16WAV() bool {
	return sf.format&sndfile.SF_FORMAT_TYPEMASK == sndfile.SF_FORMAT_WAV &&
		sf.format&sndfile.SF_FORMAT_SUBMASK == sndfile.SF_FORMAT_PCM_16
}

// Peak returns the largest absolute sample value over all channels.
func (sf *SoundFile) Peak() float64 {
	var peak float64
	for _, ch := range sf.channels {
		for _, s := range ch {
			if a := math.Abs(s); a > peak {
				peak = a
			}
		}
	}
	return peak
}

// Int16 converts a channel back to 16-bit PCM.
func (sf *SoundFile) Int16(channel int) Buffer {
	ch := sf.channels[channel]
	out := make(Buffer, len(ch))
	for i, s := range ch {
		out[i] = clamp16(math.Round(s * 32768))
	}
	return out
}
