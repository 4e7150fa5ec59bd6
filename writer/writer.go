package writer

import (
	"errors"
	"fmt"
	"math"

	"github.com/almerlucke/stringtone/writer/backend"
	"github.com/almerlucke/stringtone/writer/backend/oggopus"
	"github.com/almerlucke/stringtone/writer/backend/wav"
	"github.com/dh1tw/gosamplerate"
)

type FileFormat int

const (
	WAV FileFormat = iota
	Opus
)

func (f FileFormat) String() string {
	switch f {
	case WAV:
		return "wav"
	case Opus:
		return "opus"
	}
	return fmt.Sprintf("FileFormat(%d)", int(f))
}

// Ext returns the file extension including the dot.
func (f FileFormat) Ext() string {
	return "." + f.String()
}

const (
	DefaultFrameSize = 8192
)

var ErrUnknownFormat = errors.New("unknown file format")

type Options struct {
	ConvertSampleRate bool
	SrConvQuality     int
	InputSampleRate   float64
	// Bitrate in bits per second for compressed formats
	Bitrate int
}

type Writer struct {
	opt         Options
	srConv      gosamplerate.Src
	backend     backend.Backend
	numChannels int
	srRatio     float64
	chunkSize   int
	input       []float32
	ended       bool
	frames      int64
}

func New(filePath string, fileFormat FileFormat, numChannels int, sampleRate float64) (*Writer, error) {
	return NewWithOptions(filePath, fileFormat, numChannels, sampleRate, Options{})
}

func NewWithOptions(filePath string, fileFormat FileFormat, numChannels int, sampleRate float64, opt Options) (*Writer, error) {
	var be backend.Backend
	var err error

	switch fileFormat {
	case WAV:
		be, err = wav.New(filePath, numChannels, sampleRate)
		if err != nil {
			return nil, err
		}
	case Opus:
		be, err = oggopus.New(filePath, numChannels, sampleRate, opt.Bitrate)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, fileFormat)
	}

	w, err := NewWithBackend(be, numChannels, sampleRate, opt)
	if err != nil {
		_ = be.Close()
		return nil, err
	}

	return w, nil
}

func NewWithBackend(be backend.Backend, numChannels int, sampleRate float64, opt Options) (*Writer, error) {
	w := &Writer{
		opt:         opt,
		numChannels: numChannels,
		backend:     be,
	}

	if numChannels < 1 {
		return nil, errors.New("number of channels should be at least 1")
	}

	if opt.ConvertSampleRate {
		if opt.InputSampleRate <= 0 {
			return nil, errors.New("input sample rate should be positive")
		}

		bufferLen := DefaultFrameSize * numChannels

		srConv, err := gosamplerate.New(opt.SrConvQuality, numChannels, bufferLen)
		if err != nil {
			return nil, err
		}

		w.srConv = srConv
		w.srRatio = sampleRate / opt.InputSampleRate

		err = w.srConv.SetRatio(w.srRatio)
		if err != nil {
			_ = gosamplerate.Delete(w.srConv)
			return nil, err
		}

		// Keep converter output inside its internal buffer
		frames := int(float64(DefaultFrameSize) / math.Ceil(w.srRatio))
		w.chunkSize = frames * numChannels
	}

	return w, nil
}

// Write appends interleaved samples. Set endOfInput on the final call when
// converting sample rates so the converter tail is flushed.
func (wr *Writer) Write(samples []int16, endOfInput bool) error {
	if wr.ended {
		return errors.New("write after end of input")
	}

	if !wr.opt.ConvertSampleRate {
		wr.ended = endOfInput
		return wr.writeBackend(samples)
	}

	for len(samples) > 0 {
		n := min(wr.chunkSize, len(samples))
		last := endOfInput && n == len(samples)

		if err := wr.convert(samples[:n], last); err != nil {
			return err
		}

		samples = samples[n:]
	}

	if endOfInput && !wr.ended {
		return wr.convert(nil, true)
	}

	return nil
}

// Frames returns the number of frames handed to the backend.
func (wr *Writer) Frames() int64 {
	return wr.frames
}

func (wr *Writer) convert(samples []int16, last bool) error {
	wr.input = ToFloat32(samples, wr.input)

	output, err := wr.srConv.Process(wr.input, wr.srRatio, last)
	if err != nil {
		return err
	}

	if last {
		wr.ended = true
	}

	return wr.writeBackend(ToPCM16(output))
}

func (wr *Writer) writeBackend(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}

	if err := wr.backend.Write(samples); err != nil {
		return err
	}

	wr.frames += int64(len(samples) / wr.numChannels)

	return nil
}

func (wr *Writer) Close() error {
	var errs []error
	var err error

	if wr.opt.ConvertSampleRate {
		if !wr.ended {
			err = wr.convert(nil, true)
			if err != nil {
				errs = append(errs, err)
			}
		}

		err = gosamplerate.Delete(wr.srConv)
		if err != nil {
			errs = append(errs, err)
		}
	}

	err = wr.backend.Close()
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}
