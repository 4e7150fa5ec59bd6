package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/almerlucke/stringtone"
	"github.com/almerlucke/stringtone/writer"
	"github.com/almerlucke/stringtone/writer/backend/oggopus"
)

// Opus transcodes to Ogg/Opus in process. The source is resampled to 48 kHz.
type Opus struct {
	Bitrate int
	// SrConvQuality is a libsamplerate converter type. The zero value is
	// SRC_SINC_BEST_QUALITY.
	SrConvQuality int
}

func (o *Opus) Ext() string {
	return ".opus"
}

func (o *Opus) Encode(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sf, err := stringtone.Open(src)
	if err != nil {
		return err
	}

	numChannels := sf.NumChannels()
	if numChannels == 0 {
		return fmt.Errorf("%s: no audio channels", src)
	}

	bitrate := o.Bitrate
	if bitrate <= 0 {
		bitrate = DefaultBitrate
	}

	opt := writer.Options{
		SrConvQuality: o.SrConvQuality,
		Bitrate:       bitrate,
	}
	if sf.SampleRate() != oggopus.SampleRate {
		opt.ConvertSampleRate = true
		opt.InputSampleRate = sf.SampleRate()
	}

	wr, err := writer.NewWithOptions(dst, writer.Opus, numChannels, oggopus.SampleRate, opt)
	if err != nil {
		return err
	}

	err = wr.Write(interleave(sf), true)
	if closeErr := wr.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("opus %s: %w", src, err)
	}

	return nil
}

func interleave(sf *stringtone.SoundFile) []int16 {
	numChannels := sf.NumChannels()
	if numChannels == 1 {
		return sf.Int16(0)
	}

	channels := make([]stringtone.Buffer, numChannels)
	for c := range channels {
		channels[c] = sf.Int16(c)
	}

	frames := int(sf.NumFrames())
	out := make([]int16, frames*numChannels)
	for i := 0; i < frames; i++ {
		for c := 0; c < numChannels; c++ {
			out[i*numChannels+c] = channels[c][i]
		}
	}

	return out
}
