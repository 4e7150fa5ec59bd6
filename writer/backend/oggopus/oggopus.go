package oggopus

import (
	"errors"
	"fmt"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
	"gopkg.in/hraban/opus.v2"
)

const (
	SampleRate    = 48000
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960 // samples per channel per 20ms frame

	maxPacketSize = 4000
	payloadType   = 111
	ssrc          = 0x5354 // arbitrary, the ogg muxer ignores it
)

var ErrSampleRate = fmt.Errorf("ogg/opus output must be %d Hz", SampleRate)

// OggOpus encodes 16-bit PCM to Opus packets and muxes them into an Ogg file.
type OggOpus struct {
	numChannels int
	enc         *opus.Encoder
	ogg         *oggwriter.OggWriter
	pending     []int16
	packet      []byte
	seq         uint16
	timestamp   uint32
	frames      int
}

// New creates an Ogg/Opus file. bitrate is in bits per second, 0 keeps the
// libopus default.
func New(filePath string, numChannels int, sampleRate float64, bitrate int) (*OggOpus, error) {
	if int(sampleRate) != SampleRate {
		return nil, ErrSampleRate
	}

	enc, err := opus.NewEncoder(SampleRate, numChannels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}

	if bitrate > 0 {
		if err := enc.SetBitrate(bitrate); err != nil {
			return nil, fmt.Errorf("opus bitrate: %w", err)
		}
	}

	ogg, err := oggwriter.New(filePath, SampleRate, uint16(numChannels))
	if err != nil {
		return nil, err
	}

	return &OggOpus{
		numChannels: numChannels,
		enc:         enc,
		ogg:         ogg,
		pending:     make([]int16, 0, FrameSize*numChannels),
		packet:      make([]byte, maxPacketSize),
	}, nil
}

func (o *OggOpus) Write(items []int16) error {
	o.pending = append(o.pending, items...)

	frame := FrameSize * o.numChannels
	consumed := 0
	for len(o.pending)-consumed >= frame {
		if err := o.writeFrame(o.pending[consumed : consumed+frame]); err != nil {
			return err
		}
		consumed += frame
	}

	n := copy(o.pending, o.pending[consumed:])
	o.pending = o.pending[:n]

	return nil
}

// Frames returns the number of Opus packets written.
func (o *OggOpus) Frames() int {
	return o.frames
}

func (o *OggOpus) writeFrame(pcm []int16) error {
	n, err := o.enc.Encode(pcm, o.packet)
	if err != nil {
		return fmt.Errorf("opus encode: %w", err)
	}

	err = o.ogg.WriteRTP(&rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    payloadType,
			SequenceNumber: o.seq,
			Timestamp:      o.timestamp,
			SSRC:           ssrc,
		},
		Payload: o.packet[:n],
	})
	if err != nil {
		return fmt.Errorf("ogg write: %w", err)
	}

	o.seq++
	o.timestamp += FrameSize
	o.frames++

	return nil
}

// Close pads the last partial frame with silence and finalizes the stream.
func (o *OggOpus) Close() error {
	var errs []error

	if len(o.pending) > 0 {
		frame := make([]int16, FrameSize*o.numChannels)
		copy(frame, o.pending)
		o.pending = o.pending[:0]
		if err := o.writeFrame(frame); err != nil {
			errs = append(errs, err)
		}
	}

	if err := o.ogg.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}
