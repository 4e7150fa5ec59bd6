// Package transcode turns the uncompressed WAV output into compressed
// siblings, either through an ffmpeg subprocess or in process.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEncoderNotFound means the encoder cannot run at all. Callers stop
	// trying for the rest of a run.
	ErrEncoderNotFound = errors.New("encoder not found")
	ErrEncoderTimeout  = errors.New("encoder timed out")
	ErrUnknownFormat   = errors.New("unknown compressed format")
)

const (
	DefaultBitrate    = 128000
	DefaultSampleRate = 44100
	DefaultTimeout    = 10 * time.Second
)

// Encoder converts the file at src into dst.
type Encoder interface {
	Encode(ctx context.Context, src, dst string) error
	// Ext is the output extension including the dot
	Ext() string
}

// ExitError reports a non-zero encoder exit.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("encoder exited with status %d", e.Code)
	}
	return fmt.Sprintf("encoder exited with status %d: %s", e.Code, msg)
}

// Settings shared by the encoders.
type Settings struct {
	FFmpegPath string
	Bitrate    int
	SampleRate int
	Timeout    time.Duration
}

// ByName returns the encoder for "mp3" or "opus". "none" and "" return a nil
// Encoder and no error.
func ByName(name string, s Settings) (Encoder, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return nil, nil
	case "mp3":
		return &FFmpeg{
			Path:       s.FFmpegPath,
			Bitrate:    s.Bitrate,
			SampleRate: s.SampleRate,
			Timeout:    s.Timeout,
		}, nil
	case "opus":
		return &Opus{Bitrate: s.Bitrate}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}
