package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// FFmpeg transcodes to MP3 with an external ffmpeg binary.
type FFmpeg struct {
	// Path to the binary, looked up in PATH when empty
	Path       string
	Bitrate    int
	SampleRate int
	// Timeout bounds a single Encode call, 0 means DefaultTimeout
	Timeout time.Duration
}

func (f *FFmpeg) Ext() string {
	return ".mp3"
}

func (f *FFmpeg) args(src, dst string) []string {
	bitrate := f.Bitrate
	if bitrate <= 0 {
		bitrate = DefaultBitrate
	}
	sampleRate := f.SampleRate
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	return []string{
		"-nostdin",
		"-hide_banner", "-loglevel", "error",
		"-i", src,
		"-acodec", "libmp3lame",
		"-ab", strconv.Itoa(bitrate/1000) + "k",
		"-ar", strconv.Itoa(sampleRate),
		"-y",
		dst,
	}
}

// Encode runs ffmpeg and waits for it. Only a zero exit status counts as
// success; on any failure a partially written dst is removed.
func (f *FFmpeg) Encode(ctx context.Context, src, dst string) error {
	path := f.Path
	if path == "" {
		path = "ffmpeg"
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	encCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(encCtx, path, f.args(src, dst)...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if err == nil {
		return nil
	}

	_ = os.Remove(dst)

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %s: %v", ErrEncoderNotFound, path, err)
	}

	if errors.Is(encCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %v: %s", ErrEncoderTimeout, timeout, src)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
	}

	return fmt.Errorf("ffmpeg %s: %w", src, err)
}
