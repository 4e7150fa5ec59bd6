package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"
)

// Config holds the settings of one generation run, bound to command-line flags.
type Config struct {
	// Output
	OutputDir string

	// Synthesis
	Table      string  // note table: open, chromatic
	Voice      string  // synthesis preset: open, chromatic, plucked
	Duration   float64 // seconds per note
	SampleRate int     // Hz

	// Compression
	Format         string // mp3, opus, none
	FFmpegPath     string
	Bitrate        int           // bits per second
	EncoderTimeout time.Duration // per note
	KeepEncoding   bool          // keep trying after an encoder failure

	// Housekeeping
	Verify      bool   // read back each wav after writing
	MetricsFile string // prometheus textfile, empty disables
	Quiet       bool
}

// Default returns the settings used by the asset scripts.
func Default() Config {
	return Config{
		OutputDir: "assets/sounds",

		Table:      "open",
		Voice:      "open",
		Duration:   2.5,
		SampleRate: 44100,

		Format:         "mp3",
		FFmpegPath:     "ffmpeg",
		Bitrate:        128000,
		EncoderTimeout: 10 * time.Second,
	}
}

// RegisterFlags binds the config fields to fs, using current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.OutputDir, "out", c.OutputDir, "output directory")
	fs.StringVar(&c.Table, "table", c.Table, "note table: open, chromatic")
	fs.StringVar(&c.Voice, "voice", c.Voice, "synthesis preset: open, chromatic, plucked")
	fs.Float64Var(&c.Duration, "duration", c.Duration, "note length in seconds")
	fs.IntVar(&c.SampleRate, "rate", c.SampleRate, "sample rate in Hz")
	fs.StringVar(&c.Format, "format", c.Format, "compressed format: mp3, opus, none")
	fs.StringVar(&c.FFmpegPath, "ffmpeg", c.FFmpegPath, "ffmpeg executable")
	fs.IntVar(&c.Bitrate, "bitrate", c.Bitrate, "compressed bitrate in bits per second")
	fs.DurationVar(&c.EncoderTimeout, "encoder-timeout", c.EncoderTimeout, "per note encoder timeout")
	fs.BoolVar(&c.KeepEncoding, "keep-encoding", c.KeepEncoding, "keep encoding later notes after an encoder failure")
	fs.BoolVar(&c.Verify, "verify", c.Verify, "read back every wav after writing it")
	fs.StringVar(&c.MetricsFile, "metrics-file", c.MetricsFile, "write prometheus metrics to this file")
	fs.BoolVar(&c.Quiet, "quiet", c.Quiet, "only log warnings and errors")
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is empty"))
	}
	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %v", c.Duration))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %d", c.SampleRate))
	}
	switch strings.ToLower(c.Format) {
	case "mp3", "opus", "none", "":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}
	if c.Bitrate <= 0 {
		errs = append(errs, fmt.Errorf("bitrate must be positive, got %d", c.Bitrate))
	}
	if c.EncoderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("encoder timeout must be positive, got %v", c.EncoderTimeout))
	}

	return errors.Join(errs...)
}
