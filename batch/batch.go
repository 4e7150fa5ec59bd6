// Package batch renders a note table to audio files, one file per note.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/almerlucke/stringtone"
	"github.com/almerlucke/stringtone/config"
	"github.com/almerlucke/stringtone/metrics"
	"github.com/almerlucke/stringtone/transcode"
	"github.com/almerlucke/stringtone/writer"
)

var ErrVerify = errors.New("written file does not match buffer")

// Driver runs one generation batch. Notes are processed sequentially.
type Driver struct {
	cfg     config.Config
	table   *stringtone.Table
	voice   stringtone.Voice
	enc     transcode.Encoder
	logger  *zap.Logger
	metrics *metrics.Metrics
	runID   string
}

// New creates a driver. enc may be nil to only write WAV files, m may be nil
// when metrics are not wanted.
func New(cfg config.Config, table *stringtone.Table, voice stringtone.Voice,
	enc transcode.Encoder, logger *zap.Logger, m *metrics.Metrics) *Driver {

	if m == nil {
		m = metrics.New()
	}

	runID := uuid.NewString()

	return &Driver{
		cfg:     cfg,
		table:   table,
		voice:   voice,
		enc:     enc,
		logger:  logger.With(zap.String("run", runID)),
		metrics: m,
		runID:   runID,
	}
}

// runState is the mutable state of a single Run.
type runState struct {
	// encode is cleared once the encoder proved unusable
	encode bool
}

// Run generates every note of the table. File system errors abort the run;
// encoder failures only downgrade output to WAV.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: d.runID, OutputDir: d.cfg.OutputDir}

	if err := os.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("create output dir: %w", err)
	}

	state := runState{encode: d.enc != nil}

	d.logger.Info("generating notes",
		zap.Int("count", d.table.Len()),
		zap.String("dir", d.cfg.OutputDir),
		zap.Bool("compress", state.encode))

	for _, octave := range d.table.Octaves() {
		if octave.Name != "" {
			d.logger.Info("octave", zap.String("octave", octave.Name), zap.Int("notes", len(octave.Notes)))
		}

		for _, note := range octave.Notes {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			if err := d.generate(ctx, note, &state, report); err != nil {
				return report, fmt.Errorf("note %s: %w", note.Label, err)
			}
		}
	}

	report.EncoderDisabled = d.enc != nil && !state.encode

	d.logger.Info("done",
		zap.Int("compressed", len(report.Compressed)),
		zap.Int("uncompressed", len(report.Uncompressed)),
		zap.Int64("bytes", report.TotalBytes))

	if d.cfg.MetricsFile != "" {
		if err := d.metrics.WriteTextfile(d.cfg.MetricsFile); err != nil {
			d.logger.Warn("metrics not written", zap.String("file", d.cfg.MetricsFile), zap.Error(err))
		}
	}

	return report, nil
}

func (d *Driver) generate(ctx context.Context, note stringtone.Note, state *runState, report *Report) error {
	logger := d.logger.With(zap.String("note", note.Label), zap.Float64("hz", note.Frequency))

	start := time.Now()
	buf, err := d.voice.Synthesize(note.Frequency, d.cfg.Duration, float64(d.cfg.SampleRate))
	if err != nil {
		return err
	}
	d.metrics.SynthDuration.Observe(time.Since(start).Seconds())
	d.metrics.NotesSynthesized.Inc()

	wavPath := filepath.Join(d.cfg.OutputDir, note.Label+writer.WAV.Ext())
	if err := d.writeWAV(wavPath, buf); err != nil {
		return err
	}
	logger.Debug("wav written", zap.String("file", wavPath), zap.Int("samples", len(buf)))

	if d.cfg.Verify {
		if err := d.verify(wavPath, len(buf)); err != nil {
			return err
		}
	}

	if d.enc == nil || !state.encode {
		return d.keepOnly(note.Label, writer.WAV.Ext(), report)
	}

	dst := filepath.Join(d.cfg.OutputDir, note.Label+d.enc.Ext())
	encErr := d.enc.Encode(ctx, wavPath, dst)
	if encErr == nil {
		logger.Info("generated", zap.String("file", filepath.Base(dst)))
		return d.keepOnly(note.Label, d.enc.Ext(), report)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	reason := failureReason(encErr)
	d.metrics.EncodeFailures.WithLabelValues(reason).Inc()
	logger.Warn("compression failed, keeping wav", zap.String("reason", reason), zap.Error(encErr))

	if reason == "not_found" || !d.cfg.KeepEncoding {
		state.encode = false
		d.metrics.EncoderDisabled.Set(1)
		logger.Warn("compression disabled for the rest of the run")
	}

	return d.keepOnly(note.Label, writer.WAV.Ext(), report)
}

// outputExts are the extensions a label can be written as.
var outputExts = []string{writer.WAV.Ext(), ".mp3", writer.Opus.Ext()}

// keepOnly records <label><ext> and removes the label's other outputs,
// including those left by an earlier run with another format, so every
// label maps to exactly one file.
func (d *Driver) keepOnly(label, ext string, report *Report) error {
	for _, other := range outputExts {
		if other == ext {
			continue
		}
		path := filepath.Join(d.cfg.OutputDir, label+other)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}

	return d.keep(filepath.Join(d.cfg.OutputDir, label+ext), ext[1:], report)
}

func (d *Driver) writeWAV(path string, buf stringtone.Buffer) error {
	wr, err := writer.New(path, writer.WAV, 1, float64(d.cfg.SampleRate))
	if err != nil {
		return err
	}

	err = wr.Write(buf, true)
	if closeErr := wr.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	return err
}

func (d *Driver) verify(path string, numSamples int) error {
	sf, err := stringtone.Open(path)
	if err != nil {
		return err
	}

	switch {
	case sf.NumChannels() != 1:
		return fmt.Errorf("%w: %s has %d channels", ErrVerify, path, sf.NumChannels())
	case int(sf.SampleRate()) != d.cfg.SampleRate:
		return fmt.Errorf("%w: %s is %v Hz", ErrVerify, path, sf.SampleRate())
	case sf.NumFrames() != int64(numSamples):
		return fmt.Errorf("%w: %s has %d frames, want %d", ErrVerify, path, sf.NumFrames(), numSamples)
	case !sf.IsPCM16WAV():
		return fmt.Errorf("%w: %s is not 16-bit PCM wav", ErrVerify, path)
	}

	return nil
}

func (d *Driver) keep(path, format string, report *Report) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	if format == "wav" {
		report.Uncompressed = append(report.Uncompressed, name)
	} else {
		report.Compressed = append(report.Compressed, name)
	}
	report.TotalBytes += info.Size()

	d.metrics.FilesWritten.WithLabelValues(format).Inc()
	d.metrics.BytesWritten.Add(float64(info.Size()))

	return nil
}

func failureReason(err error) string {
	var exitErr *transcode.ExitError
	switch {
	case errors.Is(err, transcode.ErrEncoderNotFound):
		return "not_found"
	case errors.Is(err, transcode.ErrEncoderTimeout):
		return "timeout"
	case errors.As(err, &exitErr):
		return "exit_status"
	}
	return "error"
}
