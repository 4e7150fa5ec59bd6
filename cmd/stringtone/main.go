package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/almerlucke/stringtone"
	"github.com/almerlucke/stringtone/batch"
	"github.com/almerlucke/stringtone/config"
	"github.com/almerlucke/stringtone/metrics"
	"github.com/almerlucke/stringtone/transcode"
)

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	table, err := stringtone.TableByName(cfg.Table)
	if err != nil {
		logger.Fatal("note table", zap.Error(err))
	}

	voice, err := stringtone.VoiceByName(cfg.Voice)
	if err != nil {
		logger.Fatal("voice", zap.Error(err))
	}

	enc, err := transcode.ByName(cfg.Format, transcode.Settings{
		FFmpegPath: cfg.FFmpegPath,
		Bitrate:    cfg.Bitrate,
		SampleRate: cfg.SampleRate,
		Timeout:    cfg.EncoderTimeout,
	})
	if err != nil {
		logger.Fatal("encoder", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	driver := batch.New(cfg, table, voice, enc, logger, metrics.New())

	report, err := driver.Run(ctx)
	if err != nil {
		logger.Fatal("generation failed", zap.Error(err))
	}

	report.Print(os.Stdout)
}

func newLogger(quiet bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if quiet {
		zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	} else {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return zc.Build()
}
