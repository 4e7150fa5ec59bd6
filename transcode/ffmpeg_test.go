package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeFFmpeg writes an executable shell script standing in for ffmpeg.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func srcFile(t *testing.T) (src, dst string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, "A.wav")
	if err := os.WriteFile(src, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	return src, filepath.Join(dir, "A.mp3")
}

func TestFFmpegArgs(t *testing.T) {
	f := &FFmpeg{}
	got := strings.Join(f.args("in.wav", "out.mp3"), " ")
	want := "-nostdin -hide_banner -loglevel error -i in.wav -acodec libmp3lame -ab 128k -ar 44100 -y out.mp3"
	if got != want {
		t.Errorf("args =\n  %s\nwant\n  %s", got, want)
	}
}

func TestFFmpegSuccess(t *testing.T) {
	// Last argument is the output path
	bin := fakeFFmpeg(t, `for a; do out="$a"; done; printf 'ID3' > "$out"`)
	src, dst := srcFile(t)

	f := &FFmpeg{Path: bin, Timeout: 5 * time.Second}
	if err := f.Encode(context.Background(), src, dst); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ID3" {
		t.Errorf("output = %q, want ID3", data)
	}
}

func TestFFmpegNonZeroExit(t *testing.T) {
	bin := fakeFFmpeg(t, `for a; do out="$a"; done; printf 'partial' > "$out"; echo "Unknown encoder 'libmp3lame'" >&2; exit 1`)
	src, dst := srcFile(t)

	f := &FFmpeg{Path: bin, Timeout: 5 * time.Second}
	err := f.Encode(context.Background(), src, dst)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.Code)
	}
	if !strings.Contains(exitErr.Error(), "libmp3lame") {
		t.Errorf("error %q should carry stderr", exitErr.Error())
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("partial output should be removed")
	}
}

func TestFFmpegTimeout(t *testing.T) {
	bin := fakeFFmpeg(t, `exec sleep 5`)
	src, dst := srcFile(t)

	f := &FFmpeg{Path: bin, Timeout: 100 * time.Millisecond}
	start := time.Now()
	err := f.Encode(context.Background(), src, dst)
	if !errors.Is(err, ErrEncoderTimeout) {
		t.Fatalf("err = %v, want ErrEncoderTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Encode took %v, timeout not enforced", elapsed)
	}
}

func TestFFmpegMissing(t *testing.T) {
	src, dst := srcFile(t)

	for _, path := range []string{
		filepath.Join(t.TempDir(), "no-such-ffmpeg"),
		"stringtone-no-such-ffmpeg-binary",
	} {
		f := &FFmpeg{Path: path}
		err := f.Encode(context.Background(), src, dst)
		if !errors.Is(err, ErrEncoderNotFound) {
			t.Errorf("path %q: err = %v, want ErrEncoderNotFound", path, err)
		}
	}
}

func TestByName(t *testing.T) {
	s := Settings{FFmpegPath: "/opt/ffmpeg", Bitrate: 96000, SampleRate: 44100, Timeout: time.Second}

	enc, err := ByName("mp3", s)
	if err != nil {
		t.Fatal(err)
	}
	ff, ok := enc.(*FFmpeg)
	if !ok || ff.Path != "/opt/ffmpeg" || ff.Bitrate != 96000 || enc.Ext() != ".mp3" {
		t.Errorf("ByName(mp3) = %#v", enc)
	}

	enc, err = ByName("opus", s)
	if err != nil || enc.Ext() != ".opus" {
		t.Errorf("ByName(opus) = %v, %v", enc, err)
	}

	enc, err = ByName("none", s)
	if err != nil || enc != nil {
		t.Errorf("ByName(none) = %v, %v; want nil, nil", enc, err)
	}

	if _, err := ByName("flac", s); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ByName(flac) err = %v, want ErrUnknownFormat", err)
	}
}
