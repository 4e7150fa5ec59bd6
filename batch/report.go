package batch

import (
	"fmt"
	"io"
)

// Report lists the files a run left in the output directory.
type Report struct {
	RunID           string
	OutputDir       string
	Compressed      []string
	Uncompressed    []string
	TotalBytes      int64
	EncoderDisabled bool
}

// Files returns all kept file names, compressed first.
func (r *Report) Files() []string {
	files := make([]string, 0, len(r.Compressed)+len(r.Uncompressed))
	files = append(files, r.Compressed...)
	return append(files, r.Uncompressed...)
}

// Print writes a human readable summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "Done: %d files in %s (%.1f MB)\n", len(r.Files()), r.OutputDir, float64(r.TotalBytes)/1024/1024)

	if len(r.Compressed) > 0 {
		fmt.Fprintln(w, "\nCompressed:")
		for _, f := range r.Compressed {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	if len(r.Uncompressed) > 0 {
		fmt.Fprintln(w, "\nUncompressed:")
		for _, f := range r.Uncompressed {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	if r.EncoderDisabled {
		fmt.Fprintln(w, "\nCompression was disabled after an encoder failure; WAV files were kept.")
		fmt.Fprintln(w, "Install ffmpeg (macOS: brew install ffmpeg, Debian/Ubuntu: apt install ffmpeg) and run again.")
	}
}
