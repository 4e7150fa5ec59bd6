package backend

// Backend receives interleaved 16-bit PCM and owns the output file.
type Backend interface {
	Close() error
	Write([]int16) error
}
