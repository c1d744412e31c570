// Package catconf reads configuration that was concatenated onto the end of
// an already-compiled binary, giving a single-file executable with runtime
// configuration:
//
//	cat target/binary <(echo -n "CATCONF") conf > confedbinary
//
// The configuration is recovered by scanning the file backward from its end
// for the marker bytes ("CATCONF" above) and returning everything that
// follows them. The returned bytes are raw; decoding them further (text,
// JSON, decompression, ...) is up to the caller.
package catconf

import (
	"io"
	"os"
	"path/filepath"

	"github.com/r-a303931/catconf/internal"
)

// DefaultWindowSize is the scan granularity used unless WithWindowSize is
// called. The scan buffer covers two windows unless overridden.
const DefaultWindowSize = 2048

// File groups the stream methods needed to access a payload in place.
type File interface {
	io.ReadSeeker
	io.ReaderAt
}

// Options configures a payload scan. Options values are immutable: every
// setter returns a modified copy, so a configured value can be shared and
// reused freely across goroutines. Construct with NewOptions; the zero value
// has no marker and is rejected by every entry point.
type Options struct {
	marker     []byte
	windowSize int64
	bufferSize int64
	bufferSet  bool
}

// NewOptions returns scan options for the given marker bytes, with a window
// size of DefaultWindowSize.
func NewOptions(marker []byte) Options {
	return Options{
		marker:     marker,
		windowSize: DefaultWindowSize,
	}
}

// WithMarker returns a copy of o searching for the given marker bytes.
func (o Options) WithMarker(marker []byte) Options {
	o.marker = marker
	return o
}

// WithWindowSize returns a copy of o using the given window size in bytes.
// The window size controls how much further from end-of-file each read of
// the backward scan starts, and must not be smaller than the marker.
func (o Options) WithWindowSize(size int) Options {
	o.windowSize = int64(size)
	return o
}

// WithBufferSize returns a copy of o using an explicit scan buffer size in
// bytes instead of the default two windows. The buffer must be at least as
// large as the window and must exceed it by at least len(marker)-1 bytes, so
// a marker straddling two consecutive reads still fits into one buffer.
func (o Options) WithBufferSize(size int) Options {
	o.bufferSize = int64(size)
	o.bufferSet = true
	return o
}

func (o Options) bufSize() int64 {
	if o.bufferSet {
		return o.bufferSize
	}
	return 2 * o.windowSize
}

func (o Options) validate() error {
	if len(o.marker) == 0 {
		return newOptionsError("marker must not be empty")
	}
	if o.windowSize <= 0 {
		return newOptionsError("window size must be positive")
	}
	if int64(len(o.marker)) > o.windowSize {
		return newOptionsError("marker (%d bytes) exceeds the window size (%d bytes)", len(o.marker), o.windowSize)
	}
	if o.bufferSet && o.bufferSize <= 0 {
		return newOptionsError("buffer size must be positive")
	}
	if o.bufSize() < o.windowSize {
		return newOptionsError("buffer (%d bytes) is smaller than the window (%d bytes)", o.bufSize(), o.windowSize)
	}
	if overlap := o.bufSize() - o.windowSize; overlap < int64(len(o.marker))-1 {
		return newOptionsError("buffer (%d bytes) overlaps consecutive reads by %d bytes, a %d-byte marker needs at least %d", o.bufSize(), overlap, len(o.marker), len(o.marker)-1)
	}
	return nil
}

// Read scans the input backward from its end and returns the payload
// trailing the marker. If the whole input is scanned without a match,
// ErrMarkerNotFound is returned; seek and read failures are returned
// verbatim. The marker must not reoccur within the trailing region,
// otherwise an occurrence further from end-of-file may win.
//
// Read moves the input's read cursor. A stream handle must not be shared
// concurrently during a Read call; calls on distinct handles are
// independent.
func (o Options) Read(in io.ReadSeeker) ([]byte, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	return internal.Extract(in, o.marker, o.windowSize, o.bufSize())
}

// Payload locates the trailing payload and returns a reader over it without
// copying it into memory, which suits payloads too large to slurp. The
// returned reader stays valid for as long as in is open.
func (o Options) Payload(in File) (*io.SectionReader, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	offset, size, err := internal.Locate(in, o.marker, o.windowSize, o.bufSize())
	if err != nil {
		return nil, err
	}
	return io.NewSectionReader(in, offset, size), nil
}

// ReadFromExe reads the payload trailing the marker from the currently
// running executable. See Read.
func (o Options) ReadFromExe() ([]byte, error) {
	exe, err := openCurrentExe()
	if err != nil {
		return nil, err
	}
	defer exe.Close()
	return o.Read(exe)
}

// Read returns the payload trailing the marker in the given input, without
// going through the options builder. See Options.Read.
func Read(in io.ReadSeeker, marker []byte, windowSize int) ([]byte, error) {
	return NewOptions(marker).WithWindowSize(windowSize).Read(in)
}

// ReadFromExe returns the payload trailing the marker in the currently
// running executable, without going through the options builder.
func ReadFromExe(marker []byte, windowSize int) ([]byte, error) {
	return NewOptions(marker).WithWindowSize(windowSize).ReadFromExe()
}

// openCurrentExe opens the running executable read-only.
func openCurrentExe() (*os.File, error) {
	path, err := os.Executable()
	if err != nil {
		return nil, err
	}
	if p, err := filepath.EvalSymlinks(path); err == nil {
		// EvalSymlinks fails on Windows if the executable is located in the
		// remote SYSVOL volume from the domain controller.
		// It is therefore optional, any errors are ignored.
		path = p
	}
	return os.Open(path)
}
