package internal

import (
	"bytes"
	"fmt"
	"io"
)

// ErrMarkerNotFound is returned when the scan covered the whole input without
// encountering the marker bytes. It matches io.ErrUnexpectedEOF, so callers
// can tell "no payload embedded" apart from a real I/O failure.
var ErrMarkerNotFound = fmt.Errorf("reached beginning of input without finding marker bytes: %w", io.ErrUnexpectedEOF)

// Locate scans the input backward from end-of-file in steps of windowSize and
// returns the absolute offset and size of the trailing payload: everything
// between the end of the marker and end-of-file.
//
// The first read covers the last bufferSize bytes of the input; every further
// read starts one windowSize earlier, so consecutive reads overlap by
// bufferSize-windowSize bytes and a marker straddling two reads is still
// found as long as the overlap can hold all but one of its bytes. Within one
// buffer the lowest-offset occurrence wins, which is the occurrence furthest
// from end-of-file in that buffer; the marker must not reoccur within the
// trailing region for the result to be well-defined.
//
// Callers must ensure that the marker is non-empty and no longer than
// windowSize, and that bufferSize >= windowSize+len(marker)-1. The position
// of the read cursor after Locate returns is unspecified.
func Locate(in io.ReadSeeker, marker []byte, windowSize, bufferSize int64) (offset, size int64, err error) {
	end, err := in.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, 0, err
	}

	buf := make([]byte, bufferSize)
	for i := int64(1); ; i++ {
		pos := end - (i-1)*windowSize - bufferSize
		last := pos <= 0
		if pos < 0 {
			// Seeking before the start of the input is rejected by
			// os.File and bytes.Reader alike; clamp the final read
			// instead and let the search cover the remaining head.
			pos = 0
		}
		if _, err := in.Seek(pos, io.SeekStart); err != nil {
			return 0, 0, err
		}
		n, err := io.ReadFull(in, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = nil // short reads are handled below
		}
		if err != nil {
			return 0, 0, err
		}
		if int64(n) < windowSize {
			return 0, 0, ErrMarkerNotFound
		}

		if idx := bytes.Index(buf[:n], marker); idx >= 0 {
			offset = pos + int64(idx) + int64(len(marker))
			return offset, end - offset, nil
		}
		if last {
			return 0, 0, ErrMarkerNotFound
		}
	}
}

// Extract locates the trailing payload and reads it into a freshly allocated
// buffer sized exactly to the payload. The read is independent of the scan
// buffer, so a stream truncated between locating and reading surfaces as an
// I/O error rather than a silently short payload.
func Extract(in io.ReadSeeker, marker []byte, windowSize, bufferSize int64) ([]byte, error) {
	offset, size, err := Locate(in, marker, windowSize, bufferSize)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, size)
	if _, err := in.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(in, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
