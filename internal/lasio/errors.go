package lasio

import "errors"

// Sentinel errors identify stable failure kinds that the worker boundary
// (internal/worker) maps to JobResult.error.code. Wrap with fmt.Errorf's
// %w verb so callers can still recover the sentinel via errors.Is.
var (
	ErrNotLAS             = errors.New("lasio: file signature is not LASF")
	ErrUnsupportedVersion = errors.New("lasio: unsupported LAS version")
	ErrUnsupportedFormat  = errors.New("lasio: unsupported point data format")
	ErrTruncated          = errors.New("lasio: file is truncated")
	ErrCodecUnavailable   = errors.New("lasio: LAZ decompression codec not available")
	ErrInvalidHeader      = errors.New("lasio: invalid header field")
)
