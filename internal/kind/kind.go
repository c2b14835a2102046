// Package kind centralizes the mapping from a Go error's sentinel
// identity to the stable JobResult.error.code strings the worker
// surfaces externally. It is the single place new algorithmic errors
// need to be registered to participate in job-failure reporting.
package kind

import (
	"errors"

	"github.com/lidarforest/processing/internal/lasio"
	"github.com/lidarforest/processing/internal/lasvalidate"
	"github.com/lidarforest/processing/internal/normalize"
	"github.com/lidarforest/processing/internal/pmf"
	"github.com/lidarforest/processing/internal/trees"
)

// Stable error codes, matching the error taxonomy's job-failure codes.
// DegenerateTriangulation is not reachable through Code: a degenerate
// TIN recovers locally (internal/interp falls back to IDW) and is
// reported as a result note, never a job failure.
const (
	ReadFailed              = "READ_FAILED"
	WriteFailed             = "WRITE_FAILED"
	CodecUnavailable        = "CODEC_UNAVAILABLE"
	InvalidParam            = "INVALID_PARAM"
	EmptyCloud              = "EMPTY_CLOUD"
	DegenerateTriangulation = "DEGENERATE_TRIANGULATION"
	NoGroundPoints          = "NO_GROUND_POINTS"
	JobTimeout              = "JOB_TIMEOUT"
	UnknownJobType          = "UNKNOWN_JOB_TYPE"
	BrokerUnavailable       = "BROKER_UNAVAILABLE"
	Internal                = "INTERNAL"
)

// mapping pairs a sentinel error with its stable code; entries are
// tried in order, so a more specific sentinel should precede a more
// general one.
var mapping = []struct {
	err  error
	code string
}{
	{lasio.ErrCodecUnavailable, CodecUnavailable},
	{lasio.ErrNotLAS, ReadFailed},
	{lasio.ErrUnsupportedVersion, ReadFailed},
	{lasio.ErrUnsupportedFormat, ReadFailed},
	{lasio.ErrTruncated, ReadFailed},
	{lasio.ErrInvalidHeader, ReadFailed},
	{pmf.ErrEmptyCloud, EmptyCloud},
	{pmf.ErrInvalidParam, InvalidParam},
	{trees.ErrInvalidParam, InvalidParam},
	{normalize.ErrNoGroundPoints, NoGroundPoints},
	{lasvalidate.ErrUnexpected, ReadFailed},
}

// CodedError carries an already-known stable code for call sites that
// need to report a taxonomy code without a dedicated sentinel — e.g. a
// full_pipeline job aborting because an upstream ValidationResult came
// back invalid, where the code to report is whichever issue code
// lasvalidate already assigned.
type CodedError struct {
	ErrCode string
	Msg     string
}

func (e *CodedError) Error() string { return e.Msg }

// NewCodedError builds a CodedError that Code will recover exactly,
// bypassing sentinel matching.
func NewCodedError(code, msg string) error {
	return &CodedError{ErrCode: code, Msg: msg}
}

// Code returns the stable error code for err, walking its %w chain
// against the known sentinels, and falling back to Internal if
// nothing registered matches. lasvalidate Issues reach here only when
// a caller wraps an issue's code in a CodedError (full_pipeline does
// this for invalid input); otherwise they stay typed Issues on a
// ValidationResult, not Go errors.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.ErrCode
	}
	for _, m := range mapping {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return Internal
}
