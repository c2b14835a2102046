// Package lasvalidate performs cheap pre-flight checks on a LAS/LAZ
// file, producing a list of typed, stably-coded issues rather than a Go
// error for anything a caller can reasonably expect to see in the
// wild (missing file, bad extension, unsupported version, and so on).
// A Go error return is reserved for genuinely exceptional conditions:
// an unreadable filesystem, or a file claiming to be LAS that fails to
// parse for a reason this codec has no stable code for.
package lasvalidate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lidarforest/processing/internal/lasio"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusWarning Status = "warning"
)

// Stable issue codes. Tests key off these strings directly.
const (
	CodeFileNotFound           = "FILE_NOT_FOUND"
	CodeInvalidExtension       = "INVALID_EXTENSION"
	CodeFileTooLarge           = "FILE_TOO_LARGE"
	CodeUnsupportedVersion     = "UNSUPPORTED_VERSION"
	CodeUnsupportedPointFormat = "UNSUPPORTED_POINT_FORMAT"
	CodeInsufficientPoints     = "INSUFFICIENT_POINTS"
	CodeMissingCRS             = "MISSING_CRS"
	CodeInvertedBounds         = "INVERTED_BOUNDS"
	CodeZeroScale              = "ZERO_SCALE"
	// CodeLowPointDensity is emitted only when Options.CheckPointDensity
	// is set and the header's 2-D point density falls below
	// Options.MinPointDensity. Always info severity: density alone never
	// fails validation.
	CodeLowPointDensity = "LOW_POINT_DENSITY"
)

type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

type ValidationResult struct {
	Status Status  `json:"status"`
	Issues []Issue `json:"issues"`
}

// IsValid reports whether no issue has error severity.
func (r ValidationResult) IsValid() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}

func statusFor(issues []Issue) Status {
	sawWarning := false
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return StatusInvalid
		}
		if issue.Severity == SeverityWarning {
			sawWarning = true
		}
	}
	if sawWarning {
		return StatusWarning
	}
	return StatusValid
}

type Options struct {
	RequireCRS        bool
	CheckPointDensity bool

	// MaxFileSizeBytes is the configured max; 0 disables the check.
	MaxFileSizeBytes int64
	// MinPoints is the configured minimum point count; 0 falls back to
	// the default of 100.
	MinPoints uint64
	// MinPointDensity is the minimum acceptable points per square meter
	// when CheckPointDensity is set; 0 falls back to a default of 1.0.
	MinPointDensity float64
}

// DefaultOptions returns the conservative defaults: no CRS requirement,
// no density check, a 5 GiB size cap, and a 100-point floor.
func DefaultOptions() Options {
	return Options{MaxFileSizeBytes: 5 << 30, MinPoints: 100, MinPointDensity: 1.0}
}

var validExtensions = map[string]bool{".las": true, ".laz": true}

// ErrUnexpected wraps an I/O failure encountered during validation that
// has no stable issue code of its own: an unreadable filesystem, or a
// header read failing for a reason lasio has no issue mapping for.
var ErrUnexpected = errors.New("lasvalidate: unexpected failure")

// Validate runs every configured check and returns the full issue list.
func Validate(path string, opts Options) (ValidationResult, error) {
	issues, err := collectIssues(path, opts)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{Status: statusFor(issues), Issues: issues}, nil
}

// QuickCheck runs the same checks as Validate but stops at the first
// error-severity issue, returning false without computing the rest.
func QuickCheck(path string, opts Options) (bool, error) {
	issues, err := collectIssuesShortCircuit(path, opts)
	if err != nil {
		return false, err
	}
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return false, nil
		}
	}
	return true, nil
}

func collectIssues(path string, opts Options) ([]Issue, error) {
	return runChecks(path, opts, false)
}

func collectIssuesShortCircuit(path string, opts Options) ([]Issue, error) {
	return runChecks(path, opts, true)
}

func runChecks(path string, opts Options, shortCircuit bool) ([]Issue, error) {
	var issues []Issue
	hasError := func() bool {
		for _, issue := range issues {
			if issue.Severity == SeverityError {
				return true
			}
		}
		return false
	}
	stop := func() bool { return shortCircuit && hasError() }

	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			issues = append(issues, Issue{Code: CodeFileNotFound, Severity: SeverityError,
				Message: fmt.Sprintf("no such file: %s", path)})
			return issues, nil
		}
		return nil, fmt.Errorf("%w: stat %q: %w", ErrUnexpected, path, statErr)
	}
	if stop() {
		return issues, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !validExtensions[ext] {
		issues = append(issues, Issue{Code: CodeInvalidExtension, Severity: SeverityError,
			Message: fmt.Sprintf("unrecognized extension %q, expected .las or .laz", ext)})
	}
	if stop() {
		return issues, nil
	}

	maxSize := opts.MaxFileSizeBytes
	if maxSize > 0 && info.Size() > maxSize {
		issues = append(issues, Issue{Code: CodeFileTooLarge, Severity: SeverityError,
			Message: fmt.Sprintf("file size %d bytes exceeds limit %d", info.Size(), maxSize)})
	}
	if stop() {
		return issues, nil
	}

	h, err := lasio.ReadHeader(path)
	switch {
	case errors.Is(err, lasio.ErrUnsupportedVersion):
		issues = append(issues, Issue{Code: CodeUnsupportedVersion, Severity: SeverityError, Message: err.Error()})
		return issues, nil
	case errors.Is(err, lasio.ErrUnsupportedFormat), errors.Is(err, lasio.ErrCodecUnavailable):
		issues = append(issues, Issue{Code: CodeUnsupportedPointFormat, Severity: SeverityError, Message: err.Error()})
		return issues, nil
	case err != nil:
		if hasError() {
			return issues, nil
		}
		return nil, fmt.Errorf("%w: reading header: %w", ErrUnexpected, err)
	}

	minPoints := opts.MinPoints
	if minPoints == 0 {
		minPoints = 100
	}
	if h.PointCount < minPoints {
		issues = append(issues, Issue{Code: CodeInsufficientPoints, Severity: SeverityError,
			Message: fmt.Sprintf("%d points, require at least %d", h.PointCount, minPoints)})
	}
	if stop() {
		return issues, nil
	}

	if h.CRS == "" {
		sev := SeverityWarning
		if opts.RequireCRS {
			sev = SeverityError
		}
		issues = append(issues, Issue{Code: CodeMissingCRS, Severity: sev, Message: "no coordinate reference system VLR present"})
	}
	if stop() {
		return issues, nil
	}

	if h.MinX > h.MaxX || h.MinY > h.MaxY || h.MinZ > h.MaxZ {
		issues = append(issues, Issue{Code: CodeInvertedBounds, Severity: SeverityError,
			Message: "header reports a minimum exceeding the maximum on at least one axis"})
	}
	if stop() {
		return issues, nil
	}

	if h.ScaleX <= 0 || h.ScaleY <= 0 || h.ScaleZ <= 0 {
		issues = append(issues, Issue{Code: CodeZeroScale, Severity: SeverityError,
			Message: "scale factor must be positive on every axis"})
	}
	if stop() {
		return issues, nil
	}

	if opts.CheckPointDensity {
		width := h.MaxX - h.MinX
		height := h.MaxY - h.MinY
		if width > 0 && height > 0 {
			density := float64(h.PointCount) / (width * height)
			minDensity := opts.MinPointDensity
			if minDensity == 0 {
				minDensity = 1.0
			}
			if density < minDensity {
				issues = append(issues, Issue{Code: CodeLowPointDensity, Severity: SeverityInfo,
					Message: fmt.Sprintf("point density %.3f pts/m^2 below %.3f", density, minDensity)})
			}
		}
	}

	return issues, nil
}
