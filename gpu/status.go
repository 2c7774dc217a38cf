package gpu

import "github.com/cockroachdb/errors"

// Status classifies the outcome of acquire and present operations.
type Status int

const (
	StatusOK Status = iota
	// StatusSuboptimal means the operation succeeded but the swapchain no
	// longer matches the surface exactly.
	StatusSuboptimal
	// StatusOutOfDate means the swapchain can no longer be used with the
	// surface and must be recreated.
	StatusOutOfDate
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusSuboptimal:
		return "Suboptimal"
	case StatusOutOfDate:
		return "OutOfDate"
	case StatusFatal:
		return "Fatal"
	}
	return "Unknown"
}

// Stale reports whether the swapchain should be recreated.
func (s Status) Stale() bool {
	return s == StatusSuboptimal || s == StatusOutOfDate
}

var (
	// ErrFatal marks device failures the engine cannot recover from.
	ErrFatal = errors.New("fatal device error")
	// ErrNoSupportedFormat is returned when no candidate format offers the
	// requested features.
	ErrNoSupportedFormat = errors.New("failed to find supported format")
)
