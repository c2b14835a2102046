package pmf

import "errors"

var (
	// ErrEmptyCloud is returned when every cell of the minimum-elevation
	// surface is unobserved, i.e. the point cloud has no points at all
	// within its own planar bounds.
	ErrEmptyCloud = errors.New("pmf: empty point cloud")
	// ErrInvalidParam is returned for parameters outside their valid
	// domain (cell_size <= 0, slope outside (0,1], negative distances).
	ErrInvalidParam = errors.New("pmf: invalid parameter")
)
