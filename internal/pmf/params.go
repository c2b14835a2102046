package pmf

import "fmt"

// Params configures the Progressive Morphological Filter, following
// Zhang et al. 2003.
type Params struct {
	CellSize        float64 // c, meters per grid cell
	Slope           float64 // s, in (0,1]
	MaxWindowSize   float64 // W_max, meters
	InitialDistance float64 // d0, meters
	MaxDistance     float64 // d_max, meters
}

// DefaultParams matches the reference thresholds from Zhang et al. 2003.
func DefaultParams() Params {
	return Params{
		CellSize:        1.0,
		Slope:           0.15,
		MaxWindowSize:   33,
		InitialDistance: 0.5,
		MaxDistance:     3.0,
	}
}

// Validate rejects parameter combinations the algorithm cannot run with.
func (p Params) Validate() error {
	if p.CellSize <= 0 {
		return fmt.Errorf("%w: cell_size must be positive, got %g", ErrInvalidParam, p.CellSize)
	}
	if p.Slope <= 0 || p.Slope > 1 {
		return fmt.Errorf("%w: slope must be in (0,1], got %g", ErrInvalidParam, p.Slope)
	}
	if p.MaxWindowSize <= 0 {
		return fmt.Errorf("%w: max_window_size must be positive, got %g", ErrInvalidParam, p.MaxWindowSize)
	}
	if p.InitialDistance < 0 {
		return fmt.Errorf("%w: initial_distance must be non-negative, got %g", ErrInvalidParam, p.InitialDistance)
	}
	if p.MaxDistance < p.InitialDistance {
		return fmt.Errorf("%w: max_distance must be >= initial_distance", ErrInvalidParam)
	}
	return nil
}
