package interp

// Sample is one scattered input observation for either interpolator.
type Sample struct {
	X, Y, Z float64
}
