package intent

import (
	"fmt"
	"math"
	"strings"
)

// WeightFunc returns the recency weight of the scored turn at position
// (0-based, oldest first) out of total scored turns. Weights must be
// positive and non-decreasing in position.
type WeightFunc func(position, total int) float64

// Linear weighs the n-th scored turn n.
func Linear(position, _ int) float64 {
	return float64(position + 1)
}

// Exponential weighs each scored turn base times the one before it, with the
// most recent turn weighing 1. Bases below 1 are treated as 1.
func Exponential(base float64) WeightFunc {
	if base < 1 || math.IsNaN(base) {
		base = 1
	}
	return func(position, total int) float64 {
		return math.Pow(base, -float64(total-1-position))
	}
}

// DefaultWeightBase is the base of the default Exponential weighting. With a
// base of 3 all earlier turns together weigh less than half the last one.
const DefaultWeightBase = 3

// ParseWeighting resolves a weighting name as used in configuration.
func ParseWeighting(name string, base float64) (WeightFunc, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exponential":
		if base == 0 {
			base = DefaultWeightBase
		}
		return Exponential(base), nil
	case "linear":
		return Linear, nil
	}
	return nil, fmt.Errorf("unknown weighting %q (want linear or exponential)", name)
}
