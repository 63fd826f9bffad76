// Package biometric compares fixed-length face descriptor vectors by
// Euclidean distance. Descriptors are produced by an external capture
// pipeline and treated here as opaque 128-component vectors.
package biometric

import (
	"math"

	dErrors "rollcall/pkg/domain-errors"
)

// Dimension is the system-wide descriptor dimensionality. Vectors of any
// other length are rejected at the boundary and never match.
const Dimension = 128

// DefaultThreshold is the maximum descriptor distance that still counts as
// the same person. Tuned empirically for 128-dimensional descriptors.
const DefaultThreshold = 0.65

// MaxDistance is returned when two vectors cannot be compared (absent or
// mismatched lengths). It exceeds every threshold, so such pairs never match
// and the caller's control flow stays uniform.
var MaxDistance = math.Inf(1)

// Descriptor is a fixed-length numeric biometric descriptor vector.
type Descriptor []float64

// ParseDescriptor validates a wire-format descriptor: exactly Dimension
// components, rejected (not coerced) otherwise.
func ParseDescriptor(values []float64) (Descriptor, error) {
	if len(values) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "faceDescriptor is required")
	}
	if len(values) != Dimension {
		return nil, dErrors.Newf(dErrors.CodeValidation,
			"faceDescriptor must have exactly %d components, got %d", Dimension, len(values))
	}
	return Descriptor(values), nil
}

// Distance returns the Euclidean (L2) distance between two descriptors.
// Absent or length-mismatched vectors yield MaxDistance rather than an error.
func Distance(a, b Descriptor) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return MaxDistance
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Matcher decides whether two descriptors belong to the same person.
type Matcher struct {
	threshold float64
}

// NewMatcher builds a matcher with the given distance threshold; non-positive
// values fall back to DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured distance threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Compare returns the distance between reference and candidate along with
// the accept decision (distance <= threshold).
func (m *Matcher) Compare(reference, candidate Descriptor) (float64, bool) {
	d := Distance(reference, candidate)
	return d, d <= m.threshold
}

// Matches reports whether candidate is close enough to reference.
func (m *Matcher) Matches(reference, candidate Descriptor) bool {
	_, ok := m.Compare(reference, candidate)
	return ok
}
