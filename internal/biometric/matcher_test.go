package biometric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rollcall/pkg/domain-errors"
)

func descriptorWithOffset(offset float64) Descriptor {
	d := make(Descriptor, Dimension)
	for i := range d {
		d[i] = offset
	}
	return d
}

func TestDistance(t *testing.T) {
	t.Run("identical vectors have zero distance", func(t *testing.T) {
		d := descriptorWithOffset(0.5)
		assert.Zero(t, Distance(d, d))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := descriptorWithOffset(0.1)
		b := descriptorWithOffset(0.3)
		assert.Equal(t, Distance(a, b), Distance(b, a))
	})

	t.Run("known distance", func(t *testing.T) {
		// Per-component difference of 0.05 over 128 components:
		// sqrt(128 * 0.05^2) ~= 0.5657.
		a := descriptorWithOffset(0.0)
		b := descriptorWithOffset(0.05)
		assert.InDelta(t, math.Sqrt(128*0.05*0.05), Distance(a, b), 1e-9)
	})

	t.Run("empty vectors never compare", func(t *testing.T) {
		assert.Equal(t, MaxDistance, Distance(nil, descriptorWithOffset(0)))
		assert.Equal(t, MaxDistance, Distance(descriptorWithOffset(0), nil))
		assert.Equal(t, MaxDistance, Distance(Descriptor{}, Descriptor{}))
	})

	t.Run("length mismatch yields max distance", func(t *testing.T) {
		a := descriptorWithOffset(0)
		b := make(Descriptor, Dimension-1)
		assert.Equal(t, MaxDistance, Distance(a, b))
	})
}

func TestMatcher(t *testing.T) {
	m := NewMatcher(DefaultThreshold)

	t.Run("matches identical descriptors", func(t *testing.T) {
		d := descriptorWithOffset(0.2)
		assert.True(t, m.Matches(d, d))
	})

	t.Run("accepts distance exactly at threshold", func(t *testing.T) {
		// 128 * x^2 = 0.65^2  =>  x = 0.65 / sqrt(128)
		x := DefaultThreshold / math.Sqrt(128)
		a := descriptorWithOffset(0.0)
		b := descriptorWithOffset(x)
		dist, ok := m.Compare(a, b)
		require.InDelta(t, DefaultThreshold, dist, 1e-9)
		assert.True(t, ok)
	})

	t.Run("rejects distance above threshold", func(t *testing.T) {
		a := descriptorWithOffset(0.0)
		b := descriptorWithOffset(0.08) // distance ~0.905
		dist, ok := m.Compare(a, b)
		assert.Greater(t, dist, DefaultThreshold)
		assert.False(t, ok)
	})

	t.Run("never matches mismatched lengths", func(t *testing.T) {
		a := descriptorWithOffset(0)
		b := make(Descriptor, 64)
		assert.False(t, m.Matches(a, b))
		assert.False(t, m.Matches(nil, a))
		assert.False(t, m.Matches(a, Descriptor{}))
	})

	t.Run("non-positive threshold falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultThreshold, NewMatcher(0).Threshold())
		assert.Equal(t, DefaultThreshold, NewMatcher(-1).Threshold())
	})
}

func TestParseDescriptor(t *testing.T) {
	t.Run("accepts exact dimension", func(t *testing.T) {
		d, err := ParseDescriptor(make([]float64, Dimension))
		require.NoError(t, err)
		assert.Len(t, d, Dimension)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseDescriptor(nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseDescriptor(make([]float64, 64))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
