package kernel_test

import (
	"math"
	"testing"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinates(t *testing.T) {
	t.Run("should accept boundary values", func(t *testing.T) {
		for _, tc := range [][2]float64{
			{kernel.MinLatitude, kernel.MinLongitude},
			{kernel.MaxLatitude, kernel.MaxLongitude},
			{0, 0},
		} {
			c, err := kernel.NewCoordinates(tc[0], tc[1])

			require.NoError(t, err)
			assert.InDelta(t, tc[0], c.Latitude(), 0)
			assert.InDelta(t, tc[1], c.Longitude(), 0)
			assert.NoError(t, c.Validate())
		}
	})

	t.Run("should reject out of range values", func(t *testing.T) {
		tests := []struct {
			name     string
			lat, lng float64
		}{
			{"latitude above 90", 90.0001, 0},
			{"latitude below -90", -91, 0},
			{"longitude above 180", 0, 180.5},
			{"longitude below -180", 0, -200},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := kernel.NewCoordinates(tt.lat, tt.lng)

				require.Error(t, err)
				assert.ErrorIs(t, err, kernel.ErrInvalidCoordinates)
				assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
			})
		}
	})

	t.Run("should reject non-finite values", func(t *testing.T) {
		_, err := kernel.NewCoordinates(math.NaN(), math.Inf(1))

		assert.ErrorIs(t, err, kernel.ErrInvalidCoordinates)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.ErrorContains(t, err, "latitude")
		assert.ErrorContains(t, err, "longitude")
	})
}

func TestCoordinates_ZeroValue(t *testing.T) {
	var c kernel.Coordinates

	err := c.Validate()

	assert.ErrorIs(t, err, kernel.ErrInvalidCoordinates)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestCoordinates_IsEqual(t *testing.T) {
	a, _ := kernel.NewCoordinates(40.7128, -74.0060)
	b, _ := kernel.NewCoordinates(40.7128, -74.0060)
	c, _ := kernel.NewCoordinates(40.7505, -73.9934)

	equal, err := a.IsEqual(b)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = a.IsEqual(c)
	require.NoError(t, err)
	assert.False(t, equal)

	_, err = a.IsEqual(kernel.Coordinates{})
	assert.ErrorIs(t, err, kernel.ErrCoordinatesAreNotConstructed)
}

func TestCoordinates_String(t *testing.T) {
	c, _ := kernel.NewCoordinates(40.7128, -74.006)

	assert.Equal(t, "(40.712800,-74.006000)", c.String())
}
