package kernel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"waterline/internal/pkg/errs"
)

const (
	// EarthRadiusKm is the mean radius used by the haversine formula.
	EarthRadiusKm = 6371.0
	// AverageSpeedKmh is the fixed delivery speed assumed by EstimateArrival.
	AverageSpeedKmh = 30.0
)

// Distance returns the great-circle distance between a and b in kilometers.
// It is symmetric and Distance(a, a) is exactly 0.
func Distance(a, b Coordinates) (float64, error) {
	if err := errors.Join(a.Validate(), b.Validate()); err != nil {
		return 0, err
	}

	lat1 := toRadians(a.latitude)
	lat2 := toRadians(b.latitude)
	dLat := toRadians(b.latitude - a.latitude)
	dLng := toRadians(b.longitude - a.longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c, nil
}

// EstimateArrival adds distanceKm / AverageSpeedKmh hours to reference.
func EstimateArrival(distanceKm float64, reference time.Time) (time.Time, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return time.Time{}, errs.NewValueIsInvalidErrorWithCause("distance", fmt.Errorf("%v is not finite", distanceKm))
	}
	if distanceKm < 0 {
		return time.Time{}, errs.NewValueIsOutOfRangeError("distance", distanceKm, 0, math.MaxFloat64)
	}

	hours := distanceKm / AverageSpeedKmh
	return reference.Add(time.Duration(hours * float64(time.Hour))), nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
