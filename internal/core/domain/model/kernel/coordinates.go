package kernel

import (
	"errors"
	"fmt"
	"math"

	"waterline/internal/pkg/errs"
	"waterline/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

var (
	// ErrInvalidCoordinates is joined into every error returned for a bad latitude/longitude pair.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrCoordinatesAreNotConstructed is returned when a zero Coordinates value is used.
	ErrCoordinatesAreNotConstructed = errors.Join(ErrInvalidCoordinates,
		errs.NewValueIsRequiredError("coordinates must be created via NewCoordinates"))
)

// Coordinates is a WGS84 point in decimal degrees.
//
// Example:
//
//	depot, err := kernel.NewCoordinates(40.7128, -74.0060)
//	if err != nil {
//	    return err // wraps kernel.ErrInvalidCoordinates
//	}
//	fmt.Println(depot) // (40.712800,-74.006000)
type Coordinates struct { //nolint:recvcheck // pointer receivers are used by the setters only
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewCoordinates validates that both values are finite and inside
// [MinLatitude, MaxLatitude] and [MinLongitude, MaxLongitude].
func NewCoordinates(latitude, longitude float64) (Coordinates, error) {
	c := Coordinates{guard: guard.NewConstructorGuard()}

	if err := errors.Join(c.setLatitude(latitude), c.setLongitude(longitude)); err != nil {
		return Coordinates{}, errors.Join(ErrInvalidCoordinates, err)
	}

	return c, nil
}

func (c Coordinates) Validate() error {
	return c.guard.Validate(ErrCoordinatesAreNotConstructed)
}

func (c Coordinates) Latitude() float64 {
	return c.latitude
}

func (c Coordinates) Longitude() float64 {
	return c.longitude
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%f,%f)", c.latitude, c.longitude)
}

// IsEqual compares two constructed points exactly.
func (c Coordinates) IsEqual(other Coordinates) (bool, error) {
	if err := errors.Join(c.Validate(), other.Validate()); err != nil {
		return false, err
	}
	return c == other, nil
}

func (c *Coordinates) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) {
		return errs.NewValueIsInvalidErrorWithCause("latitude", fmt.Errorf("%v is not finite", latitude))
	}
	if latitude < MinLatitude || latitude > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, MinLatitude, MaxLatitude)
	}
	c.latitude = latitude
	return nil
}

func (c *Coordinates) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return errs.NewValueIsInvalidErrorWithCause("longitude", fmt.Errorf("%v is not finite", longitude))
	}
	if longitude < MinLongitude || longitude > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, MinLongitude, MaxLongitude)
	}
	c.longitude = longitude
	return nil
}
