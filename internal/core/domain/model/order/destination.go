package order

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/pkg/errs"
	"waterline/internal/pkg/guard"
)

const (
	MaxAddressLength      = 300
	MaxInstructionsLength = 500
)

var ErrDestinationIsNotConstructed = errors.New("Destination must be created via NewDestination constructor")

// Destination is where the fulfiller drops the order off.
type Destination struct {
	coordinates  kernel.Coordinates
	address      string
	instructions string
	guard        guard.ConstructorGuard
}

func NewDestination(coordinates kernel.Coordinates, address, instructions string) (Destination, error) {
	address = strings.TrimSpace(address)
	instructions = strings.TrimSpace(instructions)

	var addressErr, instructionsErr error
	switch {
	case address == "":
		addressErr = errs.NewValueIsRequiredError("address")
	case utf8.RuneCountInString(address) > MaxAddressLength:
		addressErr = errs.NewValueIsInvalidErrorWithCause("address",
			fmt.Errorf("longer than %d characters", MaxAddressLength))
	}
	if utf8.RuneCountInString(instructions) > MaxInstructionsLength {
		instructionsErr = errs.NewValueIsInvalidErrorWithCause("instructions",
			fmt.Errorf("longer than %d characters", MaxInstructionsLength))
	}

	if err := errors.Join(coordinates.Validate(), addressErr, instructionsErr); err != nil {
		return Destination{}, err
	}

	return Destination{
		coordinates:  coordinates,
		address:      address,
		instructions: instructions,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (d Destination) Validate() error {
	return d.guard.Validate(ErrDestinationIsNotConstructed)
}

func (d Destination) Coordinates() kernel.Coordinates {
	return d.coordinates
}

func (d Destination) Address() string {
	return d.address
}

// Instructions may be empty.
func (d Destination) Instructions() string {
	return d.instructions
}
