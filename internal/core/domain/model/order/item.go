package order

import (
	"errors"
	"fmt"

	"waterline/internal/pkg/errs"
	"waterline/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// Unit is the measure the ordered quantity is expressed in.
type Unit string

const (
	Liters      Unit = "liters"
	Gallons     Unit = "gallons"
	Bottles     Unit = "bottles"
	CubicMeters Unit = "cubic_meters"
)

var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

func (u Unit) Validate() error {
	switch u {
	case Liters, Gallons, Bottles, CubicMeters:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("unit", fmt.Errorf("%q is not a supported unit", string(u)))
	}
}

// Item is the ordered amount of water.
type Item struct {
	quantity decimal.Decimal
	unit     Unit
	guard    guard.ConstructorGuard
}

func NewItem(quantity decimal.Decimal, unit Unit) (Item, error) {
	if err := errors.Join(validatePositive("quantity", quantity), unit.Validate()); err != nil {
		return Item{}, err
	}
	return Item{quantity: quantity, unit: unit, guard: guard.NewConstructorGuard()}, nil
}

func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i Item) Quantity() decimal.Decimal {
	return i.quantity
}

func (i Item) Unit() Unit {
	return i.unit
}

func validatePositive(param string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause(param, fmt.Errorf("%s is not greater than 0", v))
	}
	return nil
}
