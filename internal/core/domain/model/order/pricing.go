package order

import (
	"errors"
	"fmt"
	"regexp"

	"waterline/internal/pkg/errs"
	"waterline/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrPricingIsNotConstructed = errors.New("Pricing must be created via NewPricing constructor")

	currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Pricing is the price snapshot taken when the order is placed.
// Total is always quantity * unit price + delivery fee.
type Pricing struct {
	unitPrice   decimal.Decimal
	deliveryFee decimal.Decimal
	total       decimal.Decimal
	currency    string
	guard       guard.ConstructorGuard
}

// NewPricing computes the total for item.
//
// Example:
//
//	item, _ := order.NewItem(decimal.NewFromInt(20), order.Liters)
//	p, _ := order.NewPricing(item, decimal.RequireFromString("0.75"), decimal.NewFromInt(5), "USD")
//	p.Total().String() // "20"
func NewPricing(item Item, unitPrice, deliveryFee decimal.Decimal, currency string) (Pricing, error) {
	if err := errors.Join(
		item.Validate(),
		validateNotNegative("unit price", unitPrice),
		validateNotNegative("delivery fee", deliveryFee),
		validateCurrency(currency),
	); err != nil {
		return Pricing{}, err
	}

	return Pricing{
		unitPrice:   unitPrice,
		deliveryFee: deliveryFee,
		total:       item.Quantity().Mul(unitPrice).Add(deliveryFee),
		currency:    currency,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (p Pricing) Validate() error {
	return p.guard.Validate(ErrPricingIsNotConstructed)
}

func (p Pricing) UnitPrice() decimal.Decimal {
	return p.unitPrice
}

func (p Pricing) DeliveryFee() decimal.Decimal {
	return p.deliveryFee
}

func (p Pricing) Total() decimal.Decimal {
	return p.total
}

func (p Pricing) Currency() string {
	return p.currency
}

func validateNotNegative(param string, v decimal.Decimal) error {
	if v.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(param, fmt.Errorf("%s is negative", v))
	}
	return nil
}

func validateCurrency(currency string) error {
	if !currencyCode.MatchString(currency) {
		return errs.NewValueIsInvalidErrorWithCause("currency", fmt.Errorf("%q is not an ISO 4217 code", currency))
	}
	return nil
}
