package commands

import (
	"errors"
	"fmt"

	"waterline/internal/core/domain/model/kernel"
	"waterline/internal/core/domain/model/order"
	"waterline/internal/pkg/errs"
	"waterline/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand places an order from requester to fulfiller.
//
// Example:
//
//	item, _ := order.NewItem(decimal.NewFromInt(20), order.Liters)
//	dest, _ := order.NewDestination(coords, "12 Harbor Rd", "")
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), requester, fulfillerID,
//	    item, decimal.RequireFromString("0.75"), decimal.NewFromInt(5), "USD", dest, order.Cash)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	requester     kernel.Actor
	fulfillerID   kernel.UUID
	item          order.Item
	unitPrice     decimal.Decimal
	deliveryFee   decimal.Decimal
	currency      string
	destination   order.Destination
	paymentMethod order.PaymentMethod

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(
	orderID kernel.UUID,
	requester kernel.Actor,
	fulfillerID kernel.UUID,
	item order.Item,
	unitPrice, deliveryFee decimal.Decimal,
	currency string,
	destination order.Destination,
	paymentMethod order.PaymentMethod,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		unitPrice:   unitPrice,
		deliveryFee: deliveryFee,
		currency:    currency,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setRequester(requester),
		cmd.setFulfillerID(fulfillerID),
		cmd.setItem(item),
		cmd.setDestination(destination),
		cmd.setPaymentMethod(paymentMethod),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID               { return c.orderID }
func (c CreateOrderCommand) Requester() kernel.Actor            { return c.requester }
func (c CreateOrderCommand) FulfillerID() kernel.UUID           { return c.fulfillerID }
func (c CreateOrderCommand) Item() order.Item                   { return c.item }
func (c CreateOrderCommand) UnitPrice() decimal.Decimal         { return c.unitPrice }
func (c CreateOrderCommand) DeliveryFee() decimal.Decimal       { return c.deliveryFee }
func (c CreateOrderCommand) Currency() string                   { return c.currency }
func (c CreateOrderCommand) Destination() order.Destination     { return c.destination }
func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod { return c.paymentMethod }

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setRequester(requester kernel.Actor) error {
	if err := requester.Validate(); err != nil {
		return err
	}
	if requester.Role() != kernel.Requester {
		return errs.NewForbiddenError(requester.String(), "place orders")
	}
	c.requester = requester
	return nil
}

func (c *CreateOrderCommand) setFulfillerID(fulfillerID kernel.UUID) error {
	if err := fulfillerID.Validate(); err != nil {
		return fmt.Errorf("fulfiller: %w", err)
	}
	c.fulfillerID = fulfillerID
	return nil
}

func (c *CreateOrderCommand) setItem(item order.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	c.item = item
	return nil
}

func (c *CreateOrderCommand) setDestination(destination order.Destination) error {
	if err := destination.Validate(); err != nil {
		return err
	}
	c.destination = destination
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(method order.PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	c.paymentMethod = method
	return nil
}
