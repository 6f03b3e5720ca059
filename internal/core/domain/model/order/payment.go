package order

import (
	"errors"
	"fmt"

	"waterline/internal/pkg/errs"
)

type PaymentMethod string

const (
	Cash         PaymentMethod = "cash"
	Card         PaymentMethod = "card"
	MobileMoney  PaymentMethod = "mobile_money"
	BankTransfer PaymentMethod = "bank_transfer"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (m PaymentMethod) Validate() error {
	switch m {
	case Cash, Card, MobileMoney, BankTransfer:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("payment method", fmt.Errorf("%q is not supported", string(m)))
	}
}

func (s PaymentStatus) Validate() error {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("payment status", fmt.Errorf("%q is not supported", string(s)))
	}
}

// Payment records how the requester pays. Settlement happens outside this
// service; the status is carried as reported.
type Payment struct {
	Method PaymentMethod
	Status PaymentStatus
}

func NewPayment(method PaymentMethod) (Payment, error) {
	return RestorePayment(method, PaymentPending)
}

func RestorePayment(method PaymentMethod, status PaymentStatus) (Payment, error) {
	p := Payment{Method: method, Status: status}
	if err := p.Validate(); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (p Payment) Validate() error {
	return errors.Join(p.Method.Validate(), p.Status.Validate())
}
