package order

import (
	"fmt"

	"waterline/internal/pkg/errs"
)

// Status is the lifecycle state of an order. The set is closed: values
// outside the constants below fail Validate.
//
// Two vocabularies share the enum (see Workflow):
//
//	pipeline: pending -> confirmed -> preparing -> out_for_delivery -> in_transit -> delivered
//	simple:   pending -> in-progress -> completed
//
// Either workflow may move any non-terminal status to cancelled.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Pending
	Confirmed
	Preparing
	OutForDelivery
	InTransit
	Delivered
	InProgress
	Completed
	Cancelled
)

var statusNames = map[Status]string{
	Pending:        "pending",
	Confirmed:      "confirmed",
	Preparing:      "preparing",
	OutForDelivery: "out_for_delivery",
	InTransit:      "in_transit",
	Delivered:      "delivered",
	InProgress:     "in-progress",
	Completed:      "completed",
	Cancelled:      "cancelled",
}

// ParseStatus accepts the wire names returned by String.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name, or "unknown" for invalid values.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is possible.
// delivered and completed end their workflows; cancelled ends both.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Completed || s == Cancelled
}

// TerminalStatuses lists every status IsTerminal accepts.
func TerminalStatuses() []Status {
	return []Status{Delivered, Completed, Cancelled}
}
