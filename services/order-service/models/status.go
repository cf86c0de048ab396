package models

import "fmt"

// Status is the order lifecycle state.
type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
	StatusReturned  Status = "RETURNED"
)

// PaymentStatus tracks the payment side of an order independently of its
// fulfillment state.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// validNext is the full transition table. Absent entries are invalid.
// CANCELLED and RETURNED are terminal.
var validNext = map[Status]map[Status]bool{
	StatusPlaced: {
		StatusConfirmed: true,
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {
		StatusReturned: true,
	},
	StatusCancelled: {},
	StatusReturned:  {},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no further transitions exist from the status.
func (s Status) IsTerminal() bool {
	return len(validNext[s]) == 0
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	switch s {
	case StatusPlaced, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled, StatusReturned:
		return s, nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}
