package invoice

import (
	"tokopos/internal/core/apperror"
)

// Status is the payment status of a transaction record. It doubles as the
// dispatch tag for deletion: paid records live in the sales collection,
// unpaid ones in the debtors collection.
type Status string

const (
	// StatusPaid marks a completed sale.
	StatusPaid Status = "paid"

	// StatusUnpaid marks a debtor (unpaid invoice).
	StatusUnpaid Status = "unpaid"
)

// ParseStatus validates a raw status value. Anything other than the two
// known variants is refused so that malformed records can never route to
// the wrong deletion procedure and corrupt stock.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPaid:
		return StatusPaid, nil
	case StatusUnpaid:
		return StatusUnpaid, nil
	default:
		return "", apperror.NewInvalidStatus(raw)
	}
}

// IsValid reports whether s is a recognized variant.
func (s Status) IsValid() bool {
	return s == StatusPaid || s == StatusUnpaid
}
