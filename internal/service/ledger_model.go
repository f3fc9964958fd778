package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/field-ledger/internal/storage"
)

// Record represents a transaction in the service layer. Amount is carried in
// minor units end to end; decimal strings exist only at the HTTP edge.
type Record struct {
	ID             uuid.UUID
	Type           storage.TransactionType
	FullName       string
	DocumentNumber string
	PhoneNumber    string
	AmountMinor    int64
	Status         storage.Status
	CreatedAt      time.Time
	SyncedAt       *time.Time
}

// AmountDecimal renders the minor-unit amount as a two-place decimal.
func (r Record) AmountDecimal() decimal.Decimal {
	return decimal.New(r.AmountMinor, -2)
}

var errSubCentPrecision = errors.New("amount has sub-cent precision")

// MinorUnitsFromString parses a decimal amount string ("125.50") into
// non-negative minor units. Sub-cent precision is rejected rather than
// rounded; the stored value must be exactly what the agent entered.
func MinorUnitsFromString(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", amount)
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %q: %w", amount, errSubCentPrecision)
	}
	return shifted.IntPart(), nil
}
