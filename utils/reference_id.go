package utils

import "github.com/google/uuid"

// NewLedgerReferenceID returns the unique id stamped on every transaction log
// row, used to correlate entries with gateway receipts and exports.
func NewLedgerReferenceID() string {
	return uuid.NewString()
}
