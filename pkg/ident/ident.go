// Package ident generates the entity-prefixed identifiers used as
// primary keys: ORD-... for orders, BID-... for bids, txn-... for
// transactions and pm-... for payment methods.
package ident

import (
	"strings"

	"github.com/google/uuid"
)

// Length of the random hex component. 80 bits keeps the probability of
// a collision negligible; the primary key constraint backstops the rest.
const randLen = 20

// Prefixes of the persisted entities.
const (
	OrderPrefix         = "ORD"
	BidPrefix           = "BID"
	TransactionPrefix   = "txn"
	PaymentMethodPrefix = "pm"
)

// New returns an identifier of the form <prefix>-<random hex>.
func New(prefix string) string {
	raw := uuid.New()
	hex := strings.ReplaceAll(raw.String(), "-", "")
	return prefix + "-" + hex[:randLen]
}
