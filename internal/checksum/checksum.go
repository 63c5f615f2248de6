// Package checksum hashes structured payloads for content-equality checks and
// derives idempotency keys from business tuples.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errChecksum = domain.ErrChecksum

// Compute returns the hex SHA-256 of the canonical form of payload. Failures
// wrap domain.ErrChecksum; callers must not store a snapshot without a hash.
func Compute(payload any) (string, error) {
	canonical, err := Canonical(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Equal reports whether two payloads canonicalise to the same bytes.
func Equal(a, b any) (bool, error) {
	ha, err := Compute(a)
	if err != nil {
		return false, err
	}
	hb, err := Compute(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}

var paymentNamespace = uuid.MustParse("6f1c9a52-3b7e-5d0a-9c41-2e8f7b6d4a10")

// IdempotencyKey derives a stable key from (amount, payer, reference).
// Amounts are fixed to two decimals so 10, 10.0 and 10.00 collapse.
func IdempotencyKey(amount decimal.Decimal, payer, reference string) string {
	name := amount.StringFixed(2) + "|" + strings.TrimSpace(payer) + "|" + strings.TrimSpace(reference)
	return uuid.NewSHA1(paymentNamespace, []byte(name)).String()
}
