// Package ident generates the human-readable identifiers used across the
// storefront: lead IDs, order numbers and verification codes. Uniqueness is
// probabilistic (millisecond timestamp + random base36 suffix), which is
// enough for a single-writer storefront.
package ident

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // ambient entropy source, never fails in practice
	}
	var b strings.Builder
	b.Grow(n)
	for _, c := range buf {
		b.WriteByte(base36[int(c)%len(base36)])
	}
	return b.String()
}

// LeadID returns a registration identifier, e.g. LEAD-MB3K2F9Q.
func LeadID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return "LEAD-" + strings.ToUpper(ts)
}

// OrderNumber returns an order number, e.g. DJ-1714976424000-A1B2C3.
func OrderNumber() string {
	return fmt.Sprintf("DJ-%d-%s", time.Now().UnixMilli(), randBase36(6))
}

// VerificationCode returns a per-unit serial number. The ordinal restarts at
// 1 for each minting batch and is part of the printed code.
func VerificationCode(ordinal int) string {
	return fmt.Sprintf("DJ-%d-%s-%d", time.Now().UnixMilli(), randBase36(8), ordinal)
}

// MediaKey returns a collision-free object key for an uploaded file,
// keeping the original name readable in the bucket listing.
func MediaKey(fileName string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, fileName)
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), randBase36(6), safe)
}
