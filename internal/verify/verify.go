// Package verify implements the serial-number authenticity check. Codes are
// minted at checkout (one per purchased unit) or in admin batches, and each
// successful lookup of an active code bumps its verification counter.
package verify

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
	StatusRevoked Status = "revoked"
)

type Code struct {
	Code          string     `json:"code"`
	ProductID     string     `json:"product_id,omitempty"`
	ProductName   string     `json:"product_name,omitempty"`
	OrderNumber   string     `json:"order_number,omitempty"`
	Status        Status     `json:"status"`
	VerifiedCount int        `json:"verified_count"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Result is what a successful verification shows the customer.
type Result struct {
	Code          string    `json:"code"`
	ProductName   string    `json:"product_name,omitempty"`
	OrderNumber   string    `json:"order_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	VerifiedCount int       `json:"verified_count"`
}

var (
	// ErrNotConfigured: verification is meaningless without the remote
	// store, so an unconfigured gateway is a hard error here, unlike the
	// cart and checkout flows.
	ErrNotConfigured = errors.New("verify: remote store not configured")

	ErrCodeNotFound    = errors.New("verify: code not found")
	ErrCodeInvalidated = errors.New("verify: code already used or revoked")
)

// Remote is the slice of the gateway the workflow needs.
type Remote interface {
	CodeByValue(ctx context.Context, code string) (Code, bool, error)
	BumpVerification(ctx context.Context, code string, at time.Time) error
}

type Service struct {
	Remote Remote // nil when the gateway is unconfigured
}

// Verify normalizes raw and checks it against the remote store. The two
// failure modes keep distinct errors so the UI can tell "not in our
// database" apart from "invalidated". The counter bump is best-effort: a
// failed persist is logged and the lookup still succeeds.
func (s *Service) Verify(ctx context.Context, raw string) (Result, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return Result{}, ErrCodeNotFound
	}
	if s.Remote == nil {
		return Result{}, ErrNotConfigured
	}

	rec, found, err := s.Remote.CodeByValue(ctx, code)
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, ErrCodeNotFound
	}
	if rec.Status != StatusActive {
		return Result{}, ErrCodeInvalidated
	}

	now := time.Now().UTC()
	if err := s.Remote.BumpVerification(ctx, code, now); err != nil {
		log.Printf("verify: bump counter for %s: %v", code, err)
	}

	return Result{
		Code:          rec.Code,
		ProductName:   rec.ProductName,
		OrderNumber:   rec.OrderNumber,
		CreatedAt:     rec.CreatedAt,
		VerifiedCount: rec.VerifiedCount + 1,
	}, nil
}
