package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dajiagoods/storefront/internal/verify"
)

func (g *Gateway) InsertCodes(ctx context.Context, codes []verify.Code) error {
	if len(codes) == 0 {
		return nil
	}
	tx, err := g.DB.Begin(ctx)
	if err != nil {
		return opErr("insert codes", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, c := range codes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO `+g.table("verification_codes")+`
				(code, product_id, product_name, order_number, status, verified_count, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			c.Code, nullable(c.ProductID), nullable(c.ProductName), nullable(c.OrderNumber),
			string(c.Status), c.VerifiedCount, c.CreatedAt,
		); err != nil {
			return opErr("insert codes", err)
		}
	}
	return opErr("insert codes", tx.Commit(ctx))
}

func (g *Gateway) CodeByValue(ctx context.Context, code string) (verify.Code, bool, error) {
	var (
		c          verify.Code
		status     string
		verifiedAt *time.Time
	)
	err := g.DB.QueryRow(ctx, `
		SELECT code, COALESCE(product_id,''), COALESCE(product_name,''), COALESCE(order_number,''),
		       status, verified_count, verified_at, created_at
		FROM `+g.table("verification_codes")+`
		WHERE code=$1`, code).
		Scan(&c.Code, &c.ProductID, &c.ProductName, &c.OrderNumber,
			&status, &c.VerifiedCount, &verifiedAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return verify.Code{}, false, nil
	}
	if err != nil {
		return verify.Code{}, false, opErr("get code", err)
	}
	c.Status = verify.Status(status)
	c.VerifiedAt = verifiedAt
	return c, true, nil
}

// BumpVerification increments the counter atomically so concurrent lookups
// never lose a count.
func (g *Gateway) BumpVerification(ctx context.Context, code string, at time.Time) error {
	_, err := g.DB.Exec(ctx, `
		UPDATE `+g.table("verification_codes")+`
		SET verified_count = verified_count + 1, verified_at = $2
		WHERE code=$1`, code, at)
	return opErr("bump verification", err)
}

func (g *Gateway) ListCodes(ctx context.Context) ([]verify.Code, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT code, COALESCE(product_id,''), COALESCE(product_name,''), COALESCE(order_number,''),
		       status, verified_count, verified_at, created_at
		FROM `+g.table("verification_codes")+`
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, opErr("list codes", err)
	}
	defer rows.Close()

	var out []verify.Code
	for rows.Next() {
		var (
			c          verify.Code
			status     string
			verifiedAt *time.Time
		)
		if err := rows.Scan(&c.Code, &c.ProductID, &c.ProductName, &c.OrderNumber,
			&status, &c.VerifiedCount, &verifiedAt, &c.CreatedAt); err != nil {
			return nil, opErr("scan code", err)
		}
		c.Status = verify.Status(status)
		c.VerifiedAt = verifiedAt
		out = append(out, c)
	}
	return out, opErr("list codes", rows.Err())
}
