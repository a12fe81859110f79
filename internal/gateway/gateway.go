// Package gateway is the adapter over the hosted Postgres store. A nil
// *Gateway is the unconfigured mode: storefront workflows skip the remote
// write and run against the fallback store alone; only the admin surface
// treats absence as an error.
package gateway

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dajiagoods/storefront/internal/schema"
)

type Gateway struct {
	DB        *pgxpool.Pool
	Namespace string // resolved once at startup, never per call
}

func New(db *pgxpool.Pool, namespace string) *Gateway {
	return &Gateway{DB: db, Namespace: namespace}
}

// table renders the namespace-qualified, quoted table reference.
func (g *Gateway) table(name string) string {
	return schema.Qualify(g.Namespace, name)
}

// OpError keeps the failing operation next to the driver message so admin
// diagnostics can show something readable.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err) }
func (e *OpError) Unwrap() error { return e.Err }

func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
