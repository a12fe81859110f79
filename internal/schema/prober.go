// Package schema discovers which namespace (Postgres schema) holds the
// storefront tables. The hosted environments have shipped the tables under
// different schemas over time, so the namespace is probed once at startup
// and from the diagnostic CLI; request paths never probe per call.
package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Candidates, in probe order.
var Candidates = []string{"PRIVATE", "public", "DAJIA"}

// Tables every deployment is expected to carry.
var Tables = []string{
	"leads",
	"orders",
	"verification_codes",
	"DAJIA_products",
	"DAJIA_main_categories",
	"DAJIA_sub_categories",
	"DAJIA_media",
}

// Execer is the slice of pgxpool.Pool the prober needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Detect returns the first candidate namespace under which table answers a
// minimal existence probe, or ok=false when none does.
func Detect(ctx context.Context, db Execer, table string) (ns string, ok bool) {
	for _, cand := range Candidates {
		probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		_, err := db.Exec(probeCtx, fmt.Sprintf(`SELECT id FROM %s LIMIT 1`, Qualify(cand, table)))
		cancel()
		if err == nil {
			return cand, true
		}
	}
	return "", false
}

// DetectAll probes every known table. Missing tables map to an empty string.
func DetectAll(ctx context.Context, db Execer) map[string]string {
	out := make(map[string]string, len(Tables))
	for _, t := range Tables {
		ns, _ := Detect(ctx, db, t)
		out[t] = ns
	}
	return out
}

// Qualify renders a quoted, namespace-qualified table reference. Quoting
// preserves the historical mixed-case schema and table names.
func Qualify(ns, table string) string {
	return fmt.Sprintf("%q.%q", ns, table)
}
