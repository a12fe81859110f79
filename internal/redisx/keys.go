package redisx

import (
	"fmt"
	"time"
)

const (
	// Cart per browsing session: dajia:cart:{session_id} -> JSON cart lines
	keyCart = "dajia:cart:%s"

	// Collections mirrored from the remote store (append-only backups).
	KeyLeads  = "dajia:leads"
	KeyOrders = "dajia:orders"

	// Pending remote writes awaiting reconciliation.
	KeyOutbox = "dajia:outbox"
)

// Carts for sessions that never check out should not live forever.
var TTLCart = 30 * 24 * time.Hour

func CartKey(sessionID string) string { return fmt.Sprintf(keyCart, sessionID) }
