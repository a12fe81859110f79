// Package events defines the envelope and payloads published to Kafka when
// storefront workflows complete. Publishing is always best-effort: no
// workflow waits on, or fails because of, the broker.
package events

import (
	"encoding/json"
	"time"
)

const (
	TypeOrderPlaced  = "OrderPlaced"
	TypeLeadCaptured = "LeadCaptured"
)

const (
	TopicOrderPlaced  = "storefront.order.placed"
	TopicLeadCaptured = "storefront.lead.captured"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "storefront-api"
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderNumber string `json:"order_number"`
	Total       int    `json:"total"`
	Shipping    int    `json:"shipping"`
	ItemCount   int    `json:"item_count"` // total purchased units
	CodesMinted int    `json:"codes_minted"`
}

type LeadCapturedPayload struct {
	LeadID          string `json:"lead_id"`
	ProductInterest string `json:"product_interest"`
}

// PartitionKey keeps every event for one order or lead on one partition.
func PartitionKey(id string) []byte { return []byte(id) }
