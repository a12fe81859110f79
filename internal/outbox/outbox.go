// Package outbox parks remote writes that failed and replays them once the
// remote store answers again. It only runs alongside a configured gateway;
// in local-only mode there is no remote copy to reconcile. Entries live in
// the fallback store so they survive a restart; this is what keeps the
// local and remote copies from diverging permanently.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dajiagoods/storefront/internal/fallback"
	"github.com/dajiagoods/storefront/internal/leads"
	"github.com/dajiagoods/storefront/internal/orders"
	"github.com/dajiagoods/storefront/internal/redisx"
	"github.com/dajiagoods/storefront/internal/verify"
)

type Kind string

const (
	KindLead  Kind = "lead"
	KindOrder Kind = "order"
	KindCodes Kind = "codes"
)

type Entry struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempts   int             `json:"attempts"`
}

// Remote is the slice of the gateway the reconciler flushes through.
type Remote interface {
	InsertLead(ctx context.Context, l leads.Lead) error
	InsertOrder(ctx context.Context, o orders.Order) error
	InsertCodes(ctx context.Context, codes []verify.Code) error
}

type Outbox struct {
	store   fallback.Store
	remote  Remote // nil until a gateway exists; entries just accumulate
	mu      sync.Mutex
	closeCh chan struct{}
}

func New(store fallback.Store, remote Remote) *Outbox {
	return &Outbox{store: store, remote: remote, closeCh: make(chan struct{})}
}

func (b *Outbox) EnqueueLead(ctx context.Context, l leads.Lead) error {
	return b.enqueue(ctx, KindLead, l)
}

func (b *Outbox) EnqueueOrder(ctx context.Context, o orders.Order) error {
	return b.enqueue(ctx, KindOrder, o)
}

func (b *Outbox) EnqueueCodes(ctx context.Context, codes []verify.Code) error {
	return b.enqueue(ctx, KindCodes, codes)
}

func (b *Outbox) enqueue(ctx context.Context, kind Kind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, Entry{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	})
	return b.store.Save(ctx, redisx.KeyOutbox, entries)
}

// Pending returns a snapshot of unflushed entries, oldest first.
func (b *Outbox) Pending(ctx context.Context) ([]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

// Flush replays pending entries in order. Flushed entries are removed;
// failed ones stay with their attempt count bumped and are retried on the
// next pass. Returns the number flushed.
func (b *Outbox) Flush(ctx context.Context) (int, error) {
	if b.remote == nil {
		return 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.load(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var kept []Entry
	flushed := 0
	for _, e := range entries {
		if err := b.replay(ctx, e); err != nil {
			log.Printf("outbox: replay %s %s (attempt %d): %v", e.Kind, e.ID, e.Attempts+1, err)
			e.Attempts++
			kept = append(kept, e)
			continue
		}
		flushed++
	}

	if len(kept) == 0 {
		return flushed, b.store.Clear(ctx, redisx.KeyOutbox)
	}
	return flushed, b.store.Save(ctx, redisx.KeyOutbox, kept)
}

func (b *Outbox) replay(ctx context.Context, e Entry) error {
	switch e.Kind {
	case KindLead:
		var l leads.Lead
		if err := json.Unmarshal(e.Payload, &l); err != nil {
			return err
		}
		return b.remote.InsertLead(ctx, l)
	case KindOrder:
		var o orders.Order
		if err := json.Unmarshal(e.Payload, &o); err != nil {
			return err
		}
		return b.remote.InsertOrder(ctx, o)
	case KindCodes:
		var cs []verify.Code
		if err := json.Unmarshal(e.Payload, &cs); err != nil {
			return err
		}
		return b.remote.InsertCodes(ctx, cs)
	default:
		return fmt.Errorf("unknown entry kind %q", e.Kind)
	}
}

func (b *Outbox) load(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := b.store.Load(ctx, redisx.KeyOutbox, &entries); err != nil {
		if errors.Is(err, fallback.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// Start runs the reconciliation loop until ctx is cancelled, with a final
// flush on the way out.
func (b *Outbox) Start(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if n, err := b.Flush(flushCtx); err != nil {
					log.Printf("outbox: final flush: %v", err)
				} else if n > 0 {
					log.Printf("outbox: final flush wrote %d entries", n)
				}
				cancel()
				close(b.closeCh)
				return
			case <-t.C:
				if n, err := b.Flush(ctx); err != nil {
					log.Printf("outbox: flush: %v", err)
				} else if n > 0 {
					log.Printf("outbox: flushed %d entries", n)
				}
			}
		}
	}()
}

func (b *Outbox) WaitClosed() { <-b.closeCh }
