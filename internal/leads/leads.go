// Package leads handles the two-stage registration form for prospective
// customers. Stage one is the required contact block, stage two the optional
// details plus the privacy consent.
package leads

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"time"
	"unicode/utf8"

	"github.com/dajiagoods/storefront/internal/events"
	"github.com/dajiagoods/storefront/internal/fallback"
	"github.com/dajiagoods/storefront/internal/ident"
	"github.com/dajiagoods/storefront/internal/redisx"
)

type Lead struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email"`
	ProductInterest   string    `json:"product_interest"`
	Usage             string    `json:"usage,omitempty"`
	Quantity          string    `json:"quantity,omitempty"`
	ContactPreference string    `json:"contact_preference,omitempty"`
	Note              string    `json:"note,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type Input struct {
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	ProductInterest   string `json:"product_interest"`
	Usage             string `json:"usage"`
	Quantity          string `json:"quantity"`
	ContactPreference string `json:"contact_preference"`
	Note              string `json:"note"`
	AgreePrivacy      bool   `json:"agree_privacy"`
}

// ValidateStage1 gates advancement from the contact block to the details
// block; ValidateStage2 gates submission. Both return a field → message map
// for inline display, empty when valid.
func ValidateStage1(in Input) map[string]string {
	errs := map[string]string{}
	if in.Name == "" {
		errs["name"] = "請輸入姓名"
	} else if utf8.RuneCountInString(in.Name) > 50 {
		errs["name"] = "姓名過長"
	}
	if n := len(in.Phone); n < 10 {
		errs["phone"] = "請輸入有效手機號碼"
	} else if n > 15 {
		errs["phone"] = "手機號碼過長"
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		errs["email"] = "請輸入有效 Email"
	}
	if in.ProductInterest == "" {
		errs["product_interest"] = "請選擇感興趣的商品"
	}
	return errs
}

func ValidateStage2(in Input) map[string]string {
	errs := map[string]string{}
	if utf8.RuneCountInString(in.Note) > 500 {
		errs["note"] = "備註過長"
	}
	if !in.AgreePrivacy {
		errs["agree_privacy"] = "請同意個資告知"
	}
	return errs
}

var ErrInvalid = errors.New("leads: invalid input")

// Remote is the slice of the gateway the workflow needs.
type Remote interface {
	InsertLead(ctx context.Context, l Lead) error
}

// Enqueuer parks a lead for later reconciliation against the remote store.
type Enqueuer interface {
	EnqueueLead(ctx context.Context, l Lead) error
}

// Publisher emits the lead-captured event. Satisfied by *kafka.Producer.
type Publisher interface {
	Publish(topic, eventType, correlationID string, payload any)
}

type Service struct {
	Remote   Remote // nil when the gateway is unconfigured
	Store    fallback.Store
	Outbox   Enqueuer  // nil disables reconciliation
	Producer Publisher // nil disables events
}

// Submit validates both stages, mints the lead and writes it through. The
// local append always happens; a failed remote insert parks the lead in the
// outbox instead of failing the submission.
func (s *Service) Submit(ctx context.Context, in Input) (Lead, error) {
	if errs := ValidateStage1(in); len(errs) > 0 {
		return Lead{}, fmt.Errorf("%w: %v", ErrInvalid, errs)
	}
	if errs := ValidateStage2(in); len(errs) > 0 {
		return Lead{}, fmt.Errorf("%w: %v", ErrInvalid, errs)
	}

	l := Lead{
		ID:                ident.LeadID(),
		Name:              in.Name,
		Phone:             in.Phone,
		Email:             in.Email,
		ProductInterest:   in.ProductInterest,
		Usage:             in.Usage,
		Quantity:          in.Quantity,
		ContactPreference: in.ContactPreference,
		Note:              in.Note,
		CreatedAt:         time.Now().UTC(),
	}

	if s.Remote != nil {
		if err := s.Remote.InsertLead(ctx, l); err != nil {
			log.Printf("leads: remote insert %s: %v", l.ID, err)
			if s.Outbox != nil {
				if qerr := s.Outbox.EnqueueLead(ctx, l); qerr != nil {
					log.Printf("leads: enqueue %s: %v", l.ID, qerr)
				}
			}
		}
	}

	if err := fallback.Append(ctx, s.Store, redisx.KeyLeads, l); err != nil {
		return Lead{}, err
	}

	if s.Producer != nil {
		s.Producer.Publish(events.TopicLeadCaptured, events.TypeLeadCaptured, l.ID, events.LeadCapturedPayload{
			LeadID:          l.ID,
			ProductInterest: l.ProductInterest,
		})
	}
	return l, nil
}

// Local returns the locally persisted leads collection.
func (s *Service) Local(ctx context.Context) ([]Lead, error) {
	var ls []Lead
	if err := s.Store.Load(ctx, redisx.KeyLeads, &ls); err != nil {
		if errors.Is(err, fallback.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ls, nil
}
