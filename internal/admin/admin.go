package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/dajiagoods/storefront/internal/catalog"
	"github.com/dajiagoods/storefront/internal/leads"
	"github.com/dajiagoods/storefront/internal/orders"
	"github.com/dajiagoods/storefront/internal/verify"
)

// PerPage matches the back-office table size.
const PerPage = 10

const maxBatch = 100

var (
	ErrNotConfigured = errors.New("admin: remote store not configured")
	ErrBadBatch      = errors.New("admin: invalid code batch request")
	ErrMediaNotFound = errors.New("admin: media not found")
)

// Remote is the slice of the gateway the back office reads and writes.
type Remote interface {
	ListLeads(ctx context.Context) ([]leads.Lead, error)
	ListOrders(ctx context.Context) ([]orders.Order, error)
	ListCodes(ctx context.Context) ([]verify.Code, error)
	InsertCodes(ctx context.Context, codes []verify.Code) error
	UpdateOrderStatus(ctx context.Context, orderNumber string, to orders.Status) error
	MediaByID(ctx context.Context, id string) (catalog.Media, bool, error)
	DeleteMedia(ctx context.Context, id string) error
}

// BlobStore removes uploaded objects by their public URL. Satisfied by
// *media.Store.
type BlobStore interface {
	Delete(ctx context.Context, url string) error
}

type Service struct {
	Remote Remote    // nil when the gateway is unconfigured
	Blobs  BlobStore // nil when no bucket is configured
}

func (s *Service) remote() (Remote, error) {
	if s.Remote == nil {
		return nil, ErrNotConfigured
	}
	return s.Remote, nil
}

// Page slices a full listing into the requested page (1-based) and reports
// the page count. Listings are small enough that client-style slicing beats
// a second round of SQL.
func Page[T any](items []T, page int) (pageItems []T, totalPages int) {
	totalPages = (len(items) + PerPage - 1) / PerPage
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PerPage
	if start >= len(items) {
		return nil, totalPages
	}
	end := start + PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], totalPages
}

func (s *Service) Leads(ctx context.Context) ([]leads.Lead, error) {
	r, err := s.remote()
	if err != nil {
		return nil, err
	}
	return r.ListLeads(ctx)
}

func (s *Service) Orders(ctx context.Context) ([]orders.Order, error) {
	r, err := s.remote()
	if err != nil {
		return nil, err
	}
	return r.ListOrders(ctx)
}

func (s *Service) Codes(ctx context.Context) ([]verify.Code, error) {
	r, err := s.remote()
	if err != nil {
		return nil, err
	}
	return r.ListCodes(ctx)
}

// GenerateCodes mints a standalone batch for a product (no order number).
func (s *Service) GenerateCodes(ctx context.Context, productName string, count int) ([]verify.Code, error) {
	r, err := s.remote()
	if err != nil {
		return nil, err
	}
	if productName == "" {
		return nil, fmt.Errorf("%w: product name required", ErrBadBatch)
	}
	if count < 1 || count > maxBatch {
		return nil, fmt.Errorf("%w: count must be 1..%d", ErrBadBatch, maxBatch)
	}
	codes := verify.Mint("", productName, "", count)
	if err := r.InsertCodes(ctx, codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// DeleteMedia removes both halves of an upload: the bucket object first,
// then the metadata row. A failed object delete keeps the row so the upload
// stays visible and the delete can be retried.
func (s *Service) DeleteMedia(ctx context.Context, id string) error {
	r, err := s.remote()
	if err != nil {
		return err
	}
	m, found, err := r.MediaByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrMediaNotFound
	}
	if s.Blobs != nil {
		if err := s.Blobs.Delete(ctx, m.URL); err != nil {
			return err
		}
	}
	return r.DeleteMedia(ctx, id)
}

func (s *Service) SetOrderStatus(ctx context.Context, orderNumber string, to orders.Status) error {
	r, err := s.remote()
	if err != nil {
		return err
	}
	if !orders.ValidStatus(to) {
		return fmt.Errorf("admin: unknown status %q", to)
	}
	return r.UpdateOrderStatus(ctx, orderNumber, to)
}
