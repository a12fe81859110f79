package gateway

import (
	"context"

	"github.com/dajiagoods/storefront/internal/leads"
)

func (g *Gateway) InsertLead(ctx context.Context, l leads.Lead) error {
	_, err := g.DB.Exec(ctx, `
		INSERT INTO `+g.table("leads")+`
			(id, name, phone, email, product_interest, usage, quantity, contact_preference, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		l.ID, l.Name, l.Phone, l.Email, l.ProductInterest,
		nullable(l.Usage), nullable(l.Quantity), nullable(l.ContactPreference), nullable(l.Note),
		l.CreatedAt,
	)
	return opErr("insert lead", err)
}

func (g *Gateway) ListLeads(ctx context.Context) ([]leads.Lead, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT id, name, phone, email, product_interest,
		       COALESCE(usage,''), COALESCE(quantity,''), COALESCE(contact_preference,''), COALESCE(note,''),
		       created_at
		FROM `+g.table("leads")+`
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, opErr("list leads", err)
	}
	defer rows.Close()

	var out []leads.Lead
	for rows.Next() {
		var l leads.Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Phone, &l.Email, &l.ProductInterest,
			&l.Usage, &l.Quantity, &l.ContactPreference, &l.Note, &l.CreatedAt); err != nil {
			return nil, opErr("scan lead", err)
		}
		out = append(out, l)
	}
	return out, opErr("list leads", rows.Err())
}

// nullable maps an empty optional field to NULL so the stored rows match
// what the hosted forms wrote historically.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
