package gateway

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dajiagoods/storefront/internal/catalog"
)

// ListProducts reads the remotely managed product rows. The seeded in-repo
// catalog remains the storefront's source when the gateway is absent.
func (g *Gateway) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT id, name, slug, category, price, stock, in_stock, COALESCE(image,'')
		FROM `+g.table("DAJIA_products")+`
		ORDER BY id`)
	if err != nil {
		return nil, opErr("list products", err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		var cat string
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &cat, &p.Price, &p.Stock, &p.InStock, &p.Image); err != nil {
			return nil, opErr("scan product", err)
		}
		p.Category = catalog.Category(cat)
		out = append(out, p)
	}
	return out, opErr("list products", rows.Err())
}

func (g *Gateway) ListMainCategories(ctx context.Context) ([]catalog.MainCategory, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT id, name, sort_order, created_at
		FROM `+g.table("DAJIA_main_categories")+`
		ORDER BY sort_order`)
	if err != nil {
		return nil, opErr("list main categories", err)
	}
	defer rows.Close()

	var out []catalog.MainCategory
	for rows.Next() {
		var c catalog.MainCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, opErr("scan main category", err)
		}
		out = append(out, c)
	}
	return out, opErr("list main categories", rows.Err())
}

func (g *Gateway) ListSubCategories(ctx context.Context) ([]catalog.SubCategory, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT id, main_category_id, name, sort_order, created_at
		FROM `+g.table("DAJIA_sub_categories")+`
		ORDER BY sort_order`)
	if err != nil {
		return nil, opErr("list sub categories", err)
	}
	defer rows.Close()

	var out []catalog.SubCategory
	for rows.Next() {
		var c catalog.SubCategory
		if err := rows.Scan(&c.ID, &c.MainCategoryID, &c.Name, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, opErr("scan sub category", err)
		}
		out = append(out, c)
	}
	return out, opErr("list sub categories", rows.Err())
}

func (g *Gateway) ListMedia(ctx context.Context) ([]catalog.Media, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT id, file_name, url, created_at
		FROM `+g.table("DAJIA_media")+`
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, opErr("list media", err)
	}
	defer rows.Close()

	var out []catalog.Media
	for rows.Next() {
		var m catalog.Media
		if err := rows.Scan(&m.ID, &m.FileName, &m.URL, &m.CreatedAt); err != nil {
			return nil, opErr("scan media", err)
		}
		out = append(out, m)
	}
	return out, opErr("list media", rows.Err())
}

// InsertMedia records an uploaded blob's public URL.
func (g *Gateway) InsertMedia(ctx context.Context, m catalog.Media) error {
	_, err := g.DB.Exec(ctx, `
		INSERT INTO `+g.table("DAJIA_media")+` (id, file_name, url, created_at)
		VALUES ($1,$2,$3,$4)`,
		m.ID, m.FileName, m.URL, m.CreatedAt)
	return opErr("insert media", err)
}

func (g *Gateway) MediaByID(ctx context.Context, id string) (catalog.Media, bool, error) {
	var m catalog.Media
	err := g.DB.QueryRow(ctx, `
		SELECT id, file_name, url, created_at
		FROM `+g.table("DAJIA_media")+`
		WHERE id=$1`, id).
		Scan(&m.ID, &m.FileName, &m.URL, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Media{}, false, nil
	}
	if err != nil {
		return catalog.Media{}, false, opErr("get media", err)
	}
	return m, true, nil
}

func (g *Gateway) DeleteMedia(ctx context.Context, id string) error {
	_, err := g.DB.Exec(ctx, `
		DELETE FROM `+g.table("DAJIA_media")+` WHERE id=$1`, id)
	return opErr("delete media", err)
}
