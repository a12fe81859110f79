package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dajiagoods/storefront/internal/cart"
	"github.com/dajiagoods/storefront/internal/orders"
)

func (g *Gateway) InsertOrder(ctx context.Context, o orders.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return opErr("marshal order items", err)
	}
	form, err := json.Marshal(o.FormData)
	if err != nil {
		return opErr("marshal order form", err)
	}
	_, err = g.DB.Exec(ctx, `
		INSERT INTO `+g.table("orders")+`
			(order_number, items, total, shipping, form_data, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.OrderNumber, items, o.Total, o.Shipping, form, string(o.Status), o.CreatedAt,
	)
	return opErr("insert order", err)
}

func (g *Gateway) OrderByNumber(ctx context.Context, orderNumber string) (orders.Order, bool, error) {
	row := g.DB.QueryRow(ctx, `
		SELECT order_number, items, total, shipping, form_data, status, created_at
		FROM `+g.table("orders")+`
		WHERE order_number=$1`, orderNumber)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Order{}, false, nil
	}
	if err != nil {
		return orders.Order{}, false, opErr("get order", err)
	}
	return o, true, nil
}

func (g *Gateway) ListOrders(ctx context.Context) ([]orders.Order, error) {
	rows, err := g.DB.Query(ctx, `
		SELECT order_number, items, total, shipping, form_data, status, created_at
		FROM `+g.table("orders")+`
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, opErr("list orders", err)
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, opErr("scan order", err)
		}
		out = append(out, o)
	}
	return out, opErr("list orders", rows.Err())
}

// UpdateOrderStatus advances an order through the transition table.
func (g *Gateway) UpdateOrderStatus(ctx context.Context, orderNumber string, to orders.Status) error {
	o, found, err := g.OrderByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	if !found {
		return opErr("update order status", fmt.Errorf("order %s not found", orderNumber))
	}
	if !orders.CanTransition(o.Status, to) {
		return opErr("update order status", fmt.Errorf("cannot move %s from %s to %s", orderNumber, o.Status, to))
	}
	_, err = g.DB.Exec(ctx, `
		UPDATE `+g.table("orders")+` SET status=$2 WHERE order_number=$1`,
		orderNumber, string(to))
	return opErr("update order status", err)
}

func scanOrder(row pgx.Row) (orders.Order, error) {
	var (
		o        orders.Order
		itemsRaw []byte
		formRaw  []byte
		status   string
	)
	if err := row.Scan(&o.OrderNumber, &itemsRaw, &o.Total, &o.Shipping, &formRaw, &status, &o.CreatedAt); err != nil {
		return orders.Order{}, err
	}
	o.Status = orders.Status(status)
	var items []cart.Item
	if err := json.Unmarshal(itemsRaw, &items); err != nil {
		return orders.Order{}, err
	}
	o.Items = items
	if err := json.Unmarshal(formRaw, &o.FormData); err != nil {
		return orders.Order{}, err
	}
	return o, nil
}
