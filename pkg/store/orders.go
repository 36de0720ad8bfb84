package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderItem is one pizza on an order.
type OrderItem struct {
	MenuID      int64   `json:"menuId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Order is a diner's purchase at a store.
type Order struct {
	ID          string      `json:"id"`
	DinerID     int64       `json:"dinerId"`
	FranchiseID int64       `json:"franchiseId"`
	StoreID     int64       `json:"storeId"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"date"`
}

// Total returns the sum of item prices.
func (o *Order) Total() float64 {
	var t float64
	for _, it := range o.Items {
		t += it.Price
	}
	return t
}

// CreateOrder persists an order. The store must belong to the franchise
// and every menu id must exist, otherwise ErrNotFound is returned.
func (d *DB) CreateOrder(ctx context.Context, dinerID, franchiseID, storeID int64, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order has no items")
	}
	o := &Order{
		ID:          uuid.NewString(),
		DinerID:     dinerID,
		FranchiseID: franchiseID,
		StoreID:     storeID,
		Items:       items,
		CreatedAt:   time.Now().UTC(),
	}

	err := d.tx(ctx, func(tx *sql.Tx) error {
		var id int64
		if err := d.queryRow(ctx, tx, []any{&id},
			`SELECT id FROM stores WHERE id = ? AND franchise_id = ?`, storeID, franchiseID); err != nil {
			return fmt.Errorf("store %d in franchise %d: %w", storeID, franchiseID, err)
		}
		if _, err := d.exec(ctx, tx,
			`INSERT INTO orders (id, diner_id, franchise_id, store_id, created_at) VALUES (?, ?, ?, ?, ?)`,
			o.ID, dinerID, franchiseID, storeID, o.CreatedAt.UnixMilli()); err != nil {
			return err
		}
		for _, it := range items {
			if err := d.queryRow(ctx, tx, []any{&id}, `SELECT id FROM menu WHERE id = ?`, it.MenuID); err != nil {
				return fmt.Errorf("menu item %d: %w", it.MenuID, err)
			}
			if _, err := d.exec(ctx, tx,
				`INSERT INTO order_items (order_id, menu_id, description, price) VALUES (?, ?, ?, ?)`,
				o.ID, it.MenuID, it.Description, it.Price); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// Orders returns a diner's orders, newest first.
func (d *DB) Orders(ctx context.Context, dinerID int64) ([]Order, error) {
	orders := []Order{}
	idx := map[string]int{}
	err := d.query(ctx, d.db, func(rows *sql.Rows) error {
		o := Order{Items: []OrderItem{}}
		var created int64
		if err := rows.Scan(&o.ID, &o.DinerID, &o.FranchiseID, &o.StoreID, &created); err != nil {
			return err
		}
		o.CreatedAt = time.UnixMilli(created).UTC()
		idx[o.ID] = len(orders)
		orders = append(orders, o)
		return nil
	}, `SELECT id, diner_id, franchise_id, store_id, created_at FROM orders WHERE diner_id = ? ORDER BY created_at DESC, id`, dinerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	err = d.query(ctx, d.db, func(rows *sql.Rows) error {
		var orderID string
		var it OrderItem
		if err := rows.Scan(&orderID, &it.MenuID, &it.Description, &it.Price); err != nil {
			return err
		}
		if i, ok := idx[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
		return nil
	}, `SELECT oi.order_id, oi.menu_id, oi.description, oi.price
		FROM order_items oi JOIN orders o ON o.id = oi.order_id
		WHERE o.diner_id = ? ORDER BY oi.id`, dinerID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	return orders, nil
}
