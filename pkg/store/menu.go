package store

import (
	"context"
	"database/sql"
	"fmt"
)

// MenuItem is a pizza on the menu. Price is in BTC.
type MenuItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Menu returns every menu item ordered by id.
func (d *DB) Menu(ctx context.Context) ([]MenuItem, error) {
	items := []MenuItem{}
	err := d.query(ctx, d.db, func(rows *sql.Rows) error {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.Title, &m.Image, &m.Price, &m.Description); err != nil {
			return err
		}
		items = append(items, m)
		return nil
	}, `SELECT id, title, image, price, description FROM menu ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

// AddMenuItem appends an item to the menu.
func (d *DB) AddMenuItem(ctx context.Context, item MenuItem) (*MenuItem, error) {
	if item.Title == "" {
		return nil, fmt.Errorf("menu item title cannot be empty")
	}
	if item.Price < 0 {
		return nil, fmt.Errorf("menu item price cannot be negative")
	}
	res, err := d.exec(ctx, d.db,
		`INSERT INTO menu (title, image, price, description) VALUES (?, ?, ?, ?)`,
		item.Title, item.Image, item.Price, item.Description)
	if err != nil {
		return nil, fmt.Errorf("add menu item: %w", err)
	}
	if item.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return &item, nil
}
