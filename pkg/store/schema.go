package store

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_roles (
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	object_id INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, role, object_id)
);

CREATE TABLE IF NOT EXISTS menu (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	price REAL NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS franchises (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS stores (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	franchise_id INTEGER NOT NULL REFERENCES franchises(id) ON DELETE CASCADE,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id TEXT PRIMARY KEY,
	diner_id INTEGER NOT NULL REFERENCES users(id),
	franchise_id INTEGER NOT NULL,
	store_id INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	menu_id INTEGER NOT NULL,
	description TEXT NOT NULL,
	price REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_diner ON orders(diner_id);
CREATE INDEX IF NOT EXISTS idx_stores_franchise ON stores(franchise_id);
`

var defaultMenu = []MenuItem{
	{Title: "Veggie", Image: "pizza1.png", Price: 0.0038, Description: "A garden of delight"},
	{Title: "Pepperoni", Image: "pizza2.png", Price: 0.0042, Description: "Spicy treat"},
	{Title: "Margarita", Image: "pizza3.png", Price: 0.0042, Description: "Essential classic"},
	{Title: "Crusty", Image: "pizza4.png", Price: 0.0028, Description: "A dry mouthed favorite"},
	{Title: "Charred Leopard", Image: "pizza5.png", Price: 0.0099, Description: "For those with a darker side"},
}

func (d *DB) initSchema(ctx context.Context) error {
	if _, err := d.exec(ctx, d.db, schema); err != nil {
		return err
	}

	var n int
	if err := d.queryRow(ctx, d.db, []any{&n}, `SELECT COUNT(*) FROM menu`); err != nil {
		return fmt.Errorf("count menu: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, item := range defaultMenu {
		if _, err := d.AddMenuItem(ctx, item); err != nil {
			return fmt.Errorf("seed menu: %w", err)
		}
	}
	return nil
}
