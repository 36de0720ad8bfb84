package store

import (
	"context"
	"database/sql"
	"fmt"

	"pizza-hq/pizzeria/pkg/auth"
)

// Franchise groups stores under a set of franchisee admins.
type Franchise struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Admins []int64    `json:"admins"`
	Stores []Location `json:"stores"`
}

// Location is a single pizza store.
type Location struct {
	ID          int64  `json:"id"`
	FranchiseID int64  `json:"franchiseId"`
	Name        string `json:"name"`
}

// Franchises lists every franchise with its admins and stores.
func (d *DB) Franchises(ctx context.Context) ([]Franchise, error) {
	out := []Franchise{}
	byID := map[int64]int{}
	err := d.query(ctx, d.db, func(rows *sql.Rows) error {
		f := Franchise{Admins: []int64{}, Stores: []Location{}}
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return err
		}
		byID[f.ID] = len(out)
		out = append(out, f)
		return nil
	}, `SELECT id, name FROM franchises ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list franchises: %w", err)
	}

	err = d.query(ctx, d.db, func(rows *sql.Rows) error {
		var l Location
		if err := rows.Scan(&l.ID, &l.FranchiseID, &l.Name); err != nil {
			return err
		}
		if i, ok := byID[l.FranchiseID]; ok {
			out[i].Stores = append(out[i].Stores, l)
		}
		return nil
	}, `SELECT id, franchise_id, name FROM stores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	err = d.query(ctx, d.db, func(rows *sql.Rows) error {
		var userID, franchiseID int64
		if err := rows.Scan(&userID, &franchiseID); err != nil {
			return err
		}
		if i, ok := byID[franchiseID]; ok {
			out[i].Admins = append(out[i].Admins, userID)
		}
		return nil
	}, `SELECT user_id, object_id FROM user_roles WHERE role = ? ORDER BY user_id`, string(auth.RoleFranchisee))
	if err != nil {
		return nil, fmt.Errorf("list franchise admins: %w", err)
	}
	return out, nil
}

// CreateFranchise creates a franchise and grants each admin the
// franchisee role on it. Unknown admin emails return ErrNotFound.
func (d *DB) CreateFranchise(ctx context.Context, name string, adminEmails []string) (*Franchise, error) {
	f := &Franchise{Name: name, Admins: []int64{}, Stores: []Location{}}
	for _, email := range adminEmails {
		u, err := d.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("franchise admin %q: %w", email, err)
		}
		f.Admins = append(f.Admins, u.ID)
	}

	err := d.tx(ctx, func(tx *sql.Tx) error {
		res, err := d.exec(ctx, tx, `INSERT INTO franchises (name) VALUES (?)`, name)
		if err != nil {
			return err
		}
		if f.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		for _, id := range f.Admins {
			if _, err := d.exec(ctx, tx,
				`INSERT INTO user_roles (user_id, role, object_id) VALUES (?, ?, ?)`,
				id, string(auth.RoleFranchisee), f.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create franchise %q: %w", name, err)
	}
	return f, nil
}

// DeleteFranchise removes a franchise, its stores and its admin grants.
func (d *DB) DeleteFranchise(ctx context.Context, id int64) error {
	return d.tx(ctx, func(tx *sql.Tx) error {
		res, err := d.exec(ctx, tx, `DELETE FROM franchises WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		_, err = d.exec(ctx, tx, `DELETE FROM user_roles WHERE role = ? AND object_id = ?`,
			string(auth.RoleFranchisee), id)
		return err
	})
}

// IsFranchiseAdmin reports whether userID administers the franchise.
func (d *DB) IsFranchiseAdmin(ctx context.Context, userID, franchiseID int64) (bool, error) {
	var n int
	err := d.queryRow(ctx, d.db, []any{&n},
		`SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role = ? AND object_id = ?`,
		userID, string(auth.RoleFranchisee), franchiseID)
	return n > 0, err
}

// CreateStore adds a store to an existing franchise.
func (d *DB) CreateStore(ctx context.Context, franchiseID int64, name string) (*Location, error) {
	var exists int
	if err := d.queryRow(ctx, d.db, []any{&exists}, `SELECT id FROM franchises WHERE id = ?`, franchiseID); err != nil {
		return nil, fmt.Errorf("franchise %d: %w", franchiseID, err)
	}
	res, err := d.exec(ctx, d.db, `INSERT INTO stores (franchise_id, name) VALUES (?, ?)`, franchiseID, name)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	l := &Location{FranchiseID: franchiseID, Name: name}
	if l.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteStore removes a store from a franchise.
func (d *DB) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	res, err := d.exec(ctx, d.db, `DELETE FROM stores WHERE franchise_id = ? AND id = ?`, franchiseID, storeID)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
