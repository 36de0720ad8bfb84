package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pizza-hq/pizzeria/pkg/auth"
)

// User is a registered account. PasswordHash never leaves the process.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Roles        []UserRole `json:"roles"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"-"`
}

// UserRole grants a role, scoped to an object for franchisees.
type UserRole struct {
	Role     auth.Role `json:"role"`
	ObjectID int64     `json:"objectId,omitempty"`
}

// Identity converts the user into a token subject.
func (u *User) Identity() auth.Identity {
	id := auth.Identity{UserID: u.ID, Name: u.Name, Email: u.Email}
	for _, r := range u.Roles {
		id.Roles = append(id.Roles, r.Role)
	}
	return id
}

// AddUser stores a new user with an already hashed password. A user with
// no roles becomes a diner. Returns ErrDuplicate if the email is taken.
func (d *DB) AddUser(ctx context.Context, name, email, passwordHash string, roles ...UserRole) (*User, error) {
	if len(roles) == 0 {
		roles = []UserRole{{Role: auth.RoleDiner}}
	}
	u := &User{
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Roles:        roles,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := d.tx(ctx, func(tx *sql.Tx) error {
		res, err := d.exec(ctx, tx,
			`INSERT INTO users (name, email, password, created_at) VALUES (?, ?, ?, ?)`,
			u.Name, u.Email, u.PasswordHash, u.CreatedAt.Unix())
		if err != nil {
			return err
		}
		if u.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		for _, r := range u.Roles {
			if _, err := d.exec(ctx, tx,
				`INSERT INTO user_roles (user_id, role, object_id) VALUES (?, ?, ?)`,
				u.ID, string(r.Role), r.ObjectID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add user %q: %w", u.Email, err)
	}
	return u, nil
}

// GetUserByEmail loads a user and their roles.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	var created int64
	err := d.queryRow(ctx, d.db, []any{&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created},
		`SELECT id, name, email, password, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	if u.Roles, err = d.userRoles(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser loads a user by id.
func (d *DB) GetUser(ctx context.Context, id int64) (*User, error) {
	u := &User{}
	var created int64
	err := d.queryRow(ctx, d.db, []any{&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created},
		`SELECT id, name, email, password, created_at FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	if u.Roles, err = d.userRoles(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (d *DB) userRoles(ctx context.Context, userID int64) ([]UserRole, error) {
	var roles []UserRole
	err := d.query(ctx, d.db, func(rows *sql.Rows) error {
		var r UserRole
		var role string
		if err := rows.Scan(&role, &r.ObjectID); err != nil {
			return err
		}
		r.Role = auth.Role(role)
		roles = append(roles, r)
		return nil
	}, `SELECT role, object_id FROM user_roles WHERE user_id = ? ORDER BY role`, userID)
	return roles, err
}

// EnsureAdmin creates the bootstrap admin account if the email is unused.
func (d *DB) EnsureAdmin(ctx context.Context, name, email, passwordHash string) (*User, error) {
	u, err := d.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return d.AddUser(ctx, name, email, passwordHash, UserRole{Role: auth.RoleAdmin})
}
