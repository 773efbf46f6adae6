package app

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (a *App) userByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	err := a.DB.QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (a *App) emailInUse(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := a.DB.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email,
	).Scan(&exists)
	return exists, err
}

// patientByUserID resolves the caller to their patient profile through
// the owning user_id foreign key.
func (a *App) patientByUserID(ctx context.Context, userID string) (*Patient, error) {
	p := &Patient{}
	err := a.DB.QueryRow(ctx,
		`SELECT id, user_id, full_name, email, phone, created_at, updated_at
		 FROM patients WHERE user_id=$1`, userID,
	).Scan(&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errNotFound("Patient profile not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
