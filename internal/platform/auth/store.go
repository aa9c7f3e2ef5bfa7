package auth

import (
	"context"
	"database/sql"
	"errors"
)

type Account struct {
	Username     string
	PasswordHash string
	Role         string
	CampusID     uint64
	TenantID     uint64
	IsDisabled   bool
	CreatedAt    string
}

type AccountStore interface {
	GetByUsername(ctx context.Context, username string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, username string) (int64, error)
	Disable(ctx context.Context, username string, disabled bool) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*Account, error) {
	const q = `
SELECT username, password_hash, role, campus_id, tenant_id, is_disabled, created_at
FROM auth_accounts
WHERE username = ?
LIMIT 1
`
	var a Account
	var isDisabledInt int
	err := s.db.QueryRowContext(ctx, q, username).Scan(
		&a.Username,
		&a.PasswordHash,
		&a.Role,
		&a.CampusID,
		&a.TenantID,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isDisabledInt != 0 {
		a.IsDisabled = true
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO auth_accounts (username, password_hash, role, campus_id, tenant_id, is_disabled, created_at)
VALUES (?, ?, ?, ?, ?, 0, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q, a.Username, a.PasswordHash, a.Role, a.CampusID, a.TenantID)
	return err
}

func (s *Store) Delete(ctx context.Context, username string) (int64, error) {
	const q = `DELETE FROM auth_accounts WHERE username = ?`
	res, err := s.db.ExecContext(ctx, q, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Disable(ctx context.Context, username string, disabled bool) (int64, error) {
	const q = `UPDATE auth_accounts SET is_disabled = ? WHERE username = ?`
	v := 0
	if disabled {
		v = 1
	}
	res, err := s.db.ExecContext(ctx, q, v, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
