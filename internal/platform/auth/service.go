package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)

type Service struct {
	store  AccountStore
	secret []byte
}

// secret は設定ファイル由来（コードへの埋め込み禁止）
func NewService(db *sql.DB, secret []byte) *Service {
	return &Service{store: NewStore(db), secret: secret}
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, in RegisterInput) error
	Delete(ctx context.Context, username string) error
	SetDisabled(ctx context.Context, username string, disabled bool) error
}

type RegisterInput struct {
	Username string
	Password string
	Role     string
	CampusID uint64
	TenantID uint64
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	acct, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if acct == nil {
		return "", errors.New("authentication failed")
	}
	if acct.IsDisabled {
		return "", errors.New("account disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("authentication failed")
	}

	// campus/tenant はテナント分離のチェックに使うのでクレームに含める
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       acct.Username,
		"role":      acct.Role,
		"campus_id": acct.CampusID,
		"tenant_id": acct.TenantID,
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	exists, err := s.store.GetByUsername(ctx, in.Username)
	if err != nil {
		return err
	}
	if exists != nil {
		return ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.store.Create(ctx, &Account{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
		CampusID:     in.CampusID,
		TenantID:     in.TenantID,
		IsDisabled:   false,
	})
}

func (s *Service) Delete(ctx context.Context, username string) error {
	n, err := s.store.Delete(ctx, username)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) SetDisabled(ctx context.Context, username string, disabled bool) error {
	n, err := s.store.Disable(ctx, username, disabled)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
