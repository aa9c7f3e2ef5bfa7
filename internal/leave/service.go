package leave

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ===== Error model (attendance/calendar と同型) =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) && api.Code == CodeInvalidArgument {
		return 400
	}
	return 500
}

// ===== Service =====

type Service struct {
	store *Store
}

func NewService(conn *sql.DB) *Service {
	return &Service{store: NewStore(conn)}
}

type SummaryResponse struct {
	Username string `json:"username"`
	From     string `json:"from"`
	To       string `json:"to"`
	Counts
}

// GET /leaves/summary
func (s *Service) Summary(ctx context.Context, username, fromStr, toStr string) (*SummaryResponse, error) {
	if username == "" || fromStr == "" || toStr == "" {
		return nil, ErrInvalid("username, from and to are required")
	}
	from, err := time.ParseInLocation(DateLayout, fromStr, time.UTC)
	if err != nil {
		return nil, ErrInvalid("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, toStr, time.UTC)
	if err != nil {
		return nil, ErrInvalid("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, ErrInvalid("to must be >= from")
	}

	pending, err := s.store.CountPending(ctx, username)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	approved, err := s.store.CountApproved(ctx, username, from, to)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}

	return &SummaryResponse{
		Username: username,
		From:     fromStr,
		To:       toStr,
		Counts:   Counts{Pending: pending, Approved: approved},
	}, nil
}

// CountsForUsers: レポートビルダー向けの一括取得
func (s *Service) CountsForUsers(ctx context.Context, usernames []string, from, to time.Time) (map[string]Counts, error) {
	return s.store.CountsForUsers(ctx, usernames, from, to)
}
