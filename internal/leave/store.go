package leave

import (
	"context"
	"strings"
	"time"

	"SAIS-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(dbtx db.DBTX) *Store { return &Store{db: dbtx} }

// CountPending: 未処理の申請数（期間条件なし）
func (s *Store) CountPending(ctx context.Context, username string) (int64, error) {
	const q = `
	SELECT COUNT(*) FROM leave_requests
	WHERE username = ? AND status = ?`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, username, StatusPending).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountApproved: 期間に重なる承認済み申請数
func (s *Store) CountApproved(ctx context.Context, username string, from, to time.Time) (int64, error) {
	const q = `
	SELECT COUNT(*) FROM leave_requests
	WHERE username = ? AND status = ?
	AND start_date <= ? AND end_date >= ?`
	var n int64
	err := s.db.QueryRowContext(ctx, q, username, StatusApproved,
		to.Format(DateLayout), from.Format(DateLayout)).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// CountsForUsers: レポート用の一括取得。未処理は全期間・承認済みは対象期間で数える。
// クエリは2本だけ（ユーザ毎に引かない）
func (s *Store) CountsForUsers(ctx context.Context, usernames []string, from, to time.Time) (map[string]Counts, error) {
	out := make(map[string]Counts, len(usernames))
	if len(usernames) == 0 {
		return out, nil
	}

	// 未処理
	args := make([]any, 0, len(usernames)+3)
	args = append(args, StatusPending)
	for _, u := range usernames {
		args = append(args, u)
	}
	qPending := `
	SELECT username, COUNT(*) FROM leave_requests
	WHERE status = ? AND username IN (` + placeholders(len(usernames)) + `)
	GROUP BY username`
	rows, err := s.db.QueryContext(ctx, qPending, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var username string
		var n int64
		if err := rows.Scan(&username, &n); err != nil {
			rows.Close()
			return nil, err
		}
		c := out[username]
		c.Pending = n
		out[username] = c
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// 期間内承認済み
	args = args[:0]
	args = append(args, StatusApproved, to.Format(DateLayout), from.Format(DateLayout))
	for _, u := range usernames {
		args = append(args, u)
	}
	qApproved := `
	SELECT username, COUNT(*) FROM leave_requests
	WHERE status = ? AND start_date <= ? AND end_date >= ?
	AND username IN (` + placeholders(len(usernames)) + `)
	GROUP BY username`
	rows, err = s.db.QueryContext(ctx, qApproved, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var username string
		var n int64
		if err := rows.Scan(&username, &n); err != nil {
			return nil, err
		}
		c := out[username]
		c.Approved = n
		out[username] = c
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
