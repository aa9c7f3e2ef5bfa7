package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"time"

	"SAIS-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// ===== event_attendance（セッション出席） =====

// Upsert: (event_id, username, attendance_date) のUNIQUEキーでINSERTまたはUPDATE。
// 再提出は行の上書きになる（重複行は作らない）
func (s *Store) UpsertEventAttendance(ctx context.Context, tx db.DBTX, r *EventAttendance) error {
	const q = `
	INSERT INTO event_attendance
	(record_ulid, event_id, username, attendance_date, attendance_status,
	 actual_present_hours, total_scheduled_hours, academic_year_id, campus_id,
	 start_time, end_time, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6))
	ON DUPLICATE KEY UPDATE
	attendance_status     = VALUES(attendance_status),
	actual_present_hours  = VALUES(actual_present_hours),
	total_scheduled_hours = VALUES(total_scheduled_hours),
	academic_year_id      = VALUES(academic_year_id),
	start_time            = VALUES(start_time),
	end_time              = VALUES(end_time),
	updated_at            = NOW(6)`
	_, err := tx.ExecContext(ctx, q,
		r.RecordULID, r.EventID, r.Username, r.AttendanceDate, r.AttendanceStatus,
		r.ActualPresentHours, r.TotalScheduledHours, r.AcademicYearID, r.CampusID,
		strPtrOrNil(r.StartTime), strPtrOrNil(r.EndTime))
	return err
}

// ListByUserDate: 再集計の入力。その日のそのユーザの全セッション行
// （直前に書いた1行だけではない）
func (s *Store) ListByUserDate(ctx context.Context, tx db.DBTX, username, date string) ([]EventAttendance, error) {
	const q = `
	SELECT record_ulid, event_id, username,
	       DATE_FORMAT(attendance_date, '%Y-%m-%d') AS attendance_date,
	       attendance_status, actual_present_hours, total_scheduled_hours,
	       academic_year_id, campus_id, start_time, end_time
	FROM event_attendance
	WHERE username = ? AND attendance_date = ?
	ORDER BY event_id`
	rows, err := tx.QueryContext(ctx, q, username, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventAttendance
	for rows.Next() {
		var (
			r          EventAttendance
			start, end sql.NullString
		)
		if err := rows.Scan(&r.RecordULID, &r.EventID, &r.Username, &r.AttendanceDate,
			&r.AttendanceStatus, &r.ActualPresentHours, &r.TotalScheduledHours,
			&r.AcademicYearID, &r.CampusID, &start, &end); err != nil {
			return nil, err
		}
		if start.Valid {
			v := start.String
			r.StartTime = &v
		}
		if end.Valid {
			v := end.String
			r.EndTime = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// 削除対象セッションの影響範囲（ユーザ, 日付, 学年度）。削除前に取る
type affectedRow struct {
	Username       string
	AttendanceDate string
	AcademicYearID uint64
	CampusID       uint64
}

func (s *Store) AffectedByEvent(ctx context.Context, tx db.DBTX, eventID uint64, usernames []string) ([]affectedRow, error) {
	var buf bytes.Buffer
	buf.WriteString(`
	SELECT DISTINCT username, DATE_FORMAT(attendance_date, '%Y-%m-%d'), academic_year_id, campus_id
	FROM event_attendance
	WHERE event_id = ?`)
	args := []any{eventID}
	if len(usernames) > 0 {
		buf.WriteString(" AND username IN (" + placeholders(len(usernames)) + ")")
		for _, u := range usernames {
			args = append(args, u)
		}
	}
	buf.WriteString(" ORDER BY username")

	rows, err := tx.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []affectedRow
	for rows.Next() {
		var a affectedRow
		if err := rows.Scan(&a.Username, &a.AttendanceDate, &a.AcademicYearID, &a.CampusID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteByEvent(ctx context.Context, tx db.DBTX, eventID uint64, usernames []string) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(`DELETE FROM event_attendance WHERE event_id = ?`)
	args := []any{eventID}
	if len(usernames) > 0 {
		buf.WriteString(" AND username IN (" + placeholders(len(usernames)) + ")")
		for _, u := range usernames {
			args = append(args, u)
		}
	}
	res, err := tx.ExecContext(ctx, buf.String(), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ===== daily_attendance（日次サマリ） =====

// Upsert: (username, attendance_date) キー。競合時は後勝ち
// （同一ユーザ/日付の並行呼び出しはDBの行ロックで直列化される）
func (s *Store) UpsertDaily(ctx context.Context, tx db.DBTX, d *DailyAttendance) error {
	const q = `
	INSERT INTO daily_attendance
	(username, attendance_date, status, duration, total_duration,
	 login_time, logout_time, year_name, role, campus_id, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6))
	ON DUPLICATE KEY UPDATE
	status         = VALUES(status),
	duration       = VALUES(duration),
	total_duration = VALUES(total_duration),
	login_time     = VALUES(login_time),
	logout_time    = VALUES(logout_time),
	year_name      = VALUES(year_name),
	role           = VALUES(role),
	updated_at     = NOW(6)`
	_, err := tx.ExecContext(ctx, q,
		d.Username, d.AttendanceDate, d.Status, d.Duration, d.TotalDuration,
		strPtrOrNil(d.LoginTime), strPtrOrNil(d.LogoutTime), d.YearName, d.Role, d.CampusID)
	return err
}

// ListDailyRange: 期間×ユーザ群の既存サマリを一括で引く（レポートのN+1回避）。
// ユーザ指定なしはキャンパス全行ではなく0件（CountsForUsersと同じ規約）
func (s *Store) ListDailyRange(ctx context.Context, dbtx db.DBTX, campusID uint64, usernames []string, from, to time.Time) ([]DailyAttendance, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	buf.WriteString(`
	SELECT username, DATE_FORMAT(attendance_date, '%Y-%m-%d'), status, duration, total_duration,
	       login_time, logout_time, year_name, role, campus_id
	FROM daily_attendance
	WHERE campus_id = ? AND attendance_date BETWEEN ? AND ?`)
	args := []any{campusID, from.Format(DateLayout), to.Format(DateLayout)}
	buf.WriteString(" AND username IN (" + placeholders(len(usernames)) + ")")
	for _, u := range usernames {
		args = append(args, u)
	}
	buf.WriteString(" ORDER BY attendance_date, username")

	rows, err := dbtx.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyAttendance
	for rows.Next() {
		var (
			d             DailyAttendance
			login, logout sql.NullString
		)
		if err := rows.Scan(&d.Username, &d.AttendanceDate, &d.Status, &d.Duration,
			&d.TotalDuration, &login, &logout, &d.YearName, &d.Role, &d.CampusID); err != nil {
			return nil, err
		}
		if login.Valid {
			v := login.String
			d.LoginTime = &v
		}
		if logout.Valid {
			v := logout.String
			d.LogoutTime = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ===== 範囲同期 =====

// ListSyncGroups: 範囲内のセッション出席を (ユーザ, 日付) でグルーピング。
// ロール・キャンパスも一緒に引いて、グループ毎のユーザ照会をなくす
func (s *Store) ListSyncGroups(ctx context.Context, campusID uint64, from, to time.Time, yearName string) ([]SyncGroup, error) {
	var buf bytes.Buffer
	buf.WriteString(`
	SELECT ea.username, DATE_FORMAT(ea.attendance_date, '%Y-%m-%d'), u.role, u.campus_id
	FROM event_attendance ea
	JOIN users u ON u.username = ea.username
	WHERE ea.campus_id = ? AND ea.attendance_date BETWEEN ? AND ?`)
	args := []any{campusID, from.Format(DateLayout), to.Format(DateLayout)}
	if yearName != "" {
		buf.WriteString(` AND ea.academic_year_id IN (
		SELECT academic_year_id FROM academic_years WHERE campus_id = ? AND year_name = ?)`)
		args = append(args, campusID, yearName)
	}
	buf.WriteString(`
	GROUP BY ea.username, ea.attendance_date, u.role, u.campus_id
	ORDER BY ea.attendance_date, ea.username`)

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SyncGroup
	for rows.Next() {
		var g SyncGroup
		if err := rows.Scan(&g.Username, &g.AttendanceDate, &g.Role, &g.CampusID); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// YearName: 学年度ID → 表示名
func (s *Store) YearName(ctx context.Context, tx db.DBTX, academicYearID uint64) (string, error) {
	var name string
	err := tx.QueryRowContext(ctx,
		`SELECT year_name FROM academic_years WHERE academic_year_id = ?`, academicYearID,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// ===== helpers =====

func strPtrOrNil(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
