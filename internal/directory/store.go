package directory

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"

	"SAIS-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(dbtx db.DBTX) *Store { return &Store{db: dbtx} }

var ErrUserNotFound = errors.New("user not found")

func (s *Store) GetUser(ctx context.Context, username string) (*UserInfo, error) {
	const q = `
	SELECT username, display_name, role, campus_id, tenant_id
	FROM users
	WHERE username = ?
	LIMIT 1`
	var u UserInfo
	err := s.db.QueryRowContext(ctx, q, username).Scan(
		&u.Username, &u.DisplayName, &u.Role, &u.CampusID, &u.TenantID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers: ロール・キャンパス・（生徒向け）クラス/組・学年度名でユーザを絞る。
// クラス/組/学年度の条件は在籍・担当テーブル側のEXISTSで掛けるので、
// Staff等のロールには影響しない。並びは username 固定（レポートの決定性要件）。
func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]UserInfo, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT u.username, u.display_name, u.role, u.campus_id, u.tenant_id
	FROM users u
	`)

	wheres = append(wheres, "u.campus_id = ?")
	args = append(args, f.CampusID)
	if f.TenantID > 0 {
		wheres = append(wheres, "u.tenant_id = ?")
		args = append(args, f.TenantID)
	}
	if len(f.Roles) > 0 {
		wheres = append(wheres, "u.role IN ("+placeholders(len(f.Roles))+")")
		for _, r := range f.Roles {
			args = append(args, r)
		}
	}

	// 生徒側の絞り込み（在籍テーブル経由）
	if f.ClassID > 0 || f.SectionID > 0 || f.YearName != "" {
		var sub bytes.Buffer
		sub.WriteString(`SELECT 1 FROM student_enrollments e
		JOIN academic_years y ON y.academic_year_id = e.academic_year_id
		WHERE e.username = u.username`)
		var subArgs []any
		if f.ClassID > 0 {
			sub.WriteString(" AND e.class_id = ?")
			subArgs = append(subArgs, f.ClassID)
		}
		if f.SectionID > 0 {
			sub.WriteString(" AND e.section_id = ?")
			subArgs = append(subArgs, f.SectionID)
		}
		if f.YearName != "" {
			sub.WriteString(" AND y.year_name = ?")
			subArgs = append(subArgs, f.YearName)
		}
		wheres = append(wheres, "(u.role <> 'Student' OR EXISTS ("+sub.String()+"))")
		args = append(args, subArgs...)
	}

	// 教員側は学年度名のみ（担当コマから導く）
	if f.YearName != "" {
		wheres = append(wheres, `(u.role <> 'Teacher' OR EXISTS (
		SELECT 1 FROM teacher_assignments a
		JOIN academic_years y ON y.academic_year_id = a.academic_year_id
		WHERE a.username = u.username AND y.year_name = ?))`)
		args = append(args, f.YearName)
	}

	buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	buf.WriteString(" ORDER BY u.username ASC")

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserInfo
	for rows.Next() {
		var u UserInfo
		if err := rows.Scan(&u.Username, &u.DisplayName, &u.Role, &u.CampusID, &u.TenantID); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// StudentYearIDs: 生徒の在籍学年度IDをまとめて引く（username → 学年度ID群）
func (s *Store) StudentYearIDs(ctx context.Context, usernames []string) (map[string][]uint64, error) {
	return s.yearIDs(ctx, `
	SELECT username, academic_year_id
	FROM student_enrollments
	WHERE username IN (%s)
	ORDER BY username, academic_year_id`, usernames)
}

// TeacherYearIDs: 教員が担当するクラス組から学年度IDを導出（複数学年度にまたがりうる）
func (s *Store) TeacherYearIDs(ctx context.Context, usernames []string) (map[string][]uint64, error) {
	return s.yearIDs(ctx, `
	SELECT DISTINCT username, academic_year_id
	FROM teacher_assignments
	WHERE username IN (%s)
	ORDER BY username, academic_year_id`, usernames)
}

func (s *Store) yearIDs(ctx context.Context, qTmpl string, usernames []string) (map[string][]uint64, error) {
	out := make(map[string][]uint64, len(usernames))
	if len(usernames) == 0 {
		return out, nil
	}
	q := strings.Replace(qTmpl, "%s", placeholders(len(usernames)), 1)
	args := make([]any, 0, len(usernames))
	for _, u := range usernames {
		args = append(args, u)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var username string
		var yearID uint64
		if err := rows.Scan(&username, &yearID); err != nil {
			return nil, err
		}
		out[username] = append(out[username], yearID)
	}
	return out, rows.Err()
}

// StudentEnrollments: 生徒1人の在籍情報（クラス・組・学年度名つき）
func (s *Store) StudentEnrollments(ctx context.Context, username string) ([]StudentEnrollment, error) {
	const q = `
	SELECT e.username, e.academic_year_id, y.year_name, e.class_id, e.section_id
	FROM student_enrollments e
	JOIN academic_years y ON y.academic_year_id = e.academic_year_id
	WHERE e.username = ?
	ORDER BY e.academic_year_id`
	rows, err := s.db.QueryContext(ctx, q, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StudentEnrollment
	for rows.Next() {
		var e StudentEnrollment
		if err := rows.Scan(&e.Username, &e.AcademicYearID, &e.YearName, &e.ClassID, &e.SectionID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
