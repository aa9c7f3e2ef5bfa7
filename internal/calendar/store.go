package calendar

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"SAIS-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(dbtx db.DBTX) *Store { return &Store{db: dbtx} }

// ===== 取得系（Policy Store）。ビジネスロジックは持たない =====

// キャンパスの週末ポリシー全件（設定済みの学年度ぶん）。0件でもエラーにしない
func (s *Store) ListWeekendPolicies(ctx context.Context, campusID uint64) ([]WeekendPolicy, error) {
	const q = `
	SELECT policy_id, campus_id, academic_year_id,
	       is_sunday_holiday, is_saturday_holiday, is_saturday_half_day
	FROM weekend_policies
	WHERE campus_id = ?
	ORDER BY academic_year_id`
	rows, err := s.db.QueryContext(ctx, q, campusID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WeekendPolicy
	for rows.Next() {
		var p WeekendPolicy
		if err := rows.Scan(&p.PolicyID, &p.CampusID, &p.AcademicYearID,
			&p.IsSundayHoliday, &p.IsSaturdayHoliday, &p.IsSaturdayHalfDay); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// 期間に重なる休日イベント。学年度スコープはm2m（holiday_event_years）を
// LEFT JOINで一括取得する（イベント毎に引き直さない）
func (s *Store) ListHolidayEvents(ctx context.Context, campusID uint64, from, to time.Time) ([]HolidayEvent, error) {
	const q = `
	SELECT e.event_id, e.event_ulid, e.campus_id, e.title,
	       e.start_date, e.end_date, e.duration_category,
	       ey.academic_year_id
	FROM holiday_events e
	LEFT JOIN holiday_event_years ey ON ey.event_id = e.event_id
	WHERE e.campus_id = ? AND e.start_date <= ? AND e.end_date >= ?
	ORDER BY e.start_date, e.event_id, ey.academic_year_id`
	rows, err := s.db.QueryContext(ctx, q, campusID, to.Format(DateLayout), from.Format(DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HolidayEvent
	for rows.Next() {
		var (
			ev     HolidayEvent
			yearID sql.NullInt64
		)
		if err := rows.Scan(&ev.EventID, &ev.EventULID, &ev.CampusID, &ev.Title,
			&ev.StartDate, &ev.EndDate, &ev.DurationCategory, &yearID); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].EventID == ev.EventID {
			// 同一イベントのスコープ行
			if yearID.Valid {
				out[n-1].Scope = appendScopeYear(out[n-1].Scope, uint64(yearID.Int64))
			}
			continue
		}
		if yearID.Valid {
			ev.Scope = ScopeYears([]uint64{uint64(yearID.Int64)})
		} else {
			ev.Scope = ScopeAll()
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// 期間内の特別出校日（スコープの扱いは休日イベントと同じ）
func (s *Store) ListSpecialWorkingDays(ctx context.Context, campusID uint64, from, to time.Time) ([]SpecialWorkingDay, error) {
	const q = `
	SELECT d.special_id, d.campus_id, d.work_date, d.note, dy.academic_year_id
	FROM special_working_days d
	LEFT JOIN special_working_day_years dy ON dy.special_id = d.special_id
	WHERE d.campus_id = ? AND d.work_date BETWEEN ? AND ?
	ORDER BY d.work_date, d.special_id, dy.academic_year_id`
	rows, err := s.db.QueryContext(ctx, q, campusID, from.Format(DateLayout), to.Format(DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SpecialWorkingDay
	for rows.Next() {
		var (
			sp     SpecialWorkingDay
			yearID sql.NullInt64
		)
		if err := rows.Scan(&sp.SpecialID, &sp.CampusID, &sp.WorkDate, &sp.Note, &yearID); err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1].SpecialID == sp.SpecialID {
			if yearID.Valid {
				out[n-1].Scope = appendScopeYear(out[n-1].Scope, uint64(yearID.Int64))
			}
			continue
		}
		if yearID.Valid {
			sp.Scope = ScopeYears([]uint64{uint64(yearID.Int64)})
		} else {
			sp.Scope = ScopeAll()
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func appendScopeYear(sc Scope, yearID uint64) Scope {
	if sc.All {
		// 全適用として読み始めた後にスコープ行が来ることはない（ORDER BY保証）
		return sc
	}
	sc.YearIDs = append(sc.YearIDs, yearID)
	return sc
}

// ===== 管理系（休日イベント・特別出校日・週末ポリシーの設定） =====

func (s *Store) InsertHolidayEvent(ctx context.Context, tx db.DBTX, ev *HolidayEvent) error {
	const q = `
	INSERT INTO holiday_events (event_ulid, campus_id, title, start_date, end_date, duration_category, created_at)
	VALUES (?, ?, ?, ?, ?, ?, NOW(6))`
	res, err := tx.ExecContext(ctx, q, ev.EventULID, ev.CampusID, ev.Title,
		ev.StartDate.Format(DateLayout), ev.EndDate.Format(DateLayout), ev.DurationCategory)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.EventID = uint64(id)

	if ev.Scope.All {
		return nil
	}
	return s.insertYearScope(ctx, tx, "holiday_event_years", "event_id", ev.EventID, ev.Scope.YearIDs)
}

func (s *Store) DeleteHolidayEvent(ctx context.Context, tx db.DBTX, campusID uint64, eventULID string) (int64, error) {
	// スコープ行はFKのON DELETE CASCADEで消える
	const q = `DELETE FROM holiday_events WHERE campus_id = ? AND event_ulid = ?`
	res, err := tx.ExecContext(ctx, q, campusID, eventULID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) InsertSpecialWorkingDay(ctx context.Context, tx db.DBTX, sp *SpecialWorkingDay) error {
	const q = `
	INSERT INTO special_working_days (campus_id, work_date, note, created_at)
	VALUES (?, ?, ?, NOW(6))`
	res, err := tx.ExecContext(ctx, q, sp.CampusID, sp.WorkDate.Format(DateLayout), sp.Note)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sp.SpecialID = uint64(id)

	if sp.Scope.All {
		return nil
	}
	return s.insertYearScope(ctx, tx, "special_working_day_years", "special_id", sp.SpecialID, sp.Scope.YearIDs)
}

func (s *Store) insertYearScope(ctx context.Context, tx db.DBTX, table, idCol string, id uint64, yearIDs []uint64) error {
	if len(yearIDs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO " + table + " (" + idCol + ", academic_year_id) VALUES ")
	args := make([]any, 0, len(yearIDs)*2)
	for i, y := range yearIDs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?)")
		args = append(args, id, y)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// 週末ポリシーは (campus, year) 1件制約をUNIQUEキーで担保してupsert
func (s *Store) UpsertWeekendPolicy(ctx context.Context, p *WeekendPolicy) error {
	const q = `
	INSERT INTO weekend_policies
	(campus_id, academic_year_id, is_sunday_holiday, is_saturday_holiday, is_saturday_half_day)
	VALUES (?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
	is_sunday_holiday    = VALUES(is_sunday_holiday),
	is_saturday_holiday  = VALUES(is_saturday_holiday),
	is_saturday_half_day = VALUES(is_saturday_half_day)`
	_, err := s.db.ExecContext(ctx, q, p.CampusID, p.AcademicYearID,
		p.IsSundayHoliday, p.IsSaturdayHoliday, p.IsSaturdayHalfDay)
	return err
}
