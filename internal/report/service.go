package report

import (
	"context"
	"log"
	"time"

	"SAIS-backend/internal/attendance"
	"SAIS-backend/internal/calendar"
	"SAIS-backend/internal/directory"
	"SAIS-backend/internal/leave"
)

// ===== 依存インターフェース群 =====
// 実体は各フィーチャーのService。テストではフェイクに差し替える

type UserSource interface {
	ListUsers(ctx context.Context, f directory.UserFilter) ([]directory.UserInfo, error)
	ResolveYearContexts(ctx context.Context, users []directory.UserInfo) (map[string][]uint64, error)
}

type PolicySource interface {
	PolicySetFor(ctx context.Context, campusID uint64, from, to time.Time) (*calendar.PolicySet, error)
}

type AttendanceSource interface {
	ListDailyRange(ctx context.Context, campusID uint64, usernames []string, from, to time.Time) ([]attendance.DailyAttendance, error)
}

type Syncer interface {
	SyncRange(ctx context.Context, req attendance.SyncRangeRequest) (*attendance.SyncRangeResponse, error)
}

type LeaveSource interface {
	CountsForUsers(ctx context.Context, usernames []string, from, to time.Time) (map[string]leave.Counts, error)
}

// ===== Service本体 =====

type Service struct {
	users  UserSource
	cal    PolicySource
	att    AttendanceSource
	syncer Syncer
	leaves LeaveSource
}

func NewService(users UserSource, cal PolicySource, att AttendanceSource, syncer Syncer, leaves LeaveSource) *Service {
	return &Service{users: users, cal: cal, att: att, syncer: syncer, leaves: leaves}
}

// BuildReport: 期間×ユーザの統合出席レポート。
//
//  1. 生徒系ロールが含まれるなら先に範囲同期（サマリの鮮度保証）
//  2. 対象ユーザの解決（1クエリ）と学年度コンテキストの解決（2クエリ）
//  3. ポリシー一式・既存サマリ・休暇件数をそれぞれ一括取得
//  4. 日付×ユーザの二重ループで行を組み立てる
//
// 入力とDB状態が同じなら出力はバイト単位で同一（順序は 日付→ユーザ名 固定）。
// 下位の取得がひとつでも失敗したらレポート全体を失敗にする
// （行が黙って欠けたレポートの方が害が大きい）
func (s *Service) BuildReport(ctx context.Context, q Query) (*Response, error) {
	if q.CampusID == 0 {
		return nil, ErrInvalid("campus_id is required")
	}
	if len(q.Roles) == 0 {
		return nil, ErrInvalid("at least one role is required")
	}
	from, err := time.ParseInLocation(DateLayout, q.From, time.UTC)
	if err != nil {
		return nil, ErrInvalid("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, q.To, time.UTC)
	if err != nil {
		return nil, ErrInvalid("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, ErrInvalid("to must be >= from")
	}

	// 1. 生徒が混ざるレポートはセッション出席からサマリを作り直してから読む
	if s.hasStudentRole(q.Roles) {
		if _, err := s.syncer.SyncRange(ctx, attendance.SyncRangeRequest{
			CampusID:         q.CampusID,
			From:             q.From,
			To:               q.To,
			AcademicYearName: q.AcademicYearName,
		}); err != nil {
			return nil, ErrInternal("pre-report sync failed: " + err.Error())
		}
	}

	// 2. 対象ユーザ
	users, err := s.users.ListUsers(ctx, directory.UserFilter{
		TenantID:  q.TenantID,
		CampusID:  q.CampusID,
		Roles:     q.Roles,
		YearName:  q.AcademicYearName,
		ClassID:   q.ClassID,
		SectionID: q.SectionID,
	})
	if err != nil {
		return nil, ErrInternal("user fetch failed: " + err.Error())
	}

	yearCtx, err := s.users.ResolveYearContexts(ctx, users)
	if err != nil {
		return nil, ErrInternal("year context fetch failed: " + err.Error())
	}

	usernames := make([]string, 0, len(users))
	for _, u := range users {
		usernames = append(usernames, u.Username)
	}

	// 3. 一括先読み（ユーザ・日付毎のクエリ発行はしない）
	set, err := s.cal.PolicySetFor(ctx, q.CampusID, from, to)
	if err != nil {
		return nil, ErrInternal("policy fetch failed: " + err.Error())
	}

	dailies, err := s.att.ListDailyRange(ctx, q.CampusID, usernames, from, to)
	if err != nil {
		return nil, ErrInternal("daily attendance fetch failed: " + err.Error())
	}
	dailyIdx := make(map[string]attendance.DailyAttendance, len(dailies))
	for _, d := range dailies {
		dailyIdx[d.Username+"|"+d.AttendanceDate] = d
	}

	leaveIdx, err := s.leaves.CountsForUsers(ctx, usernames, from, to)
	if err != nil {
		return nil, ErrInternal("leave counts fetch failed: " + err.Error())
	}

	// 4. 行の組み立て（日付 → ユーザ名 の安定順）
	days := int(to.Sub(from).Hours()/24) + 1
	rows := make([]Row, 0, days*len(users))
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format(DateLayout)
		for _, u := range users {
			st := set.ResolveDay(d, u.Role, yearCtx[u.Username])

			row := Row{
				Date:        dateStr,
				Username:    u.Username,
				DisplayName: u.DisplayName,
				Role:        u.Role,

				Status:        attendance.StatusNoAttendance,
				Duration:      "00:00",
				TotalDuration: "00:00",

				IsHoliday:     st.IsHoliday,
				IsHalfDay:     st.IsHalfDay,
				ExpectedHours: ExpectedHoursFullDay,

				PendingLeaves:  leaveIdx[u.Username].Pending,
				ApprovedLeaves: leaveIdx[u.Username].Approved,
			}
			if st.IsHalfDay {
				row.ExpectedHours = ExpectedHoursHalfDay
			}

			if daily, ok := dailyIdx[u.Username+"|"+dateStr]; ok {
				row.Status = daily.Status
				row.Duration = daily.Duration
				row.TotalDuration = daily.TotalDuration
				row.LoginTime = daily.LoginTime
				row.LogoutTime = daily.LogoutTime
				row.YearName = daily.YearName
			}
			rows = append(rows, row)
		}
	}

	log.Printf("[INFO] report built campus=%d range=%s..%s users=%d rows=%d",
		q.CampusID, q.From, q.To, len(users), len(rows))

	return &Response{From: q.From, To: q.To, Users: len(users), Rows: rows}, nil
}

func (s *Service) hasStudentRole(roles []string) bool {
	for _, r := range roles {
		if directory.IsSessionAggregated(r) {
			return true
		}
	}
	return false
}
