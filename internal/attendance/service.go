package attendance

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"SAIS-backend/internal/directory"
	"SAIS-backend/internal/platform/db"
)

// ===== インターフェース群 =====

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }

type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ユーザディレクトリ（ロール・キャンパスの解決に使う）
type UserDirectory interface {
	GetUser(ctx context.Context, username string) (*directory.UserInfo, error)
}

// ストア層のシーム。実体は *Store。テストではフェイクに差し替える
type dataStore interface {
	UpsertEventAttendance(ctx context.Context, tx db.DBTX, r *EventAttendance) error
	ListByUserDate(ctx context.Context, tx db.DBTX, username, date string) ([]EventAttendance, error)
	AffectedByEvent(ctx context.Context, tx db.DBTX, eventID uint64, usernames []string) ([]affectedRow, error)
	DeleteByEvent(ctx context.Context, tx db.DBTX, eventID uint64, usernames []string) (int64, error)
	UpsertDaily(ctx context.Context, tx db.DBTX, d *DailyAttendance) error
	ListDailyRange(ctx context.Context, dbtx db.DBTX, campusID uint64, usernames []string, from, to time.Time) ([]DailyAttendance, error)
	ListSyncGroups(ctx context.Context, campusID uint64, from, to time.Time, yearName string) ([]SyncGroup, error)
	YearName(ctx context.Context, tx db.DBTX, academicYearID uint64) (string, error)
}

// ===== Service本体 =====

// 出席同期エンジン。セッション出席（event_attendance）を事実の台帳として、
// 日次サマリ（daily_attendance）を常にそこから再計算できる状態に保つ。
// セッション行が存在するユーザ/日付のサマリはこのエンジンだけが書く
type Service struct {
	db    *sql.DB
	store dataStore
	dir   UserDirectory
	clock Clock
	id    IDGen
	runTx func(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error
}

func NewService(conn *sql.DB, dir UserDirectory) *Service {
	return &Service{
		db:    conn,
		store: NewStore(conn),
		dir:   dir,
		clock: realClock{},
		id:    ulidGen{},
		runTx: func(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
			return db.RunInTx(ctx, conn, nil, fn)
		},
	}
}

// RecordSessionAttendance: セッション出席の登録/再提出。
// 行の書き込みと日次サマリの再計算・upsertを同一Txで行う。
// サマリ側が失敗したら出席の書き込みごとロールバックする
// （サマリと食い違った出席記録を残すぐらいなら書かない方がまし）
func (s *Service) RecordSessionAttendance(ctx context.Context, req RecordSessionAttendanceRequest) (*SessionAttendanceResponse, error) {
	if req.EventID == 0 || req.Username == "" {
		return nil, ErrInvalid("event_id and username are required")
	}
	if _, err := time.ParseInLocation(DateLayout, req.AttendanceDate, time.UTC); err != nil {
		return nil, ErrInvalid("attendance_date must be YYYY-MM-DD")
	}
	if req.PresentHours < 0 || req.ScheduledHours < 0 {
		return nil, ErrInvalid("hours must be >= 0")
	}
	if req.AcademicYearID == 0 {
		return nil, ErrInvalid("academic_year_id is required")
	}
	for _, v := range []*string{req.StartTime, req.EndTime} {
		if v == nil || *v == "" {
			continue
		}
		if _, err := time.Parse(TimeLayout, *v); err != nil {
			return nil, ErrInvalid("start_time and end_time must be HH:MM")
		}
	}

	// ロール・キャンパスの解決に失敗したら書き込み自体を行わない
	user, err := s.dir.GetUser(ctx, req.Username)
	if err != nil {
		log.Printf("[ERROR] user lookup failed username=%s: %v", req.Username, err)
		if err == directory.ErrUserNotFound {
			return nil, ErrNotFound("user not found")
		}
		return nil, ErrInternal("user lookup failed")
	}

	row := &EventAttendance{
		RecordULID:          s.id.NewULID(s.clock.Now()),
		EventID:             req.EventID,
		Username:            req.Username,
		AttendanceDate:      req.AttendanceDate,
		AttendanceStatus:    req.AttendanceStatus,
		ActualPresentHours:  req.PresentHours,
		TotalScheduledHours: req.ScheduledHours,
		AcademicYearID:      req.AcademicYearID,
		CampusID:            user.CampusID,
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
	}

	var daily *DailyAttendance
	err = s.runTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.store.UpsertEventAttendance(ctx, tx, row); err != nil {
			return err
		}
		d, err := s.recomputeDaily(ctx, tx, user.Username, user.Role, user.CampusID, req.AttendanceDate, req.AcademicYearID)
		if err != nil {
			return err
		}
		daily = d
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] record session attendance failed username=%s date=%s: %v", req.Username, req.AttendanceDate, err)
		return nil, ErrInternal("attendance write failed")
	}

	resp := &SessionAttendanceResponse{
		RecordULID:     row.RecordULID,
		EventID:        row.EventID,
		Username:       row.Username,
		AttendanceDate: row.AttendanceDate,
	}
	if daily != nil {
		d := daily.toDTO()
		resp.Daily = &d
	}
	return resp, nil
}

// DeleteSessionAttendance: セッション出席の取り消し。
// 削除と影響ユーザ全員の日次サマリ再計算を同一Txで行う。
// 予定時間が0になったユーザは Absent・ゼロ時間のサマリに戻す（行は消さない）
func (s *Service) DeleteSessionAttendance(ctx context.Context, req DeleteSessionAttendanceRequest) (*DeleteSessionAttendanceResponse, error) {
	if req.EventID == 0 {
		return nil, ErrInvalid("event_id is required")
	}

	var resp DeleteSessionAttendanceResponse
	err := s.runTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		affected, err := s.store.AffectedByEvent(ctx, tx, req.EventID, req.Usernames)
		if err != nil {
			return err
		}

		n, err := s.store.DeleteByEvent(ctx, tx, req.EventID, req.Usernames)
		if err != nil {
			return err
		}
		resp.Deleted = n

		for _, a := range affected {
			user, err := s.dir.GetUser(ctx, a.Username)
			if err != nil {
				// 再計算できないなら削除ごと巻き戻す
				return err
			}
			if _, err := s.recomputeDaily(ctx, tx, user.Username, user.Role, a.CampusID, a.AttendanceDate, a.AcademicYearID); err != nil {
				return err
			}
			resp.Resynced++
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] delete session attendance failed event=%d: %v", req.EventID, err)
		return nil, ErrInternal("attendance delete failed")
	}
	return &resp, nil
}

// SyncRange: 範囲一括再計算。冪等。
// グループ毎に独立したTxなので、途中で失敗しても確定済みグループはそのまま残る。
// セッション行の無いユーザ/日付のサマリには触らない（削除は絶対にしない）
func (s *Service) SyncRange(ctx context.Context, req SyncRangeRequest) (*SyncRangeResponse, error) {
	if req.CampusID == 0 {
		return nil, ErrInvalid("campus_id is required")
	}
	from, err := time.ParseInLocation(DateLayout, req.From, time.UTC)
	if err != nil {
		return nil, ErrInvalid("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, req.To, time.UTC)
	if err != nil {
		return nil, ErrInvalid("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, ErrInvalid("to must be >= from")
	}

	groups, err := s.store.ListSyncGroups(ctx, req.CampusID, from, to, req.AcademicYearName)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}

	resp := &SyncRangeResponse{Groups: len(groups)}
	for _, g := range groups {
		err := s.runTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			_, err := s.recomputeDaily(ctx, tx, g.Username, g.Role, g.CampusID, g.AttendanceDate, 0)
			return err
		})
		if err != nil {
			// グループ単位の失敗は記録して続行（各グループのupsertは独立に原子的）
			log.Printf("[WARN] range sync failed username=%s date=%s: %v", g.Username, g.AttendanceDate, err)
			resp.Failed++
			continue
		}
		resp.Synced++
	}
	return resp, nil
}

// GetDailySummaries: ユーザ1人の期間サマリ（照会用）
func (s *Service) GetDailySummaries(ctx context.Context, username, fromStr, toStr string) ([]DailySummaryResponse, error) {
	if username == "" {
		return nil, ErrInvalid("username is required")
	}
	from, err := time.ParseInLocation(DateLayout, fromStr, time.UTC)
	if err != nil {
		return nil, ErrInvalid("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, toStr, time.UTC)
	if err != nil {
		return nil, ErrInvalid("to must be YYYY-MM-DD")
	}

	user, err := s.dir.GetUser(ctx, username)
	if err != nil {
		if err == directory.ErrUserNotFound {
			return nil, ErrNotFound("user not found")
		}
		return nil, ErrInternal("user lookup failed")
	}

	rows, err := s.store.ListDailyRange(ctx, s.db, user.CampusID, []string{username}, from, to)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	out := make([]DailySummaryResponse, 0, len(rows))
	for _, d := range rows {
		out = append(out, d.toDTO())
	}
	return out, nil
}

// ListDailyRange: レポートビルダー向けの一括読み。
// 読み取り専用Txでスナップショットを取る。対象ユーザ0件なら読みに行かない
func (s *Service) ListDailyRange(ctx context.Context, campusID uint64, usernames []string, from, to time.Time) ([]DailyAttendance, error) {
	if len(usernames) == 0 {
		return nil, nil
	}
	var out []DailyAttendance
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		rows, err := s.store.ListDailyRange(ctx, tx, campusID, usernames, from, to)
		if err != nil {
			return err
		}
		out = rows
		return nil
	})
	return out, err
}

// recomputeDaily: (ユーザ, 日付) の全セッション行から日次サマリを作り直してupsertする。
// yearIDHint はセッション行が残っていない時（削除後）の学年度名解決に使う
func (s *Service) recomputeDaily(ctx context.Context, tx db.DBTX, username, role string, campusID uint64, date string, yearIDHint uint64) (*DailyAttendance, error) {
	rows, err := s.store.ListByUserDate(ctx, tx, username, date)
	if err != nil {
		return nil, err
	}

	yearID := yearIDHint
	if len(rows) > 0 {
		yearID = rows[0].AcademicYearID
	}
	yearName := ""
	if yearID > 0 {
		yearName, err = s.store.YearName(ctx, tx, yearID)
		if err != nil {
			return nil, err
		}
	}

	sum := ComputeDailySummary(rows)
	d := &DailyAttendance{
		Username:       username,
		AttendanceDate: date,
		Status:         sum.Status,
		Duration:       sum.Duration,
		TotalDuration:  sum.TotalDuration,
		LoginTime:      sum.LoginTime,
		LogoutTime:     sum.LogoutTime,
		YearName:       yearName,
		Role:           role,
		CampusID:       campusID,
	}
	if err := s.store.UpsertDaily(ctx, tx, d); err != nil {
		return nil, err
	}
	return d, nil
}
