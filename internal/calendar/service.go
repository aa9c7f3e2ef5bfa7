package calendar

import (
	"context"
	"crypto/rand"
	"database/sql"
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

// ===== Service本体 =====

type Service struct {
	db    *sql.DB
	store *Store
	clock Clock
	id    IDGen
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		db:    conn,
		store: NewStore(conn),
		clock: realClock{},
		id:    ulidGen{},
	}
}

// PolicySetFor: 期間に効くポリシー一式を先読みしてPolicySetを組む。
// レポート側のN+1回避はここに乗る（ユーザ・日付毎に引き直さない）
func (s *Service) PolicySetFor(ctx context.Context, campusID uint64, from, to time.Time) (*PolicySet, error) {
	policies, err := s.store.ListWeekendPolicies(ctx, campusID)
	if err != nil {
		return nil, err
	}
	holidays, err := s.store.ListHolidayEvents(ctx, campusID, from, to)
	if err != nil {
		return nil, err
	}
	specials, err := s.store.ListSpecialWorkingDays(ctx, campusID, from, to)
	if err != nil {
		return nil, err
	}
	return NewPolicySet(policies, holidays, specials), nil
}

// GET /calendar/day-status
// 単日判定。UI表示向けに、該当した休日イベント名・特別出校日メモをdetailsに入れる
func (s *Service) DayStatus(ctx context.Context, campusID uint64, dateStr string, academicYearID uint64) (*DayStatusResponse, error) {
	if campusID == 0 || dateStr == "" || academicYearID == 0 {
		return nil, ErrInvalid("campus_id, date and academic_year_id are required")
	}
	date, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return nil, ErrInvalid("date must be YYYY-MM-DD")
	}

	set, err := s.PolicySetFor(ctx, campusID, date, date)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}

	yearIDs := []uint64{academicYearID}
	st := set.ResolveDay(date, directory.RoleStudent, yearIDs)

	resp := &DayStatusResponse{
		Date:           dateStr,
		AcademicYearID: academicYearID,
		IsHoliday:      st.IsHoliday,
		IsHalfDay:      st.IsHalfDay,
	}
	for _, sp := range set.Specials {
		if sameDate(sp.WorkDate, date) && sp.Scope.Matches(yearIDs, true) {
			resp.Details = append(resp.Details, "special working day: "+sp.Note)
		}
	}
	for _, ev := range set.Holidays {
		if ev.Covers(date) && ev.Scope.Matches(yearIDs, true) {
			resp.Details = append(resp.Details, ev.Title)
		}
	}
	return resp, nil
}

// GET /calendar/events
func (s *Service) ListEvents(ctx context.Context, campusID uint64, fromStr, toStr string) (*CalendarEventsResponse, error) {
	if campusID == 0 || fromStr == "" || toStr == "" {
		return nil, ErrInvalid("campus_id, from and to are required")
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

	holidays, err := s.store.ListHolidayEvents(ctx, campusID, from, to)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	specials, err := s.store.ListSpecialWorkingDays(ctx, campusID, from, to)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}

	out := &CalendarEventsResponse{
		Holidays:    make([]HolidayEventResponse, 0, len(holidays)),
		SpecialDays: make([]SpecialWorkingDayResponse, 0, len(specials)),
	}
	for _, ev := range holidays {
		out.Holidays = append(out.Holidays, ev.toDTO())
	}
	for _, sp := range specials {
		out.SpecialDays = append(out.SpecialDays, sp.toDTO())
	}
	return out, nil
}

// ===== 管理系（ポリシー設定はこのエンジンの読み手ではなく管理者側の操作） =====

func (s *Service) CreateHolidayEvent(ctx context.Context, req CreateHolidayEventRequest) (*HolidayEventResponse, error) {
	start, err := time.ParseInLocation(DateLayout, req.StartDate, time.UTC)
	if err != nil {
		return nil, ErrInvalid("start_date must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(DateLayout, req.EndDate, time.UTC)
	if err != nil {
		return nil, ErrInvalid("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, ErrInvalid("end_date must be >= start_date")
	}

	category := DurationFullDay
	if req.DurationCategory != nil && *req.DurationCategory != "" {
		category = *req.DurationCategory
	}
	if category != DurationFullDay && category != DurationHalfDay {
		return nil, ErrInvalid("duration_category must be full_day or half_day")
	}

	ev := &HolidayEvent{
		EventULID:        s.id.NewULID(s.clock.Now()),
		CampusID:         req.CampusID,
		Title:            req.Title,
		StartDate:        start,
		EndDate:          end,
		DurationCategory: category,
		Scope:            ScopeYears(req.AcademicYearIDs),
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return s.store.InsertHolidayEvent(ctx, tx, ev)
	})
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	resp := ev.toDTO()
	return &resp, nil
}

func (s *Service) DeleteHolidayEvent(ctx context.Context, campusID uint64, eventULID string) error {
	if campusID == 0 || eventULID == "" {
		return ErrInvalid("campus_id and event_id are required")
	}
	var n int64
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		n, err = s.store.DeleteHolidayEvent(ctx, tx, campusID, eventULID)
		return err
	})
	if err != nil {
		return ErrInternal(err.Error())
	}
	if n == 0 {
		return ErrNotFound("holiday event not found")
	}
	return nil
}

func (s *Service) CreateSpecialWorkingDay(ctx context.Context, req CreateSpecialWorkingDayRequest) (*SpecialWorkingDayResponse, error) {
	date, err := time.ParseInLocation(DateLayout, req.WorkDate, time.UTC)
	if err != nil {
		return nil, ErrInvalid("work_date must be YYYY-MM-DD")
	}

	sp := &SpecialWorkingDay{
		CampusID: req.CampusID,
		WorkDate: date,
		Scope:    ScopeYears(req.AcademicYearIDs),
	}
	if req.Note != nil {
		sp.Note = *req.Note
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return s.store.InsertSpecialWorkingDay(ctx, tx, sp)
	})
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	resp := sp.toDTO()
	return &resp, nil
}

func (s *Service) SetWeekendPolicy(ctx context.Context, req UpsertWeekendPolicyRequest) error {
	p := &WeekendPolicy{
		CampusID:          req.CampusID,
		AcademicYearID:    req.AcademicYearID,
		IsSundayHoliday:   req.IsSundayHoliday,
		IsSaturdayHoliday: req.IsSaturdayHoliday,
		IsSaturdayHalfDay: req.IsSaturdayHalfDay,
	}
	if err := s.store.UpsertWeekendPolicy(ctx, p); err != nil {
		return ErrInternal(err.Error())
	}
	return nil
}
