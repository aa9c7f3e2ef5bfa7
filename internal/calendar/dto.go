package calendar

type DayStatusResponse struct {
	Date           string   `json:"date"`
	AcademicYearID uint64   `json:"academic_year_id"`
	IsHoliday      bool     `json:"is_holiday"`
	IsHalfDay      bool     `json:"is_half_day"`
	Details        []string `json:"details,omitempty"`
}

type HolidayEventResponse struct {
	EventULID        string   `json:"event_id"`
	Title            string   `json:"title"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	DurationCategory string   `json:"duration_category"`
	AcademicYearIDs  []uint64 `json:"academic_year_ids,omitempty"` // 省略時は全学年度適用
}

type SpecialWorkingDayResponse struct {
	WorkDate        string   `json:"work_date"`
	Note            string   `json:"note,omitempty"`
	AcademicYearIDs []uint64 `json:"academic_year_ids,omitempty"`
}

type CalendarEventsResponse struct {
	Holidays    []HolidayEventResponse      `json:"holidays"`
	SpecialDays []SpecialWorkingDayResponse `json:"special_working_days"`
}

type CreateHolidayEventRequest struct {
	CampusID         uint64   `json:"campus_id" binding:"required"`
	Title            string   `json:"title" binding:"required"`
	StartDate        string   `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate          string   `json:"end_date" binding:"required"`
	DurationCategory *string  `json:"duration_category,omitempty"` // 未指定なら full_day
	AcademicYearIDs  []uint64 `json:"academic_year_ids,omitempty"` // 空なら全学年度
}

type CreateSpecialWorkingDayRequest struct {
	CampusID        uint64   `json:"campus_id" binding:"required"`
	WorkDate        string   `json:"work_date" binding:"required"`
	Note            *string  `json:"note,omitempty"`
	AcademicYearIDs []uint64 `json:"academic_year_ids,omitempty"`
}

type UpsertWeekendPolicyRequest struct {
	CampusID          uint64 `json:"campus_id" binding:"required"`
	AcademicYearID    uint64 `json:"academic_year_id" binding:"required"`
	IsSundayHoliday   bool   `json:"is_sunday_holiday"`
	IsSaturdayHoliday bool   `json:"is_saturday_holiday"`
	IsSaturdayHalfDay bool   `json:"is_saturday_half_day"`
}

func (e HolidayEvent) toDTO() HolidayEventResponse {
	out := HolidayEventResponse{
		EventULID:        e.EventULID,
		Title:            e.Title,
		StartDate:        e.StartDate.Format(DateLayout),
		EndDate:          e.EndDate.Format(DateLayout),
		DurationCategory: e.DurationCategory,
	}
	if !e.Scope.All {
		out.AcademicYearIDs = e.Scope.YearIDs
	}
	return out
}

func (d SpecialWorkingDay) toDTO() SpecialWorkingDayResponse {
	out := SpecialWorkingDayResponse{
		WorkDate: d.WorkDate.Format(DateLayout),
		Note:     d.Note,
	}
	if !d.Scope.All {
		out.AcademicYearIDs = d.Scope.YearIDs
	}
	return out
}
