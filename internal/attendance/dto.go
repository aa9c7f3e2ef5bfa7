package attendance

// POST /attendance/sessions
type RecordSessionAttendanceRequest struct {
	EventID          uint64  `json:"event_id" binding:"required"`
	Username         string  `json:"username" binding:"required"`
	AttendanceDate   string  `json:"attendance_date" binding:"required"` // YYYY-MM-DD
	AttendanceStatus string  `json:"attendance_status" binding:"required"`
	PresentHours     float64 `json:"actual_present_hours"`
	ScheduledHours   float64 `json:"total_scheduled_hours"`
	AcademicYearID   uint64  `json:"academic_year_id" binding:"required"`
	StartTime        *string `json:"start_time,omitempty"` // HH:MM
	EndTime          *string `json:"end_time,omitempty"`
}

type DailySummaryResponse struct {
	Username       string  `json:"username"`
	AttendanceDate string  `json:"attendance_date"`
	Status         string  `json:"status"`
	Duration       string  `json:"duration"`
	TotalDuration  string  `json:"total_duration"`
	LoginTime      *string `json:"login_time,omitempty"`
	LogoutTime     *string `json:"logout_time,omitempty"`
}

type SessionAttendanceResponse struct {
	RecordULID     string                `json:"record_id"`
	EventID        uint64                `json:"event_id"`
	Username       string                `json:"username"`
	AttendanceDate string                `json:"attendance_date"`
	Daily          *DailySummaryResponse `json:"daily_summary,omitempty"`
}

// DELETE /attendance/sessions
type DeleteSessionAttendanceRequest struct {
	EventID   uint64   `json:"event_id" binding:"required"`
	Usernames []string `json:"usernames,omitempty"` // 空ならイベント全員
}

type DeleteSessionAttendanceResponse struct {
	Deleted  int64 `json:"deleted"`
	Resynced int   `json:"resynced"`
}

// POST /attendance/sync
type SyncRangeRequest struct {
	CampusID         uint64 `json:"campus_id" binding:"required"`
	From             string `json:"from" binding:"required"` // YYYY-MM-DD
	To               string `json:"to" binding:"required"`
	AcademicYearName string `json:"academic_year_name,omitempty"`
}

type SyncRangeResponse struct {
	Groups int `json:"groups"`
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

func (d DailyAttendance) toDTO() DailySummaryResponse {
	return DailySummaryResponse{
		Username:       d.Username,
		AttendanceDate: d.AttendanceDate,
		Status:         d.Status,
		Duration:       d.Duration,
		TotalDuration:  d.TotalDuration,
		LoginTime:      d.LoginTime,
		LogoutTime:     d.LogoutTime,
	}
}
