package report

const (
	DateLayout = "2006-01-02"

	// 半日/終日の期待拘束時間（表示用の既定値であって実測ではない）
	ExpectedHoursHalfDay = "04:00"
	ExpectedHoursFullDay = "08:00"
)

// 統合レポートの1行。(日付, ユーザ) 毎に必ず1行出す
type Row struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	YearName    string `json:"year_name,omitempty"`

	Status        string  `json:"status"` // Present | Absent | No Attendance
	Duration      string  `json:"duration"`
	TotalDuration string  `json:"total_duration"`
	LoginTime     *string `json:"login_time,omitempty"`
	LogoutTime    *string `json:"logout_time,omitempty"`

	IsHoliday     bool   `json:"is_holiday"`
	IsHalfDay     bool   `json:"is_half_day"`
	ExpectedHours string `json:"expected_hours"`

	PendingLeaves  int64 `json:"pending_leaves"`
	ApprovedLeaves int64 `json:"approved_leaves"`
}

// GET /attendance/report のクエリ
type Query struct {
	CampusID         uint64
	TenantID         uint64
	Roles            []string
	AcademicYearName string
	From             string // YYYY-MM-DD
	To               string
	ClassID          uint64 // 生徒のみ有効
	SectionID        uint64
}

type Response struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Users int    `json:"users"`
	Rows  []Row  `json:"rows"`
}
