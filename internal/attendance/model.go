package attendance

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	// DBには書かない。サマリ行が無い日のレポート表示用
	StatusNoAttendance = "No Attendance"

	// 在席率がこの値以上なら Present（ちょうど0.5はPresent）
	PresentRatioThreshold = 0.5
)

// セッション出席（event_attendance テーブルの1行）。
// (event_id, username, attendance_date) がナチュラルキーで、ここが事実の台帳
type EventAttendance struct {
	RecordULID          string
	EventID             uint64
	Username            string
	AttendanceDate      string // YYYY-MM-DD
	AttendanceStatus    string
	ActualPresentHours  float64
	TotalScheduledHours float64
	AcademicYearID      uint64
	CampusID            uint64
	StartTime           *string // HH:MM（コマの開始。無いセッションもある）
	EndTime             *string
}

// 日次サマリ（daily_attendance テーブルの1行）。(username, attendance_date) キー。
// セッション出席が存在するユーザ/日付については出席同期エンジンだけが書く
type DailyAttendance struct {
	Username       string
	AttendanceDate string
	Status         string  // Present | Absent
	Duration       string  // 在席時間 HH:MM
	TotalDuration  string  // 予定時間 HH:MM
	LoginTime      *string // HH:MM
	LogoutTime     *string
	YearName       string
	Role           string
	CampusID       uint64
}

// 範囲同期で処理する (ユーザ, 日付) グループ
type SyncGroup struct {
	Username       string
	AttendanceDate string
	Role           string
	CampusID       uint64
}
