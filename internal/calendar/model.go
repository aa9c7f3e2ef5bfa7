package calendar

import "time"

const (
	DateLayout = "2006-01-02"

	// HolidayEvent.DurationCategory
	DurationFullDay = "full_day"
	DurationHalfDay = "half_day"
)

// Scope は「どの学年度に適用されるか」。
// 空配列=全学年度という暗黙の規約をやめて、全適用かどうかを型で持つ。
type Scope struct {
	All     bool
	YearIDs []uint64
}

func ScopeAll() Scope { return Scope{All: true} }

func ScopeYears(ids []uint64) Scope {
	if len(ids) == 0 {
		return ScopeAll()
	}
	return Scope{YearIDs: ids}
}

// Matches: 指定の学年度ID集合と交差するか。
// 全適用スコープは常にマッチ。学年度コンテキストを持たないロール
// （yearScoped=false）には全学年度スコープのレコードだけが効く。
func (s Scope) Matches(yearIDs []uint64, yearScoped bool) bool {
	if s.All {
		return true
	}
	if !yearScoped {
		return false
	}
	for _, want := range yearIDs {
		for _, have := range s.YearIDs {
			if want == have {
				return true
			}
		}
	}
	return false
}

// 週末ポリシー。(campus, academic year) につき最大1件
type WeekendPolicy struct {
	PolicyID          uint64
	CampusID          uint64
	AcademicYearID    uint64
	IsSundayHoliday   bool
	IsSaturdayHoliday bool
	IsSaturdayHalfDay bool
}

// 休日イベント。[StartDate, EndDate] の両端含む
type HolidayEvent struct {
	EventID          uint64
	EventULID        string
	CampusID         uint64
	Title            string
	StartDate        time.Time
	EndDate          time.Time
	DurationCategory string // full_day | half_day
	Scope            Scope
}

func (e HolidayEvent) Covers(d time.Time) bool {
	return !d.Before(e.StartDate) && !d.After(e.EndDate)
}

// 特別出校日。休日にあたる日を明示的に出校日へひっくり返す
type SpecialWorkingDay struct {
	SpecialID uint64
	CampusID  uint64
	WorkDate  time.Time
	Note      string
	Scope     Scope
}

// 日付1件の判定結果
type DayStatus struct {
	IsHoliday bool
	IsHalfDay bool
}
