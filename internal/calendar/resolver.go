package calendar

import (
	"time"

	"SAIS-backend/internal/directory"
)

// PolicySet は事前取得済みのポリシー一式。ResolveDay はここからI/Oなしで判定する
// （ユニットテストをストレージから切り離すため、取得と判定を分離している）。
type PolicySet struct {
	// 学年度ID → 週末ポリシー。(campus, year) につき最大1件
	Policies map[uint64]WeekendPolicy
	Holidays []HolidayEvent
	Specials []SpecialWorkingDay
}

func NewPolicySet(policies []WeekendPolicy, holidays []HolidayEvent, specials []SpecialWorkingDay) *PolicySet {
	m := make(map[uint64]WeekendPolicy, len(policies))
	for _, p := range policies {
		m[p.AcademicYearID] = p
	}
	return &PolicySet{Policies: m, Holidays: holidays, Specials: specials}
}

// 週末ポリシー1件を曜日に適用した時の区分。
// 「出校に一番近い」ものを優先して合成するため順序付きの値にしておく
type dayKind int

const (
	kindHoliday dayKind = iota
	kindHalfDay
	kindWorking
)

func (k dayKind) toStatus() DayStatus {
	switch k {
	case kindHalfDay:
		return DayStatus{IsHoliday: false, IsHalfDay: true}
	case kindHoliday:
		return DayStatus{IsHoliday: true}
	default:
		return DayStatus{}
	}
}

// ResolveDay: 指定日が出校日・休日・半日のどれかを判定する。純粋関数。
//
// 優先順位（上が強い）:
//  1. 特別出校日 … スコープが合致すれば無条件で出校日（終日）
//  2. 休日イベント … スコープが合致すれば休日（half_dayなら半日）
//  3. 週末ポリシー … 学年度コンテキスト毎に評価し「出校寄り」を採用
//  4. 何も該当しなければ出校日（終日）
func (p *PolicySet) ResolveDay(date time.Time, role string, yearIDs []uint64) DayStatus {
	yearScoped := directory.UsesYearContext(role)

	// 1. 特別出校日
	for _, sp := range p.Specials {
		if sameDate(sp.WorkDate, date) && sp.Scope.Matches(yearIDs, yearScoped) {
			return DayStatus{}
		}
	}

	// 2. 休日イベント
	for _, ev := range p.Holidays {
		if ev.Covers(date) && ev.Scope.Matches(yearIDs, yearScoped) {
			if ev.DurationCategory == DurationHalfDay {
				return DayStatus{IsHoliday: false, IsHalfDay: true}
			}
			return DayStatus{IsHoliday: true}
		}
	}

	// 3. 週末ポリシー
	if yearScoped && len(yearIDs) > 0 {
		// 複数学年度にまたがるユーザは「どれかの文脈で出校なら出校」
		best := kindHoliday
		for _, id := range yearIDs {
			pol, ok := p.Policies[id]
			if !ok {
				// ポリシー未設定の学年度は常に出校扱い（=最優）
				return DayStatus{}
			}
			if k := weekdayKind(pol, date.Weekday()); k > best {
				best = k
			}
			if best == kindWorking {
				return DayStatus{}
			}
		}
		return best.toStatus()
	}

	// コンテキストなし（Staff等）はキャンパスの全ポリシーで同じ合成を行う。
	// ポリシーが1件もなければ出校日
	if len(p.Policies) == 0 {
		return DayStatus{}
	}
	best := kindHoliday
	for _, pol := range p.Policies {
		if k := weekdayKind(pol, date.Weekday()); k > best {
			best = k
		}
		if best == kindWorking {
			return DayStatus{}
		}
	}
	return best.toStatus()
}

// 曜日 → 区分。土曜は半日フラグを休日フラグより先に見る
func weekdayKind(p WeekendPolicy, wd time.Weekday) dayKind {
	switch wd {
	case time.Sunday:
		if p.IsSundayHoliday {
			return kindHoliday
		}
	case time.Saturday:
		if p.IsSaturdayHalfDay {
			return kindHalfDay
		}
		if p.IsSaturdayHoliday {
			return kindHoliday
		}
	}
	return kindWorking
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
