package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

const (
	yearA uint64 = 1
	yearB uint64 = 2
)

func sundayHolidayPolicy(yearID uint64) WeekendPolicy {
	return WeekendPolicy{CampusID: 10, AcademicYearID: yearID, IsSundayHoliday: true}
}

func TestResolveDay_DefaultIsWorking(t *testing.T) {
	set := NewPolicySet(nil, nil, nil)

	// ポリシーが1件も無ければ常に出校日（回帰テストで固定する挙動）
	for _, d := range []string{"2024-03-09", "2024-03-10", "2024-03-11"} {
		st := set.ResolveDay(date(d), "Student", []uint64{yearA})
		assert.Equal(t, DayStatus{}, st, d)

		st = set.ResolveDay(date(d), "Staff", nil)
		assert.Equal(t, DayStatus{}, st, d)
	}
}

func TestResolveDay_WeekendPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy WeekendPolicy
		day    string // 2024-03-09=土, 2024-03-10=日, 2024-03-11=月
		want   DayStatus
	}{
		{"日曜休み", WeekendPolicy{AcademicYearID: yearA, IsSundayHoliday: true}, "2024-03-10", DayStatus{IsHoliday: true}},
		{"日曜フラグ無しなら出校", WeekendPolicy{AcademicYearID: yearA}, "2024-03-10", DayStatus{}},
		{"土曜休み", WeekendPolicy{AcademicYearID: yearA, IsSaturdayHoliday: true}, "2024-03-09", DayStatus{IsHoliday: true}},
		{"土曜半日", WeekendPolicy{AcademicYearID: yearA, IsSaturdayHalfDay: true}, "2024-03-09", DayStatus{IsHalfDay: true}},
		// 半日フラグは休日フラグより先に評価される
		{"土曜半日と休日の両立時は半日", WeekendPolicy{AcademicYearID: yearA, IsSaturdayHalfDay: true, IsSaturdayHoliday: true}, "2024-03-09", DayStatus{IsHalfDay: true}},
		{"平日は常に出校", WeekendPolicy{AcademicYearID: yearA, IsSundayHoliday: true, IsSaturdayHoliday: true}, "2024-03-11", DayStatus{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewPolicySet([]WeekendPolicy{tt.policy}, nil, nil)
			st := set.ResolveDay(date(tt.day), "Student", []uint64{yearA})
			assert.Equal(t, tt.want, st)
		})
	}
}

// 複数学年度にまたがるユーザは「どれかの文脈で出校なら出校」
func TestResolveDay_MultiContextFavorsWorking(t *testing.T) {
	saturday := date("2024-03-09")

	policies := []WeekendPolicy{
		{AcademicYearID: yearA, IsSaturdayHoliday: true},
		{AcademicYearID: yearB}, // Bは土曜出校
	}
	set := NewPolicySet(policies, nil, nil)

	st := set.ResolveDay(saturday, "Teacher", []uint64{yearA, yearB})
	assert.False(t, st.IsHoliday)
	assert.False(t, st.IsHalfDay)

	// Aだけなら休み
	st = set.ResolveDay(saturday, "Teacher", []uint64{yearA})
	assert.True(t, st.IsHoliday)

	// 休日と半日の組み合わせは半日が勝つ
	policies = []WeekendPolicy{
		{AcademicYearID: yearA, IsSaturdayHoliday: true},
		{AcademicYearID: yearB, IsSaturdayHalfDay: true},
	}
	set = NewPolicySet(policies, nil, nil)
	st = set.ResolveDay(saturday, "Teacher", []uint64{yearA, yearB})
	assert.Equal(t, DayStatus{IsHalfDay: true}, st)
}

// ポリシー未設定の学年度が混ざる場合、その文脈は常に出校扱い
func TestResolveDay_MissingPolicyContextIsWorking(t *testing.T) {
	saturday := date("2024-03-09")
	set := NewPolicySet([]WeekendPolicy{{AcademicYearID: yearA, IsSaturdayHoliday: true}}, nil, nil)

	st := set.ResolveDay(saturday, "Student", []uint64{yearA, yearB})
	assert.Equal(t, DayStatus{}, st)
}

// コンテキストを持たないロールはキャンパス全ポリシーで合成
func TestResolveDay_NoContextEvaluatesAllPolicies(t *testing.T) {
	saturday := date("2024-03-09")

	// 全ポリシーが休日 → 休日
	set := NewPolicySet([]WeekendPolicy{
		{AcademicYearID: yearA, IsSaturdayHoliday: true},
		{AcademicYearID: yearB, IsSaturdayHoliday: true},
	}, nil, nil)
	st := set.ResolveDay(saturday, "Staff", nil)
	assert.True(t, st.IsHoliday)

	// 半日が1つでもあり、出校が無い → 半日
	set = NewPolicySet([]WeekendPolicy{
		{AcademicYearID: yearA, IsSaturdayHoliday: true},
		{AcademicYearID: yearB, IsSaturdayHalfDay: true},
	}, nil, nil)
	st = set.ResolveDay(saturday, "Staff", nil)
	assert.Equal(t, DayStatus{IsHalfDay: true}, st)

	// 出校のポリシーが1つでもあれば出校
	set = NewPolicySet([]WeekendPolicy{
		{AcademicYearID: yearA, IsSaturdayHoliday: true},
		{AcademicYearID: yearB},
	}, nil, nil)
	st = set.ResolveDay(saturday, "Staff", nil)
	assert.Equal(t, DayStatus{}, st)
}

// 創立記念日シナリオ: 全学年度適用の休日イベント
func TestResolveDay_HolidayEvent(t *testing.T) {
	foundersDay := HolidayEvent{
		EventID:          1,
		Title:            "Founders Day",
		StartDate:        date("2024-03-10"),
		EndDate:          date("2024-03-10"),
		DurationCategory: DurationFullDay,
		Scope:            ScopeAll(),
	}
	set := NewPolicySet([]WeekendPolicy{sundayHolidayPolicy(yearA)}, []HolidayEvent{foundersDay}, nil)

	st := set.ResolveDay(date("2024-03-10"), "Student", []uint64{yearA})
	assert.Equal(t, DayStatus{IsHoliday: true, IsHalfDay: false}, st)
}

func TestResolveDay_HalfDayHolidayEvent(t *testing.T) {
	ev := HolidayEvent{
		EventID:          1,
		Title:            "Sports Day Eve",
		StartDate:        date("2024-03-12"),
		EndDate:          date("2024-03-12"),
		DurationCategory: DurationHalfDay,
		Scope:            ScopeAll(),
	}
	set := NewPolicySet(nil, []HolidayEvent{ev}, nil)

	st := set.ResolveDay(date("2024-03-12"), "Student", []uint64{yearA})
	assert.Equal(t, DayStatus{IsHoliday: false, IsHalfDay: true}, st)
}

func TestResolveDay_HolidayEventScope(t *testing.T) {
	ev := HolidayEvent{
		EventID:          1,
		Title:            "Year B Trip",
		StartDate:        date("2024-03-13"),
		EndDate:          date("2024-03-15"),
		DurationCategory: DurationFullDay,
		Scope:            ScopeYears([]uint64{yearB}),
	}
	set := NewPolicySet(nil, []HolidayEvent{ev}, nil)

	// スコープ外の学年度には効かない
	st := set.ResolveDay(date("2024-03-14"), "Student", []uint64{yearA})
	assert.Equal(t, DayStatus{}, st)

	st = set.ResolveDay(date("2024-03-14"), "Student", []uint64{yearB})
	assert.True(t, st.IsHoliday)

	// 学年度コンテキストを持たないロールには学年度限定イベントは効かない
	st = set.ResolveDay(date("2024-03-14"), "Staff", nil)
	assert.Equal(t, DayStatus{}, st)

	// 期間の両端を含む
	assert.True(t, set.ResolveDay(date("2024-03-13"), "Student", []uint64{yearB}).IsHoliday)
	assert.True(t, set.ResolveDay(date("2024-03-15"), "Student", []uint64{yearB}).IsHoliday)
	assert.False(t, set.ResolveDay(date("2024-03-16"), "Student", []uint64{yearB}).IsHoliday)
}

// 特別出校日は休日イベントにも週末ポリシーにも勝つ
func TestResolveDay_SpecialWorkingDayOverridesAll(t *testing.T) {
	foundersDay := HolidayEvent{
		EventID:          1,
		Title:            "Founders Day",
		StartDate:        date("2024-03-10"),
		EndDate:          date("2024-03-10"),
		DurationCategory: DurationFullDay,
		Scope:            ScopeAll(),
	}
	special := SpecialWorkingDay{
		SpecialID: 1,
		WorkDate:  date("2024-03-10"),
		Scope:     ScopeYears([]uint64{yearA}),
	}
	set := NewPolicySet([]WeekendPolicy{sundayHolidayPolicy(yearA)}, []HolidayEvent{foundersDay}, []SpecialWorkingDay{special})

	st := set.ResolveDay(date("2024-03-10"), "Student", []uint64{yearA})
	assert.Equal(t, DayStatus{IsHoliday: false, IsHalfDay: false}, st)

	// スコープ外の学年度には特別出校日が効かず、休日イベントが残る
	st = set.ResolveDay(date("2024-03-10"), "Student", []uint64{yearB})
	assert.True(t, st.IsHoliday)
}

func TestScopeMatches(t *testing.T) {
	all := ScopeAll()
	assert.True(t, all.Matches([]uint64{yearA}, true))
	assert.True(t, all.Matches(nil, false))

	// 空のID指定は全適用に正規化される
	assert.True(t, ScopeYears(nil).All)

	scoped := ScopeYears([]uint64{yearA, yearB})
	assert.True(t, scoped.Matches([]uint64{yearB}, true))
	assert.False(t, scoped.Matches([]uint64{99}, true))
	assert.False(t, scoped.Matches(nil, true))
	// コンテキストを持たないロールは限定スコープに決してマッチしない
	assert.False(t, scoped.Matches([]uint64{yearA}, false))
}
