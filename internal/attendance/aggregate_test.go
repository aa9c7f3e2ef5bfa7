package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestComputeDailySummary_RatioBoundary(t *testing.T) {
	// ちょうど 50% は Present
	rows := []EventAttendance{
		{ActualPresentHours: 2, TotalScheduledHours: 4},
		{ActualPresentHours: 1, TotalScheduledHours: 2},
	}
	sum := ComputeDailySummary(rows)
	assert.Equal(t, StatusPresent, sum.Status)
	assert.Equal(t, "03:00", sum.Duration)
	assert.Equal(t, "06:00", sum.TotalDuration)

	// 50% 未満は Absent
	rows = []EventAttendance{
		{ActualPresentHours: 2, TotalScheduledHours: 6},
	}
	sum = ComputeDailySummary(rows)
	assert.Equal(t, StatusAbsent, sum.Status)
	assert.Equal(t, "02:00", sum.Duration)
}

func TestComputeDailySummary_ZeroScheduled(t *testing.T) {
	// 行ゼロ → Absent・ゼロ時間
	sum := ComputeDailySummary(nil)
	assert.Equal(t, StatusAbsent, sum.Status)
	assert.Equal(t, "00:00", sum.Duration)
	assert.Equal(t, "00:00", sum.TotalDuration)
	assert.Nil(t, sum.LoginTime)
	assert.Nil(t, sum.LogoutTime)

	// 予定0時間の行だけでも Absent（ゼロ割りしない）
	sum = ComputeDailySummary([]EventAttendance{
		{ActualPresentHours: 1, TotalScheduledHours: 0},
	})
	assert.Equal(t, StatusAbsent, sum.Status)
}

func TestComputeDailySummary_LoginLogout(t *testing.T) {
	rows := []EventAttendance{
		{ActualPresentHours: 2, TotalScheduledHours: 2, StartTime: strp("10:00"), EndTime: strp("12:00")},
		{ActualPresentHours: 2, TotalScheduledHours: 2, StartTime: strp("08:30"), EndTime: strp("10:30")},
		{ActualPresentHours: 2, TotalScheduledHours: 2}, // 時刻なしの行は無視
	}
	sum := ComputeDailySummary(rows)
	assert.Equal(t, "08:30", *sum.LoginTime)
	assert.Equal(t, "12:00", *sum.LogoutTime)
	assert.Equal(t, StatusPresent, sum.Status)
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "00:00", FormatHours(0))
	assert.Equal(t, "00:30", FormatHours(0.5))
	assert.Equal(t, "01:45", FormatHours(1.75))
	assert.Equal(t, "08:00", FormatHours(8))
	// 分は四捨五入
	assert.Equal(t, "01:10", FormatHours(1.166))
	assert.Equal(t, "26:00", FormatHours(26))
	assert.Equal(t, "00:00", FormatHours(-1))
}
