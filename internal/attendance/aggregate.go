package attendance

import (
	"fmt"
	"math"
)

// 日次サマリの計算結果（永続化前の中間表現）
type DailySummary struct {
	Status         string
	PresentHours   float64
	ScheduledHours float64
	Duration       string // HH:MM
	TotalDuration  string
	LoginTime      *string
	LogoutTime     *string
}

// ComputeDailySummary: その日の全セッション行から日次サマリを組み立てる。純粋関数。
//
//   - Present ⇔ 予定時間 > 0 かつ 在席時間/予定時間 >= 0.5
//   - 行ゼロ（または予定時間0）は Absent・ゼロ時間（「その日の予定が無くなった」状態）
//   - login/logout はセッション開始・終了の最小/最大
func ComputeDailySummary(rows []EventAttendance) DailySummary {
	var present, scheduled float64
	var login, logout *string

	for _, r := range rows {
		present += r.ActualPresentHours
		scheduled += r.TotalScheduledHours

		if r.StartTime != nil && (login == nil || *r.StartTime < *login) {
			login = r.StartTime
		}
		if r.EndTime != nil && (logout == nil || *r.EndTime > *logout) {
			logout = r.EndTime
		}
	}

	status := StatusAbsent
	if scheduled > 0 && present/scheduled >= PresentRatioThreshold {
		status = StatusPresent
	}

	return DailySummary{
		Status:         status,
		PresentHours:   present,
		ScheduledHours: scheduled,
		Duration:       FormatHours(present),
		TotalDuration:  FormatHours(scheduled),
		LoginTime:      login,
		LogoutTime:     logout,
	}
}

// FormatHours: 時間（小数）→ "HH:MM"。分は四捨五入
func FormatHours(h float64) string {
	if h < 0 {
		h = 0
	}
	totalMin := int(math.Round(h * 60))
	return fmt.Sprintf("%02d:%02d", totalMin/60, totalMin%60)
}
