package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const (
	EncodingUTF8 = "utf8"
	// Excel（日本語環境）にそのまま渡す時用。CP932で書き出す
	EncodingSJIS = "sjis"
)

var csvHeader = []string{
	"date", "username", "display_name", "role", "year_name",
	"status", "duration", "total_duration", "login_time", "logout_time",
	"is_holiday", "is_half_day", "expected_hours",
	"pending_leaves", "approved_leaves",
}

// ExportCSV: レポートをCSVとして書き出す。列順・行順は固定
func (s *Service) ExportCSV(ctx context.Context, q Query, encoding string) ([]byte, error) {
	if encoding == "" {
		encoding = EncodingUTF8
	}
	if encoding != EncodingUTF8 && encoding != EncodingSJIS {
		return nil, ErrInvalid("encoding must be utf8 or sjis")
	}

	resp, err := s.BuildReport(ctx, q)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	var w *csv.Writer
	if encoding == EncodingSJIS {
		enc := japanese.ShiftJIS.NewEncoder()
		w = csv.NewWriter(transform.NewWriter(&b, enc))
	} else {
		// UTF-8はBOM付きにする（Excelの文字化け対策）
		b.Write([]byte{0xEF, 0xBB, 0xBF})
		w = csv.NewWriter(&b)
	}

	if err := w.Write(csvHeader); err != nil {
		return nil, ErrInternal(err.Error())
	}
	for _, r := range resp.Rows {
		record := []string{
			r.Date, r.Username, r.DisplayName, r.Role, r.YearName,
			r.Status, r.Duration, r.TotalDuration,
			strOrEmpty(r.LoginTime), strOrEmpty(r.LogoutTime),
			strconv.FormatBool(r.IsHoliday), strconv.FormatBool(r.IsHalfDay), r.ExpectedHours,
			strconv.FormatInt(r.PendingLeaves, 10), strconv.FormatInt(r.ApprovedLeaves, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, ErrInternal(err.Error())
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, ErrInternal(err.Error())
	}
	return b.Bytes(), nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
