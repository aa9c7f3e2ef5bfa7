package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"SAIS-backend/internal/attendance"
	"SAIS-backend/internal/calendar"
	"SAIS-backend/internal/directory"
	"SAIS-backend/internal/leave"
)

// ===== フェイク群 =====

type fakeUsers struct {
	users    []directory.UserInfo
	yearCtx  map[string][]uint64
	listErr  error
	yearsErr error
}

func (f *fakeUsers) ListUsers(_ context.Context, _ directory.UserFilter) ([]directory.UserInfo, error) {
	return f.users, f.listErr
}

func (f *fakeUsers) ResolveYearContexts(_ context.Context, _ []directory.UserInfo) (map[string][]uint64, error) {
	return f.yearCtx, f.yearsErr
}

type fakePolicies struct {
	set *calendar.PolicySet
	err error
}

func (f *fakePolicies) PolicySetFor(_ context.Context, _ uint64, _, _ time.Time) (*calendar.PolicySet, error) {
	return f.set, f.err
}

type fakeAttendance struct {
	dailies []attendance.DailyAttendance
	err     error
}

func (f *fakeAttendance) ListDailyRange(_ context.Context, _ uint64, _ []string, _, _ time.Time) ([]attendance.DailyAttendance, error) {
	return f.dailies, f.err
}

type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) SyncRange(_ context.Context, _ attendance.SyncRangeRequest) (*attendance.SyncRangeResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &attendance.SyncRangeResponse{}, nil
}

type fakeLeaves struct {
	counts map[string]leave.Counts
	err    error
}

func (f *fakeLeaves) CountsForUsers(_ context.Context, _ []string, _, _ time.Time) (map[string]leave.Counts, error) {
	return f.counts, f.err
}

func newFixture() (*Service, *fakeUsers, *fakePolicies, *fakeAttendance, *fakeSyncer, *fakeLeaves) {
	users := &fakeUsers{
		// ストアがusername昇順で返す契約をフェイクでも守る
		users: []directory.UserInfo{
			{Username: "s_aoki", DisplayName: "Aoki", Role: directory.RoleStudent},
			{Username: "t_baba", DisplayName: "Baba", Role: directory.RoleTeacher},
		},
		yearCtx: map[string][]uint64{"s_aoki": {1}, "t_baba": {1}},
	}
	policies := &fakePolicies{set: calendar.NewPolicySet(nil, nil, nil)}
	att := &fakeAttendance{}
	syncer := &fakeSyncer{}
	leaves := &fakeLeaves{counts: map[string]leave.Counts{}}
	svc := NewService(users, policies, att, syncer, leaves)
	return svc, users, policies, att, syncer, leaves
}

func studentQuery() Query {
	return Query{
		CampusID: 10,
		Roles:    []string{directory.RoleStudent, directory.RoleTeacher},
		From:     "2024-03-09",
		To:       "2024-03-10",
	}
}

// ===== テスト =====

func TestBuildReport_Validation(t *testing.T) {
	svc, _, _, _, _, _ := newFixture()

	_, err := svc.BuildReport(context.Background(), Query{Roles: []string{"Student"}, From: "2024-03-09", To: "2024-03-09"})
	assert.Error(t, err)

	_, err = svc.BuildReport(context.Background(), Query{CampusID: 10, From: "2024-03-09", To: "2024-03-09"})
	assert.Error(t, err)

	_, err = svc.BuildReport(context.Background(), Query{CampusID: 10, Roles: []string{"Staff"}, From: "bad", To: "2024-03-09"})
	assert.Error(t, err)

	_, err = svc.BuildReport(context.Background(), Query{CampusID: 10, Roles: []string{"Staff"}, From: "2024-03-10", To: "2024-03-09"})
	assert.Error(t, err)
}

func TestBuildReport_OrderAndDefaults(t *testing.T) {
	svc, _, _, _, _, _ := newFixture()

	res, err := svc.BuildReport(context.Background(), studentQuery())
	assert.NoError(t, err)
	assert.Equal(t, 2, res.Users)
	// (日付, ユーザ) 毎に必ず1行: 2日 × 2ユーザ
	assert.Len(t, res.Rows, 4)

	// 日付 → ユーザ名 の安定順
	wantOrder := []struct{ date, user string }{
		{"2024-03-09", "s_aoki"},
		{"2024-03-09", "t_baba"},
		{"2024-03-10", "s_aoki"},
		{"2024-03-10", "t_baba"},
	}
	for i, w := range wantOrder {
		assert.Equal(t, w.date, res.Rows[i].Date)
		assert.Equal(t, w.user, res.Rows[i].Username)
	}

	// サマリ行が無い日は No Attendance とゼロ時間
	r := res.Rows[0]
	assert.Equal(t, attendance.StatusNoAttendance, r.Status)
	assert.Equal(t, "00:00", r.Duration)
	assert.Equal(t, "00:00", r.TotalDuration)
	assert.Nil(t, r.LoginTime)
	assert.Equal(t, ExpectedHoursFullDay, r.ExpectedHours)
}

func TestBuildReport_MergesDailyAndLeaves(t *testing.T) {
	svc, _, _, att, _, leaves := newFixture()

	login := "08:30"
	logout := "15:00"
	att.dailies = []attendance.DailyAttendance{
		{
			Username:       "s_aoki",
			AttendanceDate: "2024-03-09",
			Status:         attendance.StatusPresent,
			Duration:       "06:00",
			TotalDuration:  "06:00",
			LoginTime:      &login,
			LogoutTime:     &logout,
			YearName:       "2024",
		},
	}
	leaves.counts = map[string]leave.Counts{
		"s_aoki": {Pending: 1, Approved: 2},
	}

	res, err := svc.BuildReport(context.Background(), studentQuery())
	assert.NoError(t, err)

	r := res.Rows[0] // 2024-03-09 / s_aoki
	assert.Equal(t, attendance.StatusPresent, r.Status)
	assert.Equal(t, "06:00", r.Duration)
	assert.Equal(t, "08:30", *r.LoginTime)
	assert.Equal(t, "2024", r.YearName)
	assert.Equal(t, int64(1), r.PendingLeaves)
	assert.Equal(t, int64(2), r.ApprovedLeaves)

	// 休暇件数はその期間の定数としてユーザの全行に付く
	assert.Equal(t, int64(1), res.Rows[2].PendingLeaves)

	// サマリの無い別ユーザには混ざらない
	assert.Equal(t, attendance.StatusNoAttendance, res.Rows[1].Status)
	assert.Equal(t, int64(0), res.Rows[1].PendingLeaves)
}

func TestBuildReport_HolidayAnnotation(t *testing.T) {
	svc, _, policies, _, _, _ := newFixture()

	// 土曜半日・日曜休みの週末ポリシー
	policies.set = calendar.NewPolicySet([]calendar.WeekendPolicy{
		{AcademicYearID: 1, IsSundayHoliday: true, IsSaturdayHalfDay: true},
	}, nil, nil)

	res, err := svc.BuildReport(context.Background(), studentQuery())
	assert.NoError(t, err)

	// 2024-03-09 は土曜 → 半日、期待時間は 04:00
	sat := res.Rows[0]
	assert.False(t, sat.IsHoliday)
	assert.True(t, sat.IsHalfDay)
	assert.Equal(t, ExpectedHoursHalfDay, sat.ExpectedHours)

	// 2024-03-10 は日曜 → 休日、期待時間は終日のまま
	sun := res.Rows[2]
	assert.True(t, sun.IsHoliday)
	assert.Equal(t, ExpectedHoursFullDay, sun.ExpectedHours)
}

func TestBuildReport_SyncTrigger(t *testing.T) {
	// 生徒ロールを含むレポートは先に範囲同期を走らせる
	svc, _, _, _, syncer, _ := newFixture()
	_, err := svc.BuildReport(context.Background(), studentQuery())
	assert.NoError(t, err)
	assert.Equal(t, 1, syncer.calls)

	// 生徒を含まないロール構成では同期しない
	svc2, users, _, _, syncer2, _ := newFixture()
	users.users = []directory.UserInfo{{Username: "staff1", Role: directory.RoleStaff}}
	q := studentQuery()
	q.Roles = []string{directory.RoleStaff, directory.RoleTeacher}
	_, err = svc2.BuildReport(context.Background(), q)
	assert.NoError(t, err)
	assert.Equal(t, 0, syncer2.calls)
}

func TestBuildReport_SubFetchFailureFailsWhole(t *testing.T) {
	boom := errors.New("boom")

	svc, _, _, _, syncer, _ := newFixture()
	syncer.err = boom
	_, err := svc.BuildReport(context.Background(), studentQuery())
	assert.Error(t, err)

	svc, users, _, _, _, _ := newFixture()
	users.listErr = boom
	_, err = svc.BuildReport(context.Background(), studentQuery())
	assert.Error(t, err)

	svc, _, policies, _, _, _ := newFixture()
	policies.err = boom
	_, err = svc.BuildReport(context.Background(), studentQuery())
	assert.Error(t, err)

	svc, _, _, att, _, _ := newFixture()
	att.err = boom
	_, err = svc.BuildReport(context.Background(), studentQuery())
	assert.Error(t, err)

	svc, _, _, _, _, leaves := newFixture()
	leaves.err = boom
	_, err = svc.BuildReport(context.Background(), studentQuery())
	assert.Error(t, err)
}
