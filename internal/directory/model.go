package directory

// ロールは auth_accounts / users の role カラムと同じ文字列
const (
	RoleStudent = "Student"
	RoleTeacher = "Teacher"
	RoleStaff   = "Staff"
	RoleAdmin   = "Admin"
)

// 出席同期（セッション出席→日次サマリ）の対象になるロールか
func IsSessionAggregated(role string) bool {
	return role == RoleStudent
}

// 学年度コンテキスト（WeekendPolicy等の適用範囲）を持つロールか
func UsesYearContext(role string) bool {
	return role == RoleStudent || role == RoleTeacher
}

type UserInfo struct {
	Username    string
	DisplayName string
	Role        string
	CampusID    uint64
	TenantID    uint64
}

// 生徒の在籍情報。生徒は複数学年度に在籍しうる（進級またぎ・聴講）
type StudentEnrollment struct {
	Username       string `json:"username"`
	AcademicYearID uint64 `json:"academic_year_id"`
	YearName       string `json:"year_name"`
	ClassID        uint64 `json:"class_id"`
	SectionID      uint64 `json:"section_id"`
}

type UserFilter struct {
	TenantID  uint64
	CampusID  uint64
	Roles     []string
	YearName  string // 生徒・教員の学年度名で絞る（空なら全件）
	ClassID   uint64 // 生徒のみ有効
	SectionID uint64 // 生徒のみ有効
}
