package directory

import (
	"context"
	"database/sql"
)

// 他のフィーチャー（出席同期・レポート）から参照されるユーザディレクトリ。
// HTTPは持たない（ユーザCRUD自体は管理系の別サービスが持つ）。
type Service struct {
	store *Store
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db)}
}

func (s *Service) GetUser(ctx context.Context, username string) (*UserInfo, error) {
	return s.store.GetUser(ctx, username)
}

func (s *Service) ListUsers(ctx context.Context, f UserFilter) ([]UserInfo, error) {
	return s.store.ListUsers(ctx, f)
}

// ResolveYearContexts: ユーザ群それぞれの適用学年度ID集合をまとめて解決する。
// 生徒は在籍、教員は担当コマから。その他のロールは空集合のまま（=全ポリシー評価）。
// クエリは生徒用・教員用の2本だけ（ユーザ毎に引かない）。
func (s *Service) ResolveYearContexts(ctx context.Context, users []UserInfo) (map[string][]uint64, error) {
	var students, teachers []string
	for _, u := range users {
		switch u.Role {
		case RoleStudent:
			students = append(students, u.Username)
		case RoleTeacher:
			teachers = append(teachers, u.Username)
		}
	}

	out := make(map[string][]uint64, len(users))

	sm, err := s.store.StudentYearIDs(ctx, students)
	if err != nil {
		return nil, err
	}
	for k, v := range sm {
		out[k] = v
	}

	tm, err := s.store.TeacherYearIDs(ctx, teachers)
	if err != nil {
		return nil, err
	}
	for k, v := range tm {
		out[k] = v
	}

	return out, nil
}

func (s *Service) StudentEnrollments(ctx context.Context, username string) ([]StudentEnrollment, error) {
	return s.store.StudentEnrollments(ctx, username)
}
