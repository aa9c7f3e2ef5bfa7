package leave

const (
	DateLayout = "2006-01-02"

	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// ユーザ毎の休暇申請サマリ。このエンジンは読むだけで、
// 申請ワークフロー自体は別サブシステムが持つ
type Counts struct {
	Pending  int64 `json:"pending_leaves"`
	Approved int64 `json:"approved_leaves"`
}
