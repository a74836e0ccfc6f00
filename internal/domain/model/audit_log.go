package model

import "time"

type AuditActor struct {
	Username string `json:"username"`
}

// 監査ログ（ownerだけが見る）。
// 「誰が」「何を」「どの対象に」を表示用に持つ。
type AuditLogEntry struct {
	ID         string      `json:"_id"`
	Action     string      `json:"action"`
	Details    string      `json:"details"`
	TargetType string      `json:"targetType"`
	Actor      *AuditActor `json:"actor,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// 表示用：detailsが無ければaction
func (l AuditLogEntry) Summary() string {
	if l.Details != "" {
		return l.Details
	}
	return l.Action
}

// ダッシュボードの件数
type DashboardStats struct {
	Users      int64 `json:"users"`
	Admins     int64 `json:"admins"`
	Owners     int64 `json:"owners"`
	Categories int64 `json:"categories"`
	Products   int64 `json:"products"`
}
