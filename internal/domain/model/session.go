package model

// セッションの状態
type SessionState string

const (
	//起動時の確認中（まだ判定しない）
	SessionPending SessionState = "pending"
	//未ログイン
	SessionAnonymous SessionState = "anonymous"
	//ログイン済み
	SessionAuthenticated SessionState = "authenticated"
)

// Session はある時点のスナップショット。
// Identityはログイン済みのときだけ入る。
type Session struct {
	State    SessionState `json:"state"`
	Identity *Identity    `json:"user"`
}

func PendingSession() Session {
	return Session{State: SessionPending}
}

func AnonymousSession() Session {
	return Session{State: SessionAnonymous}
}

func AuthenticatedSession(id Identity) Session {
	return Session{State: SessionAuthenticated, Identity: &id}
}

func (s Session) IsPending() bool {
	return s.State == SessionPending
}

func (s Session) IsAuthenticated() bool {
	return s.State == SessionAuthenticated && s.Identity != nil
}

func (s Session) IsStaff() bool {
	return s.IsAuthenticated() && s.Identity.IsStaff()
}

func (s Session) IsOwner() bool {
	return s.IsAuthenticated() && s.Identity.IsOwner()
}
