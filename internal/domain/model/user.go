package model

// ロールはサーバーのレスポンスをそのまま受け取る（クライアントで決めない）
type Role string

const (
	RoleCustomer Role = "user"
	RoleAdmin    Role = "admin"
	RoleOwner    Role = "owner"
)

// ログイン画面で選ぶアカウント種別
type AccountType string

const (
	AccountTypeUser  AccountType = "user"
	AccountTypeAdmin AccountType = "admin"
)

func (t AccountType) Valid() bool {
	return t == AccountTypeUser || t == AccountTypeAdmin
}

// Identity は /auth/me などが返すログインユーザー。
type Identity struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// admin または owner
func (i Identity) IsStaff() bool {
	return i.Role == RoleAdmin || i.Role == RoleOwner
}

func (i Identity) IsOwner() bool {
	return i.Role == RoleOwner
}

// 管理画面の「スタッフ一覧」の1行
type StaffAccount struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}
