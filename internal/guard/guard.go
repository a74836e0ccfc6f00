// Package guard は「誰が何を見られるか」を1か所で決める。
// 画面やAPIごとにisStaff/isOwnerを作り直さず、必ずDecideを呼ぶ。
package guard

import "storefront/internal/domain/model"

// 必要な権限
type Requirement string

const (
	None          Requirement = "none"
	Authenticated Requirement = "authenticated"
	StaffOnly     Requirement = "staff_only"
	OwnerOnly     Requirement = "owner_only"
)

// 判定結果の種類
type Outcome string

const (
	Allow        Outcome = "allow"
	DenyRedirect Outcome = "deny_redirect"
	//セッション確認中（ローディング表示）
	Pending Outcome = "pending"
)

const (
	LoginPath = "/login"
	HomePath  = "/"
)

type Decision struct {
	Outcome Outcome
	Target  string
}

func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// 判定表の列
type tier string

const (
	tierAbsent   tier = "absent"
	tierCustomer tier = "customer"
	tierAdmin    tier = "admin"
	tierOwner    tier = "owner"
)

func allow() Decision                 { return Decision{Outcome: Allow} }
func redirect(target string) Decision { return Decision{Outcome: DenyRedirect, Target: target} }

// decisionTable は Requirement × tier の全組み合わせを明示する。
var decisionTable = map[Requirement]map[tier]Decision{
	None: {
		tierAbsent:   allow(),
		tierCustomer: allow(),
		tierAdmin:    allow(),
		tierOwner:    allow(),
	},
	Authenticated: {
		tierAbsent:   redirect(LoginPath),
		tierCustomer: allow(),
		tierAdmin:    allow(),
		tierOwner:    allow(),
	},
	StaffOnly: {
		tierAbsent:   redirect(LoginPath),
		tierCustomer: redirect(HomePath),
		tierAdmin:    allow(),
		tierOwner:    allow(),
	},
	OwnerOnly: {
		tierAbsent:   redirect(LoginPath),
		tierCustomer: redirect(HomePath),
		tierAdmin:    redirect(HomePath),
		tierOwner:    allow(),
	},
}

func tierOf(s model.Session) tier {
	if !s.IsAuthenticated() {
		return tierAbsent
	}
	switch s.Identity.Role {
	case model.RoleOwner:
		return tierOwner
	case model.RoleAdmin:
		return tierAdmin
	default:
		//知らないロールは一番弱い扱い
		return tierCustomer
	}
}

// Decide は (session, requirement) だけで決まる純粋関数。
func Decide(s model.Session, req Requirement) Decision {
	row, ok := decisionTable[req]
	if !ok {
		//未定義の要求は一番厳しいものとして扱う
		row = decisionTable[OwnerOnly]
	}
	if req != None && s.IsPending() {
		return Decision{Outcome: Pending}
	}
	return row[tierOf(s)]
}

// CanManageAccount はスタッフ一覧の行ごとの判定。
// ownerだけがadminを編集・削除できる。adminは他のスタッフを一切管理できない。
func CanManageAccount(s model.Session, target model.StaffAccount) bool {
	return s.IsOwner() && target.Role == model.RoleAdmin
}

// adminを新規作成できるのはownerだけ
func CanCreateAccount(s model.Session) bool {
	return s.IsOwner()
}
