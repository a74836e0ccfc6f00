package usecase

import (
	"context"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/domain/model"
	"storefront/internal/guard"
)

// 入力検証の約束（validatorパッケージが実装）
type InputValidator interface {
	Validate(ctx context.Context, in interface{}) error
}

// ID生成の約束（冪等キーなど）
type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

// SessionReader は他のusecaseに現在のセッションだけを見せる。
type SessionReader interface {
	Current() model.Session
}

// requireAccess はguardの判定をエラーに変換する（通信前に止める）。
func requireAccess(s model.Session, req guard.Requirement) error {
	d := guard.Decide(s, req)
	switch d.Outcome {
	case guard.Allow:
		return nil
	case guard.Pending:
		return apperror.NewAuthentication("session not ready")
	}
	if d.Target == guard.LoginPath {
		return apperror.NewAuthentication("login required")
	}
	return apperror.NewAuthorization("forbidden")
}
