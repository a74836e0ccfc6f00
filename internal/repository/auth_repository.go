package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// POST /auth/login
type LoginRequest struct {
	UsernameOrEmail string            `json:"usernameOrEmail" validate:"required"`
	Password        string            `json:"password" validate:"required"`
	AccountType     model.AccountType `json:"accountType" validate:"required,oneof=user admin"`
}

// POST /auth/register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PUT /auth/me（passwordは空なら送らない）
type ProfileUpdate struct {
	Username string `json:"username,omitempty" validate:"omitempty,max=64"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty"`
}

// ログイン・登録・プロフィール更新の結果。
// AccessTokenはサーバーが返したときだけ入る。
type AuthResult struct {
	User        model.Identity
	AccessToken string
}

// 認証APIの窓口
type AuthRepository interface {
	//現在のユーザー（未ログインならAuthenticationError）
	Me(ctx context.Context) (model.Identity, error)
	Login(ctx context.Context, req LoginRequest) (AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResult, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, req ProfileUpdate) (AuthResult, error)
}

// TokenHolder はAPIクライアントにBearerトークンを渡すための約束。
type TokenHolder interface {
	SetAccessToken(token string)
}
