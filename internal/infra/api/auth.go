package api

import (
	"context"
	"net/http"

	"storefront/internal/apperror"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const (
	PathMe       = "/auth/me"
	PathLogin    = "/auth/login"
	PathRegister = "/auth/register"
	PathLogout   = "/auth/logout"
)

type AuthRepository struct {
	c *Client
}

// DI
func NewAuthRepository(c *Client) *AuthRepository {
	return &AuthRepository{c: c}
}

// {user, token?: {access_token}}
type authPayload struct {
	User  *model.Identity `json:"user"`
	Token *struct {
		AccessToken string `json:"access_token"`
	} `json:"token,omitempty"`
}

// userが無い（null・空）なら未ログインと同じ扱い
func (p authPayload) identity(method, path string) (model.Identity, error) {
	if p.User == nil || p.User.ID == "" {
		return model.Identity{}, apperror.FromResponse(method, path, http.StatusUnauthorized, "Not authenticated")
	}
	return *p.User, nil
}

func (p authPayload) result(method, path string) (repo.AuthResult, error) {
	id, err := p.identity(method, path)
	if err != nil {
		return repo.AuthResult{}, err
	}
	res := repo.AuthResult{User: id}
	if p.Token != nil {
		res.AccessToken = p.Token.AccessToken
	}
	return res, nil
}

func (r *AuthRepository) Me(ctx context.Context) (model.Identity, error) {
	var out authPayload
	if err := r.c.doJSON(ctx, http.MethodGet, PathMe, nil, &out); err != nil {
		return model.Identity{}, err
	}
	return out.identity(http.MethodGet, PathMe)
}

func (r *AuthRepository) Login(ctx context.Context, req repo.LoginRequest) (repo.AuthResult, error) {
	var out authPayload
	if err := r.c.doJSON(ctx, http.MethodPost, PathLogin, req, &out); err != nil {
		return repo.AuthResult{}, err
	}
	return out.result(http.MethodPost, PathLogin)
}

func (r *AuthRepository) Register(ctx context.Context, req repo.RegisterRequest) (repo.AuthResult, error) {
	var out authPayload
	if err := r.c.doJSON(ctx, http.MethodPost, PathRegister, req, &out); err != nil {
		return repo.AuthResult{}, err
	}
	return out.result(http.MethodPost, PathRegister)
}

func (r *AuthRepository) Logout(ctx context.Context) error {
	return r.c.doJSON(ctx, http.MethodPost, PathLogout, nil, nil)
}

func (r *AuthRepository) UpdateProfile(ctx context.Context, req repo.ProfileUpdate) (repo.AuthResult, error) {
	var out authPayload
	if err := r.c.doJSON(ctx, http.MethodPut, PathMe, req, &out); err != nil {
		return repo.AuthResult{}, err
	}
	return out.result(http.MethodPut, PathMe)
}
