package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

const (
	PathAdmins = "/admin/admins"
	PathStats  = "/admin/stats"
	PathLogs   = "/admin/logs"
)

type AccountRepository struct {
	c *Client
}

func NewAccountRepository(c *Client) *AccountRepository {
	return &AccountRepository{c: c}
}

type adminPayload struct {
	Admin model.StaffAccount `json:"admin"`
}

func (r *AccountRepository) ListStaff(ctx context.Context) ([]model.StaffAccount, error) {
	var out struct {
		Admins []model.StaffAccount `json:"admins"`
	}
	if err := r.c.doJSON(ctx, http.MethodGet, PathAdmins, nil, &out); err != nil {
		return nil, err
	}
	if out.Admins == nil {
		out.Admins = []model.StaffAccount{}
	}
	return out.Admins, nil
}

func (r *AccountRepository) CreateAdmin(ctx context.Context, in repo.AccountInput) (model.StaffAccount, error) {
	var out adminPayload
	if err := r.c.doJSON(ctx, http.MethodPost, PathAdmins, in, &out); err != nil {
		return model.StaffAccount{}, err
	}
	return out.Admin, nil
}

// passwordが空ならJSONに含めない（AccountInputのomitempty）
func (r *AccountRepository) UpdateAdmin(ctx context.Context, id string, in repo.AccountInput) (model.StaffAccount, error) {
	var out adminPayload
	if err := r.c.doJSON(ctx, http.MethodPut, PathAdmins+"/"+url.PathEscape(id), in, &out); err != nil {
		return model.StaffAccount{}, err
	}
	return out.Admin, nil
}

func (r *AccountRepository) DeleteAdmin(ctx context.Context, id string) error {
	return r.c.doJSON(ctx, http.MethodDelete, PathAdmins+"/"+url.PathEscape(id), nil, nil)
}

func (r *AccountRepository) Stats(ctx context.Context) (model.DashboardStats, error) {
	var out struct {
		Stats model.DashboardStats `json:"stats"`
	}
	if err := r.c.doJSON(ctx, http.MethodGet, PathStats, nil, &out); err != nil {
		return model.DashboardStats{}, err
	}
	return out.Stats, nil
}

func (r *AccountRepository) AuditLogs(ctx context.Context) ([]model.AuditLogEntry, error) {
	var out struct {
		Logs []model.AuditLogEntry `json:"logs"`
	}
	if err := r.c.doJSON(ctx, http.MethodGet, PathLogs, nil, &out); err != nil {
		return nil, err
	}
	if out.Logs == nil {
		out.Logs = []model.AuditLogEntry{}
	}
	return out.Logs, nil
}
