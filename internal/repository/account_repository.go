package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// adminアカウントの作成・更新の入力
type AccountInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password,omitempty"`
}

// スタッフアカウント・統計・監査ログの窓口
type AccountRepository interface {
	ListStaff(ctx context.Context) ([]model.StaffAccount, error)
	CreateAdmin(ctx context.Context, in AccountInput) (model.StaffAccount, error)
	UpdateAdmin(ctx context.Context, id string, in AccountInput) (model.StaffAccount, error)
	DeleteAdmin(ctx context.Context, id string) error

	Stats(ctx context.Context) (model.DashboardStats, error)
	//ownerのみ
	AuditLogs(ctx context.Context) ([]model.AuditLogEntry, error)
}
