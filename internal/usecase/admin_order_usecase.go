package usecase

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/domain/model"
	"storefront/internal/guard"
	repo "storefront/internal/repository"
)

// AdminOrderUsecase はスタッフの注文管理。
// 変更できるのは status / remainingTime / adminComment だけ。
type AdminOrderUsecase struct {
	session SessionReader
	orders  repo.OrderRepository
	logger  *slog.Logger
}

func NewAdminOrderUsecase(session SessionReader, orders repo.OrderRepository, logger *slog.Logger) *AdminOrderUsecase {
	return &AdminOrderUsecase{session: session, orders: orders, logger: logger}
}

// 画面から受け取る更新内容（statusは文字列のまま受けて検証する）
type AdminUpdateOrderInput struct {
	Status        string `json:"status"`
	RemainingTime string `json:"remainingTime"`
	AdminComment  string `json:"adminComment"`
}

// 全注文（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context) ([]model.Order, error) {
	if err := requireAccess(u.session.Current(), guard.StaffOnly); err != nil {
		return []model.Order{}, err
	}

	orders, err := u.orders.ListStaff(ctx)
	if err != nil {
		return []model.Order{}, err
	}

	sortOrdersNewestFirst(orders)
	return orders, nil
}

// UpdateStatus はステータスを検証してから送る（不正な値は通信しない）。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, orderID string, in AdminUpdateOrderInput) (model.Order, error) {
	s := u.session.Current()
	if err := requireAccess(s, guard.StaffOnly); err != nil {
		return model.Order{}, err
	}

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return model.Order{}, apperror.NewValidation("invalid order id")
	}

	status, ok := model.ParseOrderStatus(in.Status)
	if !ok {
		return model.Order{}, apperror.NewValidation("invalid status")
	}

	update := model.StaffOrderUpdate{
		Status:        status,
		RemainingTime: strings.TrimSpace(in.RemainingTime),
		AdminComment:  strings.TrimSpace(in.AdminComment),
	}

	o, err := u.orders.UpdateStaff(ctx, orderID, update)
	if err != nil {
		return model.Order{}, err
	}

	u.logger.Info("order status updated",
		slog.String("order_id", orderID),
		slog.String("status", string(status)),
		slog.String("actor", s.Identity.Username),
	)
	return o, nil
}
