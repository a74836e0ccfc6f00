package usecase

import (
	"context"
	"sort"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/domain/model"
	"storefront/internal/guard"
	repo "storefront/internal/repository"
)

// OrderUsecase は顧客が自分の注文を見るだけ（書き込みなし）。
type OrderUsecase struct {
	session SessionReader
	orders  repo.OrderRepository
}

func NewOrderUsecase(session SessionReader, orders repo.OrderRepository) *OrderUsecase {
	return &OrderUsecase{session: session, orders: orders}
}

// 自分の注文（新しい順）
func (u *OrderUsecase) ListMine(ctx context.Context) ([]model.Order, error) {
	if err := requireAccess(u.session.Current(), guard.Authenticated); err != nil {
		return []model.Order{}, err
	}

	orders, err := u.orders.ListMine(ctx)
	if err != nil {
		return []model.Order{}, err
	}

	sortOrdersNewestFirst(orders)
	return orders, nil
}

// Get は自分の注文一覧から1件探す。
func (u *OrderUsecase) Get(ctx context.Context, orderID string) (model.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return model.Order{}, apperror.NewValidation("invalid order id")
	}

	orders, err := u.ListMine(ctx)
	if err != nil {
		return model.Order{}, err
	}
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, apperror.NewNotFound("order not found")
}

// createdAt降順（同時刻は元の順番）
func sortOrdersNewestFirst(orders []model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
