package usecase

import (
	"context"
	"log/slog"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/domain/model"
	"storefront/internal/guard"
	repo "storefront/internal/repository"

	"golang.org/x/sync/errgroup"
)

// AdminAccountUsecase はスタッフアカウントとダッシュボード。
// 1行ごとの権限（ownerだけがadminを管理できる）を通信前に確認する。
type AdminAccountUsecase struct {
	session   SessionReader
	accounts  repo.AccountRepository
	orders    repo.OrderRepository
	validator InputValidator
	logger    *slog.Logger
}

func NewAdminAccountUsecase(
	session SessionReader,
	accounts repo.AccountRepository,
	orders repo.OrderRepository,
	validator InputValidator,
	logger *slog.Logger,
) *AdminAccountUsecase {
	return &AdminAccountUsecase{
		session:   session,
		accounts:  accounts,
		orders:    orders,
		validator: validator,
		logger:    logger,
	}
}

// 一覧の1行。CanManageは画面で編集・削除ボタンを出すかどうか
type AccountRow struct {
	model.StaffAccount
	CanManage bool `json:"canManage"`
}

type Dashboard struct {
	Stats     model.DashboardStats  `json:"stats"`
	Accounts  []AccountRow          `json:"admins"`
	Orders    []model.Order         `json:"orders"`
	Logs      []model.AuditLogEntry `json:"logs,omitempty"`
	CanCreate bool                  `json:"canCreate"`
}

// Dashboard は統計・アカウント・注文をまとめて読む。ownerは監査ログも。
func (u *AdminAccountUsecase) Dashboard(ctx context.Context) (Dashboard, error) {
	s := u.session.Current()
	if err := requireAccess(s, guard.StaffOnly); err != nil {
		return Dashboard{}, err
	}

	var (
		stats    model.DashboardStats
		accounts []model.StaffAccount
		orders   []model.Order
		logs     []model.AuditLogEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = u.accounts.Stats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = u.accounts.ListStaff(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = u.orders.ListStaff(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	if guard.Decide(s, guard.OwnerOnly).Allowed() {
		var err error
		logs, err = u.accounts.AuditLogs(ctx)
		if err != nil {
			return Dashboard{}, err
		}
	}

	rows := make([]AccountRow, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, AccountRow{StaffAccount: a, CanManage: guard.CanManageAccount(s, a)})
	}
	sortOrdersNewestFirst(orders)
	if orders == nil {
		orders = []model.Order{}
	}

	return Dashboard{
		Stats:     stats,
		Accounts:  rows,
		Orders:    orders,
		Logs:      logs,
		CanCreate: guard.CanCreateAccount(s),
	}, nil
}

// CreateAdmin はownerだけ。パスワード必須
func (u *AdminAccountUsecase) CreateAdmin(ctx context.Context, in repo.AccountInput) (model.StaffAccount, error) {
	s := u.session.Current()
	if err := requireAccess(s, guard.StaffOnly); err != nil {
		return model.StaffAccount{}, err
	}
	if !guard.CanCreateAccount(s) {
		return model.StaffAccount{}, apperror.NewAuthorization("only the owner can create admins")
	}

	in = normalizeAccountInput(in)
	if err := u.validator.Validate(ctx, in); err != nil {
		return model.StaffAccount{}, err
	}
	if in.Password == "" {
		return model.StaffAccount{}, apperror.NewValidation("password is required")
	}

	a, err := u.accounts.CreateAdmin(ctx, in)
	if err != nil {
		return model.StaffAccount{}, err
	}

	u.logger.Info("admin created", slog.String("admin_id", a.ID), slog.String("actor", s.Identity.Username))
	return a, nil
}

// UpdateAdmin は対象の行を確認してから送る。パスワードは空なら送らない
func (u *AdminAccountUsecase) UpdateAdmin(ctx context.Context, id string, in repo.AccountInput) (model.StaffAccount, error) {
	s, target, err := u.manageable(ctx, id)
	if err != nil {
		return model.StaffAccount{}, err
	}

	in = normalizeAccountInput(in)
	if err := u.validator.Validate(ctx, in); err != nil {
		return model.StaffAccount{}, err
	}

	a, err := u.accounts.UpdateAdmin(ctx, target.ID, in)
	if err != nil {
		return model.StaffAccount{}, err
	}

	u.logger.Info("admin updated", slog.String("admin_id", target.ID), slog.String("actor", s.Identity.Username))
	return a, nil
}

func (u *AdminAccountUsecase) DeleteAdmin(ctx context.Context, id string) error {
	s, target, err := u.manageable(ctx, id)
	if err != nil {
		return err
	}

	if err := u.accounts.DeleteAdmin(ctx, target.ID); err != nil {
		return err
	}

	u.logger.Info("admin deleted", slog.String("admin_id", target.ID), slog.String("actor", s.Identity.Username))
	return nil
}

// 監査ログ（ownerのみ）
func (u *AdminAccountUsecase) AuditLogs(ctx context.Context) ([]model.AuditLogEntry, error) {
	if err := requireAccess(u.session.Current(), guard.OwnerOnly); err != nil {
		return []model.AuditLogEntry{}, err
	}

	logs, err := u.accounts.AuditLogs(ctx)
	if err != nil {
		return []model.AuditLogEntry{}, err
	}
	return logs, nil
}

// manageable は対象アカウントを一覧から探し、1行ごとのルールを確認する。
// 画面の状態に関係なく、admin同士の編集・削除はここで止まる。
func (u *AdminAccountUsecase) manageable(ctx context.Context, id string) (model.Session, model.StaffAccount, error) {
	s := u.session.Current()
	if err := requireAccess(s, guard.StaffOnly); err != nil {
		return s, model.StaffAccount{}, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return s, model.StaffAccount{}, apperror.NewValidation("invalid account id")
	}

	accounts, err := u.accounts.ListStaff(ctx)
	if err != nil {
		return s, model.StaffAccount{}, err
	}
	for _, a := range accounts {
		if a.ID != id {
			continue
		}
		if !guard.CanManageAccount(s, a) {
			return s, model.StaffAccount{}, apperror.NewAuthorization("not allowed to manage this account")
		}
		return s, a, nil
	}
	return s, model.StaffAccount{}, apperror.NewNotFound("account not found")
}

func normalizeAccountInput(in repo.AccountInput) repo.AccountInput {
	return repo.AccountInput{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: strings.TrimSpace(in.Password),
	}
}
