package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/guard"
	repo "storefront/internal/repository"
)

const (
	MessageCheckoutLoginRequired = "You must log in before checkout"
	MessageCheckoutEmptyCart     = "The cart is empty"
	MessageCheckoutNoProviderKey = "Payment provider public key is not configured"
	MessageCheckoutFailed        = "Unable to start checkout"
	MessageCheckoutRedirect      = "Payment provider redirect failed"
)

// 決済から戻ってきたときの状態
type ReturnOutcome string

const (
	ReturnIdle      ReturnOutcome = "idle"
	ReturnSucceeded ReturnOutcome = "success"
	ReturnCanceled  ReturnOutcome = "canceled"
)

// 決済ページのクエリ（success=true / canceled=true&orderId=...）
type ReturnParams struct {
	Success  string
	Canceled string
	OrderID  string
}

type CheckoutResult struct {
	RedirectURL string `json:"redirectUrl"`
	//サーバーが返したときだけ
	OrderID string `json:"orderId,omitempty"`
}

// CheckoutUsecase はカートから決済セッションを作る。
// セッション作成に成功した時点でカートを空にする（決済完了を待たない）。
type CheckoutUsecase struct {
	session  SessionReader
	cart     *CartUsecase
	orders   repo.OrderRepository
	provider repo.PaymentProvider
	ids      IDGenerator
	logger   *slog.Logger

	publicKey string
	//キャンセル通知の上限（通信のタイムアウトと同じ値）
	cancelTimeout time.Duration

	inflight sync.WaitGroup
}

func NewCheckoutUsecase(
	session SessionReader,
	cart *CartUsecase,
	orders repo.OrderRepository,
	provider repo.PaymentProvider,
	ids IDGenerator,
	logger *slog.Logger,
	publicKey string,
	cancelTimeout time.Duration,
) *CheckoutUsecase {
	if cancelTimeout <= 0 {
		cancelTimeout = 15 * time.Second
	}
	return &CheckoutUsecase{
		session:       session,
		cart:          cart,
		orders:        orders,
		provider:      provider,
		ids:           ids,
		logger:        logger,
		publicKey:     strings.TrimSpace(publicKey),
		cancelTimeout: cancelTimeout,
	}
}

// Checkout は前提条件を順に確認してから決済セッションを作る。
// 前提条件で失敗したときは通信しない。
func (u *CheckoutUsecase) Checkout(ctx context.Context) (CheckoutResult, error) {
	if !guard.Decide(u.session.Current(), guard.Authenticated).Allowed() {
		return CheckoutResult{}, apperror.NewValidation(MessageCheckoutLoginRequired)
	}
	//同じ呼び出しの中でカートを確定させる
	items := u.cart.Items()
	if len(items) == 0 {
		return CheckoutResult{}, apperror.NewValidation(MessageCheckoutEmptyCart)
	}
	if u.publicKey == "" {
		return CheckoutResult{}, apperror.NewValidation(MessageCheckoutNoProviderKey)
	}

	req := repo.CheckoutSessionRequest{
		Items:          make([]repo.CheckoutItem, 0, len(items)),
		IdempotencyKey: u.ids.NewID(),
	}
	for _, it := range items {
		req.Items = append(req.Items, repo.CheckoutItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	cs, err := u.orders.CreateCheckoutSession(ctx, req)
	if err != nil {
		u.logger.Warn("checkout session failed", slog.String("error", err.Error()), slog.String("idempotency_key", req.IdempotencyKey))
		return CheckoutResult{}, err
	}

	hasSession := strings.TrimSpace(cs.SessionID) != ""
	hasURL := strings.TrimSpace(cs.CheckoutURL) != ""
	if hasSession == hasURL {
		//どちらも無い・両方ある はサーバーの異常
		return CheckoutResult{}, &apperror.Error{Kind: apperror.KindServer, Status: 502, Message: MessageCheckoutFailed}
	}

	target := strings.TrimSpace(cs.CheckoutURL)
	if hasSession {
		url, err := u.provider.RedirectURL(ctx, strings.TrimSpace(cs.SessionID))
		if err != nil {
			u.logger.Warn("provider redirect failed", slog.String("error", err.Error()), slog.String("order_id", cs.OrderID))
			return CheckoutResult{}, &apperror.Error{Kind: apperror.KindServer, Status: 502, Message: MessageCheckoutRedirect, Err: err}
		}
		target = url
	}

	//注文はサーバー側でPendingとして作成済み
	u.cart.Clear(ctx)
	u.cart.SetDrawerOpen(false)

	u.logger.Info("checkout started", slog.String("order_id", cs.OrderID), slog.Int("lines", len(req.Items)))
	return CheckoutResult{RedirectURL: target, OrderID: cs.OrderID}, nil
}

// HandleReturn は決済ページから戻ったときの処理。
// キャンセルなら保留注文の削除を投げっぱなしで送る（失敗はログだけ）。
func (u *CheckoutUsecase) HandleReturn(p ReturnParams) ReturnOutcome {
	if p.Success == "true" {
		//注文はPendingのまま（スタッフが進める）
		return ReturnSucceeded
	}
	if p.Canceled != "true" {
		return ReturnIdle
	}

	orderID := strings.TrimSpace(p.OrderID)
	if orderID == "" {
		return ReturnCanceled
	}

	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()

		//リクエストのctxとは切り離す
		ctx, cancel := context.WithTimeout(context.Background(), u.cancelTimeout)
		defer cancel()

		if err := u.orders.CancelPending(ctx, orderID); err != nil {
			u.logger.Info("cancel pending order ignored", slog.String("order_id", orderID), slog.String("error", err.Error()))
			return
		}
		u.logger.Info("pending order canceled", slog.String("order_id", orderID))
	}()
	return ReturnCanceled
}

// Wait は投げっぱなしの通信が終わるまで待つ（終了処理とテスト用）。
func (u *CheckoutUsecase) Wait() {
	u.inflight.Wait()
}
