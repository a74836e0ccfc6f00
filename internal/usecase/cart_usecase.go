package usecase

import (
	"context"
	"log/slog"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase はメモリ上のカート。
// 同じ商品は1行にまとめ、合計は毎回明細から計算する。
type CartUsecase struct {
	//nilなら保存しない
	store  repo.CartRepository
	logger *slog.Logger

	mu         sync.RWMutex
	items      []model.CartItem
	drawerOpen bool
	//明細を書き換えるたびに進める
	version uint64

	//保存は1つずつ、saved より古いスナップショットは書かない
	saveMu sync.Mutex
	saved  uint64
}

func NewCartUsecase(store repo.CartRepository, logger *slog.Logger) *CartUsecase {
	return &CartUsecase{
		store:  store,
		logger: logger,
	}
}

// CartView は画面に返すカートの内容。
type CartView struct {
	Items         []model.CartItem `json:"items"`
	TotalQuantity int              `json:"totalQuantity"`
	TotalPrice    decimal.Decimal  `json:"totalPrice"`
	DrawerOpen    bool             `json:"drawerOpen"`
}

// Restore は保存済みのスナップショットを読み込む（起動時のみ）。
func (u *CartUsecase) Restore(ctx context.Context) error {
	if u.store == nil {
		return nil
	}

	items, err := u.store.Load(ctx)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.items = u.items[:0]
	for _, it := range items {
		//壊れた行は捨てる
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i := u.indexLocked(it.ProductID); i >= 0 {
			u.items[i].Quantity += it.Quantity
			continue
		}
		u.items = append(u.items, it)
	}
	return nil
}

// AddItem は数量+1（無ければ数量1で末尾に追加）。ドロワーを開く。
func (u *CartUsecase) AddItem(ctx context.Context, p model.Product) CartView {
	u.mu.Lock()
	if i := u.indexLocked(p.ID); i >= 0 {
		u.items[i].Quantity++
	} else {
		u.items = append(u.items, model.NewCartItem(p))
	}
	u.drawerOpen = true
	version, snapshot := u.bumpLocked()
	view := u.viewLocked()
	u.mu.Unlock()

	u.persist(ctx, version, snapshot)
	return view
}

// SetQuantity は数量を置き換える（加算ではない）。0以下は削除と同じ。
func (u *CartUsecase) SetQuantity(ctx context.Context, productID string, qty int) CartView {
	if qty <= 0 {
		return u.RemoveItem(ctx, productID)
	}

	u.mu.Lock()
	i := u.indexLocked(productID)
	if i < 0 {
		//カートに無い商品は何もしない
		view := u.viewLocked()
		u.mu.Unlock()
		return view
	}
	u.items[i].Quantity = qty
	version, snapshot := u.bumpLocked()
	view := u.viewLocked()
	u.mu.Unlock()

	u.persist(ctx, version, snapshot)
	return view
}

// RemoveItem は何回呼んでも同じ結果になる。
func (u *CartUsecase) RemoveItem(ctx context.Context, productID string) CartView {
	u.mu.Lock()
	i := u.indexLocked(productID)
	if i < 0 {
		view := u.viewLocked()
		u.mu.Unlock()
		return view
	}
	u.items = append(u.items[:i], u.items[i+1:]...)
	version, snapshot := u.bumpLocked()
	view := u.viewLocked()
	u.mu.Unlock()

	u.persist(ctx, version, snapshot)
	return view
}

func (u *CartUsecase) Clear(ctx context.Context) {
	u.mu.Lock()
	u.items = nil
	version, _ := u.bumpLocked()
	u.mu.Unlock()

	if u.store == nil {
		return
	}
	u.saveMu.Lock()
	defer u.saveMu.Unlock()
	if version <= u.saved {
		return
	}
	u.saved = version
	if err := u.store.Clear(ctx); err != nil {
		u.logger.Warn("cart snapshot clear failed", slog.String("error", err.Error()))
	}
}

// 追加順のコピー
func (u *CartUsecase) Items() []model.CartItem {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.copyLocked()
}

func (u *CartUsecase) TotalQuantity() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return totalQuantity(u.items)
}

func (u *CartUsecase) TotalPrice() decimal.Decimal {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return totalPrice(u.items)
}

func (u *CartUsecase) IsEmpty() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.items) == 0
}

func (u *CartUsecase) View() CartView {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.viewLocked()
}

func (u *CartUsecase) SetDrawerOpen(open bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.drawerOpen = open
}

func (u *CartUsecase) DrawerOpen() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.drawerOpen
}

func (u *CartUsecase) indexLocked(productID string) int {
	for i := range u.items {
		if u.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (u *CartUsecase) copyLocked() []model.CartItem {
	out := make([]model.CartItem, len(u.items))
	copy(out, u.items)
	return out
}

func (u *CartUsecase) viewLocked() CartView {
	return CartView{
		Items:         u.copyLocked(),
		TotalQuantity: totalQuantity(u.items),
		TotalPrice:    totalPrice(u.items),
		DrawerOpen:    u.drawerOpen,
	}
}

func (u *CartUsecase) bumpLocked() (uint64, []model.CartItem) {
	u.version++
	return u.version, u.copyLocked()
}

// 保存に失敗してもカート操作は止めない
func (u *CartUsecase) persist(ctx context.Context, version uint64, items []model.CartItem) {
	if u.store == nil {
		return
	}
	u.saveMu.Lock()
	defer u.saveMu.Unlock()
	if version <= u.saved {
		//もっと新しい内容を保存済み
		return
	}
	u.saved = version
	if err := u.store.Save(ctx, items); err != nil {
		u.logger.Warn("cart snapshot save failed", slog.String("error", err.Error()), slog.Int("items", len(items)))
	}
}

func totalQuantity(items []model.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func totalPrice(items []model.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}
