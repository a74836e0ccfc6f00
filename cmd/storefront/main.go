package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/api"
	"storefront/internal/infra/cache"
	"storefront/internal/infra/db"
	"storefront/internal/infra/payment"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/google/uuid"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("storefront stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	//APIクライアント（cookie + Bearer）
	client, err := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	if err != nil {
		return err
	}

	//カートの保存先（DATABASE_URLがあるときだけ）
	var cartStore repo.CartRepository
	if cfg.DatabaseURL != "" {
		gormDB, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := db.Migrate(gormDB); err != nil {
			return err
		}
		cartStore = infraRepo.NewCartGormRepository(gormDB)
	}

	//カタログのキャッシュ（REDIS_URLがあるときだけ）
	var catalogCache repo.CatalogCache
	if cfg.RedisURL != "" {
		rdb, err := cache.Open(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		catalogCache = cache.NewCatalogRedisCache(rdb, "storefront")
	}

	//Repository（API実装）生成
	authRepo := api.NewAuthRepository(client)
	orderRepo := api.NewOrderRepository(client)
	accountRepo := api.NewAccountRepository(client)
	productRepo := api.NewProductRepository(client)
	categoryRepo := api.NewCategoryRepository(client)
	provider := payment.NewStripeProvider(cfg.StripeSecretKey, nil)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	v := validator.NewInputValidator()

	//Usecase生成
	sessionUC := usecase.NewSessionUsecase(authRepo, client, v, clock, logger)
	cartUC := usecase.NewCartUsecase(cartStore, logger)
	checkoutUC := usecase.NewCheckoutUsecase(sessionUC, cartUC, orderRepo, provider, idGen, logger, cfg.StripePublicKey, cfg.APITimeout)
	orderUC := usecase.NewOrderUsecase(sessionUC, orderRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(sessionUC, orderRepo, logger)
	adminAccountUC := usecase.NewAdminAccountUsecase(sessionUC, accountRepo, orderRepo, v, logger)
	catalogUC := usecase.NewCatalogUsecase(sessionUC, productRepo, categoryRepo, catalogCache, cfg.CatalogCacheTTL, v, logger)

	//起動時：カートを戻してセッションを確認（確認中はpending）
	if err := cartUC.Restore(ctx); err != nil {
		logger.Warn("cart restore failed", slog.String("error", err.Error()))
	}
	go sessionUC.Refresh(ctx)

	//Handler生成
	ew := handler.NewErrorWriter(sessionUC, logger)
	e := server.NewEcho(server.Handlers{
		Session:      handler.NewSessionHandler(sessionUC, ew),
		Catalog:      handler.NewCatalogHandler(catalogUC, ew),
		Cart:         handler.NewCartHandler(cartUC, catalogUC, ew),
		Checkout:     handler.NewCheckoutHandler(checkoutUC, ew),
		Orders:       handler.NewOrderHandler(orderUC, ew),
		AdminOrders:  handler.NewAdminOrderHandler(adminOrderUC, ew),
		AdminAccount: handler.NewAdminAccountHandler(adminAccountUC, ew),
	}, sessionUC, logger, cfg.AppBaseURL)

	//Server起動
	err = server.Start(ctx, e, cfg.Port, logger)

	//キャンセル通知を送り切ってから終わる
	checkoutUC.Wait()
	return err
}
