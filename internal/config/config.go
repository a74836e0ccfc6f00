package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort            = ":5173"
	DefaultAPIBaseURL      = "https://misscake-sdr.onrender.com/api"
	DefaultAPITimeout      = 15 * time.Second
	DefaultCatalogCacheTTL = 5 * time.Minute
)

// Configはアプリ全体の設定
type Config struct {
	Port string // 待ち受けアドレス（:5173）

	APIBaseURL string        // バックエンドAPI
	APITimeout time.Duration // 1リクエストの上限（15s）

	StripePublicKey string // 空なら決済に進めない
	StripeSecretKey string // 任意（あればセッションURLを問い合わせる）

	AppBaseURL string // フロントのURL（CORS）

	DatabaseURL     string        // 任意（カートを保存する）
	RedisURL        string        // 任意（カタログのキャッシュ）
	CatalogCacheTTL time.Duration // 5m

	LogLevel slog.Level
}

// Loadは.env（無くてもよい）と環境変数から読む
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		//既にある環境変数は上書きしない
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	apiTimeout, err := durationOr("API_TIMEOUT", DefaultAPITimeout)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := durationOr("CATALOG_CACHE_TTL", DefaultCatalogCacheTTL)
	if err != nil {
		return Config{}, err
	}
	level, err := parseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: normalizePort(os.Getenv("PORT")),

		APIBaseURL: strings.TrimRight(envOr("API_BASE_URL", DefaultAPIBaseURL), "/"),
		APITimeout: apiTimeout,

		StripePublicKey: strings.TrimSpace(os.Getenv("STRIPE_PUBLIC_KEY")),
		StripeSecretKey: strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),

		AppBaseURL: strings.TrimSpace(os.Getenv("APP_BASE_URL")),

		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:        strings.TrimSpace(os.Getenv("REDIS_URL")),
		CatalogCacheTTL: cacheTTL,

		LogLevel: level,
	}

	//必須チェック
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("API_BASE_URL must be an absolute URL")
	}
	if cfg.APITimeout <= 0 {
		return Config{}, fmt.Errorf("API_TIMEOUT must be positive")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

// "8080" も ":8080" も受ける
func normalizePort(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultPort
	}
	if !strings.Contains(v, ":") {
		return ":" + v
	}
	return v
}

func parseLevel(v string) (slog.Level, error) {
	var l slog.Level
	if strings.TrimSpace(v) == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return l, nil
}
