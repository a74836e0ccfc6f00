package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"storefront/internal/apperror"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client はバックエンドAPIへの唯一の通信路。
// Cookie（セッション）とBearerトークンの両方を送る。リトライはしない。
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

// DI
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookiejar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:       jar,
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}, nil
}

// SetAccessToken は空文字で消す。
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// リクエストごとの追加ヘッダー
type callOption func(*http.Request)

func withIdempotencyKey(key string) callOption {
	return func(r *http.Request) {
		if key != "" {
			r.Header.Set("Idempotency-Key", key)
		}
	}
}

// errorBody はエラー時のレスポンス（messageだけ使う）
type errorBody struct {
	Message string `json:"message"`
}

// doJSON はJSONを送ってJSONを受け取る。inとoutはnil可。
func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}, opts ...callOption) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, path, out, opts...)
}

func (c *Client) send(req *http.Request, path string, out interface{}, opts ...callOption) error {
	method := req.Method
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.accessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		timeout := isTimeout(err)
		c.logger.Warn("api transport error",
			slog.String("method", method),
			slog.String("path", path),
			slog.Bool("timeout", timeout),
			slog.String("error", err.Error()),
		)
		return apperror.NewTransport(method, path, timeout, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewTransport(method, path, isTimeout(err), err)
	}

	c.logger.Debug("api call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		//JSONでなければ汎用メッセージ
		_ = json.Unmarshal(data, &eb)
		return apperror.FromResponse(method, path, resp.StatusCode, strings.TrimSpace(eb.Message))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperror.FromResponse(method, path, http.StatusBadGateway, "")
	}
	return nil
}

// タイムアウトか接続不可かを分ける
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
