package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
)

// SessionUsecase はログイン中のユーザーを1か所で持つ。
// 起動時はPending、確認が終わるとAnonymousかAuthenticatedになる。
type SessionUsecase struct {
	auth      repo.AuthRepository
	tokens    repo.TokenHolder
	validator InputValidator
	clock     Clock
	logger    *slog.Logger

	mu      sync.RWMutex
	session model.Session
	//Bearerトークンの期限（トークンが無いときはゼロ）
	expiresAt time.Time
	//セッションを書き換えるたびに進める（古いrefresh結果で上書きしない）
	seq uint64
}

// DI（tokensはnil可）
func NewSessionUsecase(
	auth repo.AuthRepository,
	tokens repo.TokenHolder,
	validator InputValidator,
	clock Clock,
	logger *slog.Logger,
) *SessionUsecase {
	return &SessionUsecase{
		auth:      auth,
		tokens:    tokens,
		validator: validator,
		clock:     clock,
		logger:    logger,
		session:   model.PendingSession(),
	}
}

// 現在のスナップショット
func (u *SessionUsecase) Current() model.Session {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.session
}

// Stale はBearerトークンの期限切れを返す（次の保護ページで再確認する）。
func (u *SessionUsecase) Stale() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if !u.session.IsAuthenticated() || u.expiresAt.IsZero() {
		return false
	}
	return !u.clock.Now().Before(u.expiresAt)
}

// Refresh は /auth/me で確認する。
// 失敗はすべて「未ログイン」扱いで、エラーは返さない（起動時の確認にも使うため）。
func (u *SessionUsecase) Refresh(ctx context.Context) {
	u.mu.Lock()
	u.seq++
	seq := u.seq
	u.session = model.PendingSession()
	u.mu.Unlock()

	identity, err := u.auth.Me(ctx)

	u.mu.Lock()
	defer u.mu.Unlock()
	if seq != u.seq {
		//確認中にログイン等があったのでそちらを優先
		return
	}
	if err != nil {
		u.logger.Debug("session check: anonymous", slog.String("error", err.Error()))
		u.clearLocked()
		return
	}
	u.session = model.AuthenticatedSession(identity)
	//期限切れのBearerは捨ててcookieの確認結果に任せる
	u.dropTokenLocked()
}

// Login はログインしてセッションを置き換える。
// 失敗はサーバーのメッセージ付きAuthenticationErrorで返す。
func (u *SessionUsecase) Login(ctx context.Context, req repo.LoginRequest) (model.Identity, error) {
	req.UsernameOrEmail = strings.TrimSpace(req.UsernameOrEmail)
	if err := u.validator.Validate(ctx, req); err != nil {
		return model.Identity{}, err
	}

	res, err := u.auth.Login(ctx, req)
	if err != nil {
		return model.Identity{}, asAuthenticationError(err)
	}

	u.apply(res)
	u.logger.Info("logged in", slog.String("username", res.User.Username), slog.String("role", string(res.User.Role)))
	return res.User, nil
}

// Register は登録後そのままログイン状態にする。
func (u *SessionUsecase) Register(ctx context.Context, req repo.RegisterRequest) (model.Identity, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := u.validator.Validate(ctx, req); err != nil {
		return model.Identity{}, err
	}

	res, err := u.auth.Register(ctx, req)
	if err != nil {
		return model.Identity{}, err
	}

	u.apply(res)
	u.logger.Info("registered", slog.String("username", res.User.Username))
	return res.User, nil
}

// Logout は通信の結果に関係なくローカルのセッションを消す。
func (u *SessionUsecase) Logout(ctx context.Context) {
	if err := u.auth.Logout(ctx); err != nil {
		u.logger.Warn("logout call failed, clearing local session anyway", slog.String("error", err.Error()))
	}

	u.Invalidate()
}

// UpdateProfile は部分更新。passwordは空白を除いて空なら送らない。
func (u *SessionUsecase) UpdateProfile(ctx context.Context, in repo.ProfileUpdate) (model.Identity, error) {
	if !u.Current().IsAuthenticated() {
		return model.Identity{}, apperror.NewAuthentication("login required")
	}

	req := repo.ProfileUpdate{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Password: strings.TrimSpace(in.Password),
	}
	if err := u.validator.Validate(ctx, req); err != nil {
		return model.Identity{}, err
	}

	res, err := u.auth.UpdateProfile(ctx, req)
	if err != nil {
		return model.Identity{}, err
	}

	u.apply(res)
	return res.User, nil
}

// Invalidate はローカルの状態だけ消す（401の強制ログインでも使う）。
func (u *SessionUsecase) Invalidate() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.seq++
	u.clearLocked()
}

func (u *SessionUsecase) apply(res repo.AuthResult) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.seq++
	//ロールはレスポンスをそのまま使う
	u.session = model.AuthenticatedSession(res.User)

	if res.AccessToken == "" {
		return
	}
	if u.tokens != nil {
		u.tokens.SetAccessToken(res.AccessToken)
	}
	u.expiresAt = tokenExpiry(res.AccessToken)
}

func (u *SessionUsecase) clearLocked() {
	u.session = model.AnonymousSession()
	u.dropTokenLocked()
}

func (u *SessionUsecase) dropTokenLocked() {
	u.expiresAt = time.Time{}
	if u.tokens != nil {
		u.tokens.SetAccessToken("")
	}
}

// tokenExpiry はexpだけ読む（署名の検証はサーバーの仕事）。
func tokenExpiry(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}

	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0)
	case int64:
		return time.Unix(exp, 0)
	default:
		return time.Time{}
	}
}

// 通信エラー以外はAuthenticationErrorにそろえる
func asAuthenticationError(err error) error {
	ae, ok := apperror.As(err)
	if !ok {
		return apperror.NewAuthentication("login failed")
	}
	if ae.Kind == apperror.KindTransport || ae.Kind == apperror.KindAuthentication {
		return err
	}
	return &apperror.Error{
		Kind:     apperror.KindAuthentication,
		Status:   401,
		Message:  ae.Message,
		Method:   ae.Method,
		Endpoint: ae.Endpoint,
		Err:      err,
	}
}
