package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種類
type Kind string

const (
	//入力不正（通信しない）
	KindValidation Kind = "validation"
	//401
	KindAuthentication Kind = "authentication"
	//ロール不足
	KindAuthorization Kind = "authorization"
	//タイムアウト・接続不可
	KindTransport Kind = "transport"
	//それ以外
	KindServer Kind = "server"
)

const (
	MessageTimeout     = "Server response timeout"
	MessageUnreachable = "Network error: backend unavailable or connection lost"
	MessageServer      = "Unexpected server error"
)

// Error はアプリ全体で使うエラー。
// handlerはKindとStatusだけ見て1件の通知に変換する。
type Error struct {
	Kind    Kind
	Status  int
	Message string

	//どのAPIで起きたか（401の強制ログイン判定に使う）
	Method   string
	Endpoint string

	Timeout bool
	Err     error
}

func (e *Error) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("%s %d: %s (%s %s)", e.Kind, e.Status, e.Message, e.Method, e.Endpoint)
	}
	return fmt.Sprintf("%s %d: %s", e.Kind, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidation(message string) error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

func NewAuthentication(message string) error {
	return &Error{Kind: KindAuthentication, Status: http.StatusUnauthorized, Message: message}
}

func NewAuthorization(message string) error {
	return &Error{Kind: KindAuthorization, Status: http.StatusForbidden, Message: message}
}

func NewNotFound(message string) error {
	return &Error{Kind: KindServer, Status: http.StatusNotFound, Message: message}
}

// 通信エラー。timeoutかどうかでメッセージを分ける
func NewTransport(method, endpoint string, timeout bool, cause error) error {
	msg := MessageUnreachable
	status := http.StatusBadGateway
	if timeout {
		msg = MessageTimeout
		status = http.StatusGatewayTimeout
	}
	return &Error{
		Kind:     KindTransport,
		Status:   status,
		Message:  msg,
		Method:   method,
		Endpoint: endpoint,
		Timeout:  timeout,
		Err:      cause,
	}
}

// サーバーのレスポンスから作る。messageが空なら汎用メッセージ
func FromResponse(method, endpoint string, status int, message string) error {
	kind := KindServer
	switch status {
	case http.StatusUnauthorized:
		kind = KindAuthentication
	case http.StatusForbidden:
		kind = KindAuthorization
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = KindValidation
	}
	if message == "" {
		message = MessageServer
	}
	return &Error{
		Kind:     kind,
		Status:   status,
		Message:  message,
		Method:   method,
		Endpoint: endpoint,
	}
}

func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}
