package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/usecase"

	playground "github.com/go-playground/validator/v10"
)

type inputValidator struct {
	v *playground.Validate
}

// Usecaseは interface を依存注入
func NewInputValidator() usecase.InputValidator {
	return &inputValidator{v: playground.New(playground.WithRequiredStructEnabled())}
}

// Validate はstructタグで検証し、失敗ならValidationErrorを返す（通信しない）。
func (iv *inputValidator) Validate(ctx context.Context, in interface{}) error {
	err := iv.v.StructCtx(ctx, in)
	if err == nil {
		return nil
	}

	var vErrs playground.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		return apperror.NewValidation(describe(vErrs[0]))
	}
	return apperror.NewValidation("invalid input")
}

// 最初のエラーだけをメッセージにする
func describe(fe playground.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long", field)
	case "min", "gt", "gte":
		return fmt.Sprintf("%s is too small", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
