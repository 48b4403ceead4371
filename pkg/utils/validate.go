package utils

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/barengs/smp/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate 按 validate 标签校验请求结构，失败时返回 422 AppError
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.BadRequest("请求参数错误")
	}

	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fmt.Sprintf("%s:%s", fe.Field(), fe.Tag()))
	}
	return apperrors.Validation("参数校验失败: " + strings.Join(fields, ", "))
}
