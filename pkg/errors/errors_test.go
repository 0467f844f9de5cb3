package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "[40010] 资源状态冲突", ErrConflict.Error())

	wrapped := Wrap(errors.New("connection refused"), "查询失败")
	assert.Equal(t, "[50000] 查询失败: connection refused", wrapped.Error())
}

func TestWithDetail_KeepsCodeAndIdentity(t *testing.T) {
	err := ErrForbidden.WithDetail("customer cannot adjust stock")

	assert.Equal(t, ErrCodeForbidden, err.Code)
	assert.Contains(t, err.Message, "customer cannot adjust stock")
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.True(t, HasCode(err, ErrCodeForbidden))
}

func TestGetAppError(t *testing.T) {
	t.Run("AppError原样返回", func(t *testing.T) {
		got := GetAppError(ErrInvalidParams)
		assert.Same(t, ErrInvalidParams, got)
	})

	t.Run("普通错误包装为内部错误", func(t *testing.T) {
		got := GetAppError(errors.New("boom"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.EqualError(t, got.Err, "boom")
	})

	t.Run("WrapDB使用数据库错误码", func(t *testing.T) {
		got := GetAppError(WrapDB(errors.New("deadlock"), "更新库存失败"))
		assert.Equal(t, ErrCodeDatabaseError, got.Code)
	})
}
