package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
	"github.com/xiebiao/shoptrack/pkg/logger"
	"github.com/xiebiao/shoptrack/pkg/response"
)

// Recovery panic恢复，返回统一的50000响应并记录堆栈
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log := logger.FromContext(c.Request.Context(), base)
				log.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				response.ErrorWithCode(c, apperrors.ErrCodeInternal, apperrors.ErrInternal.Message)
				c.Abort()
			}
		}()
		c.Next()
	}
}
