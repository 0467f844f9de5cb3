// Package handler HTTP处理器：解析请求、调用应用层、返回统一响应
// 不包含业务逻辑，权限判断在应用层通过 access.Gate 完成
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
	"github.com/xiebiao/shoptrack/pkg/response"
)

var (
	errInvalidID  = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的ID")
	errInvalidTTL = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的过期时间")
)

func actor(c *gin.Context) access.Actor {
	return middleware.Actor(c)
}

// pathID 解析路径参数中的ID，失败时已写好响应
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, errInvalidID.WithDetail("%s=%q", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}
