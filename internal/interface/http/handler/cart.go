package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/shoptrack/internal/application/cart"
	"github.com/xiebiao/shoptrack/internal/interface/http/dto"
	"github.com/xiebiao/shoptrack/pkg/response"
)

// CartHandler 购物车；每次增减数量都会同步预留或释放库存
type CartHandler struct {
	carts    *appcart.CartUseCase
	staleTTL time.Duration
}

// NewCartHandler 创建购物车处理器；staleTTL 是手动清理时的默认过期时间
func NewCartHandler(carts *appcart.CartUseCase, staleTTL time.Duration) *CartHandler {
	return &CartHandler{carts: carts, staleTTL: staleTTL}
}

// ListCart 当前用户的购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appcart.CartInfo}
// @Router       /api/v1/cart [get]
func (h *CartHandler) ListCart(c *gin.Context) {
	result, err := h.carts.ListCart(c.Request.Context(), actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddToCart 加入购物车，已存在时累加数量
// @Summary      加入购物车
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddToCartRequest true "商品和数量"
// @Success      200 {object} response.Response{data=appcart.LineInfo}
// @Failure      200 {object} response.Response "40001 库存不足"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req dto.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.carts.AddToCart(c.Request.Context(), actor(c), req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateQuantity 修改数量，数量小于等于0时移除
// @Summary      修改购物车数量
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int                   true "商品ID"
// @Param        request    body dto.UpdateCartRequest true "新数量"
// @Success      200 {object} response.Response{data=appcart.LineInfo}
// @Router       /api/v1/cart/items/{product_id} [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	var req dto.UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.carts.UpdateQuantity(c.Request.Context(), actor(c), productID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveFromCart 移除并释放预留库存
// @Summary      移出购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path int true "商品ID"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "40404 购物车条目不存在"
// @Router       /api/v1/cart/items/{product_id} [delete]
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	if err := h.carts.RemoveFromCart(c.Request.Context(), actor(c), productID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ReleaseStale 手动释放长时间未动的购物车预留（管理员）
// @Summary      释放过期购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        ttl query string false "过期时间，如 24h，默认取配置"
// @Success      200 {object} response.Response{data=map[string]int}
// @Router       /api/v1/admin/carts/release-stale [post]
func (h *CartHandler) ReleaseStale(c *gin.Context) {
	ttl := h.staleTTL
	if raw := c.Query("ttl"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			response.Error(c, errInvalidTTL.WithDetail("%q", raw))
			return
		}
		ttl = d
	}

	released, err := h.carts.ReleaseStaleCarts(c.Request.Context(), actor(c), ttl)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"released": released})
}
