package dto

// AddToCartRequest 加入购物车，quantity 省略时为1
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required" example:"1"`
	Quantity  int  `json:"quantity" example:"2"`
}

// UpdateCartRequest 修改数量，小于等于0时移除
type UpdateCartRequest struct {
	Quantity int `json:"quantity" example:"3"`
}
