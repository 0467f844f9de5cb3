package dto

// CheckoutRequest 结算当前购物车
type CheckoutRequest struct {
	PaymentMode string `json:"payment_mode" binding:"required,oneof=UPI Card COD" example:"UPI"`
	Notes       string `json:"notes" binding:"max=500"`
}

// ListOrdersRequest 订单列表；user_id 只对管理员生效
type ListOrdersRequest struct {
	UserID   *uint  `form:"user_id"`
	Status   string `form:"status" binding:"omitempty,oneof=pending processing completed cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// StatusRequest 修改订单/支付/退货状态
type StatusRequest struct {
	Status string `json:"status" binding:"required" example:"processing"`
}

// RequestReturnRequest 申请退货
type RequestReturnRequest struct {
	OrderID   uint   `json:"order_id" binding:"required" example:"1"`
	ProductID uint   `json:"product_id" binding:"required" example:"1"`
	Quantity  int    `json:"quantity" binding:"required,min=1" example:"1"`
	Reason    string `json:"reason" binding:"max=500" example:"尺寸不合适"`
}

// ListReturnsRequest 退货列表
type ListReturnsRequest struct {
	UserID   *uint  `form:"user_id"`
	OrderID  *uint  `form:"order_id"`
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected restocked"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}
