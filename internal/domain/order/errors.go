package order

import (
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// 订单领域错误
var (
	ErrOrderNotFound           = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")
	ErrPaymentNotFound         = apperrors.New(apperrors.ErrCodePaymentNotFound, "支付记录不存在")
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidStatusTransition, "状态不允许此操作")
	ErrInvalidStatus           = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的状态")
	ErrInvalidPaymentMode      = apperrors.New(apperrors.ErrCodeInvalidParams, "支付方式只能是UPI、Card或COD")
	ErrEmptyCart               = apperrors.New(apperrors.ErrCodeEmptyCart, "购物车为空")
	ErrEmptyOrder              = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")
	ErrNonPositiveTotal        = apperrors.New(apperrors.ErrCodeBusinessError, "订单金额必须大于0")
)
