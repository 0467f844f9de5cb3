package inventory

import (
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// 库存领域错误
var (
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
	ErrInvalidQuantity   = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	ErrInvalidDelta      = apperrors.New(apperrors.ErrCodeInvalidParams, "库存变更数量与变更类型不匹配")
	ErrInvalidChangeType = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的库存变更类型")
)
