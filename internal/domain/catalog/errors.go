package catalog

import (
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// 商品目录领域错误
var (
	ErrProductNotFound   = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")
	ErrCategoryNotFound  = apperrors.New(apperrors.ErrCodeNotFound, "分类不存在")
	ErrSupplierNotFound  = apperrors.New(apperrors.ErrCodeNotFound, "供应商不存在")
	ErrCategoryDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "分类名称已存在")

	ErrInvalidName         = apperrors.New(apperrors.ErrCodeInvalidParams, "名称不能为空且不超过200个字符")
	ErrInvalidPrice        = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")
	ErrInvalidGSTRate      = apperrors.New(apperrors.ErrCodeInvalidParams, "GST税率必须在0-100之间")
	ErrInvalidReorderPoint = apperrors.New(apperrors.ErrCodeInvalidParams, "补货点不能为负数")
	ErrInvalidLeadTime     = apperrors.New(apperrors.ErrCodeInvalidParams, "供货周期不能为负数")
	ErrInvalidInitialStock = apperrors.New(apperrors.ErrCodeInvalidParams, "初始库存不能为负数")
	ErrInvalidImageURL     = apperrors.New(apperrors.ErrCodeInvalidParams, "图片地址格式不正确")
	ErrInvalidDiscount     = apperrors.New(apperrors.ErrCodeInvalidParams, "折扣百分比必须大于0且小于100")
	ErrInvalidContactEmail = apperrors.New(apperrors.ErrCodeInvalidParams, "联系邮箱格式不正确")
)
