package user

import (
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

var (
	ErrInvalidEmail       = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	ErrInvalidNickname    = apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")
	ErrInvalidRole        = apperrors.New(apperrors.ErrCodeInvalidParams, "角色只能是admin或customer")
	ErrRoleAlreadyGranted = apperrors.New(apperrors.ErrCodeDuplicateEntry, "用户已拥有该角色")
	ErrRoleNotGranted     = apperrors.New(apperrors.ErrCodeNotFound, "用户没有该角色")
	ErrRoleNotRevocable   = apperrors.New(apperrors.ErrCodeBusinessError, "customer角色不能撤销")
)
