package author

import (
	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

// 作者领域错误定义
var (
	// ErrAuthorNotFound 作者不存在
	ErrAuthorNotFound = apperrors.New(apperrors.ErrCodeAuthorNotFound, "作者不存在")

	// ErrInvalidName 作者名不合法
	ErrInvalidName = apperrors.New(apperrors.ErrCodeInvalidParams, "作者名不能为空且不超过100个字符")
)
