package book

import (
	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrUnknownAuthor 引用的作者不存在(参数错误,400)
	ErrUnknownAuthor = apperrors.New(apperrors.ErrCodeInvalidParams, "作者不存在")

	// ErrAuthorRequired 未指定作者
	ErrAuthorRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "必须指定作者")

	// ErrInvalidTitle 书名不合法
	ErrInvalidTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空且不超过200个字符")

	// ErrInvalidGenre 类型不合法
	ErrInvalidGenre = apperrors.New(apperrors.ErrCodeInvalidParams, "类型不能为空且不超过100个字符")

	// ErrInvalidPublicationDate 出版日期不合法
	ErrInvalidPublicationDate = apperrors.New(apperrors.ErrCodeInvalidParams, "出版日期格式应为YYYY-MM-DD")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格应在0到1000000.00之间")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
)
