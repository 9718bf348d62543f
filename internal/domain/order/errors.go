package order

import (
	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrEmptyItems 订单明细为空
	ErrEmptyItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrInvalidAmount 单价为负或总金额超过上限
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "订单金额超出允许范围")

	// ErrUnknownBook 订单引用的图书不存在(参数错误,400)
	ErrUnknownBook = apperrors.New(apperrors.ErrCodeInvalidParams, "图书不存在")

	// ErrInvoiceMismatch 回调发票号与订单不一致
	ErrInvoiceMismatch = apperrors.New(apperrors.ErrCodeInvoiceMismatch, "invoiceId mismatch")
)
