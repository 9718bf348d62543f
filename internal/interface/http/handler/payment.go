package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/monobook/internal/application/order"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
	"github.com/xiebiao/monobook/pkg/response"
)

const (
	headerSignature = "X-Sign"
	maxCallbackBody = 1 << 20
)

// PaymentHandler 支付回调处理器
type PaymentHandler struct {
	callbackUseCase *apporder.HandleCallbackUseCase
}

// NewPaymentHandler 创建支付回调处理器
func NewPaymentHandler(callbackUseCase *apporder.HandleCallbackUseCase) *PaymentHandler {
	return &PaymentHandler{callbackUseCase: callbackUseCase}
}

// MonobankCallback monobank支付状态回调
// 签名基于原始请求体计算，所以不能先绑定成结构体再处理
// @Summary      monobank回调
// @Description  校验X-Sign签名后更新订单状态，失败/过期/退款/冻结时回补库存
// @Tags         支付
// @Accept       json
// @Produce      json
// @Param        X-Sign  header string                 true "base64编码的ECDSA签名"
// @Param        request body   payment.Callback       true "回调内容"
// @Success      200 {object} response.Response{data=apporder.CallbackResponse}
// @Failure      400 {object} response.Response "签名不匹配或参数错误"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /payments/monobank/callback [post]
func (h *PaymentHandler) MonobankCallback(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		response.Error(c, apperrors.WithCode(apperrors.ErrCodeBindError, "读取请求体失败", err))
		return
	}

	result, err := h.callbackUseCase.Execute(c.Request.Context(), apporder.CallbackRequest{
		Body:      body,
		Signature: c.GetHeader(headerSignature),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
