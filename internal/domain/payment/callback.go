package payment

import (
	"encoding/json"
	"strings"

	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

// Callback 网关回调(webhook)负载
type Callback struct {
	InvoiceID     string `json:"invoiceId"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Ccy           int    `json:"ccy"`
	Reference     string `json:"reference"`
	ModifiedDate  string `json:"modifiedDate,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`
}

// ParseCallback 解析并校验回调负载
func ParseCallback(body []byte) (*Callback, error) {
	var cb Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, apperrors.WithCode(apperrors.ErrCodeBindError, "回调数据格式错误", err)
	}

	cb.InvoiceID = strings.TrimSpace(cb.InvoiceID)
	cb.Status = strings.TrimSpace(cb.Status)
	cb.Reference = strings.TrimSpace(cb.Reference)

	switch {
	case cb.InvoiceID == "":
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "缺少invoiceId")
	case cb.Status == "":
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "缺少status")
	case cb.Reference == "":
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "缺少reference")
	}
	return &cb, nil
}
