package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/xiebiao/monobook/pkg/errors"
	"github.com/xiebiao/monobook/pkg/response"
)

// Recovery panic恢复
// 返回统一的JSON错误结构，堆栈只写日志
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Ctx(c.Request.Context()).Error().
			Str("panic", fmt.Sprint(recovered)).
			Bytes("stack", debug.Stack()).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")

		response.Error(c, apperrors.ErrInternal)
		c.Abort()
	})
}
