package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/xiebiao/monobook/pkg/errors"
	"github.com/xiebiao/monobook/pkg/response"
)

// ErrDisallowedHost 请求Host不在白名单中
var ErrDisallowedHost = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的Host")

// AllowedHosts 校验请求Host(不含端口)
// 用于会根据Host生成回调地址的接口。规则:
//   - "shop.example" 精确匹配
//   - ".shop.example" 匹配该域名及其子域名
//   - "*" 匹配任意Host
//
// hosts为空时不校验
func AllowedHosts(hosts []string) gin.HandlerFunc {
	patterns := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			patterns = append(patterns, h)
		}
	}

	return func(c *gin.Context) {
		if len(patterns) == 0 || hostAllowed(c.Request.Host, patterns) {
			c.Next()
			return
		}

		log.Ctx(c.Request.Context()).Warn().Str("host", c.Request.Host).Msg("disallowed host")
		response.Error(c, ErrDisallowedHost)
		c.Abort()
	}
}

func hostAllowed(hostport string, patterns []string) bool {
	host := strings.ToLower(hostport)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return false
	}

	for _, p := range patterns {
		switch {
		case p == "*":
			return true
		case strings.HasPrefix(p, "."):
			if host == p[1:] || strings.HasSuffix(host, p) {
				return true
			}
		case host == p:
			return true
		}
	}
	return false
}
