package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  user: bookstore
  password: secret
  dbname: shop
  loc: Europe/Kyiv
mono:
  token: test-token
  validity: 1h
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "test-token", cfg.Mono.Token)
	assert.Equal(t, time.Hour, cfg.Mono.Validity)
	// 未配置的项使用默认值
	assert.Equal(t, "https://api.monobank.ua", cfg.Mono.BaseURL)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, "bookstore:secret@tcp(127.0.0.1:3306)/shop?charset=utf8mb4&parseTime=true&loc=Europe%2FKyiv", cfg.Database.DSN())
}

func TestLoadFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")
	t.Setenv("BOOKSTORE_MONO_TOKEN", "from-env")
	t.Setenv("BOOKSTORE_SERVER_PORT", "7070")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Mono.Token)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadFile_Validate(t *testing.T) {
	t.Run("端口非法", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "server:\n  port: 70000\n"))
		assert.ErrorContains(t, err, "无效的服务端口")
	})

	t.Run("生产环境使用默认JWT密钥", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "server:\n  mode: release\nmono:\n  token: x\n"))
		assert.ErrorContains(t, err, "JWT密钥")
	})

	t.Run("生产环境缺少网关Token", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "server:\n  mode: release\njwt:\n  secret: strong\n"))
		assert.ErrorContains(t, err, "mono.token")
	})

	t.Run("生产环境回调地址来源未限定", func(t *testing.T) {
		_, err := LoadFile(writeConfig(t, "server:\n  mode: release\njwt:\n  secret: strong\nmono:\n  token: x\n"))
		assert.ErrorContains(t, err, "server.allowed_hosts")
	})

	t.Run("生产环境配置了Host白名单", func(t *testing.T) {
		cfg, err := LoadFile(writeConfig(t, `
server:
  mode: release
  allowed_hosts: [shop.example, .cdn.example]
jwt:
  secret: strong
mono:
  token: x
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"shop.example", ".cdn.example"}, cfg.Server.AllowedHosts)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
