package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Run("写入文件并使用JSON格式", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		cleanup, err := Init(Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)

		log.Info().Str("order_id", "42").Msg("hello")
		cleanup()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"order_id":"42"`)
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("非法级别回退到info", func(t *testing.T) {
		cleanup, err := Init(Config{Level: "verbose", Output: "stderr"})
		require.NoError(t, err)
		defer cleanup()
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})
}
