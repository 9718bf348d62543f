package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestError(t *testing.T) {
	t.Run("业务错误映射HTTP状态码", func(t *testing.T) {
		c, w := newContext()
		Error(c, apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.ErrCodeBookNotFound, resp.Code)
		assert.Equal(t, "图书不存在", resp.Message)
	})

	t.Run("内部错误不泄露细节", func(t *testing.T) {
		c, w := newContext()
		Error(c, errors.New("dial tcp 10.0.0.1:3306: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.1")
	})
}

func TestCreatedAndNoContent(t *testing.T) {
	c, w := newContext()
	Created(c, gin.H{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newContext()
	NoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestNewPageData(t *testing.T) {
	p := NewPageData([]int{1, 2}, 45, 2, 20)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPageData(nil, 40, 1, 20)
	assert.Equal(t, 2, p.TotalPages)
}
