package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name           string
		page, size     int
		wantPage, want int
	}{
		{"默认值", 0, 0, 1, 20},
		{"负数", -3, -1, 1, 20},
		{"超过上限", 2, 500, 2, 100},
		{"正常", 3, 50, 3, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, s := Normalize(tc.page, tc.size)
			assert.Equal(t, tc.wantPage, p)
			assert.Equal(t, tc.want, s)
		})
	}
	assert.Equal(t, 40, Offset(3, 20))
}

func TestParseOrdering(t *testing.T) {
	allowed := []string{"id", "title", "price"}
	fallback := Ordering{Field: "id"}

	assert.Equal(t, Ordering{Field: "price", Desc: true}, ParseOrdering("-price", allowed, fallback))
	assert.Equal(t, Ordering{Field: "title"}, ParseOrdering(" title ", allowed, fallback))
	assert.Equal(t, fallback, ParseOrdering("", allowed, fallback))
	assert.Equal(t, fallback, ParseOrdering("id; DROP TABLE books", allowed, fallback))
	assert.Equal(t, "price DESC", Ordering{Field: "price", Desc: true}.SQL())
	assert.Equal(t, "id ASC", fallback.SQL())
}
