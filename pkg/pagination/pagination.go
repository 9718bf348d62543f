// Package pagination 列表查询的分页与排序参数处理
package pagination

import "strings"

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize 规范化分页参数
// page<1取1；pageSize<=0取默认值，超过上限取上限
func Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Offset 计算偏移量
func Offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// Ordering 排序字段
type Ordering struct {
	Field string
	Desc  bool
}

// ParseOrdering 解析排序参数，格式为field或-field（降序）
// 字段不在白名单内时返回fallback，避免拼接任意列名到SQL
func ParseOrdering(raw string, allowed []string, fallback Ordering) Ordering {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	o := Ordering{Field: raw}
	if strings.HasPrefix(raw, "-") {
		o = Ordering{Field: raw[1:], Desc: true}
	}

	for _, f := range allowed {
		if f == o.Field {
			return o
		}
	}
	return fallback
}

// SQL 生成ORDER BY子句片段
func (o Ordering) SQL() string {
	if o.Desc {
		return o.Field + " DESC"
	}
	return o.Field + " ASC"
}
