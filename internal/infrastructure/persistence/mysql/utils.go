package mysql

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/monobook/pkg/pagination"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突错误(1062 Duplicate entry)
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// searchScope 模糊搜索:column LIKE %kw%,关键词为纯数字时同时匹配主键
func searchScope(keyword string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			return db
		}

		like := "%" + keyword + "%"
		conds := make([]string, 0, len(columns)+1)
		args := make([]interface{}, 0, len(columns)+1)
		for _, c := range columns {
			conds = append(conds, c+" LIKE ?")
			args = append(args, like)
		}
		if id, err := strconv.ParseUint(keyword, 10, 64); err == nil {
			conds = append(conds, "id = ?")
			args = append(args, id)
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// pageScope 分页
func pageScope(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		page, pageSize = pagination.Normalize(page, pageSize)
		return db.Offset(pagination.Offset(page, pageSize)).Limit(pageSize)
	}
}

// orderScope 白名单排序,同值时按id保证稳定
func orderScope(raw string, allowed []string, fallback pagination.Ordering) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		o := pagination.ParseOrdering(raw, allowed, fallback)
		db = db.Order(o.SQL())
		if o.Field != "id" {
			db = db.Order("id ASC")
		}
		return db
	}
}
