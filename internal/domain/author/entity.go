package author

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxNameLength = 100

// Author 作者实体(聚合根)
// 删除作者时其名下图书一并删除(由应用层在同一事务中完成)
type Author struct {
	ID        uint
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAuthor 创建作者(工厂方法)
func NewAuthor(name string) (*Author, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Author{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename 修改作者名
func (a *Author) Rename(name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
