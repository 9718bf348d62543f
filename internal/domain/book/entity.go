package book

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DateLayout 出版日期格式
	DateLayout = "2006-01-02"

	// MaxPrice 单价上限(1 000 000.00грн)
	MaxPrice int64 = 100_000_000
)

// Book 图书实体(聚合根)
// 约定:
// 1. 价格以最小货币单位(копійки)存储为int64
// 2. AuthorID引用作者聚合,创建/更新时由领域服务校验作者存在
// 3. Quantity即库存,下单时扣减,支付失败/过期/撤销/冻结时回补
type Book struct {
	ID              uint
	Title           string
	AuthorID        uint
	Genre           string
	PublicationDate time.Time
	Price           int64 // 单价(最小货币单位)
	Quantity        int   // 库存数量
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Attrs 图书可编辑属性(创建与整体更新共用)
type Attrs struct {
	Title           string
	AuthorID        uint
	Genre           string
	PublicationDate time.Time
	Price           int64
	Quantity        int
}

// Validate 校验属性
func (a *Attrs) Validate() error {
	a.Title = strings.TrimSpace(a.Title)
	a.Genre = strings.TrimSpace(a.Genre)

	if a.Title == "" || utf8.RuneCountInString(a.Title) > 200 {
		return ErrInvalidTitle
	}
	if a.Genre == "" || utf8.RuneCountInString(a.Genre) > 100 {
		return ErrInvalidGenre
	}
	if a.AuthorID == 0 {
		return ErrAuthorRequired
	}
	if a.PublicationDate.IsZero() {
		return ErrInvalidPublicationDate
	}
	if a.Price < 0 || a.Price > MaxPrice {
		return ErrInvalidPrice
	}
	if a.Quantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

// NewBook 创建新图书(工厂方法)
func NewBook(attrs Attrs) (*Book, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	b := &Book{CreatedAt: now}
	b.apply(attrs, now)
	return b, nil
}

// Update 整体更新(PUT语义)
func (b *Book) Update(attrs Attrs) error {
	if err := attrs.Validate(); err != nil {
		return err
	}
	b.apply(attrs, time.Now())
	return nil
}

func (b *Book) apply(attrs Attrs, now time.Time) {
	b.Title = attrs.Title
	b.AuthorID = attrs.AuthorID
	b.Genre = attrs.Genre
	b.PublicationDate = attrs.PublicationDate
	b.Price = attrs.Price
	b.Quantity = attrs.Quantity
	b.UpdatedAt = now
}

// HasStock 库存是否满足购买数量
func (b *Book) HasStock(quantity int) bool {
	return b.Quantity >= quantity
}
