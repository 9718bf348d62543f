package book

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/pkg/pagination"
)

// GetBookUseCase 图书详情(cache-aside)
// 1. 先读缓存,命中直接返回
// 2. 未命中查数据库并回填缓存
// 3. 缓存故障时降级为直接查数据库
type GetBookUseCase struct {
	bookService book.Service
	bookCache   book.Cache
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookService book.Service, bookCache book.Cache) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService, bookCache: bookCache}
}

// Execute 查询详情
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	cached, ok, err := uc.bookCache.Get(ctx, id)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint("book_id", id).Msg("read book cache failed")
	}
	if ok {
		return toResponse(cached), nil
	}

	b, err := uc.bookService.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.bookCache.Set(ctx, b); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint("book_id", id).Msg("write book cache failed")
	}
	return toResponse(b), nil
}

// ListBooksUseCase 图书列表查询用例
// 支持类型、作者过滤,书名搜索,白名单排序,分页
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int
	PageSize int
	Genre    string
	AuthorID uint
	Search   string // 书名关键词,纯数字时同时匹配ID
	Ordering string // 如price、-publication_date
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List     []*BookResponse
	Total    int64
	Page     int
	PageSize int
}

// Execute 执行列表查询用例
// page默认1,pageSize默认20,最大100
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	page, pageSize := pagination.Normalize(req.Page, req.PageSize)

	books, total, err := uc.bookService.List(ctx, book.ListParams{
		Page:     page,
		PageSize: pageSize,
		Genre:    req.Genre,
		AuthorID: req.AuthorID,
		Search:   req.Search,
		Ordering: req.Ordering,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*BookResponse, len(books))
	for i, b := range books {
		list[i] = toResponse(b)
	}

	return &ListBooksResponse{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
