package book

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/monobook/internal/domain/book"
)

// CreateBookUseCase 图书上架用例
// 应用层只负责流程编排,作者存在性、字段校验由领域服务负责
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建上架用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookService: bookService,
	}
}

// Execute 执行上架用例
func (uc *CreateBookUseCase) Execute(ctx context.Context, in BookInput) (*BookResponse, error) {
	attrs, err := in.toAttrs()
	if err != nil {
		return nil, err
	}

	b, err := uc.bookService.Create(ctx, attrs)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Uint("book_id", b.ID).Str("title", b.Title).Msg("book created")
	return toResponse(b), nil
}

// UpdateBookUseCase 整体更新图书(PUT)
type UpdateBookUseCase struct {
	bookService book.Service
	bookCache   book.Cache
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(bookService book.Service, bookCache book.Cache) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService, bookCache: bookCache}
}

// Execute 更新成功后删除缓存,下次读取时重新加载
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, in BookInput) (*BookResponse, error) {
	attrs, err := in.toAttrs()
	if err != nil {
		return nil, err
	}

	b, err := uc.bookService.Update(ctx, id, attrs)
	if err != nil {
		return nil, err
	}

	invalidate(ctx, uc.bookCache, id)
	return toResponse(b), nil
}

// DeleteBookUseCase 删除图书
type DeleteBookUseCase struct {
	bookService book.Service
	bookCache   book.Cache
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service, bookCache book.Cache) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookService: bookService, bookCache: bookCache}
}

// Execute 执行删除
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	if err := uc.bookService.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, uc.bookCache, id)
	return nil
}

// invalidate 缓存删除失败只记录日志,缓存有TTL兜底
func invalidate(ctx context.Context, cache book.Cache, ids ...uint) {
	if err := cache.Delete(ctx, ids...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uints("book_ids", ids).Msg("invalidate book cache failed")
	}
}
