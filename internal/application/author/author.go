package author

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/xiebiao/monobook/internal/domain/author"
	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/transaction"
	"github.com/xiebiao/monobook/pkg/pagination"
)

const timeLayout = "2006-01-02 15:04:05"

// AuthorResponse 作者响应DTO
type AuthorResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toResponse(a *author.Author) *AuthorResponse {
	return &AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		CreatedAt: a.CreatedAt.Format(timeLayout),
		UpdatedAt: a.UpdatedAt.Format(timeLayout),
	}
}

// CreateAuthorUseCase 创建作者
type CreateAuthorUseCase struct {
	authorService author.Service
}

func NewCreateAuthorUseCase(authorService author.Service) *CreateAuthorUseCase {
	return &CreateAuthorUseCase{authorService: authorService}
}

func (uc *CreateAuthorUseCase) Execute(ctx context.Context, name string) (*AuthorResponse, error) {
	a, err := uc.authorService.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return toResponse(a), nil
}

// UpdateAuthorUseCase 修改作者
type UpdateAuthorUseCase struct {
	authorService author.Service
}

func NewUpdateAuthorUseCase(authorService author.Service) *UpdateAuthorUseCase {
	return &UpdateAuthorUseCase{authorService: authorService}
}

func (uc *UpdateAuthorUseCase) Execute(ctx context.Context, id uint, name string) (*AuthorResponse, error) {
	a, err := uc.authorService.Rename(ctx, id, name)
	if err != nil {
		return nil, err
	}
	return toResponse(a), nil
}

// DeleteAuthorUseCase 删除作者
// 作者名下的图书在同一事务中一并删除
type DeleteAuthorUseCase struct {
	authorRepo author.Repository
	bookRepo   book.Repository
	txManager  transaction.Manager
	bookCache  book.Cache
}

func NewDeleteAuthorUseCase(
	authorRepo author.Repository,
	bookRepo book.Repository,
	txManager transaction.Manager,
	bookCache book.Cache,
) *DeleteAuthorUseCase {
	return &DeleteAuthorUseCase{
		authorRepo: authorRepo,
		bookRepo:   bookRepo,
		txManager:  txManager,
		bookCache:  bookCache,
	}
}

func (uc *DeleteAuthorUseCase) Execute(ctx context.Context, id uint) error {
	var bookIDs []uint
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.authorRepo.FindByID(txCtx, id); err != nil {
			return err
		}

		ids, err := uc.bookRepo.DeleteByAuthor(txCtx, id)
		if err != nil {
			return err
		}
		bookIDs = ids

		return uc.authorRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	if err := uc.bookCache.Delete(ctx, bookIDs...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uints("book_ids", bookIDs).Msg("invalidate book cache failed")
	}
	log.Ctx(ctx).Info().Uint("author_id", id).Int("books", len(bookIDs)).Msg("author deleted")
	return nil
}

// GetAuthorUseCase 作者详情
type GetAuthorUseCase struct {
	authorService author.Service
}

func NewGetAuthorUseCase(authorService author.Service) *GetAuthorUseCase {
	return &GetAuthorUseCase{authorService: authorService}
}

func (uc *GetAuthorUseCase) Execute(ctx context.Context, id uint) (*AuthorResponse, error) {
	a, err := uc.authorService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(a), nil
}

// ListAuthorsUseCase 作者列表
type ListAuthorsUseCase struct {
	authorService author.Service
}

func NewListAuthorsUseCase(authorService author.Service) *ListAuthorsUseCase {
	return &ListAuthorsUseCase{authorService: authorService}
}

// ListAuthorsRequest 列表查询请求
type ListAuthorsRequest struct {
	Page     int
	PageSize int
	Search   string
	Ordering string
}

// ListAuthorsResponse 列表查询响应
type ListAuthorsResponse struct {
	List     []*AuthorResponse
	Total    int64
	Page     int
	PageSize int
}

func (uc *ListAuthorsUseCase) Execute(ctx context.Context, req ListAuthorsRequest) (*ListAuthorsResponse, error) {
	page, pageSize := pagination.Normalize(req.Page, req.PageSize)

	authors, total, err := uc.authorService.List(ctx, author.ListParams{
		Page:     page,
		PageSize: pageSize,
		Search:   req.Search,
		Ordering: req.Ordering,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*AuthorResponse, len(authors))
	for i, a := range authors {
		list[i] = toResponse(a)
	}
	return &ListAuthorsResponse{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}
