package book

import (
	"context"
	"errors"

	"github.com/xiebiao/monobook/internal/domain/author"
)

// Service 图书领域服务
// 封装跨聚合的规则:图书引用的作者必须存在
type Service interface {
	Create(ctx context.Context, attrs Attrs) (*Book, error)
	Get(ctx context.Context, id uint) (*Book, error)
	Update(ctx context.Context, id uint, attrs Attrs) (*Book, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

type service struct {
	repo       Repository
	authorRepo author.Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository, authorRepo author.Repository) Service {
	return &service{repo: repo, authorRepo: authorRepo}
}

// Create 创建图书
func (s *service) Create(ctx context.Context, attrs Attrs) (*Book, error) {
	b, err := NewBook(attrs)
	if err != nil {
		return nil, err
	}

	if err := s.ensureAuthor(ctx, b.AuthorID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get 图书详情
func (s *service) Get(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// Update 整体更新
func (s *service) Update(ctx context.Context, id uint, attrs Attrs) (*Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := b.Update(attrs); err != nil {
		return nil, err
	}

	if err := s.ensureAuthor(ctx, b.AuthorID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete 删除图书
func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// List 分页查询
func (s *service) List(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// ensureAuthor 作者不存在时返回参数错误(400),而不是404
func (s *service) ensureAuthor(ctx context.Context, authorID uint) error {
	if _, err := s.authorRepo.FindByID(ctx, authorID); err != nil {
		if errors.Is(err, author.ErrAuthorNotFound) {
			return ErrUnknownAuthor
		}
		return err
	}
	return nil
}
