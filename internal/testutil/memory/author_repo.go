package memory

import (
	"context"
	"strings"
	"time"

	"github.com/xiebiao/monobook/internal/domain/author"
	"github.com/xiebiao/monobook/pkg/pagination"
)

type authorRepository struct {
	s *Store
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(s *Store) author.Repository {
	return &authorRepository{s: s}
}

func (r *authorRepository) Create(_ context.Context, a *author.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a.ID = r.s.nextID()
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.authors[a.ID] = *a
	return nil
}

func (r *authorRepository) FindByID(_ context.Context, id uint) (*author.Author, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.authors[id]
	if !ok {
		return nil, author.ErrAuthorNotFound
	}
	return &a, nil
}

func (r *authorRepository) Update(_ context.Context, a *author.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.authors[a.ID]; !ok {
		return author.ErrAuthorNotFound
	}
	r.s.authors[a.ID] = *a
	return nil
}

func (r *authorRepository) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.authors[id]; !ok {
		return author.ErrAuthorNotFound
	}
	delete(r.s.authors, id)
	return nil
}

func (r *authorRepository) List(_ context.Context, params author.ListParams) ([]*author.Author, int64, error) {
	r.s.mu.Lock()
	var all []author.Author
	for _, a := range r.s.authors {
		if matches(params.Search, a.ID, a.Name) {
			all = append(all, a)
		}
	}
	r.s.mu.Unlock()

	total := int64(len(all))
	page := sortAndPage(all, params.Ordering, author.OrderingFields, pagination.Ordering{Field: "id"},
		func(a, b author.Author, field string) int {
			if field == "name" {
				return strings.Compare(a.Name, b.Name)
			}
			return compareInt64(int64(a.ID), int64(b.ID))
		},
		func(a author.Author) uint { return a.ID },
		params.Page, params.PageSize)

	result := make([]*author.Author, len(page))
	for i := range page {
		a := page[i]
		result[i] = &a
	}
	return result, total, nil
}
