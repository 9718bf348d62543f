package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/pkg/pagination"
)

type bookRepository struct {
	s *Store
}

// NewBookRepository 创建图书仓储
func NewBookRepository(s *Store) book.Repository {
	return &bookRepository{s: s}
}

func (r *bookRepository) Create(_ context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b.ID = r.s.nextID()
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	r.s.books[b.ID] = *b
	return nil
}

func (r *bookRepository) FindByID(_ context.Context, id uint) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return &b, nil
}

func (r *bookRepository) Update(_ context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[b.ID]; !ok {
		return book.ErrBookNotFound
	}
	r.s.books[b.ID] = *b
	return nil
}

func (r *bookRepository) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.s.books, id)
	return nil
}

func (r *bookRepository) DeleteByAuthor(_ context.Context, authorID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []uint
	for id, b := range r.s.books {
		if b.AuthorID == authorID {
			delete(r.s.books, id)
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *bookRepository) List(_ context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	r.s.mu.Lock()
	var all []book.Book
	for _, b := range r.s.books {
		if params.Genre != "" && b.Genre != params.Genre {
			continue
		}
		if params.AuthorID != 0 && b.AuthorID != params.AuthorID {
			continue
		}
		if !matches(params.Search, b.ID, b.Title) {
			continue
		}
		all = append(all, b)
	}
	r.s.mu.Unlock()

	total := int64(len(all))
	page := sortAndPage(all, params.Ordering, book.OrderingFields, pagination.Ordering{Field: "id"},
		compareBooks, func(b book.Book) uint { return b.ID }, params.Page, params.PageSize)

	result := make([]*book.Book, len(page))
	for i := range page {
		b := page[i]
		result[i] = &b
	}
	return result, total, nil
}

func compareBooks(a, b book.Book, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "genre":
		return strings.Compare(a.Genre, b.Genre)
	case "price":
		return compareInt64(a.Price, b.Price)
	case "quantity":
		return compareInt64(int64(a.Quantity), int64(b.Quantity))
	case "publication_date":
		return a.PublicationDate.Compare(b.PublicationDate)
	default:
		return compareInt64(int64(a.ID), int64(b.ID))
	}
}

// LockByID 内存实现由TxManager串行化事务,直接读取即可
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *bookRepository) UpdateStock(_ context.Context, id uint, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Quantity+delta < 0 {
		return book.ErrInsufficientStock
	}
	b.Quantity += delta
	r.s.books[id] = b
	return nil
}
