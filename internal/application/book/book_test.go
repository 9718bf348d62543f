package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/monobook/internal/domain/author"
	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/testutil/memory"
)

type fixture struct {
	create *CreateBookUseCase
	update *UpdateBookUseCase
	del    *DeleteBookUseCase
	get    *GetBookUseCase
	list   *ListBooksUseCase
	cache  *memory.BookCache
	author *author.Author
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	authorRepo := memory.NewAuthorRepository(store)
	svc := book.NewService(memory.NewBookRepository(store), authorRepo)
	cache := memory.NewBookCache()

	a, err := author.NewAuthor("Frank Herbert")
	require.NoError(t, err)
	require.NoError(t, authorRepo.Create(context.Background(), a))

	return &fixture{
		create: NewCreateBookUseCase(svc),
		update: NewUpdateBookUseCase(svc, cache),
		del:    NewDeleteBookUseCase(svc, cache),
		get:    NewGetBookUseCase(svc, cache),
		list:   NewListBooksUseCase(svc),
		cache:  cache,
		author: a,
	}
}

func (f *fixture) input(title, genre string) BookInput {
	return BookInput{
		Title:           title,
		AuthorID:        f.author.ID,
		Genre:           genre,
		PublicationDate: "1965-08-01",
		Price:           1250,
		Quantity:        4,
	}
}

func TestCreateBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.create.Execute(ctx, f.input("Dune", "Fiction"))
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "Dune", resp.Title)
	assert.Equal(t, f.author.ID, resp.AuthorID)
	assert.Equal(t, "1965-08-01", resp.PublicationDate)
	assert.Equal(t, int64(1250), resp.Price)
	assert.Equal(t, 4, resp.Quantity)

	t.Run("作者不存在返回参数错误", func(t *testing.T) {
		in := f.input("Dune", "Fiction")
		in.AuthorID = 999
		_, err := f.create.Execute(ctx, in)
		assert.ErrorIs(t, err, book.ErrUnknownAuthor)
	})

	t.Run("出版日期格式错误", func(t *testing.T) {
		in := f.input("Dune", "Fiction")
		in.PublicationDate = "01.08.1965"
		_, err := f.create.Execute(ctx, in)
		assert.ErrorIs(t, err, book.ErrInvalidPublicationDate)
	})

	t.Run("负库存", func(t *testing.T) {
		in := f.input("Dune", "Fiction")
		in.Quantity = -1
		_, err := f.create.Execute(ctx, in)
		assert.ErrorIs(t, err, book.ErrInvalidStock)
	})
}

func TestGetBook_CacheAside(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.create.Execute(ctx, f.input("Dune", "Fiction"))
	require.NoError(t, err)
	assert.False(t, f.cache.Has(created.ID))

	got, err := f.get.Execute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.True(t, f.cache.Has(created.ID))

	in := f.input("Dune Messiah", "Fiction")
	_, err = f.update.Execute(ctx, created.ID, in)
	require.NoError(t, err)
	assert.False(t, f.cache.Has(created.ID), "更新后应删除缓存")

	got, err = f.get.Execute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)

	require.NoError(t, f.del.Execute(ctx, created.ID))
	assert.False(t, f.cache.Has(created.ID))

	_, err = f.get.Execute(ctx, created.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestListBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, in := range []BookInput{
		f.input("Dune", "Fiction"),
		f.input("Cosmos", "Science"),
		f.input("Neuromancer", "Fiction"),
	} {
		_, err := f.create.Execute(ctx, in)
		require.NoError(t, err)
	}

	all, err := f.list.Execute(ctx, ListBooksRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Len(t, all.List, 3)

	fiction, err := f.list.Execute(ctx, ListBooksRequest{Genre: "Fiction", Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), fiction.Total)
	for _, b := range fiction.List {
		assert.Equal(t, "Fiction", b.Genre)
	}
	assert.Equal(t, "Dune", fiction.List[0].Title)

	paged, err := f.list.Execute(ctx, ListBooksRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, paged.List, 1)
	assert.Equal(t, 2, paged.Page)
}
