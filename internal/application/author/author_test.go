package author

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/monobook/internal/domain/author"
	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/testutil/memory"
)

func TestAuthorUseCases(t *testing.T) {
	store := memory.NewStore()
	authorRepo := memory.NewAuthorRepository(store)
	bookRepo := memory.NewBookRepository(store)
	cache := memory.NewBookCache()
	svc := author.NewService(authorRepo)
	ctx := context.Background()

	create := NewCreateAuthorUseCase(svc)
	update := NewUpdateAuthorUseCase(svc)
	get := NewGetAuthorUseCase(svc)
	list := NewListAuthorsUseCase(svc)
	del := NewDeleteAuthorUseCase(authorRepo, bookRepo, memory.NewTxManager(store), cache)

	herbert, err := create.Execute(ctx, "Frank Herbert")
	require.NoError(t, err)
	_, err = create.Execute(ctx, "Carl Sagan")
	require.NoError(t, err)

	t.Run("名称不能为空", func(t *testing.T) {
		_, err := create.Execute(ctx, "   ")
		assert.ErrorIs(t, err, author.ErrInvalidName)
	})

	t.Run("按名称搜索并排序", func(t *testing.T) {
		resp, err := list.Execute(ctx, ListAuthorsRequest{Ordering: "-name"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
		assert.Equal(t, "Frank Herbert", resp.List[0].Name)
		assert.Equal(t, 20, resp.PageSize)

		resp, err = list.Execute(ctx, ListAuthorsRequest{Search: "sagan"})
		require.NoError(t, err)
		require.Len(t, resp.List, 1)
		assert.Equal(t, "Carl Sagan", resp.List[0].Name)
	})

	t.Run("改名", func(t *testing.T) {
		renamed, err := update.Execute(ctx, herbert.ID, "Franklin Herbert")
		require.NoError(t, err)
		assert.Equal(t, "Franklin Herbert", renamed.Name)
	})

	t.Run("删除作者同时删除其图书", func(t *testing.T) {
		b, err := book.NewBook(book.Attrs{
			Title:           "Dune",
			AuthorID:        herbert.ID,
			Genre:           "Fiction",
			PublicationDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
			Price:           1000,
			Quantity:        1,
		})
		require.NoError(t, err)
		require.NoError(t, bookRepo.Create(ctx, b))
		require.NoError(t, cache.Set(ctx, b))

		require.NoError(t, del.Execute(ctx, herbert.ID))

		_, err = get.Execute(ctx, herbert.ID)
		assert.ErrorIs(t, err, author.ErrAuthorNotFound)
		_, err = bookRepo.FindByID(ctx, b.ID)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
		assert.False(t, cache.Has(b.ID))
	})

	t.Run("删除不存在的作者", func(t *testing.T) {
		assert.ErrorIs(t, del.Execute(ctx, 999), author.ErrAuthorNotFound)
	})
}
