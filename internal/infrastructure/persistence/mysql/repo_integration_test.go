package mysql

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/monobook/internal/domain/author"
	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/internal/domain/user"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

// 需要真实MySQL:MONOBOOK_TEST_MYSQL_DSN="root:pass@tcp(127.0.0.1:3306)/monobook_test?charset=utf8mb4&parseTime=True&loc=Local"
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("MONOBOOK_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("MONOBOOK_TEST_MYSQL_DSN未设置,跳过MySQL集成测试")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"order_items", "orders", "books", "authors", "users"} {
		require.NoError(t, db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error)
	}
	return db
}

func seedBook(t *testing.T, ctx context.Context, db *gorm.DB, title, genre string, qty int) (*author.Author, *book.Book) {
	t.Helper()

	a, err := author.NewAuthor("Тарас Шевченко")
	require.NoError(t, err)
	require.NoError(t, NewAuthorRepository(db).Create(ctx, a))

	b, err := book.NewBook(book.Attrs{
		Title:           title,
		AuthorID:        a.ID,
		Genre:           genre,
		PublicationDate: time.Date(1840, 4, 18, 0, 0, 0, 0, time.UTC),
		Price:           25000,
		Quantity:        qty,
	})
	require.NoError(t, err)
	require.NoError(t, NewBookRepository(db).Create(ctx, b))
	return a, b
}

func TestBookRepository_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewBookRepository(db)

	a, b := seedBook(t, ctx, db, "Кобзар", "Poetry", 3)

	t.Run("按类型过滤", func(t *testing.T) {
		books, total, err := repo.List(ctx, book.ListParams{Genre: "Poetry"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, b.ID, books[0].ID)

		_, total, err = repo.List(ctx, book.ListParams{Genre: "Fiction"})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("库存不能扣成负数", func(t *testing.T) {
		err := repo.UpdateStock(ctx, b.ID, -4)
		assert.ErrorIs(t, err, book.ErrInsufficientStock)

		require.NoError(t, repo.UpdateStock(ctx, b.ID, -3))
		got, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
	})

	t.Run("事务回滚撤销库存修改", func(t *testing.T) {
		tx := NewTxManager(db)
		err := tx.Transaction(ctx, func(ctx context.Context) error {
			if err := repo.UpdateStock(ctx, b.ID, 5); err != nil {
				return err
			}
			return apperrors.ErrInternal
		})
		assert.Error(t, err)

		got, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
	})

	t.Run("按作者删除", func(t *testing.T) {
		ids, err := repo.DeleteByAuthor(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{b.ID}, ids)

		_, err = repo.FindByID(ctx, b.ID)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestOrderRepository_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(db)
	_, b := seedBook(t, ctx, db, "Кобзар", "Poetry", 3)

	o, err := order.NewOrder(7, []order.OrderItem{{BookID: b.ID, Quantity: 2, Price: b.Price}})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, o))
	require.NotZero(t, o.ID)
	require.NotZero(t, o.Items[0].ID)

	o.AttachInvoice("inv-1")
	o.ApplyStatus(order.StatusHold)
	require.NoError(t, repo.Update(ctx, o))

	err = NewTxManager(db).Transaction(ctx, func(ctx context.Context) error {
		locked, err := repo.LockByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "inv-1", locked.InvoiceID)
		assert.Equal(t, order.StatusHold, locked.Status)
		assert.True(t, locked.Restocked)
		assert.Len(t, locked.Items, 1)
		return nil
	})
	require.NoError(t, err)

	orders, total, err := repo.List(ctx, order.ListParams{UserID: 7, Search: "hold"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, o.ID, orders[0].ID)

	_, total, err = repo.List(ctx, order.ListParams{UserID: 8})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUserRepository_Integration(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	u := user.NewUser("reader", "hash", "")
	require.NoError(t, repo.Create(ctx, u))

	err := repo.Create(ctx, user.NewUser("reader", "hash", ""))
	assert.ErrorIs(t, err, apperrors.ErrUsernameDuplicate)

	got, err := repo.FindByUsername(ctx, "reader")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
