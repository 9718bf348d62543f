package order

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/internal/domain/payment"
	"github.com/xiebiao/monobook/internal/infrastructure/config"
	"github.com/xiebiao/monobook/internal/testutil/memory"
	apperrors "github.com/xiebiao/monobook/pkg/errors"
)

const validSign = "valid-sign"

type fakeGateway struct {
	err      error
	requests []payment.InvoiceRequest
}

func (g *fakeGateway) CreateInvoice(_ context.Context, req payment.InvoiceRequest) (*payment.Invoice, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Invoice{ID: "inv-" + req.Reference, PageURL: "https://pay.example/" + req.Reference}, nil
}

// fakeVerifier 只接受validSign
type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, _ []byte, signature string) error {
	if signature != validSign {
		return payment.ErrSignatureMismatch
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, key string, msg interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = make(map[string][]OrderEvent)
	}
	p.events[key] = append(p.events[key], msg.(OrderEvent))
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	store     *memory.Store
	bookRepo  book.Repository
	orderRepo order.Repository
	gateway   *fakeGateway
	publisher *recordingPublisher
	cache     *memory.BookCache

	create   *CreateOrderUseCase
	callback *HandleCallbackUseCase
	get      *GetOrderUseCase
	list     *ListOrdersUseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		bookRepo:  memory.NewBookRepository(store),
		orderRepo: memory.NewOrderRepository(store),
		gateway:   &fakeGateway{},
		publisher: &recordingPublisher{},
		cache:     memory.NewBookCache(),
	}
	tx := memory.NewTxManager(store)
	cfg := &config.Config{Mono: config.MonoConfig{Validity: time.Hour, RedirectURL: "https://shop.example/thanks"}}

	f.create = NewCreateOrderUseCase(f.orderRepo, f.bookRepo, tx, f.gateway, f.cache, f.publisher, cfg)
	f.callback = NewHandleCallbackUseCase(f.orderRepo, f.bookRepo, tx, fakeVerifier{}, memory.NewCallbackLog(), f.cache, f.publisher)
	f.get = NewGetOrderUseCase(f.orderRepo)
	f.list = NewListOrdersUseCase(f.orderRepo)
	return f
}

func (f *fixture) addBook(t *testing.T, title string, price int64, qty int) *book.Book {
	t.Helper()
	b, err := book.NewBook(book.Attrs{
		Title:           title,
		AuthorID:        1,
		Genre:           "Fiction",
		PublicationDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:           price,
		Quantity:        qty,
	})
	require.NoError(t, err)
	require.NoError(t, f.bookRepo.Create(context.Background(), b))
	return b
}

func (f *fixture) quantity(t *testing.T, id uint) int {
	t.Helper()
	b, err := f.bookRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b.Quantity
}

func (f *fixture) order(t *testing.T, id uint) *order.Order {
	t.Helper()
	o, err := f.orderRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return o
}

func callbackBody(invoiceID, status, reference, modified string) []byte {
	return []byte(`{"invoiceId":"` + invoiceID + `","status":"` + status + `","amount":100,"ccy":980,"reference":"` +
		reference + `","modifiedDate":"` + modified + `"}`)
}

func TestCreateOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	dune := f.addBook(t, "Dune", 1000, 5)
	cosmos := f.addBook(t, "Cosmos", 250, 2)
	require.NoError(t, f.cache.Set(ctx, dune))

	resp, err := f.create.Execute(ctx, CreateOrderRequest{
		UserID: 7,
		Items: []CreateOrderItem{
			{BookID: dune.ID, Quantity: 1},
			{BookID: cosmos.ID, Quantity: 2},
			{BookID: dune.ID, Quantity: 1},
		},
		BaseURL: "https://shop.example/",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2*1000+2*250), resp.TotalPrice)
	assert.Equal(t, "created", resp.Status)
	assert.NotEmpty(t, resp.InvoiceID)
	assert.NotEmpty(t, resp.PageURL)

	assert.Equal(t, 3, f.quantity(t, dune.ID))
	assert.Equal(t, 0, f.quantity(t, cosmos.ID))
	assert.False(t, f.cache.Has(dune.ID), "库存变化后应删除缓存")

	o := f.order(t, resp.OrderID)
	assert.Equal(t, resp.InvoiceID, o.InvoiceID)
	assert.Len(t, o.Items, 2, "同一本书的明细应合并")

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, resp.TotalPrice, req.Amount)
	assert.Equal(t, "https://shop.example"+CallbackPath, req.WebhookURL)
	assert.Equal(t, "https://shop.example/thanks", req.RedirectURL)
	assert.Len(t, req.Basket, 2)

	require.Len(t, f.publisher.events[EventOrderCreated], 1)
	assert.Equal(t, resp.OrderID, f.publisher.events[EventOrderCreated][0].OrderID)
	assert.Equal(t, 4, f.publisher.events[EventOrderCreated][0].Quantity)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	dune := f.addBook(t, "Dune", 1000, 1)

	t.Run("空明细", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateOrderRequest{})
		assert.ErrorIs(t, err, order.ErrEmptyItems)
	})

	t.Run("数量非法", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateOrderRequest{Items: []CreateOrderItem{{BookID: dune.ID, Quantity: 0}}})
		assert.ErrorIs(t, err, order.ErrInvalidQuantity)
	})

	t.Run("图书不存在返回参数错误", func(t *testing.T) {
		_, err := f.create.Execute(ctx, CreateOrderRequest{Items: []CreateOrderItem{{BookID: 999, Quantity: 1}}})
		require.Error(t, err)
		assert.Equal(t, 400, apperrors.GetAppError(err).HTTPStatus())
	})

	t.Run("库存不足时没有任何副作用", func(t *testing.T) {
		cosmos := f.addBook(t, "Cosmos", 100, 3)
		_, err := f.create.Execute(ctx, CreateOrderRequest{
			UserID: 1,
			Items: []CreateOrderItem{
				{BookID: cosmos.ID, Quantity: 1},
				{BookID: dune.ID, Quantity: 2},
			},
		})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInsufficientStock))

		assert.Equal(t, 3, f.quantity(t, cosmos.ID))
		assert.Equal(t, 1, f.quantity(t, dune.ID))

		list, err := f.list.Execute(ctx, ListOrdersRequest{UserID: 1})
		require.NoError(t, err)
		assert.Zero(t, list.Total)
		assert.Empty(t, f.gateway.requests)
	})

	t.Run("总金额超过上限", func(t *testing.T) {
		rare := f.addBook(t, "Rare", book.MaxPrice, 500)
		_, err := f.create.Execute(ctx, CreateOrderRequest{
			UserID: 2,
			Items:  []CreateOrderItem{{BookID: rare.ID, Quantity: 101}},
		})
		assert.ErrorIs(t, err, order.ErrInvalidAmount)
		assert.Equal(t, 500, f.quantity(t, rare.ID))
		assert.Empty(t, f.gateway.requests)
	})
}

func TestCreateOrder_GatewayFailureCompensates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	dune := f.addBook(t, "Dune", 1000, 5)
	f.gateway.err = apperrors.WithCode(apperrors.ErrCodeGatewayError, "支付网关调用失败", errors.New("timeout"))

	_, err := f.create.Execute(ctx, CreateOrderRequest{
		UserID: 3,
		Items:  []CreateOrderItem{{BookID: dune.ID, Quantity: 2}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeGatewayError))
	assert.Equal(t, 502, apperrors.GetAppError(err).HTTPStatus())

	assert.Equal(t, 5, f.quantity(t, dune.ID), "补偿后库存应恢复")

	list, err := f.list.Execute(ctx, ListOrdersRequest{UserID: 3})
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Total)
	o := f.order(t, list.List[0].ID)
	assert.Equal(t, order.StatusFailure, o.Status)
	assert.True(t, o.Restocked)
	assert.Empty(t, f.publisher.events[EventOrderCreated])
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, *book.Book, *book.Book, *CreateOrderResponse) {
		f := newFixture()
		dune := f.addBook(t, "Dune", 1000, 5)
		cosmos := f.addBook(t, "Cosmos", 250, 4)
		resp, err := f.create.Execute(ctx, CreateOrderRequest{
			UserID: 9,
			Items: []CreateOrderItem{
				{BookID: dune.ID, Quantity: 2},
				{BookID: cosmos.ID, Quantity: 3},
			},
		})
		require.NoError(t, err)
		return f, dune, cosmos, resp
	}

	t.Run("签名无效时不论负载都拒绝", func(t *testing.T) {
		f, _, _, resp := setup(t)
		for _, body := range [][]byte{
			callbackBody(resp.InvoiceID, "success", itoa(resp.OrderID), "1"),
			[]byte("not json at all"),
		} {
			_, err := f.callback.Execute(ctx, CallbackRequest{Body: body, Signature: "forged"})
			assert.ErrorIs(t, err, payment.ErrSignatureMismatch)
			assert.Equal(t, 400, apperrors.GetAppError(err).HTTPStatus())
		}
		assert.Equal(t, order.StatusCreated, f.order(t, resp.OrderID).Status)
	})

	t.Run("invoiceId不一致时拒绝且状态不变", func(t *testing.T) {
		f, dune, _, resp := setup(t)
		_, err := f.callback.Execute(ctx, CallbackRequest{
			Body:      callbackBody("someone-else", "failure", itoa(resp.OrderID), "1"),
			Signature: validSign,
		})
		assert.ErrorIs(t, err, order.ErrInvoiceMismatch)

		o := f.order(t, resp.OrderID)
		assert.Equal(t, order.StatusCreated, o.Status)
		assert.False(t, o.Restocked)
		assert.Equal(t, 3, f.quantity(t, dune.ID))
	})

	t.Run("hold回补每一条明细的数量", func(t *testing.T) {
		f, dune, cosmos, resp := setup(t)
		require.Equal(t, 3, f.quantity(t, dune.ID))
		require.Equal(t, 1, f.quantity(t, cosmos.ID))

		out, err := f.callback.Execute(ctx, CallbackRequest{
			Body:      callbackBody(resp.InvoiceID, "hold", itoa(resp.OrderID), "2024-05-01T10:00:00Z"),
			Signature: validSign,
		})
		require.NoError(t, err)
		assert.Equal(t, "hold", out.Status)

		assert.Equal(t, 5, f.quantity(t, dune.ID))
		assert.Equal(t, 4, f.quantity(t, cosmos.ID))
		assert.True(t, f.order(t, resp.OrderID).Restocked)
		require.Len(t, f.publisher.events[EventOrderStatusChanged], 1)

		t.Run("后续的回补状态不会重复回补", func(t *testing.T) {
			out, err := f.callback.Execute(ctx, CallbackRequest{
				Body:      callbackBody(resp.InvoiceID, "reversed", itoa(resp.OrderID), "2024-05-01T11:00:00Z"),
				Signature: validSign,
			})
			require.NoError(t, err)
			assert.Equal(t, "reversed", out.Status)
			assert.Equal(t, 5, f.quantity(t, dune.ID))
			assert.Equal(t, 4, f.quantity(t, cosmos.ID))
		})

		t.Run("重复投递直接返回记录的状态", func(t *testing.T) {
			out, err := f.callback.Execute(ctx, CallbackRequest{
				Body:      callbackBody(resp.InvoiceID, "hold", itoa(resp.OrderID), "2024-05-01T10:00:00Z"),
				Signature: validSign,
			})
			require.NoError(t, err)
			assert.Equal(t, "hold", out.Status)
			assert.Equal(t, order.StatusReversed, f.order(t, resp.OrderID).Status)
			assert.Len(t, f.publisher.events[EventOrderStatusChanged], 2)
		})
	})

	t.Run("success不回补库存", func(t *testing.T) {
		f, dune, _, resp := setup(t)
		out, err := f.callback.Execute(ctx, CallbackRequest{
			Body:      callbackBody(resp.InvoiceID, "success", itoa(resp.OrderID), "1"),
			Signature: validSign,
		})
		require.NoError(t, err)
		assert.Equal(t, "success", out.Status)
		assert.Equal(t, 3, f.quantity(t, dune.ID))
		assert.False(t, f.order(t, resp.OrderID).Restocked)
	})

	t.Run("reference不是订单号", func(t *testing.T) {
		f, _, _, resp := setup(t)
		for _, ref := range []string{"abc", "99999"} {
			_, err := f.callback.Execute(ctx, CallbackRequest{
				Body:      callbackBody(resp.InvoiceID, "success", ref, "1"),
				Signature: validSign,
			})
			assert.ErrorIs(t, err, order.ErrOrderNotFound)
		}
	})

	t.Run("缺少字段", func(t *testing.T) {
		f, _, _, _ := setup(t)
		_, err := f.callback.Execute(ctx, CallbackRequest{Body: []byte(`{"status":"success"}`), Signature: validSign})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidParams))
	})
}

func TestGetAndListOrders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	dune := f.addBook(t, "Dune", 1000, 10)

	var ids []uint
	for i := 0; i < 3; i++ {
		resp, err := f.create.Execute(ctx, CreateOrderRequest{UserID: 1, Items: []CreateOrderItem{{BookID: dune.ID, Quantity: 1}}})
		require.NoError(t, err)
		ids = append(ids, resp.OrderID)
	}
	_, err := f.create.Execute(ctx, CreateOrderRequest{UserID: 2, Items: []CreateOrderItem{{BookID: dune.ID, Quantity: 1}}})
	require.NoError(t, err)

	list, err := f.list.Execute(ctx, ListOrdersRequest{UserID: 1, Ordering: "id"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, ids[0], list.List[0].ID)
	assert.Empty(t, list.List[0].Items)

	got, err := f.get.Execute(ctx, 1, ids[1])
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, dune.ID, got.Items[0].BookID)

	_, err = f.get.Execute(ctx, 2, ids[1])
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
