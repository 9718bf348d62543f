//go:build wireinject
// +build wireinject

// 运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/google/wire"

	appauthor "github.com/xiebiao/monobook/internal/application/author"
	appbook "github.com/xiebiao/monobook/internal/application/book"
	apporder "github.com/xiebiao/monobook/internal/application/order"
	appuser "github.com/xiebiao/monobook/internal/application/user"
	"github.com/xiebiao/monobook/internal/domain/author"
	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/internal/domain/payment"
	"github.com/xiebiao/monobook/internal/domain/transaction"
	"github.com/xiebiao/monobook/internal/domain/user"
	"github.com/xiebiao/monobook/internal/infrastructure/config"
	"github.com/xiebiao/monobook/internal/infrastructure/gateway/monobank"
	"github.com/xiebiao/monobook/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/monobook/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/monobook/internal/interface/http/handler"
	"github.com/xiebiao/monobook/internal/interface/http/middleware"
	"github.com/xiebiao/monobook/internal/interface/http/router"
)

// infrastructureSet 连接、缓存、网关、消息
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideJWTManager,
	providePublisher,

	redis.NewSessionStore,
	wire.Bind(new(user.SessionStore), new(*redis.SessionStore)),
	provideBookCache,
	wire.Bind(new(book.Cache), new(*redis.BookCache)),
	provideCallbackLog,
	wire.Bind(new(order.CallbackLog), new(*redis.CallbackLog)),

	monobank.NewClient,
	wire.Bind(new(payment.Gateway), new(*monobank.Client)),
	wire.Bind(new(monobank.KeySource), new(*monobank.Client)),
	monobank.NewVerifier,
	wire.Bind(new(payment.Verifier), new(*monobank.Verifier)),
)

// repositorySet 仓储与事务
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewAuthorRepository,
	mysql.NewBookRepository,
	mysql.NewOrderRepository,
	mysql.NewTxManager,
	wire.Bind(new(transaction.Manager), new(*mysql.TxManager)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	author.NewService,
	book.NewService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewProfileUseCase,

	appauthor.NewCreateAuthorUseCase,
	appauthor.NewUpdateAuthorUseCase,
	appauthor.NewDeleteAuthorUseCase,
	appauthor.NewGetAuthorUseCase,
	appauthor.NewListAuthorsUseCase,

	appbook.NewCreateBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,

	apporder.NewCreateOrderUseCase,
	apporder.NewHandleCallbackUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
)

// interfaceSet HTTP处理器、中间件、路由
var interfaceSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewAuthorHandler,
	handler.NewBookHandler,
	handler.NewOrderHandler,
	handler.NewPaymentHandler,
	wire.Struct(new(router.Handlers), "*"),
	middleware.NewAuthMiddleware,
	router.New,
)

// InitializeApp 构造整个应用
// 返回的cleanup按依赖的逆序关闭MQ、Redis、MySQL
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
