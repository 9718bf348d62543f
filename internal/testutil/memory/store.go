// Package memory 仓储与缓存的内存实现,仅供测试使用,不要在cmd中引用
// 行为与MySQL/Redis实现保持一致(错误类型、分页、排序、库存下限)
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/xiebiao/monobook/internal/domain/author"
	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/internal/domain/user"
	"github.com/xiebiao/monobook/pkg/pagination"
)

// Store 内存数据集
// 所有仓储共享同一个Store,TxManager以快照方式实现回滚
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	authors map[uint]author.Author
	books   map[uint]book.Book
	orders  map[uint]order.Order
	users   map[uint]user.User

	lastID uint
}

// NewStore 创建空数据集
func NewStore() *Store {
	return &Store{
		authors: make(map[uint]author.Author),
		books:   make(map[uint]book.Book),
		orders:  make(map[uint]order.Order),
		users:   make(map[uint]user.User),
	}
}

// nextID 自增主键,回滚时不回退(与MySQL AUTO_INCREMENT一致)
func (s *Store) nextID() uint {
	s.lastID++
	return s.lastID
}

type snapshot struct {
	authors map[uint]author.Author
	books   map[uint]book.Book
	orders  map[uint]order.Order
	users   map[uint]user.User
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		authors: make(map[uint]author.Author, len(s.authors)),
		books:   make(map[uint]book.Book, len(s.books)),
		orders:  make(map[uint]order.Order, len(s.orders)),
		users:   make(map[uint]user.User, len(s.users)),
	}
	for k, v := range s.authors {
		snap.authors[k] = v
	}
	for k, v := range s.books {
		snap.books[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authors = snap.authors
	s.books = snap.books
	s.orders = snap.orders
	s.users = snap.users
}

func cloneOrder(o order.Order) order.Order {
	items := make([]order.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

type txKey struct{}

// TxManager 内存事务
// 事务之间串行执行,fn返回error时恢复到事务开始前的快照
type TxManager struct {
	store *Store
}

// NewTxManager 创建内存事务管理器
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Transaction 执行事务,嵌套调用直接复用外层事务
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// matches 模糊匹配,行为对齐MySQL默认排序规则(不区分大小写),纯数字时同时匹配ID
func matches(keyword string, id uint, fields ...string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return true
	}

	if n, err := strconv.ParseUint(keyword, 10, 64); err == nil && uint(n) == id {
		return true
	}
	kw := strings.ToLower(keyword)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), kw) {
			return true
		}
	}
	return false
}

// sortAndPage 按白名单字段排序(同值按ID升序)后分页
// less返回-1/0/1
func sortAndPage[T any](items []T, raw string, allowed []string, fallback pagination.Ordering,
	compare func(a, b T, field string) int, idOf func(T) uint, page, pageSize int) []T {
	o := pagination.ParseOrdering(raw, allowed, fallback)
	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j], o.Field)
		if c == 0 {
			return idOf(items[i]) < idOf(items[j])
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	})

	page, pageSize = pagination.Normalize(page, pageSize)
	start := pagination.Offset(page, pageSize)
	if start >= len(items) {
		return items[:0]
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
