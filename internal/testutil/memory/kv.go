package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xiebiao/monobook/internal/domain/book"
	"github.com/xiebiao/monobook/internal/domain/order"
	"github.com/xiebiao/monobook/internal/domain/user"
)

// SessionStore 会话与黑名单的内存实现,忽略TTL
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[uint]map[string]interface{}
	blacklist map[string]time.Duration
}

var _ user.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[uint]map[string]interface{}),
		blacklist: make(map[string]time.Duration),
	}
}

func (s *SessionStore) SaveSession(_ context.Context, userID uint, data map[string]interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = data
	return nil
}

func (s *SessionStore) DeleteSession(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

// Session 读取会话(测试断言用)
func (s *SessionStore) Session(userID uint) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.sessions[userID]
	return data, ok
}

func (s *SessionStore) AddToBlacklist(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[tokenID] = ttl
	return nil
}

func (s *SessionStore) IsInBlacklist(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blacklist[tokenID]
	return ok, nil
}

// BookCache 图书缓存的内存实现
type BookCache struct {
	mu    sync.Mutex
	books map[uint]book.Book
}

var _ book.Cache = (*BookCache)(nil)

func NewBookCache() *BookCache {
	return &BookCache{books: make(map[uint]book.Book)}
}

func (c *BookCache) Get(_ context.Context, id uint) (*book.Book, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.books[id]
	if !ok {
		return nil, false, nil
	}
	return &b, true, nil
}

func (c *BookCache) Set(_ context.Context, b *book.Book) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books[b.ID] = *b
	return nil
}

func (c *BookCache) Delete(_ context.Context, ids ...uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.books, id)
	}
	return nil
}

// Has 是否已缓存(测试断言用)
func (c *BookCache) Has(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.books[id]
	return ok
}

// CallbackLog 回调投递记录的内存实现
type CallbackLog struct {
	mu      sync.Mutex
	entries map[string]order.Status
}

var _ order.CallbackLog = (*CallbackLog)(nil)

func NewCallbackLog() *CallbackLog {
	return &CallbackLog{entries: make(map[string]order.Status)}
}

func (l *CallbackLog) Lookup(_ context.Context, key string) (order.Status, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	status, ok := l.entries[key]
	return status, ok, nil
}

func (l *CallbackLog) Record(_ context.Context, key string, status order.Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = status
	return nil
}
