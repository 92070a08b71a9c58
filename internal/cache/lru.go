package cache

import (
	"container/list"
	"context"
	"shoppingts/internal/metrics"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=lru.go -destination=./mocks/cache_mock.go -package=mocks Cache

// Cache определяет интерфейс для кэширования.
// Контекст добавлен для поддержки сквозной трассировки.
type Cache interface {
	Set(ctx context.Context, key string, value interface{})
	Get(ctx context.Context, key string) (interface{}, bool)
	Delete(ctx context.Context, key string)
}

// lruCache реализует LRU (Least Recently Used) кэш с ограничением времени жизни записи.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration // 0 - записи не устаревают
	items    map[string]*list.Element
	queue    *list.List
	now      func() time.Time
	tracer   trace.Tracer // Для трассировки
}

type cacheItem struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// NewLRUCache создает новый LRU-кэш с заданной емкостью и TTL.
func NewLRUCache(capacity int, ttl time.Duration) Cache {
	return newLRUCache(capacity, ttl, time.Now)
}

func newLRUCache(capacity int, ttl time.Duration, now func() time.Time) *lruCache {
	return &lruCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		queue:    list.New(),
		now:      now,
		tracer:   otel.Tracer("lru-cache"), // Инициализация трейсера
	}
}

func (c *lruCache) Set(ctx context.Context, key string, value interface{}) {
	// Создаем span для трассировки
	_, span := c.tracer.Start(ctx, "Cache.Set")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity <= 0 {
		return
	}

	expiresAt := c.expiry()

	if element, exists := c.items[key]; exists {
		c.queue.MoveToFront(element)
		item := element.Value.(*cacheItem)
		item.value = value
		item.expiresAt = expiresAt
		return
	}

	if c.queue.Len() >= c.capacity {
		c.removeElement(c.queue.Back())
	}

	item := &cacheItem{key: key, value: value, expiresAt: expiresAt}
	element := c.queue.PushFront(item)
	c.items[key] = element

	// Обновляем метрику размера кэша
	metrics.CacheSize.Set(float64(c.queue.Len()))
}

func (c *lruCache) Get(ctx context.Context, key string) (interface{}, bool) {
	// Создаем span для трассировки
	_, span := c.tracer.Start(ctx, "Cache.Get")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	element, exists := c.items[key]
	if !exists {
		return nil, false
	}

	item := element.Value.(*cacheItem)
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		// Запись устарела - удаляем лениво, при обращении
		c.removeElement(element)
		return nil, false
	}

	c.queue.MoveToFront(element)
	return item.value, true
}

// Delete синхронно удаляет запись. Используется для инвалидации при записи.
func (c *lruCache) Delete(ctx context.Context, key string) {
	_, span := c.tracer.Start(ctx, "Cache.Delete")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[key]; exists {
		c.queue.Remove(element)
		delete(c.items, key)
		metrics.CacheSize.Set(float64(c.queue.Len()))
	}
}

func (c *lruCache) expiry() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

// removeElement вытесняет элемент (внутренняя функция, мьютекс уже захвачен).
func (c *lruCache) removeElement(element *list.Element) {
	if element == nil {
		return
	}
	item := c.queue.Remove(element).(*cacheItem)
	delete(c.items, item.key)

	// Обновляем метрики
	metrics.CacheEvictions.Inc()
	metrics.CacheSize.Set(float64(c.queue.Len()))
}
