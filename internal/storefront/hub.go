package storefront

import (
	"context"
	"shoppingts/internal/cache"
	"shoppingts/internal/catalog"
	"shoppingts/internal/kvstore"
	"shoppingts/internal/notify"
	"sync"
)

// DurableProvider возвращает долговременное хранилище устройства.
type DurableProvider func(deviceID string) kvstore.Store

// MemoryDevices хранит данные устройств в памяти процесса.
func MemoryDevices() DurableProvider {
	var (
		mu      sync.Mutex
		devices = make(map[string]*kvstore.Memory)
	)
	return func(deviceID string) kvstore.Store {
		mu.Lock()
		defer mu.Unlock()
		store, ok := devices[deviceID]
		if !ok {
			store = kvstore.NewMemory()
			devices[deviceID] = store
		}
		return store
	}
}

// PostgresDevices выделяет каждому устройству свое пространство ключей в БД.
func PostgresDevices(db *kvstore.Postgres) DurableProvider {
	return func(deviceID string) kvstore.Store {
		return db.Namespace(deviceID)
	}
}

// Hub держит хранилища вкладок и собирает Client для пары (устройство, вкладка).
// Хранилище вкладки живет до CloseTab, до истечения TTL кэша tabs без обращений
// или до вытеснения из него.
type Hub struct {
	durable  DurableProvider
	accounts cache.Cache
	catalog  *catalog.Catalog
	notifier notify.Notifier
	lookup   AddressLookup

	mu   sync.Mutex
	tabs cache.Cache // tabKey -> *kvstore.Memory
}

// NewHub собирает хаб. accounts - кэш списков аккаунтов, tabs - LRU с TTL
// простоя для хранилищ вкладок.
func NewHub(durable DurableProvider, accounts, tabs cache.Cache, cat *catalog.Catalog, notifier notify.Notifier, lookup AddressLookup) *Hub {
	return &Hub{
		durable:  durable,
		accounts: accounts,
		catalog:  cat,
		notifier: notifier,
		lookup:   lookup,
		tabs:     tabs,
	}
}

func tabKey(deviceID, tabID string) string {
	return deviceID + "/" + tabID
}

func (h *Hub) tab(ctx context.Context, deviceID, tabID string) *kvstore.Memory {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := tabKey(deviceID, tabID)
	store, ok := h.lookupTab(ctx, key)
	if !ok {
		store = kvstore.NewMemory()
	}
	// Повторный Set продлевает TTL: вкладка живет, пока к ней обращаются
	h.tabs.Set(ctx, key, store)
	return store
}

func (h *Hub) lookupTab(ctx context.Context, key string) (*kvstore.Memory, bool) {
	value, ok := h.tabs.Get(ctx, key)
	if !ok {
		return nil, false
	}
	store, ok := value.(*kvstore.Memory)
	return store, ok
}

// Client собирает клиента вкладки. Состояние хранится в хранилищах, поэтому
// клиент можно создавать на каждый запрос.
func (h *Hub) Client(ctx context.Context, deviceID, tabID string) *Client {
	return New(Deps{
		DeviceID: deviceID,
		Durable:  h.durable(deviceID),
		Tab:      h.tab(ctx, deviceID, tabID),
		Cache:    h.accounts,
		Catalog:  h.catalog,
		Notifier: h.notifier,
		Lookup:   h.lookup,
	})
}

// CloseTab удаляет хранилище вкладки (аналог закрытия вкладки браузера).
func (h *Hub) CloseTab(ctx context.Context, deviceID, tabID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := tabKey(deviceID, tabID)
	_, ok := h.lookupTab(ctx, key)
	h.tabs.Delete(ctx, key)
	return ok
}

func (h *Hub) Catalog() *catalog.Catalog {
	return h.catalog
}
