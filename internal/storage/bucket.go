package storage

import (
	"context"
	"log"
	"shoppingts/internal/kvstore"
	"shoppingts/internal/metrics"
)

// Bucket - key-value хранилище без ошибок в сигнатурах.
// Ошибки нижележащего хранилища уже проглочены: чтение деградирует до "не найдено",
// запись и удаление - до no-op.
type Bucket interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Remove(ctx context.Context, key string)
}

// Checked - Bucket, который умеет сообщить о сбое. Нужен там, где запись
// строится из прочитанного: ошибку чтения нельзя принимать за пустое значение.
type Checked interface {
	Bucket
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
}

// guarded оборачивает kvstore.Store и гасит его ошибки.
type guarded struct {
	name  string
	store kvstore.Store
}

// Guard возвращает Bucket поверх store. name попадает в логи ("durable"/"session").
func Guard(name string, store kvstore.Store) Checked {
	return &guarded{name: name, store: store}
}

func (g *guarded) Get(ctx context.Context, key string) (string, bool) {
	value, found, err := g.store.Get(ctx, key)
	if err != nil {
		degraded("get", g.name, key, err)
		return "", false
	}
	return value, found
}

// Read - как Get, но ошибка хранилища возвращается вызывающему.
func (g *guarded) Read(ctx context.Context, key string) (string, bool, error) {
	value, found, err := g.store.Get(ctx, key)
	if err != nil {
		degraded("get", g.name, key, err)
		return "", false, err
	}
	return value, found, nil
}

func (g *guarded) Write(ctx context.Context, key, value string) error {
	if err := g.store.Set(ctx, key, value); err != nil {
		degraded("set", g.name, key, err)
		return err
	}
	return nil
}

func (g *guarded) Set(ctx context.Context, key, value string) {
	if err := g.store.Set(ctx, key, value); err != nil {
		degraded("set", g.name, key, err)
	}
}

func (g *guarded) Remove(ctx context.Context, key string) {
	if err := g.store.Remove(ctx, key); err != nil {
		degraded("remove", g.name, key, err)
	}
}

func degraded(op, store, key string, err error) {
	metrics.StorageDegraded.WithLabelValues(op).Inc()
	log.Printf("Хранилище %s: операция %s по ключу %q не выполнена, работаем без сохранения: %v", store, op, key, err)
}
