package kvstore

import (
	"context"
	"errors"
)

//go:generate mockgen -source=store.go -destination=./mocks/store_mock.go -package=mocks Store

var (
	// ErrUnavailable - хранилище отключено (например, запрещено настройками браузера).
	ErrUnavailable = errors.New("хранилище недоступно")
	// ErrQuotaExceeded - превышена квота хранилища.
	ErrQuotaExceeded = errors.New("превышена квота хранилища")
)

// Store - строковое key-value хранилище с одной продолжительностью жизни
// (долговременное или сессионное).
// Get различает "ключа нет" (found == false) и "пустая строка".
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
