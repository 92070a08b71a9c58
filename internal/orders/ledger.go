package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"shoppingts/internal/metrics"
	"shoppingts/internal/model"
	"shoppingts/internal/storage"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyCart возвращается при попытке оформить пустую корзину.
var ErrEmptyCart = errors.New("корзина пуста")

const guestKey = "orders:guest"

// Key возвращает ключ журнала заказов пользователя или гостя.
func Key(username string) string {
	if username == "" {
		return guestKey
	}
	return "orders:" + username
}

// GenerateOrderID возвращает "OID" + локальная дата YYYYMMDD + случайные 4 цифры (1000-9999).
// Уникальность не гарантируется: два заказа за один день могут получить один id.
func GenerateOrderID(now time.Time, rng *rand.Rand) string {
	return fmt.Sprintf("OID%s%d", now.Local().Format("20060102"), 1000+rng.Intn(9000))
}

// CartClearer очищает корзину после оформления заказа.
type CartClearer interface {
	Clear(ctx context.Context)
}

// Ledger - журнал заказов. Заказы только добавляются в начало списка,
// изменение и удаление не поддерживаются.
type Ledger struct {
	policy  *storage.Policy
	session *storage.Session
	cart    CartClearer
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand

	tracer trace.Tracer // Для трассировки
}

func NewLedger(policy *storage.Policy, session *storage.Session, cart CartClearer) *Ledger {
	return &Ledger{
		policy:  policy,
		session: session,
		cart:    cart,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		tracer:  otel.Tracer("order-ledger"),
	}
}

// bucket: журнал пользователя хранится долговременно, гостевой - во вкладке.
func (l *Ledger) bucket(username string) storage.Bucket {
	if username == "" {
		return l.policy.SessionScoped()
	}
	return l.policy.Durable()
}

// PlaceOrder сохраняет снимок корзины со статусом "접수" и очищает корзину.
func (l *Ledger) PlaceOrder(ctx context.Context, items []model.CartItem, total int, username string) (model.Order, error) {
	ctx, span := l.tracer.Start(ctx, "Orders.Place")
	defer span.End()

	if len(items) == 0 {
		return model.Order{}, ErrEmptyCart
	}

	now := l.now()
	l.mu.Lock()
	id := GenerateOrderID(now, l.rng)
	l.mu.Unlock()

	order := model.Order{
		ID:       id,
		Username: username,
		Items:    append([]model.CartItem(nil), items...),
		Total:    total,
		Date:     now.UTC(),
		Status:   model.OrderStatusReceived,
	}
	span.SetAttributes(attribute.String("order.id", id))

	list := append([]model.Order{order}, l.Orders(ctx, username)...)
	data, err := json.Marshal(list)
	if err != nil {
		return model.Order{}, fmt.Errorf("не удалось сериализовать заказы: %w", err)
	}
	l.bucket(username).Set(ctx, Key(username), string(data))

	ledger := "user"
	if username == "" {
		ledger = "guest"
	}
	metrics.OrdersPlaced.WithLabelValues(ledger).Inc()
	log.Printf("Заказ %s принят (%s), сумма %d", id, ledger, total)

	l.cart.Clear(ctx)
	return order, nil
}

// Orders читает журнал. Отсутствующие или битые данные - пустой список.
func (l *Ledger) Orders(ctx context.Context, username string) []model.Order {
	raw, found := l.bucket(username).Get(ctx, Key(username))
	if !found {
		return []model.Order{}
	}

	var list []model.Order
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Printf("Журнал заказов %s поврежден, считаем пустым: %v", Key(username), err)
		return []model.Order{}
	}
	if list == nil {
		return []model.Order{}
	}
	return list
}

// Preferred читает журнал текущего пользователя вкладки или гостевой журнал.
func (l *Ledger) Preferred(ctx context.Context) []model.Order {
	return l.Orders(ctx, l.session.Username(ctx))
}
