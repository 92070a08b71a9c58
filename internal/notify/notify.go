package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

//go:generate mockgen -source=notify.go -destination=./mocks/notifier_mock.go -package=mocks Notifier

// Виды событий.
const (
	KindToast            = "toast"
	KindCartChanged      = "cart:changed"
	KindFavoritesChanged = "favorites:changed"
)

// Event - уведомление для интерфейса. Count - число товаров для бейджей.
type Event struct {
	Kind     string    `json:"kind" validate:"required,oneof=toast cart:changed favorites:changed"`
	Message  string    `json:"message,omitempty"`
	Count    int       `json:"count" validate:"gte=0"`
	DeviceID string    `json:"deviceId,omitempty"`
	At       time.Time `json:"at"`
}

func Toast(message string) Event {
	return Event{Kind: KindToast, Message: message, At: time.Now().UTC()}
}

func CartChanged(count int) Event {
	return Event{Kind: KindCartChanged, Count: count, At: time.Now().UTC()}
}

func FavoritesChanged(count int) Event {
	return Event{Kind: KindFavoritesChanged, Count: count, At: time.Now().UTC()}
}

// Notifier принимает события по принципу fire-and-forget: ошибок не возвращает.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// LogNotifier пишет события в лог.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event Event) {
	if event.Kind == KindToast {
		log.Printf("[%s] %s: %s", event.DeviceID, event.Kind, event.Message)
		return
	}
	log.Printf("[%s] %s: %d", event.DeviceID, event.Kind, event.Count)
}

// Multi рассылает событие всем получателям по очереди.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) {
	for _, n := range m {
		n.Notify(ctx, event)
	}
}

type deviceNotifier struct {
	next     Notifier
	deviceID string
}

// ForDevice проставляет DeviceID во все события.
func ForDevice(next Notifier, deviceID string) Notifier {
	return &deviceNotifier{next: next, deviceID: deviceID}
}

func (d *deviceNotifier) Notify(ctx context.Context, event Event) {
	event.DeviceID = d.deviceID
	d.next.Notify(ctx, event)
}

// Recorder запоминает события. Нужен тестам пакетов, которые шлют уведомления.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events возвращает копию принятых событий.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last возвращает последнее событие вида kind.
func (r *Recorder) Last(kind string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return Event{}, false
}

// Toasts возвращает тексты всплывающих сообщений по порядку.
func (r *Recorder) Toasts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Kind == KindToast {
			out = append(out, e.Message)
		}
	}
	return out
}
