package model

import "time"

// OrderStatusReceived - статус "принят", который получает каждый новый заказ.
const OrderStatusReceived = "접수"

// Order - снимок корзины на момент оформления.
type Order struct {
	ID       string     `json:"id"`
	Username string     `json:"username,omitempty"` // пусто для гостевых заказов
	Items    []CartItem `json:"items"`
	Total    int        `json:"total"`
	Date     time.Time  `json:"date"`
	Status   string     `json:"status,omitempty"`
}
