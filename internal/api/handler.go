package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"shoppingts/internal/metrics"
	"shoppingts/internal/storefront"
	"shoppingts/internal/validator"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Заголовки, которые задают устройство (долговременное хранилище) и вкладку (хранилище сессии).
const (
	DeviceHeader  = "X-Device-ID"
	SessionHeader = "X-Session-ID"
)

// ShopHandler обрабатывает HTTP-запросы магазина.
type ShopHandler struct {
	hub *storefront.Hub
}

// NewShopHandler создает новый экземпляр ShopHandler.
func NewShopHandler(hub *storefront.Hub) *ShopHandler {
	return &ShopHandler{hub: hub}
}

type clientKey struct{}

type tabClient struct {
	*storefront.Client
	deviceID string
	tabID    string
}

// response - общий формат ответа для операций с результатом проверки.
type response struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// WithClient собирает клиента вкладки по заголовкам запроса. Вкладке без
// X-Session-ID выдается новый id, он возвращается в заголовке ответа.
func (h *ShopHandler) WithClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := r.Header.Get(DeviceHeader)
		if deviceID == "" {
			respondWithError(w, http.StatusBadRequest, "Не указан заголовок "+DeviceHeader, "WithClient")
			return
		}

		tabID := r.Header.Get(SessionHeader)
		if tabID == "" {
			tabID = uuid.NewString()
		}
		w.Header().Set(SessionHeader, tabID)

		client := &tabClient{Client: h.hub.Client(r.Context(), deviceID, tabID), deviceID: deviceID, tabID: tabID}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, client)))
	})
}

func clientFrom(r *http.Request) *tabClient {
	return r.Context().Value(clientKey{}).(*tabClient)
}

// instrument считает запросы и их длительность для хэндлера name.
func instrument(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(name))
		defer timer.ObserveDuration() // Замеряем длительность запроса

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)
		metrics.HttpRequestsTotal.WithLabelValues(name, strconv.Itoa(ww.Status())).Inc()
	}
}

// decodeBody читает JSON-тело запроса. При ошибке ответ уже отправлен.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("Некорректное тело запроса %s: %v", r.URL.Path, err)
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// respondWithResult: успешный результат - 200, отклоненный - 422 с сообщением для пользователя.
func respondWithResult(w http.ResponseWriter, res validator.Result, data interface{}) {
	code := http.StatusOK
	if !res.OK {
		code = http.StatusUnprocessableEntity
	}
	respondWithJSON(w, code, response{OK: res.OK, Message: res.Message, Data: data})
}

// respondWithJSON вспомогательная функция для отправки JSON-ответов.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Ошибка сериализации ответа: %v", err)
		http.Error(w, "Внутренняя ошибка", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

func respondWithError(w http.ResponseWriter, code int, message string, handlerName string) {
	metrics.HttpRequestsTotal.WithLabelValues(handlerName, strconv.Itoa(code)).Inc()
	http.Error(w, message, code)
}
