package api

import (
	"context"
	"fmt"
	"net/http"
	"shoppingts/internal/storefront"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server представляет HTTP-сервер.
type Server struct {
	port   string
	router *chi.Mux
	hub    *storefront.Hub
	http   *http.Server
}

// NewServer создает и настраивает новый экземпляр сервера.
func NewServer(port string, hub *storefront.Hub) *Server {
	server := &Server{
		port: port,
		hub:  hub,
	}
	server.router = server.setupRouter()
	server.http = &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           otelhttp.NewHandler(server.router, "storefront"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server
}

// Run запускает HTTP-сервер. После Shutdown возвращает nil.
func (s *Server) Run() error {
	fmt.Printf("🚀 HTTP-сервер запущен на http://localhost%s\n", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown дожидается завершения активных запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler возвращает корневой обработчик (для тестов).
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// setupRouter настраивает маршрутизацию.
func (s *Server) setupRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.Handler())

	h := NewShopHandler(s.hub)

	// Каталог не зависит от устройства
	router.Get("/api/products", instrument("ListProducts", h.ListProducts))
	router.Get("/api/products/{productID}", instrument("GetProduct", h.GetProduct))

	router.Group(func(r chi.Router) {
		r.Use(h.WithClient)

		r.Get("/api/session", instrument("GetSession", h.GetSession))
		r.Delete("/api/session", instrument("CloseSession", h.CloseSession))

		r.Post("/api/signup", instrument("Signup", h.Signup))
		r.Get("/api/checks/username", instrument("CheckUsername", h.CheckUsername))
		r.Get("/api/checks/email", instrument("CheckEmail", h.CheckEmail))
		r.Post("/api/login", instrument("Login", h.Login))
		r.Post("/api/logout", instrument("Logout", h.Logout))

		r.Get("/api/profile", instrument("GetProfile", h.GetProfile))
		r.Put("/api/profile/contact", instrument("UpdateContact", h.UpdateContact))
		r.Put("/api/profile/image", instrument("UpdateProfileImage", h.UpdateProfileImage))
		r.Put("/api/profile/password", instrument("ChangePassword", h.ChangePassword))

		r.Post("/api/recovery/username", instrument("FindUsername", h.FindUsername))
		r.Post("/api/recovery/verify", instrument("VerifyRecovery", h.VerifyRecovery))
		r.Post("/api/recovery/reset", instrument("ResetPassword", h.ResetPassword))

		r.Get("/api/addresses", instrument("ListAddresses", h.ListAddresses))
		r.Post("/api/addresses", instrument("SaveAddress", h.SaveAddress))
		r.Get("/api/addresses/lookup", instrument("LookupAddress", h.LookupAddress))
		r.Put("/api/addresses/{addressID}/default", instrument("SetDefaultAddress", h.SetDefaultAddress))
		r.Delete("/api/addresses/{addressID}", instrument("DeleteAddress", h.DeleteAddress))

		r.Get("/api/products/{productID}/state", instrument("GetProductState", h.GetProductState))

		r.Get("/api/cart", instrument("GetCart", h.GetCart))
		r.Post("/api/cart/items", instrument("AddToCart", h.AddToCart))
		r.Post("/api/cart/items/{productID}/increase", instrument("IncreaseQty", h.IncreaseQty))
		r.Post("/api/cart/items/{productID}/decrease", instrument("DecreaseQty", h.DecreaseQty))
		r.Delete("/api/cart/items/{productID}", instrument("RemoveFromCart", h.RemoveFromCart))
		r.Delete("/api/cart", instrument("ClearCart", h.ClearCart))

		r.Get("/api/favorites", instrument("GetFavorites", h.GetFavorites))
		r.Post("/api/favorites/{productID}/toggle", instrument("ToggleFavorite", h.ToggleFavorite))
		r.Delete("/api/favorites/{productID}", instrument("RemoveFavorite", h.RemoveFavorite))
		r.Post("/api/favorites/move-to-cart", instrument("MoveFavoritesToCart", h.MoveFavoritesToCart))

		r.Get("/api/orders", instrument("GetOrders", h.GetOrders))
		r.Post("/api/orders", instrument("Checkout", h.Checkout))
	})

	return router
}
