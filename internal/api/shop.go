package api

import (
	"net/http"
	"shoppingts/internal/address"
	"shoppingts/internal/catalog"
	"shoppingts/internal/model"

	"github.com/go-chi/chi/v5"
)

// addressForm - поля редактора адреса.
type addressForm struct {
	ID          string `json:"id"`
	Tag         string `json:"tag"`
	CustomLabel string `json:"customLabel"`
	Road        string `json:"road"`
	Detail      string `json:"detail"`
	IsDefault   bool   `json:"isDefault"`
}

func (h *ShopHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	list, res := clientFrom(r).ListAddresses(r.Context())
	respondWithResult(w, res, list)
}

func (h *ShopHandler) SaveAddress(w http.ResponseWriter, r *http.Request) {
	var form addressForm
	if !decodeBody(w, r, &form) {
		return
	}
	entry := address.NewEntry(form.Tag, form.CustomLabel, form.Road, form.Detail, form.IsDefault)
	entry.ID = form.ID

	list, res := clientFrom(r).SaveAddress(r.Context(), entry)
	respondWithResult(w, res, list)
}

func (h *ShopHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	list, res := clientFrom(r).SetDefaultAddress(r.Context(), chi.URLParam(r, "addressID"))
	respondWithResult(w, res, list)
}

func (h *ShopHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	list, res := clientFrom(r).DeleteAddress(r.Context(), chi.URLParam(r, "addressID"))
	respondWithResult(w, res, list)
}

func (h *ShopHandler) LookupAddress(w http.ResponseWriter, r *http.Request) {
	found, res := clientFrom(r).LookupAddress(r.Context(), r.URL.Query().Get("keyword"))
	respondWithResult(w, res, found)
}

func (h *ShopHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, clientFrom(r).CartView(r.Context()))
}

type productRef struct {
	ID string `json:"id"` // id или название товара
}

func (h *ShopHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var body productRef
	if !decodeBody(w, r, &body) {
		return
	}
	c := clientFrom(r)
	res := c.AddToCart(r.Context(), body.ID)
	respondWithResult(w, res, c.CartView(r.Context()))
}

func (h *ShopHandler) IncreaseQty(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	res := c.IncreaseQty(r.Context(), chi.URLParam(r, "productID"))
	respondWithResult(w, res, c.CartView(r.Context()))
}

func (h *ShopHandler) DecreaseQty(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	res := c.DecreaseQty(r.Context(), chi.URLParam(r, "productID"))
	respondWithResult(w, res, c.CartView(r.Context()))
}

func (h *ShopHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	res := c.RemoveFromCart(r.Context(), chi.URLParam(r, "productID"))
	respondWithResult(w, res, c.CartView(r.Context()))
}

func (h *ShopHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	c.ClearCart(r.Context())
	respondWithJSON(w, http.StatusOK, c.CartView(r.Context()))
}

func (h *ShopHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, clientFrom(r).FavoriteProducts(r.Context()))
}

func (h *ShopHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorite, res := clientFrom(r).ToggleFavorite(r.Context(), chi.URLParam(r, "productID"))
	respondWithResult(w, res, map[string]bool{"favorite": favorite})
}

func (h *ShopHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	res := clientFrom(r).RemoveFavorite(r.Context(), chi.URLParam(r, "productID"))
	respondWithResult(w, res, nil)
}

func (h *ShopHandler) MoveFavoritesToCart(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	moved := c.MoveFavoritesToCart(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"moved": moved, "cart": c.CartView(r.Context())})
}

func (h *ShopHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, clientFrom(r).OrderHistory(r.Context()))
}

func (h *ShopHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	order, res := clientFrom(r).Checkout(r.Context())
	var data interface{}
	if res.OK {
		data = order
	}
	respondWithResult(w, res, data)
}

// ListProducts: ?category= фильтрует, ?sort= одно из popular|new|price-asc|price-desc.
func (h *ShopHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.hub.Catalog().Filter(r.URL.Query().Get("category"))
	if mode := r.URL.Query().Get("sort"); mode != "" {
		products = catalog.Sort(products, mode)
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ShopHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		respondWithError(w, http.StatusBadRequest, "Не указан товар", "GetProduct")
		return
	}
	p, ok := h.hub.Catalog().Resolve(productID)
	if !ok {
		http.Error(w, "Товар не найден", http.StatusNotFound)
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		model.Product
		PriceValue int `json:"priceValue"`
	}{p, catalog.ParsePrice(p.Price)})
}

// GetProductState - количество товара в корзине вкладки и отметка избранного.
func (h *ShopHandler) GetProductState(w http.ResponseWriter, r *http.Request) {
	state, res := clientFrom(r).ProductState(r.Context(), chi.URLParam(r, "productID"))
	if !res.OK {
		respondWithError(w, http.StatusNotFound, res.Message, "GetProductState")
		return
	}
	respondWithJSON(w, http.StatusOK, state)
}
