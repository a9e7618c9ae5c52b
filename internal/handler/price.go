package handler

import (
	"net/http"

	"opnskin/internal/service"
	"opnskin/internal/steam"
	"opnskin/pkg/apierror"
	"opnskin/pkg/response"
)

// PriceHandler answers single-item price lookups. Fast-inventory clients use
// it to fill in prices after the inventory itself has rendered.
type PriceHandler struct {
	prices service.PriceResolver
}

func NewPriceHandler(prices service.PriceResolver) *PriceHandler {
	return &PriceHandler{prices: prices}
}

type priceResponse struct {
	Name     string  `json:"name"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

// Get handles GET /api/v1/price?game=cs2&name=...&currency=EUR.
// A price of 0 means no price is known; that is not an error.
func (h *PriceHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		response.Error(w, apierror.BadRequest("name query param is required"))
		return
	}
	game, ok := steam.GameByID(q.Get("game"))
	if !ok {
		response.Error(w, apierror.BadRequest("unsupported game").WithGame(q.Get("game")))
		return
	}
	currency := q.Get("currency")
	if currency == "" {
		currency = "EUR"
	}

	price := h.prices.Price(r.Context(), game.AppID, name, currency)
	response.JSON(w, http.StatusOK, priceResponse{Name: name, Currency: currency, Price: price})
}
