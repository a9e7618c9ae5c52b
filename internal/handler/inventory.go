// Package handler exposes the inventory core over HTTP JSON.
package handler

import (
	"context"
	"errors"
	"math"
	"net/http"

	"opnskin/internal/httpx"
	"opnskin/internal/middleware"
	"opnskin/internal/service"
	"opnskin/internal/steam/inventory"
	"opnskin/pkg/apierror"
	"opnskin/pkg/response"
)

// InventoryHandler serves the authenticated user's priced inventory.
type InventoryHandler struct {
	svc *service.Inventory
}

func NewInventoryHandler(svc *service.Inventory) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Get handles GET /api/v1/inventory?game=cs2&currency=EUR.
// refresh=1 forces a live fetch; prefer_cache=false asks for fresh data but
// still tolerates the stale fallback.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	steamID := middleware.GetSteamID(r.Context())
	if steamID == "" {
		response.Error(w, apierror.Unauthorized(""))
		return
	}

	q := r.URL.Query()
	game := q.Get("game")
	if game == "" {
		response.Error(w, apierror.BadRequest("game query param is required"))
		return
	}
	currency := q.Get("currency")
	if currency == "" {
		currency = "EUR"
	}

	opts := service.DefaultFetchOptions()
	if q.Get("refresh") == "1" || q.Get("refresh") == "true" {
		opts.ForceFresh = true
	}
	if q.Get("prefer_cache") == "false" || q.Get("prefer_cache") == "0" {
		opts.PreferCache = false
	}

	res, err := h.svc.GetOrFetch(r.Context(), steamID, game, currency, opts)
	if err != nil {
		response.Error(w, translate(err, game))
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// translate maps core errors onto API errors.
func translate(err error, game string) error {
	var rle *service.RateLimitedError
	if errors.As(err, &rle) {
		return apierror.RateLimited(int(math.Ceil(rle.RetryAfter.Seconds())))
	}
	if errors.Is(err, service.ErrUnknownGame) {
		return apierror.BadRequest("unsupported game").WithGame(game)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apierror.UpstreamUnavailable("Steam took too long to answer").WithGame(game)
	}

	var se *httpx.StatusError
	if errors.As(err, &se) {
		switch se.Status {
		case http.StatusForbidden:
			return apierror.Forbidden("this inventory is private").WithGame(game)
		case http.StatusNotFound:
			return apierror.NotFound("no inventory found for this game").WithGame(game)
		}
	}
	if errors.Is(err, inventory.ErrShapeMismatch) {
		return apierror.UpstreamUnavailable("Steam returned an unexpected response").WithGame(game)
	}
	return apierror.UpstreamUnavailable("").WithGame(game)
}
