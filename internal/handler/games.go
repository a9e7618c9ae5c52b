package handler

import (
	"net/http"

	"opnskin/internal/steam"
	"opnskin/pkg/response"
)

type gameInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	AppID int    `json:"appId"`
}

// Games handles GET /api/v1/games: the list of supported games.
func Games(w http.ResponseWriter, r *http.Request) {
	all := steam.Games()
	out := make([]gameInfo, 0, len(all))
	for _, g := range all {
		out = append(out, gameInfo{ID: g.ID, Name: g.Name, AppID: g.AppID})
	}
	response.JSON(w, http.StatusOK, map[string]any{"games": out})
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
