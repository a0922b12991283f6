package games

import (
	"net/http"

	"game-empire/internal/config"
	resp "game-empire/internal/lib/api/response"
)

type Response struct {
	resp.Response
	Games []config.GameInfo `json:"games"`
}

// New lists the game catalog.
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.JSON(w, r, http.StatusOK, Response{
			Response: resp.OK(),
			Games:    config.Catalog,
		})
	}
}
