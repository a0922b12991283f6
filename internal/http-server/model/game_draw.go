package model

import (
	"time"

	"game-empire/internal/config"
)

type GameDraw struct {
	ID        int64       `json:"id"`
	GameID    string      `json:"game_id"`
	UserID    int64       `json:"user_id"`
	Game      config.Game `json:"game"`
	CreatedAt time.Time   `json:"created_at"`
}
