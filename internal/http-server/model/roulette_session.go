package model

import (
	"time"

	"game-empire/internal/config"
)

type RouletteSession struct {
	ID           string               `json:"id"`
	UserID       int64                `json:"user_id"`
	WheelType    string               `json:"wheel_type"`
	Status       config.SessionStatus `json:"status"`
	Rounds       int                  `json:"rounds"`
	CreatedAt    time.Time            `json:"created_at"`
	LastActiveAt time.Time            `json:"last_active_at"`
	CompletedAt  *time.Time           `json:"completed_at"`
}
