package model

import (
	"time"

	"game-empire/internal/config"
)

type RouletteBet struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	ResultID  *string          `json:"result_id"`
	UserID    int64            `json:"user_id"`
	BetType   config.BetType   `json:"bet_type"`
	Amount    int64            `json:"amount"`
	Numbers   []int            `json:"numbers"`
	Status    config.BetStatus `json:"status"`
	WinAmount int64            `json:"win_amount"`
	PlacedAt  time.Time        `json:"placed_at"`
	SettledAt *time.Time       `json:"settled_at"`
}
