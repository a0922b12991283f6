package model

import (
	"time"

	"game-empire/internal/config"
)

type RouletteResult struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"session_id"`
	Round        int64         `json:"round"`
	ResultNumber int           `json:"result_number"`
	Color        config.Color  `json:"color"`
	TotalBet     int64         `json:"total_bet"`
	TotalWin     int64         `json:"total_win"`
	CreatedAt    time.Time     `json:"created_at"`
	Bets         []RouletteBet `json:"bets"`
}

// RouletteStats aggregates every settled round of one player.
type RouletteStats struct {
	TotalGames int64 `json:"total_games"`
	TotalBet   int64 `json:"total_bet"`
	TotalWin   int64 `json:"total_win"`
}
