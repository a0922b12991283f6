package model

import "time"

type ProvablyFair struct {
	ID             int64     `json:"id"`
	GameDrawID     int64     `json:"game_draw_id"`
	ClientSeed     string    `json:"client_seed"`
	ServerSeed     string    `json:"server_seed"`
	ServerSeedHash string    `json:"server_seed_hash"`
	ResultedHash   string    `json:"resulted_hash"`
	ResultedNumber int       `json:"resulted_number"`
	Min            int       `json:"min"`
	Max            int       `json:"max"`
	Nonce          int       `json:"nonce"`
	CreatedAt      time.Time `json:"created_at"`
}
