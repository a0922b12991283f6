package config

type Game string

const (
	Roulette  Game = "roulette"
	Baccarat  Game = "baccarat"
	Blackjack Game = "blackjack"
)

type GameStatus string

const (
	Available     GameStatus = "available"
	InDevelopment GameStatus = "in_development"
)

type GameInfo struct {
	Game   Game       `json:"game"`
	Name   string     `json:"name"`
	Status GameStatus `json:"status"`
}

var Catalog = []GameInfo{
	{Game: Roulette, Name: "European Roulette", Status: Available},
	{Game: Baccarat, Name: "Baccarat", Status: InDevelopment},
	{Game: Blackjack, Name: "Blackjack", Status: InDevelopment},
}
