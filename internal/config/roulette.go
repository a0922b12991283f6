package config

type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

type BetType string

const (
	Straight BetType = "straight"
	Split    BetType = "split"
	Street   BetType = "street"
	Corner   BetType = "corner"
	Line     BetType = "line"
	Column   BetType = "column"
	Dozen    BetType = "dozen"
	RedBet   BetType = "red"
	BlackBet BetType = "black"
	Odd      BetType = "odd"
	Even     BetType = "even"
	High     BetType = "high"
	Low      BetType = "low"
)

type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionClosed  SessionStatus = "closed"
	SessionExpired SessionStatus = "expired"
)

type BetStatus string

const (
	BetPending  BetStatus = "pending"
	BetWon      BetStatus = "won"
	BetLost     BetStatus = "lost"
	BetRefunded BetStatus = "refunded"
)

const WheelType = "european"

type RouletteConfig struct {
	Odds map[BetType]int
}

// RouletteWheelConfig holds x:1 odds per bet type of a single-zero wheel.
var RouletteWheelConfig = RouletteConfig{
	Odds: map[BetType]int{
		Straight: 35,
		Split:    17,
		Street:   11,
		Corner:   8,
		Line:     5,
		Column:   2,
		Dozen:    2,
		RedBet:   1,
		BlackBet: 1,
		Odd:      1,
		Even:     1,
		High:     1,
		Low:      1,
	},
}

// SessionConfig is reported back to the player when a session is created.
type SessionConfig struct {
	WheelType string  `json:"wheel_type"`
	MinBet    float64 `json:"min_bet"`
	MaxBet    float64 `json:"max_bet"`
	BetTime   int     `json:"bet_time"`
}

func (r RouletteSettings) SessionConfig() SessionConfig {
	return SessionConfig{
		WheelType: WheelType,
		MinBet:    r.MinBet,
		MaxBet:    r.MaxBet,
		BetTime:   r.BetTime,
	}
}
