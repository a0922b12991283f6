package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"game-empire/internal/config"
	"game-empire/internal/roulette"
)

const (
	MinAmount     = 1
	MaxAmount     = 10000
	DefaultAmount = 100
	historyLimit  = 20
)

var (
	ErrNoSession = errors.New("no session: create one first")
	ErrBusy      = errors.New("another request is in progress")
)

// Table is the state of one roulette view: the current session, the bet being
// prepared, the last spin and the history shown next to it.
type Table struct {
	client *Client

	mu         sync.Mutex
	busy       bool
	sessionID  string
	betType    config.BetType
	numbers    []int
	amount     int
	lastResult *SpinResult
	history    []HistoryEntry
}

func NewTable(c *Client) *Table {
	return &Table{
		client:  c,
		betType: config.RedBet,
		amount:  DefaultAmount,
	}
}

func (t *Table) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.sessionID
}

func (t *Table) HasSession() bool {
	return t.SessionID() != ""
}

func (t *Table) BetType() config.BetType {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.betType
}

// SetBetType selects the bet type and the numbers it covers.
func (t *Table) SetBetType(betType config.BetType, numbers ...int) error {
	if !roulette.IsBetType(betType) {
		return fmt.Errorf("unknown bet type %q", betType)
	}

	sorted, err := roulette.ValidateNumbers(betType, numbers)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.betType = betType
	t.numbers = sorted

	return nil
}

func (t *Table) Amount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.amount
}

// SetAmount clamps amount to [MinAmount, MaxAmount] and returns what was kept.
func (t *Table) SetAmount(amount int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.amount = ClampAmount(amount)

	return t.amount
}

func ClampAmount(amount int) int {
	if amount < MinAmount {
		return MinAmount
	}
	if amount > MaxAmount {
		return MaxAmount
	}

	return amount
}

func (t *Table) LastResult() *SpinResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastResult
}

func (t *Table) History() []HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]HistoryEntry(nil), t.history...)
}

// begin marks the table busy. With needSession it also requires a session.
func (t *Table) begin(needSession bool) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if needSession && t.sessionID == "" {
		return "", ErrNoSession
	}
	if t.busy {
		return "", ErrBusy
	}

	t.busy = true

	return t.sessionID, nil
}

func (t *Table) end() {
	t.mu.Lock()
	t.busy = false
	t.mu.Unlock()
}

func (t *Table) CreateSession(ctx context.Context) (*Session, error) {
	if _, err := t.begin(false); err != nil {
		return nil, err
	}
	defer t.end()

	session, err := t.client.CreateSession(ctx)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.sessionID = session.SessionID
	t.lastResult = nil
	t.mu.Unlock()

	return session, nil
}

func (t *Table) PlaceBet(ctx context.Context) (*Bet, error) {
	sessionID, err := t.begin(true)
	if err != nil {
		return nil, err
	}
	defer t.end()

	t.mu.Lock()
	req := BetRequest{
		BetType: string(t.betType),
		Amount:  t.amount,
		Numbers: append([]int(nil), t.numbers...),
	}
	t.mu.Unlock()

	return t.client.PlaceBet(ctx, sessionID, req)
}

// Spin settles the pending bets and, on success, refreshes the history.
func (t *Table) Spin(ctx context.Context, req SpinRequest) (*SpinResult, error) {
	sessionID, err := t.begin(true)
	if err != nil {
		return nil, err
	}
	defer t.end()

	result, err := t.client.Spin(ctx, sessionID, req)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.lastResult = result
	t.mu.Unlock()

	if err = t.refreshHistory(ctx); err != nil {
		return result, err
	}

	return result, nil
}

func (t *Table) RefreshHistory(ctx context.Context) error {
	if _, err := t.begin(false); err != nil {
		return err
	}
	defer t.end()

	return t.refreshHistory(ctx)
}

func (t *Table) refreshHistory(ctx context.Context) error {
	history, err := t.client.History(ctx, 0, historyLimit)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.history = history
	t.mu.Unlock()

	return nil
}

func (t *Table) Stats(ctx context.Context) (*Stats, error) {
	if _, err := t.begin(false); err != nil {
		return nil, err
	}
	defer t.end()

	return t.client.Stats(ctx)
}
