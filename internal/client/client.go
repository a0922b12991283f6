// Package client talks to the game-session API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTimeout = 10 * time.Second
	UserHeader     = "X-User-UUID"
	apiPrefix      = "/api/v1"
)

// APIError is returned for transport failures, non-2xx replies and undecodable bodies.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Op
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

type Client struct {
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	userUUID string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithUser(userUUID string) Option {
	return func(c *Client) { c.userUUID = userUUID }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) User() string { return c.userUUID }

func (c *Client) SetUser(userUUID string) { c.userUUID = userUUID }

type User struct {
	UserUUID string  `json:"user_uuid"`
	Balance  float64 `json:"balance"`
}

type SessionConfig struct {
	WheelType string  `json:"wheel_type"`
	MinBet    float64 `json:"min_bet"`
	MaxBet    float64 `json:"max_bet"`
	BetTime   int     `json:"bet_time"`
}

type Session struct {
	SessionID     string        `json:"session_id"`
	SessionStatus string        `json:"session_status"`
	Config        SessionConfig `json:"config"`
	Balance       float64       `json:"balance"`
	CreatedAt     time.Time     `json:"created_at"`
}

type BetRequest struct {
	BetType string
	Amount  int
	Numbers []int
}

type Bet struct {
	BetID      string    `json:"bet_id"`
	SessionID  string    `json:"session_id"`
	BetType    string    `json:"bet_type"`
	Amount     float64   `json:"amount"`
	Numbers    []int     `json:"numbers"`
	BetStatus  string    `json:"bet_status"`
	PlacedAt   time.Time `json:"placed_at"`
	NewBalance float64   `json:"new_balance"`
}

type SpinRequest struct {
	ClientSeed  string `json:"client_seed,omitempty"`
	ForceNumber *int   `json:"force_number,omitempty"`
}

type Winner struct {
	BetID     string  `json:"bet_id"`
	UserID    string  `json:"user_id"`
	BetType   string  `json:"bet_type"`
	WinAmount float64 `json:"win_amount"`
}

type Proof struct {
	Algorithm      string `json:"algorithm"`
	ClientSeed     string `json:"client_seed"`
	ServerSeed     string `json:"server_seed"`
	ServerSeedHash string `json:"server_seed_hash"`
	Hash           string `json:"hash"`
	Nonce          int    `json:"nonce"`
	ResultNumber   int    `json:"result_number"`
	Forced         bool   `json:"forced"`
}

type SpinResult struct {
	SessionID    string   `json:"session_id"`
	Round        int64    `json:"round"`
	ResultNumber int      `json:"result_number"`
	Color        string   `json:"color"`
	Winners      []Winner `json:"winners"`
	TotalBet     float64  `json:"total_bet"`
	TotalPayout  float64  `json:"total_payout"`
	NewBalance   float64  `json:"new_balance"`
	ProvablyFair Proof    `json:"provably_fair"`
}

type HistoryBet struct {
	BetID     string  `json:"bet_id"`
	BetType   string  `json:"bet_type"`
	Numbers   []int   `json:"numbers"`
	Amount    float64 `json:"amount"`
	BetStatus string  `json:"bet_status"`
	WinAmount float64 `json:"win_amount"`
}

type HistoryEntry struct {
	SessionID    string       `json:"session_id"`
	Round        int64        `json:"round"`
	ResultNumber int          `json:"result_number"`
	Color        string       `json:"color"`
	TotalBet     float64      `json:"total_bet"`
	TotalPayout  float64      `json:"total_payout"`
	CreatedAt    time.Time    `json:"created_at"`
	Bets         []HistoryBet `json:"bets"`
}

type Stats struct {
	TotalGames int64   `json:"total_games"`
	TotalBet   float64 `json:"total_bet"`
	TotalWin   float64 `json:"total_win"`
	NetProfit  float64 `json:"net_profit"`
	WinRate    float64 `json:"win_rate"`
	AvgBet     float64 `json:"avg_bet"`
}

// CreateUser registers a new player and makes it the client's caller.
func (c *Client) CreateUser(ctx context.Context) (*User, error) {
	var user User

	if err := c.do(ctx, "client.CreateUser", http.MethodPost, "/users", nil, nil, &user); err != nil {
		return nil, err
	}

	c.userUUID = user.UserUUID

	return &user, nil
}

func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	var session Session

	if err := c.do(ctx, "client.CreateSession", http.MethodPost, "/games/roulette/create-session", nil, nil, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (c *Client) PlaceBet(ctx context.Context, sessionID string, bet BetRequest) (*Bet, error) {
	query := url.Values{}
	query.Set("bet_type", bet.BetType)
	query.Set("amount", strconv.Itoa(bet.Amount))
	for _, n := range bet.Numbers {
		query.Add("numbers", strconv.Itoa(n))
	}

	var placed Bet

	path := "/games/roulette/" + url.PathEscape(sessionID) + "/bet"

	if err := c.do(ctx, "client.PlaceBet", http.MethodPost, path, query, nil, &placed); err != nil {
		return nil, err
	}

	return &placed, nil
}

func (c *Client) Spin(ctx context.Context, sessionID string, req SpinRequest) (*SpinResult, error) {
	var result SpinResult

	path := "/games/roulette/" + url.PathEscape(sessionID) + "/spin"

	if err := c.do(ctx, "client.Spin", http.MethodPost, path, nil, req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) History(ctx context.Context, skip, limit int) ([]HistoryEntry, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var out struct {
		History []HistoryEntry `json:"history"`
	}

	if err := c.do(ctx, "client.History", http.MethodGet, "/games/roulette/history", query, nil, &out); err != nil {
		return nil, err
	}

	return out.History, nil
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats

	if err := c.do(ctx, "client.Stats", http.MethodGet, "/games/roulette/stats", nil, nil, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

type envelope struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	query url.Values,
	body interface{},
	out interface{},
) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &APIError{Op: op, Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userUUID != "" {
		req.Header.Set(UserHeader, c.userUUID)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &APIError{Op: op, StatusCode: res.StatusCode, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var env envelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.Error != "" {
			return &APIError{Op: op, StatusCode: res.StatusCode, Message: env.Error}
		}

		return &APIError{Op: op, StatusCode: res.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}

	if err = json.Unmarshal(raw, out); err != nil {
		return &APIError{Op: op, StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

// IsStatus reports whether err is an APIError carrying status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
