package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-empire/internal/config"
	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/http-server/handlers/job"
	"game-empire/internal/lib/logger/handler/slogdiscard"
	"game-empire/internal/storage/sqlstore"
)

type testAPI struct {
	t      *testing.T
	router *Router
	events *event.Recorder
}

func newTestAPI(t *testing.T, allowForced bool) *testAPI {
	t.Helper()

	return newTestAPIWith(t, func(cfg *config.Config) {
		cfg.Roulette.AllowForcedResult = allowForced
	}, nil)
}

func newTestAPIWith(t *testing.T, configure func(cfg *config.Config), queue *job.JobQueue) *testAPI {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{
		Env: "local",
		Roulette: config.RouletteSettings{
			MinBet:          1,
			MaxBet:          10000,
			BetTime:         30,
			MaxBetsPerRound: 3,
		},
		Users: config.Users{SignupBalance: 1000, Header: "X-User-UUID"},
	}
	if configure != nil {
		configure(cfg)
	}

	events := &event.Recorder{}

	return &testAPI{
		t:      t,
		router: New(slogdiscard.NewDiscardLogger(), cfg, store, events, queue),
		events: events,
	}
}

func (a *testAPI) do(method, path, userUUID string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userUUID != "" {
		req.Header.Set("X-User-UUID", userUUID)
	}

	rec := httptest.NewRecorder()
	a.router.Handler.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return rec.Code, out
}

func (a *testAPI) createUser() string {
	a.t.Helper()

	code, body := a.do(http.MethodPost, "/api/v1/users", "", nil)
	require.Equal(a.t, http.StatusCreated, code)
	assert.Equal(a.t, float64(1000), body["balance"])

	return body["user_uuid"].(string)
}

func (a *testAPI) createSession(userUUID string) string {
	a.t.Helper()

	code, body := a.do(http.MethodPost, "/api/v1/games/roulette/create-session", userUUID, nil)
	require.Equal(a.t, http.StatusOK, code)
	assert.Equal(a.t, "active", body["session_status"])

	return body["session_id"].(string)
}

func betPath(sessionID string, query url.Values) string {
	return fmt.Sprintf("/api/v1/games/roulette/%s/bet?%s", sessionID, query.Encode())
}

func TestGamesCatalog(t *testing.T) {
	api := newTestAPI(t, false)

	code, body := api.do(http.MethodGet, "/api/v1/games", "", nil)
	require.Equal(t, http.StatusOK, code)

	list := body["games"].([]interface{})
	require.Len(t, list, 3)
	assert.Equal(t, "available", list[0].(map[string]interface{})["status"])
	assert.Equal(t, "in_development", list[1].(map[string]interface{})["status"])
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t, false)

	code, body := api.do(http.MethodPost, "/api/v1/games/roulette/create-session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, float64(http.StatusUnauthorized), body["status"])

	code, _ = api.do(http.MethodPost, "/api/v1/games/roulette/create-session", "no-such-user", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRoundTrip(t *testing.T) {
	api := newTestAPI(t, true)
	user := api.createUser()
	sessionID := api.createSession(user)

	code, body := api.do(http.MethodPost,
		betPath(sessionID, url.Values{"bet_type": {"red"}, "amount": {"10"}}), user, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "pending", body["bet_status"])
	assert.Equal(t, float64(990), body["new_balance"])

	code, body = api.do(http.MethodPost,
		fmt.Sprintf("/api/v1/games/roulette/%s/bet", sessionID), user,
		map[string]interface{}{"bet_type": "straight", "amount": 5, "numbers": []int{7}})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, float64(985), body["new_balance"])

	code, body = api.do(http.MethodPost,
		betPath(sessionID, url.Values{"bet_type": {"black"}, "amount": {"1"}}), user, nil)
	require.Equal(t, http.StatusOK, code, body)

	code, body = api.do(http.MethodPost,
		fmt.Sprintf("/api/v1/games/roulette/%s/spin", sessionID), user,
		map[string]interface{}{"client_seed": "seed", "force_number": 7})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, float64(7), body["result_number"])
	assert.Equal(t, "red", body["color"])
	assert.Equal(t, float64(16), body["total_bet"])
	assert.Equal(t, float64(200), body["total_payout"])
	assert.Equal(t, float64(1184), body["new_balance"])
	assert.Equal(t, float64(1), body["round"])
	assert.Len(t, body["winners"], 2)

	code, body = api.do(http.MethodPost,
		fmt.Sprintf("/api/v1/games/roulette/%s/spin", sessionID), user, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "no pending bets found", body["error"])

	code, body = api.do(http.MethodGet, "/api/v1/games/roulette/history", user, nil)
	require.Equal(t, http.StatusOK, code)
	rounds := body["history"].([]interface{})
	require.Len(t, rounds, 1)
	round := rounds[0].(map[string]interface{})
	assert.Equal(t, float64(7), round["result_number"])
	assert.Equal(t, float64(200), round["total_payout"])
	assert.Len(t, round["bets"], 3)

	code, body = api.do(http.MethodGet, "/api/v1/games/roulette/stats", user, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total_games"])
	assert.Equal(t, float64(16), body["total_bet"])
	assert.Equal(t, float64(200), body["total_win"])
	assert.Equal(t, float64(184), body["net_profit"])

	code, body = api.do(http.MethodGet, "/api/v1/users/me/balance", user, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1184), body["balance"])

	var spins, outcomes, incomes int
	for _, m := range api.events.Messages() {
		switch m.Event {
		case event.EventSpin:
			spins++
		case event.EventOutcome:
			outcomes++
		case event.EventIncome:
			incomes++
		}
	}
	assert.Equal(t, 1, spins)
	assert.Equal(t, 3, outcomes)
	assert.Equal(t, 1, incomes)
}

func TestSpinProofVerifies(t *testing.T) {
	api := newTestAPI(t, false)
	user := api.createUser()
	sessionID := api.createSession(user)

	code, _ := api.do(http.MethodPost,
		betPath(sessionID, url.Values{"bet_type": {"even"}, "amount": {"2"}}), user, nil)
	require.Equal(t, http.StatusOK, code)

	code, body := api.do(http.MethodPost,
		fmt.Sprintf("/api/v1/games/roulette/%s/spin", sessionID), user, map[string]interface{}{"client_seed": "abc"})
	require.Equal(t, http.StatusOK, code, body)

	proof := body["provably_fair"].(map[string]interface{})
	assert.Equal(t, "abc", proof["client_seed"])
	assert.Equal(t, body["result_number"], proof["result_number"])

	q := url.Values{
		"server_seed": {proof["server_seed"].(string)},
		"client_seed": {"abc"},
		"nonce":       {fmt.Sprint(proof["nonce"])},
	}

	code, verified := api.do(http.MethodGet, "/api/v1/provably-fair/verify?"+q.Encode(), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, proof["hash"], verified["hash"])
	assert.Equal(t, proof["result_number"], verified["result_number"])
}

func TestForcedResultDisabled(t *testing.T) {
	api := newTestAPI(t, false)
	user := api.createUser()
	sessionID := api.createSession(user)

	code, body := api.do(http.MethodPost,
		fmt.Sprintf("/api/v1/games/roulette/%s/spin", sessionID), user, map[string]interface{}{"force_number": 3})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "forced results are disabled", body["error"])
}

func TestBetRejections(t *testing.T) {
	api := newTestAPI(t, false)
	user := api.createUser()
	sessionID := api.createSession(user)

	tests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{name: "unknown type", query: url.Values{"bet_type": {"purple"}, "amount": {"10"}}, want: http.StatusBadRequest},
		{name: "bad amount", query: url.Values{"bet_type": {"red"}, "amount": {"ten"}}, want: http.StatusBadRequest},
		{name: "below min", query: url.Values{"bet_type": {"red"}, "amount": {"0.5"}}, want: http.StatusBadRequest},
		{name: "sub cent amount", query: url.Values{"bet_type": {"red"}, "amount": {"1.005"}}, want: http.StatusBadRequest},
		{name: "above max", query: url.Values{"bet_type": {"red"}, "amount": {"10001"}}, want: http.StatusBadRequest},
		{name: "bad numbers", query: url.Values{"bet_type": {"split"}, "amount": {"1"}, "numbers": {"1,5"}}, want: http.StatusBadRequest},
		{name: "numbers on even money", query: url.Values{"bet_type": {"red"}, "amount": {"1"}, "numbers": {"3"}}, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := api.do(http.MethodPost, betPath(sessionID, tt.query), user, nil)
			assert.Equal(t, tt.want, code)
		})
	}

	code, body := api.do(http.MethodPost,
		betPath(sessionID, url.Values{"bet_type": {"red"}, "amount": {"5000"}}), user, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "insufficient balance", body["error"])

	for i := 0; i < 3; i++ {
		code, _ = api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"odd"}, "amount": {"1"}}), user, nil)
		require.Equal(t, http.StatusOK, code)
	}

	code, _ = api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"odd"}, "amount": {"1"}}), user, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodPost, betPath("missing", url.Values{"bet_type": {"odd"}, "amount": {"1"}}), user, nil)
	assert.Equal(t, http.StatusNotFound, code)

	other := api.createUser()
	code, _ = api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"odd"}, "amount": {"1"}}), other, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCloseRefundsPendingBets(t *testing.T) {
	api := newTestAPI(t, false)
	user := api.createUser()
	sessionID := api.createSession(user)

	code, _ := api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"low"}, "amount": {"25"}}), user, nil)
	require.Equal(t, http.StatusOK, code)

	code, body := api.do(http.MethodPost, fmt.Sprintf("/api/v1/games/roulette/%s/close", sessionID), user, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "closed", body["session_status"])
	assert.Equal(t, float64(25), body["refunded"])
	assert.Equal(t, float64(1000), body["balance"])

	code, _ = api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"low"}, "amount": {"1"}}), user, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = api.do(http.MethodPost, fmt.Sprintf("/api/v1/games/roulette/%s/close", sessionID), user, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	api := newTestAPI(t, false)
	user := api.createUser()
	sessionID := api.createSession(user)

	code, _ := api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"high"}, "amount": {"40"}}), user, nil)
	require.Equal(t, http.StatusOK, code)

	expired, err := api.router.Closer.Sweep(context.Background(), time.Minute, time.Now())
	require.NoError(t, err)
	assert.Zero(t, expired)

	expired, err = api.router.Closer.Sweep(context.Background(), time.Minute, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	code, body := api.do(http.MethodGet, "/api/v1/users/me/balance", user, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1000), body["balance"])

	code, _ = api.do(http.MethodPost, fmt.Sprintf("/api/v1/games/roulette/%s/spin", sessionID), user, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestSessionExpiresAfterIdleTTL(t *testing.T) {
	const ttl = 500 * time.Millisecond

	queue := job.NewJobQueue(10)
	pool := job.NewWorkerPool(2, queue)
	pool.Start()

	api := newTestAPIWith(t, func(cfg *config.Config) {
		cfg.Roulette.SessionTTL = ttl
	}, queue)
	t.Cleanup(pool.Stop)

	user := api.createUser()
	sessionID := api.createSession(user)

	time.Sleep(200 * time.Millisecond)

	code, _ := api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"red"}, "amount": {"25"}}), user, nil)
	require.Equal(t, http.StatusOK, code)

	// past the first expiry check, the session was touched in the meantime
	time.Sleep(250 * time.Millisecond)

	code, _ = api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"black"}, "amount": {"25"}}), user, nil)
	require.Equal(t, http.StatusOK, code)
	lastActive := time.Now()

	balance := func() float64 {
		code, body := api.do(http.MethodGet, "/api/v1/users/me/balance", user, nil)
		require.Equal(t, http.StatusOK, code)

		return body["balance"].(float64)
	}
	assert.Equal(t, float64(950), balance())

	deadline := time.Now().Add(5 * time.Second)
	for balance() != 1000 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	require.Equal(t, float64(1000), balance())
	assert.GreaterOrEqual(t, time.Since(lastActive), ttl)

	code, _ = api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"red"}, "amount": {"1"}}), user, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestBetTypeIsCaseInsensitive(t *testing.T) {
	api := newTestAPI(t, false)
	user := api.createUser()
	sessionID := api.createSession(user)

	code, body := api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"RED"}, "amount": {"1"}}), user, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "red", body["bet_type"])

	code, body = api.do(http.MethodPost, betPath(sessionID, nil), user,
		map[string]interface{}{"bet_type": "RED", "amount": 1})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "red", body["bet_type"])
}

func TestHistoryPaging(t *testing.T) {
	api := newTestAPI(t, true)
	user := api.createUser()
	sessionID := api.createSession(user)

	for i := 0; i < 3; i++ {
		code, _ := api.do(http.MethodPost, betPath(sessionID, url.Values{"bet_type": {"red"}, "amount": {"1"}}), user, nil)
		require.Equal(t, http.StatusOK, code)

		code, _ = api.do(http.MethodPost, fmt.Sprintf("/api/v1/games/roulette/%s/spin", sessionID), user,
			map[string]interface{}{"force_number": i})
		require.Equal(t, http.StatusOK, code)
	}

	code, body := api.do(http.MethodGet, "/api/v1/games/roulette/history?limit=2", user, nil)
	require.Equal(t, http.StatusOK, code)
	rounds := body["history"].([]interface{})
	require.Len(t, rounds, 2)
	assert.Equal(t, float64(3), rounds[0].(map[string]interface{})["round"])

	code, body = api.do(http.MethodGet, "/api/v1/games/roulette/history?skip=2&limit=2", user, nil)
	require.Equal(t, http.StatusOK, code)
	rounds = body["history"].([]interface{})
	require.Len(t, rounds, 1)
	assert.Equal(t, float64(1), rounds[0].(map[string]interface{})["round"])

	code, _ = api.do(http.MethodGet, "/api/v1/games/roulette/history?limit=-1", user, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
