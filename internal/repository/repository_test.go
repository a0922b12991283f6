package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-empire/internal/config"
	"game-empire/internal/http-server/model"
	"game-empire/internal/storage/sqlstore"
)

func newStore(t *testing.T) *sqlstore.Handler {
	t.Helper()

	handler, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = handler.Close() })

	return handler
}

func TestUserBalance(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(newStore(t))

	user, err := users.CreateUser(ctx, uuid.New(), 1000)
	require.NoError(t, err)

	found, err := users.FindUserByUUID(ctx, user.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = users.FindUserByUUID(ctx, uuid.NewString())
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, users.OutcomeFromUserBalance(ctx, user.ID, 600))
	require.ErrorIs(t, users.OutcomeFromUserBalance(ctx, user.ID, 600), ErrInsufficientBalance)
	require.NoError(t, users.IncomeToUserBalance(ctx, user.ID, 250))

	balance, err := users.FindUserBalanceByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(650), balance.Balance)

	require.NoError(t, users.CreateUserBalanceTransaction(ctx, user.ID, 600, config.Outcome, config.Roulette))

	transactions, err := users.GetUserBalanceTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, config.Outcome, transactions[0].Type)
	assert.Equal(t, config.Roulette, transactions[0].Module)
}

func TestCreateUserRollsBackWithoutBalance(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	users := NewUserRepository(store)

	_, err := store.Conn.ExecContext(ctx, "DROP TABLE user_balances")
	require.NoError(t, err)

	userUUID := uuid.New()

	_, err = users.CreateUser(ctx, userUUID, 1000)
	require.Error(t, err)

	_, err = users.FindUserByUUID(ctx, userUUID.String())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRouletteRoundLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	users := NewUserRepository(store)
	roulettes := NewRouletteRepository(store)
	bets := NewBetRepository(store)

	user, err := users.CreateUser(ctx, uuid.New(), 1000)
	require.NoError(t, err)

	now := time.Now()
	session := model.RouletteSession{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		WheelType:    config.WheelType,
		Status:       config.SessionActive,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	require.NoError(t, roulettes.SaveSession(ctx, session))

	_, err = roulettes.FindSessionByID(ctx, "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	bet := model.RouletteBet{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		UserID:    user.ID,
		BetType:   config.Split,
		Amount:    100,
		Numbers:   []int{1, 2},
		Status:    config.BetPending,
		PlacedAt:  now,
	}
	require.NoError(t, bets.SaveBet(ctx, bet))

	count, err := bets.CountPendingBets(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	pending, err := bets.GetPendingBets(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, []int{1, 2}, pending[0].Numbers)

	require.NoError(t, roulettes.AdvanceRound(ctx, session.ID, now))

	result := model.RouletteResult{
		ID:           uuid.NewString(),
		SessionID:    session.ID,
		Round:        7,
		ResultNumber: 2,
		Color:        config.Black,
		TotalBet:     100,
		TotalWin:     1800,
		CreatedAt:    now,
	}
	require.NoError(t, roulettes.SaveResult(ctx, result))
	require.NoError(t, bets.SettleBet(ctx, bet.ID, &result.ID, config.BetWon, 1800, now))
	require.ErrorIs(t, bets.SettleBet(ctx, bet.ID, &result.ID, config.BetWon, 1800, now), ErrBetNotPending)

	history, err := roulettes.GetHistory(ctx, user.ID, 0, 20)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].ResultNumber)
	require.Len(t, history[0].Bets, 1)
	assert.Equal(t, config.BetWon, history[0].Bets[0].Status)
	assert.Equal(t, int64(1800), history[0].Bets[0].WinAmount)

	stats, err := roulettes.GetStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RouletteStats{TotalGames: 1, TotalBet: 100, TotalWin: 1800}, *stats)

	stored, err := roulettes.FindSessionByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Rounds)

	idle, err := roulettes.FindIdleSessionIDs(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{session.ID}, idle)

	require.NoError(t, roulettes.FinishSession(ctx, session.ID, config.SessionClosed, now))
	require.ErrorIs(t, roulettes.TouchSession(ctx, session.ID, now), ErrSessionNotActive)
	require.ErrorIs(t, roulettes.AdvanceRound(ctx, session.ID, now), ErrSessionNotActive)
}
