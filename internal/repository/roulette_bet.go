package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"game-empire/internal/config"
	"game-empire/internal/http-server/model"
	"game-empire/internal/storage/sqlstore"
)

type BetRepository struct {
	db sqlstore.Querier
}

func NewBetRepository(handler *sqlstore.Handler) *BetRepository {
	return &BetRepository{db: handler.Conn}
}

func NewBetRepositoryFromQuerier(db sqlstore.Querier) *BetRepository {
	return &BetRepository{db: db}
}

func (repo *BetRepository) WithTx(tx *sql.Tx) *BetRepository {
	return &BetRepository{db: tx}
}

func (repo *BetRepository) SaveBet(ctx context.Context, bet model.RouletteBet) error {
	const op = "repository.bet.SaveBet"

	numbers, err := encodeNumbers(bet.Numbers)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = repo.db.ExecContext(ctx,
		"INSERT INTO roulette_bets(id, session_id, user_id, bet_type, amount, numbers, status, win_amount, placed_at_ms) "+
			"VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		bet.ID,
		bet.SessionID,
		bet.UserID,
		string(bet.BetType),
		bet.Amount,
		numbers,
		string(bet.Status),
		bet.WinAmount,
		bet.PlacedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *BetRepository) CountPendingBets(ctx context.Context, sessionID string) (int, error) {
	const op = "repository.bet.CountPendingBets"

	const query = "SELECT COUNT(*) FROM roulette_bets WHERE session_id = ? AND status = ?"

	var count int

	if err := repo.db.QueryRowContext(ctx, query, sessionID, string(config.BetPending)).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (repo *BetRepository) GetPendingBets(ctx context.Context, sessionID string) ([]model.RouletteBet, error) {
	const op = "repository.bet.GetPendingBets"

	const query = betColumns + " WHERE session_id = ? AND status = ? ORDER BY placed_at_ms, id"

	bets, err := repo.queryBets(ctx, query, sessionID, string(config.BetPending))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bets, nil
}

func (repo *BetRepository) GetBetsByResultID(ctx context.Context, resultID string) ([]model.RouletteBet, error) {
	const op = "repository.bet.GetBetsByResultID"

	const query = betColumns + " WHERE result_id = ? ORDER BY placed_at_ms, id"

	bets, err := repo.queryBets(ctx, query, resultID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bets, nil
}

// SettleBet closes a pending bet. resultID is nil for refunds.
func (repo *BetRepository) SettleBet(
	ctx context.Context,
	betID string,
	resultID *string,
	status config.BetStatus,
	winAmount int64,
	at time.Time,
) error {
	const op = "repository.bet.SettleBet"

	const query = "UPDATE roulette_bets SET result_id = ?, status = ?, win_amount = ?, settled_at_ms = ? " +
		"WHERE id = ? AND status = ?"

	var result sql.NullString
	if resultID != nil {
		result = sql.NullString{String: *resultID, Valid: true}
	}

	res, err := repo.db.ExecContext(ctx, query,
		result, string(status), winAmount, at.UnixMilli(), betID, string(config.BetPending))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrBetNotPending)
	}

	return nil
}

const betColumns = "SELECT id, session_id, result_id, user_id, bet_type, amount, numbers, status, win_amount, " +
	"placed_at_ms, settled_at_ms FROM roulette_bets"

func (repo *BetRepository) queryBets(ctx context.Context, query string, args ...interface{}) ([]model.RouletteBet, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bets := make([]model.RouletteBet, 0)

	for rows.Next() {
		var (
			bet       model.RouletteBet
			resultID  sql.NullString
			numbers   string
			placedAt  int64
			settledAt sql.NullInt64
		)

		err = rows.Scan(
			&bet.ID,
			&bet.SessionID,
			&resultID,
			&bet.UserID,
			&bet.BetType,
			&bet.Amount,
			&numbers,
			&bet.Status,
			&bet.WinAmount,
			&placedAt,
			&settledAt)
		if err != nil {
			return nil, err
		}

		if resultID.Valid {
			id := resultID.String
			bet.ResultID = &id
		}

		if bet.Numbers, err = decodeNumbers(numbers); err != nil {
			return nil, err
		}

		bet.PlacedAt = sqlstore.UnixMilli(placedAt)
		bet.SettledAt = sqlstore.NullableUnixMilli(settledAt)

		bets = append(bets, bet)
	}

	return bets, rows.Err()
}

func encodeNumbers(numbers []int) (string, error) {
	if numbers == nil {
		numbers = []int{}
	}

	b, err := json.Marshal(numbers)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func decodeNumbers(raw string) ([]int, error) {
	numbers := []int{}

	if raw == "" {
		return numbers, nil
	}

	if err := json.Unmarshal([]byte(raw), &numbers); err != nil {
		return nil, err
	}

	return numbers, nil
}
