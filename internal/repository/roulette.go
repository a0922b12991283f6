package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"game-empire/internal/config"
	"game-empire/internal/http-server/model"
	"game-empire/internal/storage/sqlstore"
)

type RouletteRepository struct {
	db sqlstore.Querier
}

func NewRouletteRepository(handler *sqlstore.Handler) *RouletteRepository {
	return &RouletteRepository{db: handler.Conn}
}

func (repo *RouletteRepository) WithTx(tx *sql.Tx) *RouletteRepository {
	return &RouletteRepository{db: tx}
}

func (repo *RouletteRepository) SaveSession(ctx context.Context, session model.RouletteSession) error {
	const op = "repository.roulette.SaveSession"

	const query = "INSERT INTO roulette_sessions(id, user_id, wheel_type, status, rounds, created_at_ms, last_active_at_ms) " +
		"VALUES(?, ?, ?, ?, ?, ?, ?)"

	_, err := repo.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.WheelType,
		string(session.Status),
		session.Rounds,
		session.CreatedAt.UnixMilli(),
		session.LastActiveAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *RouletteRepository) FindSessionByID(ctx context.Context, id string) (*model.RouletteSession, error) {
	const op = "repository.roulette.FindSessionByID"

	const query = "SELECT id, user_id, wheel_type, status, rounds, created_at_ms, last_active_at_ms, completed_at_ms " +
		"FROM roulette_sessions WHERE id = ?"

	var (
		session      model.RouletteSession
		createdAt    int64
		lastActiveAt int64
		completedAt  sql.NullInt64
	)

	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.WheelType,
		&session.Status,
		&session.Rounds,
		&createdAt,
		&lastActiveAt,
		&completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session.CreatedAt = sqlstore.UnixMilli(createdAt)
	session.LastActiveAt = sqlstore.UnixMilli(lastActiveAt)
	session.CompletedAt = sqlstore.NullableUnixMilli(completedAt)

	return &session, nil
}

// TouchSession records activity on an active session. Inside a transaction it
// also takes the session row lock, serialising bets and spins on one session.
func (repo *RouletteRepository) TouchSession(ctx context.Context, id string, at time.Time) error {
	const op = "repository.roulette.TouchSession"

	const query = "UPDATE roulette_sessions SET last_active_at_ms = ? WHERE id = ? AND status = ?"

	if err := repo.execOnActive(ctx, query, at.UnixMilli(), id, string(config.SessionActive)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// AdvanceRound bumps the round counter of an active session.
func (repo *RouletteRepository) AdvanceRound(ctx context.Context, id string, at time.Time) error {
	const op = "repository.roulette.AdvanceRound"

	const query = "UPDATE roulette_sessions SET rounds = rounds + 1, last_active_at_ms = ? WHERE id = ? AND status = ?"

	if err := repo.execOnActive(ctx, query, at.UnixMilli(), id, string(config.SessionActive)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// FinishSession moves an active session to status.
func (repo *RouletteRepository) FinishSession(ctx context.Context, id string, status config.SessionStatus, at time.Time) error {
	const op = "repository.roulette.FinishSession"

	const query = "UPDATE roulette_sessions SET status = ?, completed_at_ms = ? WHERE id = ? AND status = ?"

	if err := repo.execOnActive(ctx, query, string(status), at.UnixMilli(), id, string(config.SessionActive)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ExpireSession marks an active session expired when it has been idle since before.
func (repo *RouletteRepository) ExpireSession(ctx context.Context, id string, before, at time.Time) error {
	const op = "repository.roulette.ExpireSession"

	const query = "UPDATE roulette_sessions SET status = ?, completed_at_ms = ? " +
		"WHERE id = ? AND status = ? AND last_active_at_ms < ?"

	err := repo.execOnActive(ctx, query,
		string(config.SessionExpired), at.UnixMilli(), id, string(config.SessionActive), before.UnixMilli())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *RouletteRepository) execOnActive(ctx context.Context, query string, args ...interface{}) error {
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSessionNotActive
	}

	return nil
}

// FindIdleSessionIDs lists active sessions without activity since before.
func (repo *RouletteRepository) FindIdleSessionIDs(ctx context.Context, before time.Time) ([]string, error) {
	const op = "repository.roulette.FindIdleSessionIDs"

	const query = "SELECT id FROM roulette_sessions WHERE status = ? AND last_active_at_ms < ?"

	rows, err := repo.db.QueryContext(ctx, query, string(config.SessionActive), before.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string

		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

func (repo *RouletteRepository) SaveResult(ctx context.Context, result model.RouletteResult) error {
	const op = "repository.roulette.SaveResult"

	const query = "INSERT INTO roulette_results(id, session_id, round, result_number, color, total_bet, total_win, created_at_ms) " +
		"VALUES(?, ?, ?, ?, ?, ?, ?, ?)"

	_, err := repo.db.ExecContext(ctx, query,
		result.ID,
		result.SessionID,
		result.Round,
		result.ResultNumber,
		string(result.Color),
		result.TotalBet,
		result.TotalWin,
		result.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// GetHistory returns a page of the player's results, newest first, with the bets of each round.
func (repo *RouletteRepository) GetHistory(ctx context.Context, userID int64, skip, limit int) ([]model.RouletteResult, error) {
	const op = "repository.roulette.GetHistory"

	const query = "SELECT r.id, r.session_id, r.round, r.result_number, r.color, r.total_bet, r.total_win, r.created_at_ms " +
		"FROM roulette_results r JOIN roulette_sessions s ON s.id = r.session_id " +
		"WHERE s.user_id = ? ORDER BY r.created_at_ms DESC, r.round DESC LIMIT ? OFFSET ?"

	rows, err := repo.db.QueryContext(ctx, query, userID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	results := make([]model.RouletteResult, 0, limit)

	for rows.Next() {
		var (
			result    model.RouletteResult
			createdAt int64
		)

		err = rows.Scan(
			&result.ID,
			&result.SessionID,
			&result.Round,
			&result.ResultNumber,
			&result.Color,
			&result.TotalBet,
			&result.TotalWin,
			&createdAt)
		if err != nil {
			_ = rows.Close()

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result.CreatedAt = sqlstore.UnixMilli(createdAt)
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		_ = rows.Close()

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Bets are loaded after the cursor is released; sqlite runs on one connection.
	_ = rows.Close()

	bets := NewBetRepositoryFromQuerier(repo.db)

	for i := range results {
		results[i].Bets, err = bets.GetBetsByResultID(ctx, results[i].ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return results, nil
}

func (repo *RouletteRepository) GetStats(ctx context.Context, userID int64) (*model.RouletteStats, error) {
	const op = "repository.roulette.GetStats"

	const query = "SELECT COUNT(*), COALESCE(SUM(r.total_bet), 0), COALESCE(SUM(r.total_win), 0) " +
		"FROM roulette_results r JOIN roulette_sessions s ON s.id = r.session_id WHERE s.user_id = ?"

	var stats model.RouletteStats

	if err := repo.db.QueryRowContext(ctx, query, userID).Scan(&stats.TotalGames, &stats.TotalBet, &stats.TotalWin); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &stats, nil
}
