package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"game-empire/internal/config"
	"game-empire/internal/http-server/model"
	"game-empire/internal/storage/sqlstore"
)

type UserRepository struct {
	db      sqlstore.Querier
	handler *sqlstore.Handler
}

func NewUserRepository(handler *sqlstore.Handler) *UserRepository {
	return &UserRepository{db: handler.Conn, handler: handler}
}

func (repo *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

// CreateUser inserts the user and its balance row together. Outside a
// transaction it opens one of its own.
func (repo *UserRepository) CreateUser(ctx context.Context, userUUID uuid.UUID, balance int64) (*model.User, error) {
	const op = "repository.user.CreateUser"

	if repo.handler == nil {
		return repo.createUser(ctx, userUUID, balance)
	}

	var user *model.User

	err := repo.handler.WithTx(ctx, func(tx *sql.Tx) error {
		var err error

		user, err = repo.WithTx(tx).createUser(ctx, userUUID, balance)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (repo *UserRepository) createUser(ctx context.Context, userUUID uuid.UUID, balance int64) (*model.User, error) {
	const op = "repository.user.createUser"

	now := time.Now()

	res, err := repo.db.ExecContext(ctx,
		"INSERT INTO users(uuid, created_at_ms) VALUES(?, ?)",
		userUUID.String(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = repo.db.ExecContext(ctx,
		"INSERT INTO user_balances(user_id, balance, updated_at_ms) VALUES(?, ?, ?)",
		id, balance, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &model.User{
		ID:        id,
		UUID:      userUUID,
		CreatedAt: sqlstore.UnixMilli(now.UnixMilli()),
	}, nil
}

func (repo *UserRepository) FindUserByUUID(ctx context.Context, userUUID string) (*model.User, error) {
	const op = "repository.user.FindUserByUUID"

	const query = "SELECT id, uuid, created_at_ms FROM users WHERE uuid = ?"

	user, err := scanUser(repo.db.QueryRowContext(ctx, query, userUUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (repo *UserRepository) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	const op = "repository.user.GetUserByID"

	const query = "SELECT id, uuid, created_at_ms FROM users WHERE id = ?"

	user, err := scanUser(repo.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user      model.User
		rawUUID   string
		createdAt int64
	)

	if err := row.Scan(&user.ID, &rawUUID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	parsed, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, err
	}

	user.UUID = parsed
	user.CreatedAt = sqlstore.UnixMilli(createdAt)

	return &user, nil
}

func (repo *UserRepository) FindUserBalanceByID(ctx context.Context, userID int64) (*model.UserBalance, error) {
	const op = "repository.user.FindUserBalanceByID"

	const query = "SELECT id, user_id, balance, updated_at_ms FROM user_balances WHERE user_id = ?"

	var (
		userBalance model.UserBalance
		updatedAt   int64
	)

	err := repo.db.QueryRowContext(ctx, query, userID).
		Scan(&userBalance.ID, &userBalance.UserID, &userBalance.Balance, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t := sqlstore.UnixMilli(updatedAt)
	userBalance.UpdatedAt = &t

	return &userBalance, nil
}

// OutcomeFromUserBalance debits amount, refusing to take the balance below zero.
func (repo *UserRepository) OutcomeFromUserBalance(ctx context.Context, userID int64, amount int64) error {
	const op = "repository.user.OutcomeFromUserBalance"

	const query = "UPDATE user_balances SET balance = balance - ?, updated_at_ms = ? " +
		"WHERE user_id = ? AND balance >= ?"

	res, err := repo.db.ExecContext(ctx, query, amount, time.Now().UnixMilli(), userID, amount)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrInsufficientBalance)
	}

	return nil
}

func (repo *UserRepository) IncomeToUserBalance(ctx context.Context, userID int64, amount int64) error {
	const op = "repository.user.IncomeToUserBalance"

	const query = "UPDATE user_balances SET balance = balance + ?, updated_at_ms = ? WHERE user_id = ?"

	res, err := repo.db.ExecContext(ctx, query, amount, time.Now().UnixMilli(), userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	return nil
}

func (repo *UserRepository) CreateUserBalanceTransaction(
	ctx context.Context,
	userID int64,
	amount int64,
	balanceType config.BalanceType,
	game config.Game,
) error {
	const op = "repository.user.CreateUserBalanceTransaction"

	const query = "INSERT INTO user_balance_transactions(user_id, value, type, module, created_at_ms) " +
		"VALUES(?, ?, ?, ?, ?)"

	_, err := repo.db.ExecContext(ctx, query, userID, amount, string(balanceType), string(game), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *UserRepository) GetUserBalanceTransactions(ctx context.Context, userID int64) ([]model.UserBalanceTransaction, error) {
	const op = "repository.user.GetUserBalanceTransactions"

	const query = "SELECT id, user_id, value, type, module, created_at_ms FROM user_balance_transactions " +
		"WHERE user_id = ? ORDER BY id"

	rows, err := repo.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var transactions []model.UserBalanceTransaction

	for rows.Next() {
		var (
			tr        model.UserBalanceTransaction
			createdAt int64
		)

		if err = rows.Scan(&tr.ID, &tr.UserID, &tr.Value, &tr.Type, &tr.Module, &createdAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		tr.CreatedAt = sqlstore.UnixMilli(createdAt)
		transactions = append(transactions, tr)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return transactions, nil
}
