package repository

import (
	"context"
	"database/sql"
	"fmt"

	"game-empire/internal/http-server/model"
	"game-empire/internal/storage/sqlstore"
)

type ProvablyFairRepository struct {
	db sqlstore.Querier
}

func NewProvablyFairRepository(handler *sqlstore.Handler) *ProvablyFairRepository {
	return &ProvablyFairRepository{db: handler.Conn}
}

func (repo *ProvablyFairRepository) WithTx(tx *sql.Tx) *ProvablyFairRepository {
	return &ProvablyFairRepository{db: tx}
}

func (repo *ProvablyFairRepository) SaveProvablyFair(ctx context.Context, provablyFair model.ProvablyFair) error {
	const op = "repository.provably_fair.SaveProvablyFair"

	const query = "INSERT INTO provably_fairs(game_draw_id," +
		" client_seed," +
		" server_seed," +
		" server_seed_hash," +
		" resulted_hash," +
		" resulted_number," +
		" min," +
		" max," +
		" nonce," +
		" created_at_ms) " +
		"VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

	_, err := repo.db.ExecContext(ctx, query,
		provablyFair.GameDrawID,
		provablyFair.ClientSeed,
		provablyFair.ServerSeed,
		provablyFair.ServerSeedHash,
		provablyFair.ResultedHash,
		provablyFair.ResultedNumber,
		provablyFair.Min,
		provablyFair.Max,
		provablyFair.Nonce,
		provablyFair.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (repo *ProvablyFairRepository) SaveGameDraw(ctx context.Context, gameDraw model.GameDraw) (int64, error) {
	const op = "repository.provably_fair.SaveGameDraw"

	const query = "INSERT INTO game_draws(game_id," +
		" user_id," +
		" game," +
		" created_at_ms) " +
		"VALUES(?, ?, ?, ?)"

	res, err := repo.db.ExecContext(ctx, query,
		gameDraw.GameID,
		gameDraw.UserID,
		string(gameDraw.Game),
		gameDraw.CreatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (repo *ProvablyFairRepository) FindByGameID(ctx context.Context, gameID string) (*model.ProvablyFair, error) {
	const op = "repository.provably_fair.FindByGameID"

	const query = "SELECT p.id, p.game_draw_id, p.client_seed, p.server_seed, p.server_seed_hash, p.resulted_hash, " +
		"p.resulted_number, p.min, p.max, p.nonce, p.created_at_ms " +
		"FROM provably_fairs p JOIN game_draws d ON d.id = p.game_draw_id WHERE d.game_id = ?"

	var (
		pf        model.ProvablyFair
		createdAt int64
	)

	err := repo.db.QueryRowContext(ctx, query, gameID).Scan(
		&pf.ID,
		&pf.GameDrawID,
		&pf.ClientSeed,
		&pf.ServerSeed,
		&pf.ServerSeedHash,
		&pf.ResultedHash,
		&pf.ResultedNumber,
		&pf.Min,
		&pf.Max,
		&pf.Nonce,
		&createdAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pf.CreatedAt = sqlstore.UnixMilli(createdAt)

	return &pf, nil
}
