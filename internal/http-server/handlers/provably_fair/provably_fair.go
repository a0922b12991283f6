package provably_fair

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/model"
	"game-empire/internal/lib/logger/sl"
	"game-empire/internal/lib/random"
	"game-empire/internal/repository"
	"game-empire/internal/roulette"
)

const (
	Algorithm      = "hmac-sha512"
	serverSeedSize = 64
	// hashBits of the hash prefix are scaled onto the wheel.
	hashBits = 52
)

type ProvablyFair struct {
	log *slog.Logger
}

type ProvablyFairData struct {
	Algorithm      string `json:"algorithm"`
	ClientSeed     string `json:"client_seed"`
	ServerSeed     string `json:"server_seed"`
	ServerSeedHash string `json:"server_seed_hash"`
	Hash           string `json:"hash"`
	Nonce          int    `json:"nonce"`
	Result         int    `json:"result_number"`
	Min            int    `json:"min"`
	Max            int    `json:"max"`
	Forced         bool   `json:"forced,omitempty"`
}

func NewProvablyFair(log *slog.Logger) *ProvablyFair {
	return &ProvablyFair{
		log: log,
	}
}

// GetRandomNumber draws a wheel number from a fresh server seed.
func (f *ProvablyFair) GetRandomNumber(clientSeed string, nonce int) ProvablyFairData {
	return Compute(random.NewRandomString(serverSeedSize), clientSeed, nonce)
}

// Compute derives the wheel number for a seed pair and nonce.
func Compute(serverSeed, clientSeed string, nonce int) ProvablyFairData {
	h := hmac.New(sha512.New, []byte(serverSeed))
	h.Write([]byte(clientSeed + "-" + strconv.Itoa(nonce)))
	hash := hex.EncodeToString(h.Sum(nil))

	partOfHash := hash[:hashBits/4]
	value, _ := strconv.ParseUint(partOfHash, 16, 64)

	result := int((value * uint64(roulette.Pockets)) >> hashBits)

	seedHash := sha256.Sum256([]byte(serverSeed))

	return ProvablyFairData{
		Algorithm:      Algorithm,
		ClientSeed:     clientSeed,
		ServerSeed:     serverSeed,
		ServerSeedHash: hex.EncodeToString(seedHash[:]),
		Hash:           hash,
		Nonce:          nonce,
		Result:         result,
		Min:            roulette.MinNumber,
		Max:            roulette.MaxNumber,
	}
}

// Store records a game draw and its proof.
func (f *ProvablyFair) Store(
	ctx context.Context,
	repo *repository.ProvablyFairRepository,
	data ProvablyFairData,
	game config.Game,
	gameID string,
	userID int64,
) error {
	const op = "ProvablyFair.Store"

	now := time.Now()

	drawID, err := repo.SaveGameDraw(ctx, model.GameDraw{
		GameID:    gameID,
		UserID:    userID,
		Game:      game,
		CreatedAt: now,
	})
	if err != nil {
		f.log.Error("failed to store game draw", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	err = repo.SaveProvablyFair(ctx, model.ProvablyFair{
		GameDrawID:     drawID,
		ClientSeed:     data.ClientSeed,
		ServerSeed:     data.ServerSeed,
		ServerSeedHash: data.ServerSeedHash,
		ResultedHash:   data.Hash,
		ResultedNumber: data.Result,
		Min:            data.Min,
		Max:            data.Max,
		Nonce:          data.Nonce,
		CreatedAt:      now,
	})
	if err != nil {
		f.log.Error("failed to store provably fair", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
