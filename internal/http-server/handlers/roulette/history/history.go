package history

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/middleware/auth"
	"game-empire/internal/http-server/model"
	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/converter"
	"game-empire/internal/lib/logger/sl"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Bet struct {
	BetID     string           `json:"bet_id"`
	BetType   config.BetType   `json:"bet_type"`
	Numbers   []int            `json:"numbers"`
	Amount    float64          `json:"amount"`
	BetStatus config.BetStatus `json:"bet_status"`
	WinAmount float64          `json:"win_amount"`
}

type Round struct {
	SessionID    string       `json:"session_id"`
	Round        int64        `json:"round"`
	ResultNumber int          `json:"result_number"`
	Color        config.Color `json:"color"`
	TotalBet     float64      `json:"total_bet"`
	TotalPayout  float64      `json:"total_payout"`
	CreatedAt    time.Time    `json:"created_at"`
	Bets         []Bet        `json:"bets"`
}

type Response struct {
	resp.Response
	History []Round `json:"history"`
}

type Getter interface {
	GetHistory(ctx context.Context, userID int64, skip, limit int) ([]model.RouletteResult, error)
}

type History struct {
	log  *slog.Logger
	repo Getter
}

func NewHistory(log *slog.Logger, repo Getter) *History {
	return &History{log: log, repo: repo}
}

func (h *History) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roulette.history.New"

		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.Fail(w, r, "unauthorized", http.StatusUnauthorized)

			return
		}

		skip, err := intParam(r, "skip", 0)
		if err != nil || skip < 0 {
			resp.Fail(w, r, "skip must be a non-negative integer", http.StatusBadRequest)

			return
		}

		limit, err := intParam(r, "limit", DefaultLimit)
		if err != nil || limit < 1 {
			resp.Fail(w, r, "limit must be a positive integer", http.StatusBadRequest)

			return
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}

		results, err := h.repo.GetHistory(r.Context(), user.ID, skip, limit)
		if err != nil {
			log.Error("failed to get history", sl.Err(err))

			resp.Fail(w, r, "failed to get history", http.StatusInternalServerError)

			return
		}

		rounds := make([]Round, 0, len(results))
		for _, result := range results {
			rounds = append(rounds, toRound(result))
		}

		resp.JSON(w, r, http.StatusOK, Response{
			Response: resp.OK(),
			History:  rounds,
		})
	}
}

func toRound(result model.RouletteResult) Round {
	bets := make([]Bet, 0, len(result.Bets))
	for _, b := range result.Bets {
		bets = append(bets, Bet{
			BetID:     b.ID,
			BetType:   b.BetType,
			Numbers:   b.Numbers,
			Amount:    converter.ConvertAmountIntToFloat(b.Amount),
			BetStatus: b.Status,
			WinAmount: converter.ConvertAmountIntToFloat(b.WinAmount),
		})
	}

	return Round{
		SessionID:    result.SessionID,
		Round:        result.Round,
		ResultNumber: result.ResultNumber,
		Color:        result.Color,
		TotalBet:     converter.ConvertAmountIntToFloat(result.TotalBet),
		TotalPayout:  converter.ConvertAmountIntToFloat(result.TotalWin),
		CreatedAt:    result.CreatedAt,
		Bets:         bets,
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	return strconv.Atoi(raw)
}
