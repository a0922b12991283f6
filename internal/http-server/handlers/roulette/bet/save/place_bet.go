package place_bet

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/http-server/handlers/roulette/session"
	"game-empire/internal/http-server/handlers/user/balance"
	"game-empire/internal/http-server/middleware/auth"
	"game-empire/internal/http-server/model"
	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/converter"
	"game-empire/internal/lib/logger/sl"
	"game-empire/internal/repository"
	"game-empire/internal/roulette"
	"game-empire/internal/storage/sqlstore"
)

type Request struct {
	BetType config.BetType `json:"bet_type" validate:"required,oneof=straight split street corner line column dozen red black odd even high low"`
	Amount  float64        `json:"amount" validate:"required,gt=0"`
	Numbers []int          `json:"numbers"`
}

type Response struct {
	resp.Response
	BetID      string           `json:"bet_id"`
	SessionID  string           `json:"session_id"`
	BetType    config.BetType   `json:"bet_type"`
	Amount     float64          `json:"amount"`
	Numbers    []int            `json:"numbers"`
	BetStatus  config.BetStatus `json:"bet_status"`
	PlacedAt   time.Time        `json:"placed_at"`
	NewBalance float64          `json:"new_balance"`
}

var errBetLimit = errors.New("bet limit reached")

type Bet struct {
	log         *slog.Logger
	validator   *validator.Validate
	cfg         config.RouletteSettings
	store       *sqlstore.Handler
	rouletteRep *repository.RouletteRepository
	betRep      *repository.BetRepository
	userRep     *repository.UserRepository
	balance     balance.Interface
}

func NewBet(
	log *slog.Logger,
	cfg config.RouletteSettings,
	store *sqlstore.Handler,
	rouletteRep *repository.RouletteRepository,
	betRep *repository.BetRepository,
	userRep *repository.UserRepository,
	balance balance.Interface,
) *Bet {
	return &Bet{
		log:         log,
		validator:   validator.New(),
		cfg:         cfg,
		store:       store,
		rouletteRep: rouletteRep,
		betRep:      betRep,
		userRep:     userRep,
		balance:     balance,
	}
}

func (b *Bet) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roulette.bet.save.New"

		log := b.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.Fail(w, r, "unauthorized", http.StatusUnauthorized)

			return
		}

		req, err := decodeRequest(r)
		if err != nil {
			log.Info("failed to decode request", sl.Err(err))

			resp.Fail(w, r, "failed to decode request", http.StatusBadRequest)

			return
		}

		log.Info("request decoded", slog.Any("request", req))

		if err = b.validator.Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Info("invalid request", sl.Err(err))

				resp.Invalid(w, r, validateErr)

				return
			}

			resp.Fail(w, r, "invalid request", http.StatusBadRequest)

			return
		}

		if req.Amount < b.cfg.MinBet || req.Amount > b.cfg.MaxBet {
			log.Info("amount out of range", slog.Float64("amount", req.Amount))

			resp.Fail(w, r, fmt.Sprintf("amount must be between %s and %s",
				strconv.FormatFloat(b.cfg.MinBet, 'f', -1, 64),
				strconv.FormatFloat(b.cfg.MaxBet, 'f', -1, 64)), http.StatusBadRequest)

			return
		}

		if !converter.IsCentPrecise(req.Amount) {
			log.Info("amount below cent precision", slog.Float64("amount", req.Amount))

			resp.Fail(w, r, "amount must have at most 2 decimal places", http.StatusBadRequest)

			return
		}

		numbers, err := roulette.ValidateNumbers(req.BetType, req.Numbers)
		if err != nil {
			log.Info("invalid numbers", sl.Err(err))

			resp.Fail(w, r, fmt.Sprintf("invalid numbers for %s bet", req.BetType), http.StatusBadRequest)

			return
		}

		sessionID := chi.URLParam(r, "session_id")

		if _, err = session.LookupActive(r.Context(), b.rouletteRep, sessionID, user.ID); err != nil {
			session.Fail(w, r, log, err, "failed to find session")

			return
		}

		now := time.Now()
		bet := model.RouletteBet{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			UserID:    user.ID,
			BetType:   req.BetType,
			Amount:    converter.ConvertAmountFloatToInt(req.Amount),
			Numbers:   numbers,
			Status:    config.BetPending,
			PlacedAt:  now,
		}

		var (
			message    event.Message
			newBalance int64
		)

		err = b.store.WithTx(r.Context(), func(tx *sql.Tx) error {
			if err := b.rouletteRep.WithTx(tx).TouchSession(r.Context(), sessionID, now); err != nil {
				return err
			}

			br := b.betRep.WithTx(tx)

			count, err := br.CountPendingBets(r.Context(), sessionID)
			if err != nil {
				return err
			}
			if b.cfg.MaxBetsPerRound > 0 && count >= b.cfg.MaxBetsPerRound {
				return errBetLimit
			}

			userRep := b.userRep.WithTx(tx)

			message, err = b.balance.Outcome(r.Context(), userRep, user.ID, bet.Amount, config.Roulette)
			if err != nil {
				return err
			}

			if err = br.SaveBet(r.Context(), bet); err != nil {
				return err
			}

			userBalance, err := userRep.FindUserBalanceByID(r.Context(), user.ID)
			if err != nil {
				return err
			}

			newBalance = userBalance.Balance

			return nil
		})

		switch {
		case err == nil:
		case errors.Is(err, repository.ErrInsufficientBalance):
			log.Info("insufficient balance", slog.Int64("user_id", user.ID))

			resp.Fail(w, r, "insufficient balance", http.StatusBadRequest)

			return
		case errors.Is(err, errBetLimit):
			log.Info("bet limit reached", slog.String("session_id", sessionID))

			resp.Fail(w, r, fmt.Sprintf("at most %d bets per round", b.cfg.MaxBetsPerRound), http.StatusBadRequest)

			return
		default:
			session.Fail(w, r, log, err, "failed to place bet")

			return
		}

		log.Info("bet placed", slog.String("bet_id", bet.ID))

		b.balance.Publish(message)

		resp.JSON(w, r, http.StatusOK, Response{
			Response:   resp.OK(),
			BetID:      bet.ID,
			SessionID:  sessionID,
			BetType:    bet.BetType,
			Amount:     converter.ConvertAmountIntToFloat(bet.Amount),
			Numbers:    bet.Numbers,
			BetStatus:  bet.Status,
			PlacedAt:   bet.PlacedAt,
			NewBalance: converter.ConvertAmountIntToFloat(newBalance),
		})
	}
}

// decodeRequest reads the bet from the query string when bet_type is present
// there, otherwise from the JSON body.
func decodeRequest(r *http.Request) (Request, error) {
	var req Request

	query := r.URL.Query()
	if query.Get("bet_type") == "" {
		err := render.DecodeJSON(r.Body, &req)
		req.BetType = config.BetType(strings.ToLower(string(req.BetType)))

		return req, err
	}

	req.BetType = config.BetType(strings.ToLower(query.Get("bet_type")))

	if raw := query.Get("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, fmt.Errorf("amount: %w", err)
		}

		req.Amount = amount
	}

	for _, raw := range query["numbers"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			n, err := strconv.Atoi(part)
			if err != nil {
				return req, fmt.Errorf("numbers: %w", err)
			}

			req.Numbers = append(req.Numbers, n)
		}
	}

	return req, nil
}
