package spin

import (
	"database/sql"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/http-server/handlers/job"
	"game-empire/internal/http-server/handlers/provably_fair"
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

const spinEventDelay = 500 * time.Millisecond

type Request struct {
	ClientSeed  string `json:"client_seed" validate:"max=64"`
	ForceNumber *int   `json:"force_number" validate:"omitempty,min=0,max=36"`
}

type Winner struct {
	BetID     string         `json:"bet_id"`
	UserID    string         `json:"user_id"`
	BetType   config.BetType `json:"bet_type"`
	WinAmount float64        `json:"win_amount"`
}

type Response struct {
	resp.Response
	SessionID    string                         `json:"session_id"`
	Round        int64                          `json:"round"`
	ResultNumber int                            `json:"result_number"`
	Color        config.Color                   `json:"color"`
	Winners      []Winner                       `json:"winners"`
	TotalBet     float64                        `json:"total_bet"`
	TotalPayout  float64                        `json:"total_payout"`
	NewBalance   float64                        `json:"new_balance"`
	ProvablyFair provably_fair.ProvablyFairData `json:"provably_fair"`
}

var errNoPendingBets = errors.New("no pending bets found")

type StatsInvalidator interface {
	Invalidate(userID int64)
}

type Spin struct {
	log          *slog.Logger
	validator    *validator.Validate
	cfg          config.RouletteSettings
	store        *sqlstore.Handler
	rouletteRep  *repository.RouletteRepository
	betRep       *repository.BetRepository
	userRep      *repository.UserRepository
	fairRep      *repository.ProvablyFairRepository
	provablyFair *provably_fair.ProvablyFair
	balance      balance.Interface
	stats        StatsInvalidator
	publisher    event.Publisher
	queue        *job.JobQueue
}

func NewSpin(
	log *slog.Logger,
	cfg config.RouletteSettings,
	store *sqlstore.Handler,
	rouletteRep *repository.RouletteRepository,
	betRep *repository.BetRepository,
	userRep *repository.UserRepository,
	fairRep *repository.ProvablyFairRepository,
	provablyFair *provably_fair.ProvablyFair,
	balance balance.Interface,
	stats StatsInvalidator,
	publisher event.Publisher,
	queue *job.JobQueue,
) *Spin {
	return &Spin{
		log:          log,
		validator:    validator.New(),
		cfg:          cfg,
		store:        store,
		rouletteRep:  rouletteRep,
		betRep:       betRep,
		userRep:      userRep,
		fairRep:      fairRep,
		provablyFair: provablyFair,
		balance:      balance,
		stats:        stats,
		publisher:    publisher,
		queue:        queue,
	}
}

func (s *Spin) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roulette.spin.New"

		log := s.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.Fail(w, r, "unauthorized", http.StatusUnauthorized)

			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
			log.Info("failed to decode request body", sl.Err(err))

			resp.Fail(w, r, "failed to decode request body", http.StatusBadRequest)

			return
		}

		if err := s.validator.Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Info("invalid request", sl.Err(err))

				resp.Invalid(w, r, validateErr)

				return
			}

			resp.Fail(w, r, "invalid request", http.StatusBadRequest)

			return
		}

		if req.ForceNumber != nil && !s.cfg.AllowForcedResult {
			log.Info("forced result refused")

			resp.Fail(w, r, "forced results are disabled", http.StatusBadRequest)

			return
		}

		if req.ClientSeed == "" {
			req.ClientSeed = uuid.NewString()
		}

		sessionID := chi.URLParam(r, "session_id")

		if _, err := session.LookupActive(r.Context(), s.rouletteRep, sessionID, user.ID); err != nil {
			session.Fail(w, r, log, err, "failed to find session")

			return
		}

		var (
			now        = time.Now()
			result     model.RouletteResult
			proof      provably_fair.ProvablyFairData
			winners    = make([]Winner, 0)
			messages   []event.Message
			newBalance int64
		)

		err := s.store.WithTx(r.Context(), func(tx *sql.Tx) error {
			rr := s.rouletteRep.WithTx(tx)

			if err := rr.AdvanceRound(r.Context(), sessionID, now); err != nil {
				return err
			}

			current, err := rr.FindSessionByID(r.Context(), sessionID)
			if err != nil {
				return err
			}

			br := s.betRep.WithTx(tx)

			bets, err := br.GetPendingBets(r.Context(), sessionID)
			if err != nil {
				return err
			}
			if len(bets) == 0 {
				return errNoPendingBets
			}

			proof = s.provablyFair.GetRandomNumber(req.ClientSeed, current.Rounds)
			if req.ForceNumber != nil {
				proof.Result = *req.ForceNumber
				proof.Forced = true
			}

			result = model.RouletteResult{
				ID:           uuid.NewString(),
				SessionID:    sessionID,
				Round:        int64(current.Rounds),
				ResultNumber: proof.Result,
				Color:        roulette.ColorOf(proof.Result),
				CreatedAt:    now,
			}

			wins := make([]int64, len(bets))
			for i, bet := range bets {
				wins[i] = roulette.Payout(bet.BetType, bet.Numbers, bet.Amount, result.ResultNumber)
				result.TotalBet += bet.Amount
				result.TotalWin += wins[i]
			}

			if err = rr.SaveResult(r.Context(), result); err != nil {
				return err
			}

			for i, bet := range bets {
				status := config.BetLost
				if wins[i] > 0 {
					status = config.BetWon
					winners = append(winners, Winner{
						BetID:     bet.ID,
						UserID:    user.UUID.String(),
						BetType:   bet.BetType,
						WinAmount: converter.ConvertAmountIntToFloat(wins[i]),
					})
				}

				if err = br.SettleBet(r.Context(), bet.ID, &result.ID, status, wins[i], now); err != nil {
					return err
				}
			}

			if err = s.provablyFair.Store(r.Context(), s.fairRep.WithTx(tx), proof, config.Roulette, result.ID, user.ID); err != nil {
				return err
			}

			userRep := s.userRep.WithTx(tx)

			if result.TotalWin > 0 {
				msg, err := s.balance.Income(r.Context(), userRep, user.ID, result.TotalWin, config.Roulette)
				if err != nil {
					return err
				}

				messages = append(messages, msg)
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
		case errors.Is(err, errNoPendingBets):
			log.Info("no pending bets", slog.String("session_id", sessionID))

			resp.Fail(w, r, errNoPendingBets.Error(), http.StatusBadRequest)

			return
		default:
			session.Fail(w, r, log, err, "failed to spin")

			return
		}

		log.Info("spin settled",
			slog.String("session_id", sessionID),
			slog.Int64("round", result.Round),
			slog.Int("result_number", result.ResultNumber),
			slog.Int64("total_win", result.TotalWin),
		)

		s.balance.Publish(messages...)
		s.stats.Invalidate(user.ID)
		s.sendSpinEvent(result)

		resp.JSON(w, r, http.StatusOK, Response{
			Response:     resp.OK(),
			SessionID:    sessionID,
			Round:        result.Round,
			ResultNumber: result.ResultNumber,
			Color:        result.Color,
			Winners:      winners,
			TotalBet:     converter.ConvertAmountIntToFloat(result.TotalBet),
			TotalPayout:  converter.ConvertAmountIntToFloat(result.TotalWin),
			NewBalance:   converter.ConvertAmountIntToFloat(newBalance),
			ProvablyFair: proof,
		})
	}
}

func (s *Spin) sendSpinEvent(result model.RouletteResult) {
	sendJob := &job.SendEventJob{
		EventMessage: event.Message{
			Channel: event.ChannelRoulette,
			Event:   event.EventSpin,
			Data: map[string]interface{}{
				"session_id":    result.SessionID,
				"round":         result.Round,
				"result_number": result.ResultNumber,
				"color":         result.Color,
				"total_payout":  converter.ConvertAmountIntToString(result.TotalWin),
			},
		},
		Event: s.publisher,
		Log:   s.log,
	}

	if s.queue == nil {
		sendJob.Execute()

		return
	}

	s.queue.Dispatch(sendJob, spinEventDelay)
}
