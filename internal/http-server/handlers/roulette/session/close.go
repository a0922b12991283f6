package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/http-server/handlers/user/balance"
	"game-empire/internal/http-server/middleware/auth"
	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/converter"
	"game-empire/internal/lib/logger/sl"
	"game-empire/internal/repository"
	"game-empire/internal/storage/sqlstore"
)

// Closer ends sessions and refunds their pending bets.
type Closer struct {
	log         *slog.Logger
	store       *sqlstore.Handler
	rouletteRep *repository.RouletteRepository
	betRep      *repository.BetRepository
	userRep     *repository.UserRepository
	balance     balance.Interface
}

func NewCloser(
	log *slog.Logger,
	store *sqlstore.Handler,
	rouletteRep *repository.RouletteRepository,
	betRep *repository.BetRepository,
	userRep *repository.UserRepository,
	balance balance.Interface,
) *Closer {
	return &Closer{
		log:         log,
		store:       store,
		rouletteRep: rouletteRep,
		betRep:      betRep,
		userRep:     userRep,
		balance:     balance,
	}
}

// Close marks an active session closed. It returns the refunded amount in cents.
func (c *Closer) Close(ctx context.Context, sessionID string) (int64, error) {
	const op = "handlers.roulette.session.Closer.Close"

	refunded, err := c.finish(ctx, sessionID, func(rr *repository.RouletteRepository, at time.Time) error {
		return rr.FinishSession(ctx, sessionID, config.SessionClosed, at)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return refunded, nil
}

// ExpireIfIdle expires the session when it has been idle for ttl. When the
// session is still in use it returns the time left until it may expire.
func (c *Closer) ExpireIfIdle(ctx context.Context, sessionID string, ttl time.Duration, now time.Time) (bool, time.Duration, error) {
	const op = "handlers.roulette.session.Closer.ExpireIfIdle"

	session, err := c.rouletteRep.FindSessionByID(ctx, sessionID)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	if session.Status != config.SessionActive {
		return false, 0, nil
	}

	if idle := now.Sub(session.LastActiveAt); idle < ttl {
		return false, ttl - idle, nil
	}

	_, err = c.finish(ctx, sessionID, func(rr *repository.RouletteRepository, at time.Time) error {
		return rr.ExpireSession(ctx, sessionID, now.Add(-ttl), at)
	})
	if errors.Is(err, repository.ErrSessionNotActive) {
		// touched or closed in the meantime
		return false, ttl, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("session expired", slog.String("session_id", sessionID))

	return true, 0, nil
}

// Sweep expires every session idle for ttl. It returns how many were expired.
func (c *Closer) Sweep(ctx context.Context, ttl time.Duration, now time.Time) (int, error) {
	const op = "handlers.roulette.session.Closer.Sweep"

	ids, err := c.rouletteRep.FindIdleSessionIDs(ctx, now.Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	expired := 0

	for _, id := range ids {
		ok, _, err := c.ExpireIfIdle(ctx, id, ttl, now)
		if err != nil {
			c.log.Error("failed to expire session", slog.String("session_id", id), sl.Err(err))

			continue
		}
		if ok {
			expired++
		}
	}

	return expired, nil
}

func (c *Closer) finish(
	ctx context.Context,
	sessionID string,
	finish func(rr *repository.RouletteRepository, at time.Time) error,
) (int64, error) {
	var (
		refunded int64
		messages []event.Message
	)

	now := time.Now()

	err := c.store.WithTx(ctx, func(tx *sql.Tx) error {
		rr := c.rouletteRep.WithTx(tx)

		session, err := rr.FindSessionByID(ctx, sessionID)
		if err != nil {
			return err
		}

		if err = finish(rr, now); err != nil {
			return err
		}

		br := c.betRep.WithTx(tx)

		bets, err := br.GetPendingBets(ctx, sessionID)
		if err != nil {
			return err
		}

		for _, bet := range bets {
			if err = br.SettleBet(ctx, bet.ID, nil, config.BetRefunded, 0, now); err != nil {
				return err
			}

			refunded += bet.Amount
		}

		if refunded == 0 {
			return nil
		}

		msg, err := c.balance.Refund(ctx, c.userRep.WithTx(tx), session.UserID, refunded, config.Roulette)
		if err != nil {
			return err
		}

		messages = append(messages, msg)

		return nil
	})
	if err != nil {
		return 0, err
	}

	c.balance.Publish(messages...)

	return refunded, nil
}

type CloseResponse struct {
	resp.Response
	SessionID     string               `json:"session_id"`
	SessionStatus config.SessionStatus `json:"session_status"`
	Refunded      float64              `json:"refunded"`
	Balance       float64              `json:"balance"`
}

type Close struct {
	log         *slog.Logger
	closer      *Closer
	rouletteRep *repository.RouletteRepository
	userRep     *repository.UserRepository
}

func NewClose(
	log *slog.Logger,
	closer *Closer,
	rouletteRep *repository.RouletteRepository,
	userRep *repository.UserRepository,
) *Close {
	return &Close{
		log:         log,
		closer:      closer,
		rouletteRep: rouletteRep,
		userRep:     userRep,
	}
}

func (c *Close) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roulette.session.Close"

		log := c.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.Fail(w, r, "unauthorized", http.StatusUnauthorized)

			return
		}

		sessionID := chi.URLParam(r, "session_id")

		if _, err := LookupActive(r.Context(), c.rouletteRep, sessionID, user.ID); err != nil {
			Fail(w, r, log, err, "failed to find session")

			return
		}

		refunded, err := c.closer.Close(r.Context(), sessionID)
		if err != nil {
			Fail(w, r, log, err, "failed to close session")

			return
		}

		log.Info("session closed", slog.String("session_id", sessionID), slog.Int64("refunded", refunded))

		userBalance, err := c.userRep.FindUserBalanceByID(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to find user balance", sl.Err(err))

			resp.Fail(w, r, "failed to find user balance", http.StatusInternalServerError)

			return
		}

		resp.JSON(w, r, http.StatusOK, CloseResponse{
			Response:      resp.OK(),
			SessionID:     sessionID,
			SessionStatus: config.SessionClosed,
			Refunded:      converter.ConvertAmountIntToFloat(refunded),
			Balance:       converter.ConvertAmountIntToFloat(userBalance.Balance),
		})
	}
}
