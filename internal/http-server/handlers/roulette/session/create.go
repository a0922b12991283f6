package session

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/handlers/job"
	"game-empire/internal/http-server/middleware/auth"
	"game-empire/internal/http-server/model"
	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/converter"
	"game-empire/internal/lib/logger/sl"
	"game-empire/internal/repository"
)

type CreateResponse struct {
	resp.Response
	SessionID     string               `json:"session_id"`
	SessionStatus config.SessionStatus `json:"session_status"`
	Config        config.SessionConfig `json:"config"`
	Balance       float64              `json:"balance"`
	CreatedAt     time.Time            `json:"created_at"`
}

type Create struct {
	log         *slog.Logger
	cfg         config.RouletteSettings
	rouletteRep *repository.RouletteRepository
	userRep     *repository.UserRepository
	closer      *Closer
	queue       *job.JobQueue
}

func NewCreate(
	log *slog.Logger,
	cfg config.RouletteSettings,
	rouletteRep *repository.RouletteRepository,
	userRep *repository.UserRepository,
	closer *Closer,
	queue *job.JobQueue,
) *Create {
	return &Create{
		log:         log,
		cfg:         cfg,
		rouletteRep: rouletteRep,
		userRep:     userRep,
		closer:      closer,
		queue:       queue,
	}
}

func (c *Create) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roulette.session.Create"

		log := c.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.Fail(w, r, "unauthorized", http.StatusUnauthorized)

			return
		}

		now := time.Now()
		session := model.RouletteSession{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			WheelType:    config.WheelType,
			Status:       config.SessionActive,
			CreatedAt:    now,
			LastActiveAt: now,
		}

		if err := c.rouletteRep.SaveSession(r.Context(), session); err != nil {
			log.Error("failed to save session", sl.Err(err))

			resp.Fail(w, r, "failed to create session", http.StatusInternalServerError)

			return
		}

		log.Info("session created", slog.String("session_id", session.ID))

		userBalance, err := c.userRep.FindUserBalanceByID(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to find user balance", sl.Err(err))

			resp.Fail(w, r, "failed to find user balance", http.StatusInternalServerError)

			return
		}

		if c.queue != nil && c.cfg.SessionTTL > 0 {
			c.queue.Dispatch(&ExpireSessionJob{
				Closer:    c.closer,
				Queue:     c.queue,
				SessionID: session.ID,
				TTL:       c.cfg.SessionTTL,
			}, c.cfg.SessionTTL)
		}

		resp.JSON(w, r, http.StatusOK, CreateResponse{
			Response:      resp.OK(),
			SessionID:     session.ID,
			SessionStatus: session.Status,
			Config:        c.cfg.SessionConfig(),
			Balance:       converter.ConvertAmountIntToFloat(userBalance.Balance),
			CreatedAt:     session.CreatedAt,
		})
	}
}
