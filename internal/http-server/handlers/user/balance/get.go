package balance

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	"game-empire/internal/http-server/middleware/auth"
	"game-empire/internal/http-server/model"
	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/converter"
	"game-empire/internal/lib/logger/sl"
)

type GetResponse struct {
	resp.Response
	UserUUID string  `json:"user_uuid"`
	Balance  float64 `json:"balance"`
}

type Finder interface {
	FindUserBalanceByID(ctx context.Context, userID int64) (*model.UserBalance, error)
}

type Get struct {
	log   *slog.Logger
	users Finder
}

func NewGet(log *slog.Logger, users Finder) *Get {
	return &Get{log: log, users: users}
}

func (g *Get) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.balance.Get"

		log := g.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.Fail(w, r, "unauthorized", http.StatusUnauthorized)

			return
		}

		userBalance, err := g.users.FindUserBalanceByID(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to find user balance", sl.Err(err))

			resp.Fail(w, r, "failed to find user balance", http.StatusInternalServerError)

			return
		}

		resp.JSON(w, r, http.StatusOK, GetResponse{
			Response: resp.OK(),
			UserUUID: user.UUID.String(),
			Balance:  converter.ConvertAmountIntToFloat(userBalance.Balance),
		})
	}
}
