package create

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"game-empire/internal/http-server/model"
	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/converter"
	"game-empire/internal/lib/logger/sl"
)

type Response struct {
	resp.Response
	UserUUID string  `json:"user_uuid"`
	Balance  float64 `json:"balance"`
}

type UserCreator interface {
	CreateUser(ctx context.Context, userUUID uuid.UUID, balance int64) (*model.User, error)
}

type Create struct {
	log           *slog.Logger
	users         UserCreator
	signupBalance int64
}

func NewCreate(log *slog.Logger, users UserCreator, signupBalance float64) *Create {
	return &Create{
		log:           log,
		users:         users,
		signupBalance: converter.ConvertAmountFloatToInt(signupBalance),
	}
}

func (c *Create) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.user.create.New"

		log := c.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, err := c.users.CreateUser(r.Context(), uuid.New(), c.signupBalance)
		if err != nil {
			log.Error("failed to create user", sl.Err(err))

			resp.Fail(w, r, "failed to create user", http.StatusInternalServerError)

			return
		}

		log.Info("user created", slog.Int64("user_id", user.ID))

		resp.JSON(w, r, http.StatusCreated, Response{
			Response: resp.Response{Status: http.StatusCreated},
			UserUUID: user.UUID.String(),
			Balance:  converter.ConvertAmountIntToFloat(c.signupBalance),
		})
	}
}
