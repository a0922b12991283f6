package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	"game-empire/internal/http-server/model"
	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/logger/sl"
	"game-empire/internal/repository"
)

const DefaultHeader = "X-User-UUID"

type ctxKey struct{}

type UserFinder interface {
	FindUserByUUID(ctx context.Context, userUUID string) (*model.User, error)
}

// New resolves the caller from header and stores it in the request context.
func New(log *slog.Logger, users UserFinder, header string) func(next http.Handler) http.Handler {
	if header == "" {
		header = DefaultHeader
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth.New"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userUUID := r.Header.Get(header)
			if userUUID == "" {
				log.Info("missing user header")

				resp.Fail(w, r, "missing "+header+" header", http.StatusUnauthorized)

				return
			}

			user, err := users.FindUserByUUID(r.Context(), userUUID)
			if errors.Is(err, repository.ErrUserNotFound) {
				log.Info("unknown user", slog.String("user_uuid", userUUID))

				resp.Fail(w, r, "unknown user", http.StatusUnauthorized)

				return
			}
			if err != nil {
				log.Error("failed to find user", sl.Err(err))

				resp.Fail(w, r, "failed to find user", http.StatusInternalServerError)

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		}

		return http.HandlerFunc(fn)
	}
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*model.User)

	return user, ok && user != nil
}
