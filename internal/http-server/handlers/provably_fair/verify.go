package provably_fair

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/logger/sl"
)

type VerifyRequest struct {
	ServerSeed string `validate:"required"`
	ClientSeed string `validate:"required"`
	Nonce      int    `validate:"min=0"`
}

type VerifyResponse struct {
	resp.Response
	ProvablyFairData
}

type Verifier struct {
	log       *slog.Logger
	validator *validator.Validate
}

func NewVerifier(log *slog.Logger) *Verifier {
	return &Verifier{
		log:       log,
		validator: validator.New(),
	}
}

func (v *Verifier) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.provably_fair.Verify"

		log := v.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		query := r.URL.Query()

		req := VerifyRequest{
			ServerSeed: query.Get("server_seed"),
			ClientSeed: query.Get("client_seed"),
		}

		if raw := query.Get("nonce"); raw != "" {
			nonce, err := strconv.Atoi(raw)
			if err != nil {
				log.Error("invalid nonce", sl.Err(err))

				resp.Fail(w, r, "nonce must be an integer", http.StatusBadRequest)

				return
			}
			req.Nonce = nonce
		}

		if err := v.validator.Struct(req); err != nil {
			log.Error("invalid request", sl.Err(err))

			resp.Invalid(w, r, err.(validator.ValidationErrors))

			return
		}

		resp.JSON(w, r, http.StatusOK, VerifyResponse{
			Response:         resp.OK(),
			ProvablyFairData: Compute(req.ServerSeed, req.ClientSeed, req.Nonce),
		})
	}
}
