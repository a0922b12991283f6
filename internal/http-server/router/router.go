package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/http-server/handlers/games"
	"game-empire/internal/http-server/handlers/job"
	"game-empire/internal/http-server/handlers/provably_fair"
	place_bet "game-empire/internal/http-server/handlers/roulette/bet/save"
	"game-empire/internal/http-server/handlers/roulette/history"
	"game-empire/internal/http-server/handlers/roulette/session"
	"game-empire/internal/http-server/handlers/roulette/spin"
	"game-empire/internal/http-server/handlers/roulette/stats"
	"game-empire/internal/http-server/handlers/user/balance"
	"game-empire/internal/http-server/handlers/user/create"
	"game-empire/internal/http-server/middleware/auth"
	"game-empire/internal/http-server/middleware/logger"
	"game-empire/internal/repository"
	"game-empire/internal/storage/sqlstore"
)

type Router struct {
	Handler http.Handler
	Closer  *session.Closer
}

// New wires repositories and handlers into the /api/v1 router.
func New(
	log *slog.Logger,
	cfg *config.Config,
	store *sqlstore.Handler,
	publisher event.Publisher,
	queue *job.JobQueue,
) *Router {
	rouletteRepo := repository.NewRouletteRepository(store)
	betRepo := repository.NewBetRepository(store)
	userRepo := repository.NewUserRepository(store)
	provablyFairRepo := repository.NewProvablyFairRepository(store)

	userBalance := balance.NewBalance(log, publisher, queue)
	provablyFair := provably_fair.NewProvablyFair(log)
	rouletteStats := stats.NewStats(log, rouletteRepo)
	closer := session.NewCloser(log, store, rouletteRepo, betRepo, userRepo, userBalance)

	createUser := create.NewCreate(log, userRepo, cfg.Users.SignupBalance)
	getBalance := balance.NewGet(log, userRepo)
	createSession := session.NewCreate(log, cfg.Roulette, rouletteRepo, userRepo, closer, queue)
	closeSession := session.NewClose(log, closer, rouletteRepo, userRepo)
	betSave := place_bet.NewBet(log, cfg.Roulette, store, rouletteRepo, betRepo, userRepo, userBalance)
	spinRoulette := spin.NewSpin(
		log, cfg.Roulette, store,
		rouletteRepo, betRepo, userRepo, provablyFairRepo,
		provablyFair, userBalance, rouletteStats, publisher, queue,
	)
	rouletteHistory := history.NewHistory(log, rouletteRepo)
	verifier := provably_fair.NewVerifier(log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", createUser.New())
		r.Get("/games", games.New())
		r.Get("/provably-fair/verify", verifier.New())

		r.Group(func(r chi.Router) {
			r.Use(auth.New(log, userRepo, cfg.Users.Header))

			r.Get("/users/me/balance", getBalance.New())

			r.Route("/games/roulette", func(r chi.Router) {
				r.Post("/create-session", createSession.New())
				r.Get("/history", rouletteHistory.New())
				r.Get("/stats", rouletteStats.New())
				r.Post("/{session_id}/bet", betSave.New())
				r.Post("/{session_id}/spin", spinRoulette.New())
				r.Post("/{session_id}/close", closeSession.New())
			})
		})
	})

	return &Router{
		Handler: router,
		Closer:  closer,
	}
}
