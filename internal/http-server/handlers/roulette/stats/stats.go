package stats

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"

	"game-empire/internal/http-server/middleware/auth"
	"game-empire/internal/http-server/model"
	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/converter"
	"game-empire/internal/lib/logger/sl"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

type Response struct {
	resp.Response
	TotalGames int64   `json:"total_games"`
	TotalBet   float64 `json:"total_bet"`
	TotalWin   float64 `json:"total_win"`
	NetProfit  float64 `json:"net_profit"`
	WinRate    float64 `json:"win_rate"`
	AvgBet     float64 `json:"avg_bet"`
}

type Getter interface {
	GetStats(ctx context.Context, userID int64) (*model.RouletteStats, error)
}

// Stats serves per-user aggregates, cached until Invalidate is called for the user.
type Stats struct {
	log   *slog.Logger
	repo  Getter
	cache *cache.Cache

	mu       sync.Mutex
	versions map[int64]uint64
}

func NewStats(log *slog.Logger, repo Getter) *Stats {
	return &Stats{
		log:      log,
		repo:     repo,
		cache:    cache.New(cacheTTL, cacheCleanup),
		versions: make(map[int64]uint64),
	}
}

func (s *Stats) Invalidate(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.versions[userID]++
	s.cache.Delete(cacheKey(userID))
}

func (s *Stats) Get(ctx context.Context, userID int64) (Response, error) {
	if cached, found := s.cache.Get(cacheKey(userID)); found {
		return cached.(Response), nil
	}

	s.mu.Lock()
	version := s.versions[userID]
	s.mu.Unlock()

	st, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		return Response{}, err
	}

	res := build(*st)

	// an Invalidate during the read means st may predate the spin
	s.mu.Lock()
	if s.versions[userID] == version {
		s.cache.Set(cacheKey(userID), res, cache.DefaultExpiration)
	}
	s.mu.Unlock()

	return res, nil
}

func (s *Stats) New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.roulette.stats.New"

		log := s.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			resp.Fail(w, r, "unauthorized", http.StatusUnauthorized)

			return
		}

		res, err := s.Get(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to get stats", sl.Err(err))

			resp.Fail(w, r, "failed to get stats", http.StatusInternalServerError)

			return
		}

		resp.JSON(w, r, http.StatusOK, res)
	}
}

func build(st model.RouletteStats) Response {
	res := Response{
		Response:   resp.OK(),
		TotalGames: st.TotalGames,
		TotalBet:   converter.ConvertAmountIntToFloat(st.TotalBet),
		TotalWin:   converter.ConvertAmountIntToFloat(st.TotalWin),
		NetProfit:  converter.ConvertAmountIntToFloat(st.TotalWin - st.TotalBet),
	}

	if st.TotalBet > 0 {
		res.WinRate = decimal.NewFromInt(st.TotalWin).
			DivRound(decimal.NewFromInt(st.TotalBet), 4).
			InexactFloat64()
	}

	if st.TotalGames > 0 {
		res.AvgBet = decimal.New(st.TotalBet, -2).
			DivRound(decimal.NewFromInt(st.TotalGames), 2).
			InexactFloat64()
	}

	return res
}

func cacheKey(userID int64) string {
	return "stats:" + strconv.FormatInt(userID, 10)
}
