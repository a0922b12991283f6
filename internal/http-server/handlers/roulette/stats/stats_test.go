package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-empire/internal/http-server/model"
	"game-empire/internal/lib/logger/handler/slogdiscard"
)

type countingGetter struct {
	calls  int
	stats  model.RouletteStats
	during func()
}

func (g *countingGetter) GetStats(_ context.Context, _ int64) (*model.RouletteStats, error) {
	g.calls++

	if g.during != nil {
		g.during()
	}

	st := g.stats

	return &st, nil
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		stats model.RouletteStats
		want  Response
	}{
		{
			name: "empty",
			want: Response{},
		},
		{
			name:  "winning",
			stats: model.RouletteStats{TotalGames: 2, TotalBet: 1000, TotalWin: 3600},
			want:  Response{TotalGames: 2, TotalBet: 10, TotalWin: 36, NetProfit: 26, WinRate: 3.6, AvgBet: 5},
		},
		{
			name:  "losing",
			stats: model.RouletteStats{TotalGames: 3, TotalBet: 1000, TotalWin: 0},
			want:  Response{TotalGames: 3, TotalBet: 10, NetProfit: -10, AvgBet: 3.33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(tt.stats)

			assert.Equal(t, tt.want.TotalGames, got.TotalGames)
			assert.InDelta(t, tt.want.TotalBet, got.TotalBet, 1e-9)
			assert.InDelta(t, tt.want.TotalWin, got.TotalWin, 1e-9)
			assert.InDelta(t, tt.want.NetProfit, got.NetProfit, 1e-9)
			assert.InDelta(t, tt.want.WinRate, got.WinRate, 1e-9)
			assert.InDelta(t, tt.want.AvgBet, got.AvgBet, 1e-9)
		})
	}
}

func TestGetIsCachedUntilInvalidated(t *testing.T) {
	getter := &countingGetter{stats: model.RouletteStats{TotalGames: 1, TotalBet: 100}}
	s := NewStats(slogdiscard.NewDiscardLogger(), getter)

	_, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	_, err = s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, getter.calls)

	s.Invalidate(1)
	getter.stats.TotalGames = 2

	res, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, getter.calls)
	assert.Equal(t, int64(2), res.TotalGames)
}

func TestGetDoesNotCacheAcrossInvalidate(t *testing.T) {
	getter := &countingGetter{stats: model.RouletteStats{TotalGames: 1, TotalBet: 100}}
	s := NewStats(slogdiscard.NewDiscardLogger(), getter)

	getter.during = func() {
		getter.during = nil
		s.Invalidate(1)
	}

	res, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TotalGames)

	getter.stats.TotalGames = 2

	res, err = s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, getter.calls)
	assert.Equal(t, int64(2), res.TotalGames)
}
