// Package roulette holds the single-zero wheel layout, bet validation and
// settlement rules.
package roulette

import (
	"errors"
	"fmt"
	"sort"

	"game-empire/internal/config"
)

const (
	MinNumber = 0
	MaxNumber = 36
	Pockets   = MaxNumber + 1
)

var redNumbers = map[int]struct{}{
	1: {}, 3: {}, 5: {}, 7: {}, 9: {}, 12: {}, 14: {}, 16: {}, 18: {},
	19: {}, 21: {}, 23: {}, 25: {}, 27: {}, 30: {}, 32: {}, 34: {}, 36: {},
}

var ErrInvalidNumbers = errors.New("invalid numbers for bet type")

// ColorOf returns the pocket color of n.
func ColorOf(n int) config.Color {
	if n == 0 {
		return config.Green
	}
	if _, ok := redNumbers[n]; ok {
		return config.Red
	}

	return config.Black
}

// Odds returns the x:1 payout odds of a bet type, zero for unknown types.
func Odds(betType config.BetType) int {
	return config.RouletteWheelConfig.Odds[betType]
}

func IsBetType(betType config.BetType) bool {
	_, ok := config.RouletteWheelConfig.Odds[betType]

	return ok
}

// ValidateNumbers checks that numbers describe a legal placement for betType.
// The returned slice is sorted.
func ValidateNumbers(betType config.BetType, numbers []int) ([]int, error) {
	const op = "roulette.ValidateNumbers"

	if !IsBetType(betType) {
		return nil, fmt.Errorf("%s: unknown bet type %q", op, betType)
	}

	sorted := make([]int, len(numbers))
	copy(sorted, numbers)
	sort.Ints(sorted)

	var ok bool

	switch betType {
	case config.Straight:
		ok = len(sorted) == 1 && inRange(sorted[0])
	case config.Split:
		ok = len(sorted) == 2 && isSplit(sorted[0], sorted[1])
	case config.Street:
		ok = len(sorted) == 3 && isRowRun(sorted, 1)
	case config.Corner:
		ok = len(sorted) == 4 && isCorner(sorted)
	case config.Line:
		ok = len(sorted) == 6 && isRowRun(sorted, 2)
	case config.Column, config.Dozen:
		ok = len(sorted) == 1 && sorted[0] >= 1 && sorted[0] <= 3
	default:
		ok = len(sorted) == 0
	}

	if !ok {
		return nil, fmt.Errorf("%s: %w: %s %v", op, ErrInvalidNumbers, betType, numbers)
	}

	return sorted, nil
}

// Wins reports whether a bet covering numbers wins when result comes up.
func Wins(betType config.BetType, numbers []int, result int) bool {
	switch betType {
	case config.Straight, config.Split, config.Street, config.Corner, config.Line:
		for _, n := range numbers {
			if n == result {
				return true
			}
		}

		return false
	}

	if result == 0 {
		return false
	}

	switch betType {
	case config.Column:
		return len(numbers) == 1 && (result-1)%3 == numbers[0]-1
	case config.Dozen:
		return len(numbers) == 1 && (result-1)/12 == numbers[0]-1
	case config.RedBet:
		return ColorOf(result) == config.Red
	case config.BlackBet:
		return ColorOf(result) == config.Black
	case config.Odd:
		return result%2 == 1
	case config.Even:
		return result%2 == 0
	case config.High:
		return result >= 19
	case config.Low:
		return result <= 18
	}

	return false
}

// Payout is what a bet returns when result comes up. The stake is debited at
// placement, so a win returns the stake plus odds times the stake.
func Payout(betType config.BetType, numbers []int, amount int64, result int) int64 {
	if !Wins(betType, numbers, result) {
		return 0
	}

	return amount * int64(Odds(betType)+1)
}

func inRange(n int) bool {
	return n >= MinNumber && n <= MaxNumber
}

// row returns the 0-based layout row of n (1-3 is row 0); zero has no row.
func row(n int) int {
	return (n - 1) / 3
}

func isSplit(a, b int) bool {
	if !inRange(a) || !inRange(b) || a == b {
		return false
	}
	if a == 0 {
		return b >= 1 && b <= 3
	}
	if b-a == 3 {
		return true
	}

	return b-a == 1 && row(a) == row(b)
}

// isRowRun checks for rows consecutive full layout rows starting at a row head.
func isRowRun(sorted []int, rows int) bool {
	first := sorted[0]
	if first < 1 || (first-1)%3 != 0 || row(first)+rows > 12 {
		return false
	}
	for i, n := range sorted {
		if n != first+i {
			return false
		}
	}

	return true
}

func isCorner(sorted []int) bool {
	first := sorted[0]
	if first < 1 || first%3 == 0 || first > 32 {
		return false
	}

	want := []int{first, first + 1, first + 3, first + 4}
	for i := range want {
		if sorted[i] != want[i] {
			return false
		}
	}

	return true
}
