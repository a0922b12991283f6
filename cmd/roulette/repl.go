package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"game-empire/internal/client"
	"game-empire/internal/config"
)

const help = `commands:
  session                  create a new session
  type <bet_type> [n ...]  select bet type (red black odd even high low straight split ...)
  amount <n>               set the wager, clamped to [1, 10000]
  bet                      place the selected bet
  spin [client_seed]       spin the wheel
  history                  show recent results
  stats                    show totals
  help                     show this text
  quit                     leave`

type repl struct {
	table *client.Table
	out   io.Writer
}

func newREPL(table *client.Table, out io.Writer) *repl {
	return &repl{table: table, out: out}
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(r.out, help)

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(r.out, "> ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		if quit := r.execute(ctx, scanner.Text()); quit {
			return nil
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// execute runs one command line and reports whether the user asked to quit.
func (r *repl) execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(r.out, help)
	case "session":
		session, err := r.table.CreateSession(ctx)
		if r.fail(err) {
			return false
		}

		fmt.Fprintf(r.out, "session %s (%s wheel, bets %.2f-%.2f), balance %.2f\n",
			session.SessionID, session.Config.WheelType, session.Config.MinBet, session.Config.MaxBet, session.Balance)
	case "type":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: type <bet_type> [numbers...]")

			return false
		}

		numbers, err := parseNumbers(fields[2:])
		if r.fail(err) {
			return false
		}

		if r.fail(r.table.SetBetType(config.BetType(strings.ToLower(fields[1])), numbers...)) {
			return false
		}

		fmt.Fprintf(r.out, "bet type %s\n", r.table.BetType())
	case "amount":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "usage: amount <n>")

			return false
		}

		n, err := strconv.Atoi(fields[1])
		if r.fail(err) {
			return false
		}

		fmt.Fprintf(r.out, "amount %d\n", r.table.SetAmount(n))
	case "bet":
		bet, err := r.table.PlaceBet(ctx)
		if r.fail(err) {
			return false
		}

		fmt.Fprintf(r.out, "bet %s: %s %.2f %v, balance %.2f\n",
			bet.BetID, bet.BetType, bet.Amount, bet.Numbers, bet.NewBalance)
	case "spin":
		var req client.SpinRequest
		if len(fields) > 1 {
			req.ClientSeed = fields[1]
		}

		result, err := r.table.Spin(ctx, req)
		if result == nil && r.fail(err) {
			return false
		}

		fmt.Fprintf(r.out, "round %d: %d %s, bet %.2f, payout %.2f, balance %.2f\n",
			result.Round, result.ResultNumber, result.Color, result.TotalBet, result.TotalPayout, result.NewBalance)
		for _, w := range result.Winners {
			fmt.Fprintf(r.out, "  won %.2f on %s\n", w.WinAmount, w.BetType)
		}

		r.fail(err)
	case "history":
		if r.fail(r.table.RefreshHistory(ctx)) {
			return false
		}

		history := r.table.History()
		if len(history) == 0 {
			fmt.Fprintln(r.out, "no results yet")
		}
		for _, h := range history {
			fmt.Fprintf(r.out, "round %d: %d %s, payout %.2f\n", h.Round, h.ResultNumber, h.Color, h.TotalPayout)
		}
	case "stats":
		stats, err := r.table.Stats(ctx)
		if r.fail(err) {
			return false
		}

		fmt.Fprintf(r.out, "games %d, bet %.2f, won %.2f, net %.2f\n",
			stats.TotalGames, stats.TotalBet, stats.TotalWin, stats.NetProfit)
	default:
		fmt.Fprintf(r.out, "unknown command %q, try help\n", fields[0])
	}

	return false
}

func (r *repl) fail(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		fmt.Fprintf(r.out, "error: %s\n", apiErr.Message)

		return true
	}

	fmt.Fprintf(r.out, "error: %v\n", err)

	return true
}

func parseNumbers(raw []string) ([]int, error) {
	numbers := make([]int, 0, len(raw))

	for _, field := range raw {
		for _, part := range strings.Split(field, ",") {
			if part == "" {
				continue
			}

			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q", part)
			}

			numbers = append(numbers, n)
		}
	}

	return numbers, nil
}
