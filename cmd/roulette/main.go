package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/exp/slog"

	"game-empire/internal/client"
	"game-empire/internal/lib/logger/handler/slogpretty"
	"game-empire/internal/lib/logger/sl"
)

func main() {
	var (
		addr    string
		user    string
		timeout time.Duration
	)

	flag.StringVar(&addr, "addr", "http://localhost:8082", "game-session API base url")
	flag.StringVar(&user, "user", os.Getenv("GAME_USER_UUID"), "player uuid; a new player is created when empty")
	flag.DurationVar(&timeout, "timeout", client.DefaultTimeout, "per-request timeout")
	flag.Parse()

	log := setupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(addr, client.WithUser(user), client.WithTimeout(timeout))

	if c.User() == "" {
		created, err := c.CreateUser(ctx)
		if err != nil {
			log.Error("Failed to create player", slog.String("addr", addr), sl.Err(err))
			os.Exit(1)
		}

		fmt.Printf("player %s created with balance %.2f\n", created.UserUUID, created.Balance)
	}

	r := newREPL(client.NewTable(c), os.Stdout)
	if err := r.run(ctx, os.Stdin); err != nil {
		log.Error("Session ended with error", sl.Err(err))
		os.Exit(1)
	}
}

// setupLogger writes to stderr so log lines stay out of the table output.
func setupLogger() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}

	return slog.New(opts.NewPrettyHandler(os.Stderr))
}
