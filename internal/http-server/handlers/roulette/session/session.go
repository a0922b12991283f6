package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/model"
	resp "game-empire/internal/lib/api/response"
	"game-empire/internal/lib/logger/sl"
	"game-empire/internal/repository"
)

type Finder interface {
	FindSessionByID(ctx context.Context, id string) (*model.RouletteSession, error)
}

// Lookup returns the session when it belongs to userID. Foreign sessions are
// reported as not found.
func Lookup(ctx context.Context, sessions Finder, sessionID string, userID int64) (*model.RouletteSession, error) {
	const op = "handlers.roulette.session.Lookup"

	session, err := sessions.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrSessionNotFound)
	}

	return session, nil
}

// LookupActive is Lookup that also requires the session to be active.
func LookupActive(ctx context.Context, sessions Finder, sessionID string, userID int64) (*model.RouletteSession, error) {
	session, err := Lookup(ctx, sessions, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status != config.SessionActive {
		return nil, fmt.Errorf("handlers.roulette.session.LookupActive: %w", repository.ErrSessionNotActive)
	}

	return session, nil
}

// Fail maps session errors onto the reply; anything else is a 500 with msg.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		log.Info("session not found", sl.Err(err))

		resp.Fail(w, r, "session not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrSessionNotActive):
		log.Info("session not active", sl.Err(err))

		resp.Fail(w, r, "session is not active", http.StatusConflict)
	default:
		log.Error(msg, sl.Err(err))

		resp.Fail(w, r, msg, http.StatusInternalServerError)
	}
}
