package session

import (
	"context"
	"time"

	"golang.org/x/exp/slog"

	"game-empire/internal/http-server/handlers/job"
	"game-empire/internal/lib/logger/sl"
)

const expireTimeout = 10 * time.Second

// ExpireSessionJob expires an idle session, rescheduling itself while the
// session stays in use.
type ExpireSessionJob struct {
	Closer    *Closer
	Queue     *job.JobQueue
	SessionID string
	TTL       time.Duration
}

func (j *ExpireSessionJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), expireTimeout)
	defer cancel()

	expired, next, err := j.Closer.ExpireIfIdle(ctx, j.SessionID, j.TTL, time.Now())
	if err != nil {
		j.Closer.log.Error("failed to expire session", slog.String("session_id", j.SessionID), sl.Err(err))

		return
	}

	if !expired && next > 0 && j.Queue != nil {
		j.Queue.Dispatch(j, next)
	}
}
