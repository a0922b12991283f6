package job

import (
	"golang.org/x/exp/slog"

	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/lib/logger/sl"
)

type SendEventJob struct {
	EventMessage event.Message
	Event        event.Publisher
	Log          *slog.Logger
}

func (job *SendEventJob) Execute() {
	err := job.Event.TriggerEvent(job.EventMessage)
	if err != nil && job.Log != nil {
		job.Log.Error("failed to send event",
			slog.String("channel", job.EventMessage.Channel),
			slog.String("event", job.EventMessage.Event),
			sl.Err(err),
		)
	}
}
