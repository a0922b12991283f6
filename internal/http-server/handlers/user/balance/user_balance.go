package balance

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"game-empire/internal/config"
	"game-empire/internal/http-server/handlers/event"
	"game-empire/internal/http-server/handlers/job"
	"game-empire/internal/lib/converter"
	"game-empire/internal/lib/logger/sl"
	"game-empire/internal/repository"
)

type Balance struct {
	log       *slog.Logger
	publisher event.Publisher
	queue     *job.JobQueue
}

// Interface moves money through a repository that is usually bound to a
// transaction. The returned message is published with Publish once the
// transaction commits.
type Interface interface {
	Income(ctx context.Context, userRep *repository.UserRepository, userID, amount int64, game config.Game) (event.Message, error)
	Outcome(ctx context.Context, userRep *repository.UserRepository, userID, amount int64, game config.Game) (event.Message, error)
	Refund(ctx context.Context, userRep *repository.UserRepository, userID, amount int64, game config.Game) (event.Message, error)
	Publish(messages ...event.Message)
}

func NewBalance(log *slog.Logger, publisher event.Publisher, queue *job.JobQueue) *Balance {
	return &Balance{
		log:       log,
		publisher: publisher,
		queue:     queue,
	}
}

func (b *Balance) Income(
	ctx context.Context,
	userRep *repository.UserRepository,
	userID, amount int64,
	game config.Game,
) (event.Message, error) {
	const op = "handlers.user.balance.Income"

	if err := userRep.IncomeToUserBalance(ctx, userID, amount); err != nil {
		b.log.Error("failed to income to user balance", sl.Err(err))

		return event.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return b.record(ctx, op, userRep, userID, amount, config.Income, game)
}

func (b *Balance) Outcome(
	ctx context.Context,
	userRep *repository.UserRepository,
	userID, amount int64,
	game config.Game,
) (event.Message, error) {
	const op = "handlers.user.balance.Outcome"

	if err := userRep.OutcomeFromUserBalance(ctx, userID, amount); err != nil {
		b.log.Info("failed to outcome from user balance", sl.Err(err))

		return event.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return b.record(ctx, op, userRep, userID, amount, config.Outcome, game)
}

func (b *Balance) Refund(
	ctx context.Context,
	userRep *repository.UserRepository,
	userID, amount int64,
	game config.Game,
) (event.Message, error) {
	const op = "handlers.user.balance.Refund"

	if err := userRep.IncomeToUserBalance(ctx, userID, amount); err != nil {
		b.log.Error("failed to refund to user balance", sl.Err(err))

		return event.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return b.record(ctx, op, userRep, userID, amount, config.Refund, game)
}

func (b *Balance) record(
	ctx context.Context,
	op string,
	userRep *repository.UserRepository,
	userID, amount int64,
	balanceType config.BalanceType,
	game config.Game,
) (event.Message, error) {
	if err := userRep.CreateUserBalanceTransaction(ctx, userID, amount, balanceType, game); err != nil {
		b.log.Error("failed to create user balance transaction", sl.Err(err))

		return event.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := userRep.GetUserByID(ctx, userID)
	if err != nil {
		b.log.Error("failed to find user by id", sl.Err(err))

		return event.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	userBalance, err := userRep.FindUserBalanceByID(ctx, user.ID)
	if err != nil {
		b.log.Error("failed to find user balance by id", sl.Err(err))

		return event.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return event.Message{
		Channel: event.ChannelBalance,
		Event:   eventName(balanceType),
		Data: map[string]interface{}{
			"user_uuid":      user.UUID.String(),
			"amount":         converter.ConvertAmountIntToString(amount),
			"operation_type": balanceType,
			"module":         game,
			"balance":        converter.ConvertAmountIntToString(userBalance.Balance),
		},
	}, nil
}

// Publish sends messages through the job queue, or directly when no queue is set.
func (b *Balance) Publish(messages ...event.Message) {
	for _, m := range messages {
		sendJob := &job.SendEventJob{EventMessage: m, Event: b.publisher, Log: b.log}

		if b.queue == nil {
			sendJob.Execute()

			continue
		}

		b.queue.Dispatch(sendJob, 0)
	}
}

func eventName(balanceType config.BalanceType) string {
	switch balanceType {
	case config.Income:
		return event.EventIncome
	case config.Outcome:
		return event.EventOutcome
	default:
		return event.EventRefund
	}
}
