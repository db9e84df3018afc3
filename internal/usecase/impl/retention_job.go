package impl

import (
	"context"
	"log/slog"
	"time"

	"vanguard/config"
	"vanguard/internal/domain/repository"

	"go.uber.org/fx"
)

const (
	defaultRetentionWindow   = 24 * time.Hour
	defaultRetentionInterval = 5 * time.Minute
)

// RetentionJob periodically removes accounts that never completed email
// verification, plus expired refresh tokens. Verified users are never
// touched regardless of age.
type RetentionJob struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	window    time.Duration
	interval  time.Duration
	logger    *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// RetentionJobParams holds dependencies for RetentionJob, injected by Fx.
type RetentionJobParams struct {
	fx.In
	fx.Lifecycle

	Config    *config.Config
	UserRepo  repository.UserRepository
	TokenRepo repository.RefreshTokenRepository
	Logger    *slog.Logger
}

// NewRetentionJob constructs the job and registers its start/stop hooks.
func NewRetentionJob(params RetentionJobParams) *RetentionJob {
	window := defaultRetentionWindow
	interval := defaultRetentionInterval
	if params.Config.Retention != nil {
		if params.Config.Retention.Window > 0 {
			window = params.Config.Retention.Window
		}
		if params.Config.Retention.Interval > 0 {
			interval = params.Config.Retention.Interval
		}
	}

	job := &RetentionJob{
		userRepo:  params.UserRepo,
		tokenRepo: params.TokenRepo,
		window:    window,
		interval:  interval,
		logger:    params.Logger,
		done:      make(chan struct{}),
	}

	params.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			runCtx, cancel := context.WithCancel(context.Background())
			job.cancel = cancel
			go job.run(runCtx)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			job.cancel()
			select {
			case <-job.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})

	return job
}

func (j *RetentionJob) run(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("Retention sweep started",
		slog.Duration("window", j.window),
		slog.Duration("interval", j.interval),
	)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Retention sweep stopped")

			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// sweep runs one cleanup pass. Failures are logged and retried on the next
// tick; the job never stops on error.
func (j *RetentionJob) sweep(ctx context.Context) {
	limit := time.Now().Add(-j.window)

	users, err := j.userRepo.DeleteUnverifiedCreatedBefore(ctx, limit)
	if err != nil {
		j.logger.Error("Retention sweep failed to delete unverified users",
			slog.String("error", err.Error()),
		)
	} else if users > 0 {
		j.logger.Info("Retention sweep removed unverified users", slog.Int64("count", users))
	}

	tokens, err := j.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("Retention sweep failed to delete expired refresh tokens",
			slog.String("error", err.Error()),
		)
	} else if tokens > 0 {
		j.logger.Info("Retention sweep removed expired refresh tokens", slog.Int64("count", tokens))
	}
}
