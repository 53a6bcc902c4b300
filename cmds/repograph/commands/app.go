package commands

import (
	"context"
	"sync"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/pkg/logger"
	"github.com/gomantics/repograph/pkg/metrics"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Job is the body of a batch command.
type Job func(ctx context.Context) error

// jobResult carries the outcome of a job out of the fx app.
type jobResult struct {
	mu  sync.Mutex
	err error
}

func (r *jobResult) set(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *jobResult) get() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func baseOptions() fx.Option {
	return fx.Options(
		fx.Provide(
			logger.New,
			db.Provide,
			metrics.NewRegistry,
		),
		fx.Decorate(func(l *zap.Logger) *zap.Logger {
			return l.With(zap.String("service", "repograph"))
		}),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{
				Logger: l,
			}
		}),
	)
}

// runApp starts an fx app built from opts and blocks until it is shut down, either
// by a job finishing or by SIGINT/SIGTERM. It returns the job's error, if any.
func runApp(ctx context.Context, opts ...fx.Option) error {
	result := &jobResult{}

	app := fx.New(
		baseOptions(),
		fx.Supply(result),
		fx.Options(opts...),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	<-app.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		if jobErr := result.get(); jobErr != nil {
			return jobErr
		}
		return err
	}

	return result.get()
}

// startJob runs job in the background once the app has started and shuts the app
// down when it returns. Stopping the app first cancels the job and waits for it.
func startJob(lc fx.Lifecycle, shutdowner fx.Shutdowner, l *zap.Logger, result *jobResult, name string, job Job) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				l.Info("job started", zap.String("job", name))
				err := job(ctx)
				result.set(err)

				if err != nil {
					l.Error("job failed", zap.String("job", name), zap.Error(err))
				} else {
					l.Info("job finished", zap.String("job", name))
				}

				if err := shutdowner.Shutdown(fx.ExitCode(ExitCode(err))); err != nil {
					l.Warn("failed to request shutdown", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
