// Package app wires the persistence service's components together:
// connection pool, repositories, the persister, the worker pool, and
// the job monitor. Grounded in the teacher's dependency-construction
// style (modules/bichat/services.NewTitleJobWorker's config-struct
// wiring, cmd/server/main.go's pgxpool.New + signal-driven shutdown).
package app

import (
	"context"
	"time"

	"github.com/iota-uz/persistsvc/internal/config"
	"github.com/iota-uz/persistsvc/internal/domain/job"
	"github.com/iota-uz/persistsvc/internal/infrastructure/persistence"
	"github.com/iota-uz/persistsvc/internal/pidfile"
	"github.com/iota-uz/persistsvc/internal/service/monitor"
	"github.com/iota-uz/persistsvc/internal/service/persister"
	"github.com/iota-uz/persistsvc/internal/service/workerpool"
	"github.com/iota-uz/persistsvc/internal/zkregistry"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// queueCapacity bounds the worker pool's job-id channel. spec.md
// describes the queue as unbounded; a large fixed buffer approximates
// that without letting a single pathological backlog grow forever.
const queueCapacity = 4096

// App owns every long-lived component started by `persistsvc serve`.
type App struct {
	log      *logrus.Logger
	connPool *pgxpool.Pool
	pidFile  *pidfile.PidFile
	registry *zkregistry.Registry

	monitor *monitor.Monitor
	workers *workerpool.Pool
}

// New connects to Postgres and wires every repository, the persister,
// the worker pool, and the monitor from cfg.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseConnection)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create connection pool")
	}

	pidFile, err := pidfile.Acquire(cfg.ServicePidFile)
	if err != nil {
		pool.Close()
		return nil, err
	}

	registry := zkregistry.New(cfg.ZookeeperHosts, log)

	jobs := persistence.NewJobRepository()
	txRunner := persistence.NewTxRunner(pool)

	p := persister.New(persister.Deps{
		Jobs:              jobs,
		Topics:            persistence.NewTopicRepository(),
		Messages:          persistence.NewMessageRepository(),
		Models:            persistence.NewModelWriter(),
		Archive:           persistence.NewArchiveStore(),
		Highlights:        persistence.NewHighlightRepository(),
		Tx:                txRunner,
		ServiceIdentity:   job.ServiceIdentity,
		SpeakingThreshold: cfg.SpeakingMarkerThreshold,
		Now:               time.Now,
	}, log)

	workers := workerpool.New(cfg.PersisterThreads, queueCapacity, p, log)
	mon := monitor.New(jobs, workers, txRunner, cfg.PersisterPollInterval, log)

	return &App{
		log:      log,
		connPool: pool,
		pidFile:  pidFile,
		registry: registry,
		monitor:  mon,
		workers:  workers,
	}, nil
}

// Start launches the worker pool and the monitor and registers with
// the configured zookeeper ensemble (spec.md §6 process lifecycle).
func (a *App) Start() {
	a.workers.Start()
	a.monitor.Start()
	a.registry.Register(job.ServiceIdentity)
}

// Shutdown stops the monitor (so no new jobs are enqueued), then waits
// for the worker pool to drain, both bounded by ctx's deadline
// (spec.md §9 "Join timeout on shutdown").
func (a *App) Shutdown(ctx context.Context) error {
	a.registry.Deregister(job.ServiceIdentity)

	if err := a.monitor.Shutdown(ctx); err != nil {
		a.log.WithError(err).Warn("monitor did not stop within deadline")
	}
	if err := a.workers.Shutdown(ctx); err != nil {
		a.log.WithError(err).Warn("worker pool did not drain within deadline")
	}

	a.connPool.Close()

	if err := a.pidFile.Release(); err != nil {
		return err
	}
	return nil
}
