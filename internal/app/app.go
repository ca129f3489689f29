// Package app wires the backend together: database, state store, durable
// queue, connectivity monitor, sync coordinator and dispatcher.
package app

import (
	"context"

	"github.com/plantboard/backend/internal/config"
	"github.com/plantboard/backend/internal/connectivity"
	"github.com/plantboard/backend/internal/db"
	"github.com/plantboard/backend/internal/dispatch"
	"github.com/plantboard/backend/internal/errors"
	"github.com/plantboard/backend/internal/fixtures"
	"github.com/plantboard/backend/internal/logging"
	"github.com/plantboard/backend/internal/queue"
	"github.com/plantboard/backend/internal/remote"
	"github.com/plantboard/backend/internal/state"
	syncer "github.com/plantboard/backend/internal/sync"
)

// BootstrapSource records where the initial dataset came from.
type BootstrapSource string

const (
	SourceSnapshot BootstrapSource = "snapshot"
	SourceRemote   BootstrapSource = "remote"
	SourceFixtures BootstrapSource = "fixtures"
)

// App owns every long-lived component of the backend.
type App struct {
	Config      config.Config
	DB          *db.DB
	Store       *state.Store
	Queue       *queue.DurableQueue
	Monitor     *connectivity.Monitor
	Coordinator *syncer.Coordinator
	Dispatcher  *dispatch.Dispatcher
	Remote      remote.Service

	Source BootstrapSource

	log *logging.Logger
}

// New builds the application from cfg. The remote service may be injected
// for tests; pass nil to use the HTTP client against cfg.RemoteBaseURL.
func New(cfg config.Config, svc remote.Service, log *logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Get()
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "open database", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, errors.Wrap(errors.ErrDatabase, "migrate database", err)
	}
	repo := db.NewRepository(database.DB)

	store, err := state.NewStore(repo, log)
	if err != nil {
		database.Close()
		return nil, err
	}
	q, err := queue.NewDurableQueue(repo, log)
	if err != nil {
		database.Close()
		return nil, err
	}

	if svc == nil {
		svc = remote.NewClient(cfg.RemoteBaseURL, cfg.SyncTimeout, log)
	}

	monitor := connectivity.NewMonitor(true, connectivity.DefaultHealthConfig(), log)

	return &App{
		Config:      cfg,
		DB:          database,
		Store:       store,
		Queue:       q,
		Monitor:     monitor,
		Coordinator: syncer.NewCoordinator(q, monitor, svc, cfg.SyncTimeout, log),
		Dispatcher:  dispatch.NewDispatcher(store, q, log),
		Remote:      svc,
		log:         log,
	}, nil
}

// Bootstrap fills the store on first run. A persisted snapshot wins; next
// the remote service; as a last resort the bundled fixtures keep the app
// usable. The fallback is logged so it is never mistaken for real data.
func (a *App) Bootstrap(ctx context.Context) {
	if a.Store.Loaded() {
		a.Source = SourceSnapshot
		a.log.Info("bootstrap from persisted snapshot", nil)
		return
	}

	data, err := a.Remote.FetchAll(ctx)
	if err == nil {
		a.Store.Bootstrap(data)
		a.Source = SourceRemote
		a.log.Info("bootstrap from remote service", nil)
		return
	}

	a.log.Error("bootstrap fetch failed, falling back to bundled fixtures", err,
		logging.Fields{"code": errors.CodeOf(err)})
	a.Store.Bootstrap(fixtures.Dataset())
	a.Source = SourceFixtures
	a.Monitor.SetOnline(false)
}

// Start launches the background loops.
func (a *App) Start() {
	a.Monitor.Start()
	a.Coordinator.Start()
}

// Close stops the background loops and releases the database.
func (a *App) Close() error {
	a.Coordinator.Stop()
	a.Monitor.Stop()
	return a.DB.Close()
}
