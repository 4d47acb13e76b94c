// Package app assembles the watcher: store, API client, hold and watchlist
// managers, and the event stream, with one Run loop owning startup and
// graceful shutdown.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"seatwatch/internal/api"
	"seatwatch/internal/holds"
	"seatwatch/internal/intel"
	"seatwatch/internal/store"
	"seatwatch/internal/stream"
	"seatwatch/internal/watchlist"
	"seatwatch/pkg/config"
	"seatwatch/pkg/model"
)

type Application struct {
	cfg      *config.Config
	store    *store.Store
	client   *api.Client
	holds    *holds.Manager
	watch    *watchlist.Manager
	intel    *intel.Service
	streamer *stream.Client
}

func New(cfg *config.Config) *Application {
	a := &Application{
		cfg:    cfg,
		store:  store.New(cfg.Log),
		client: api.New(cfg.APIBaseURL, cfg.RequestTimeout, cfg.Log),
	}
	a.holds = holds.New(a.store, a.client, cfg.HoldTTL, cfg.TickInterval, cfg.Log)
	a.watch = watchlist.New(a.store, a.client, cfg.UserEmail, cfg.Log)
	a.intel = intel.New(a.store, a.client, cfg.Log)
	a.streamer = stream.New(stream.Options{
		URL:            cfg.StreamURL(),
		Token:          a.client.Token,
		Reconnect:      cfg.StreamReconnect,
		BackoffInitial: cfg.StreamBackoffInitial,
		BackoffMax:     cfg.StreamBackoffMax,
		Log:            cfg.Log,
	})

	a.streamer.OnStateChange(func(s stream.State) {
		a.store.SetStreamState(s.String())
		cfg.Log.Info("Stream state changed", "state", s.String())
	})
	a.streamer.Subscribe(func(ev model.StreamEvent) {
		a.holds.HandleEvent(ev)
		cfg.Log.Info("Stream event",
			"type", ev.EventType,
			"section_id", ev.SectionID,
		)
	})
	return a
}

// Store exposes the shared state, e.g. for a UI layer built on top.
func (a *Application) Store() *store.Store { return a.store }

// Start signs in, loads the catalog and confirmed registrations, then brings
// up the stream and the hold expiry loop.
func (a *Application) Start(ctx context.Context) error {
	user, err := a.client.Login(ctx, a.cfg.UserID, a.cfg.UserEmail)
	if err != nil {
		return err
	}
	a.store.SetUser(user)

	sections, err := a.client.ListSections(ctx)
	if err != nil {
		return err
	}
	if err := a.store.SetSections("", sections); err != nil {
		a.cfg.Log.Warn("Catalog load dropped", "error", err)
	}
	a.cfg.Log.Info("Catalog loaded", "sections", len(sections))

	if err := a.watch.RefreshNotifications(ctx); err != nil {
		a.cfg.Log.Warn("Could not refresh notification registrations", "error", err)
	}

	a.streamer.Connect(ctx)
	a.holds.Start(ctx)
	return nil
}

// Run starts the watcher and blocks until an interrupt or termination
// signal, then shuts down in reverse order.
func (a *Application) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		a.cfg.Log.Fatal("Startup failed", "error", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	a.cfg.Log.Info("Shutdown signal received", "signal", sig)

	a.gracefulShutdown()
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	a.streamer.Disconnect()
	a.holds.Stop()
	if err := a.client.Logout(context.Background()); err != nil {
		a.cfg.Log.Warn("Logout failed", "error", err)
	}

	a.cfg.Log.Info("Watcher stopped")
}
