package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kbukum/gonogo/bootstrap"
	"github.com/kbukum/gonogo/experiment"
	"github.com/kbukum/gonogo/observability"
	"github.com/kbukum/gonogo/server"
	"github.com/kbukum/gonogo/store"

	// Store backends, selected by URI scheme.
	_ "github.com/kbukum/gonogo/store/mongo"
	_ "github.com/kbukum/gonogo/store/redis"
	_ "github.com/kbukum/gonogo/store/sqlite"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the experiment and store submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			app, err := newServeApp(cfg, afero.NewOsFs())
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}

// newServeApp wires the experiment service. Telemetry and the store start in
// the first phase, telemetry first so the connect is traced and the flush
// runs after everything else has stopped. The HTTP server is built in
// configure, once the handle's connectivity is known.
func newServeApp(cfg *Config, fsys afero.Fs, opts ...bootstrap.Option) (*bootstrap.App[*Config], error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}

	telemetry := observability.NewComponent(cfg.Observability, app.Name, app.Version)
	if err := app.RegisterComponent(telemetry); err != nil {
		return nil, err
	}

	storeComp := store.NewComponent(cfg.Store, app.Logger.WithComponent("store"))
	if err := app.RegisterComponent(storeComp); err != nil {
		return nil, err
	}

	app.OnConfigure(func(_ context.Context, a *bootstrap.App[*Config]) error {
		return configureHTTP(a, storeComp.Handle(), fsys)
	})

	return app, nil
}

func configureHTTP(app *bootstrap.App[*Config], h *store.Handle, fsys afero.Fs) error {
	cfg := app.Cfg

	metrics, err := observability.NewMetrics(observability.Meter(app.Name))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	params, err := experiment.BuildParams(fsys, cfg.Experiment, h)
	if err != nil {
		return err
	}
	svc := experiment.NewService(h, cfg.Experiment, metrics, app.Logger.WithComponent("experiment"))
	handler, err := experiment.NewHandler(svc, params, fsys, cfg.Experiment)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, app.Logger.WithComponent("server"))
	srv.ApplyMiddleware(metrics)
	srv.RegisterDefaultEndpoints(app.Name, app.Components.HealthAll)
	handler.Register(srv.Engine())

	return app.RegisterComponent(server.NewComponent(srv))
}
