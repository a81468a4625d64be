// Package bootstrap runs a service through its lifecycle: typed config
// validation, logger setup, ordered component start, configure callbacks,
// startup summary, signal wait and graceful shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(storeComponent)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    return a.RegisterComponent(serverComponent)
//	})
//	err = app.Run(ctx)
//
// Components registered during configure are started right after it, so
// infrastructure is up before the business layer is wired and the HTTP
// server only starts once routes exist.
package bootstrap
