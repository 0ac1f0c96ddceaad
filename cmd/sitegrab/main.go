package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"sitegrab-cli/cmd/sitegrab/cmd"
	"sitegrab-cli/config"
	"sitegrab-cli/internal/api"
	"sitegrab-cli/internal/browser"
	"sitegrab-cli/internal/history"
	"sitegrab-cli/internal/logs"
	"sitegrab-cli/internal/session"
)

func newBrowserManager(client *api.Client, store *session.Store, logger *zap.SugaredLogger) *browser.Manager {
	return browser.NewManager(client, store, logger)
}

func main() {
	var deps cmd.Deps

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.NewViper,
			config.NewConfig,
			logs.NewLogger,
			logs.NewSugaredLogger,
			api.NewClient,
			session.NewStore,
			newBrowserManager,
			history.NewOpener,
		),
		fx.Invoke(logs.RegisterLifecycle),
		fx.Populate(&deps),
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	code := cmd.Execute(deps)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	os.Exit(code)
}
