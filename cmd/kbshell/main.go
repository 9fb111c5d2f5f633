package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iyunix/go-kbshell/internal/azurefn"
	"github.com/iyunix/go-kbshell/internal/backend"
	"github.com/iyunix/go-kbshell/internal/config"
	"github.com/iyunix/go-kbshell/internal/history"
	"github.com/iyunix/go-kbshell/internal/hydration"
	"github.com/iyunix/go-kbshell/internal/logging"
)

const version = "0.3.0"

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "kbshell",
		Short:         "Knowledge-base web shell and its local tooling",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return errors.Wrap(err, "loading configuration")
			}
			a.cfg = cfg
			a.logger = logging.NewLoggerTo(cmd.ErrOrStderr(), "kbshell", cfg.LogLevel, cfg.IsProduction())
			return nil
		},
	}

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newDataCmd(a))
	root.AddCommand(newDevTokenCmd(a))
	root.AddCommand(newDiagnoseCmd(a))
	return root
}

// openStore opens the SQLite-backed history. The returned func closes it.
func (a *app) openStore() (*history.Store, func() error, error) {
	storage, err := history.OpenSQLiteStorage(a.cfg.HistoryDBPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening history database %s", a.cfg.HistoryDBPath)
	}
	return history.NewStore(storage, a.logger), storage.Close, nil
}

func (a *app) docsClient() (*azurefn.Client, error) {
	fnCfg := azurefn.DefaultConfig()
	fnCfg.BaseURL = a.cfg.AzureFunctionURL
	fnCfg.Key = a.cfg.AzureFunctionKey
	if a.cfg.AzureFunctionTimeout > 0 {
		fnCfg.Timeout = a.cfg.AzureFunctionTimeout
	}
	client, err := azurefn.NewClient(fnCfg, a.logger)
	if err != nil {
		return nil, errors.Wrap(err, "configuring ingestion client")
	}
	return client, nil
}

func (a *app) backendClient() *backend.Client {
	return backend.NewClient(a.cfg.BackendURL, a.cfg.AzureFunctionTimeout, a.logger)
}

// formatter is ready from the start: a terminal has no pre-render to match.
func (a *app) formatter() (*hydration.DateFormatter, error) {
	f, err := hydration.NewDateFormatter(hydration.NewReadyGate(), a.cfg.UILocale, hydration.FormatOptions{
		DateStyle: hydration.StyleMedium,
		TimeStyle: hydration.StyleShort,
		Location:  a.cfg.Location(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "configuring date formatter")
	}
	return f, nil
}

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
