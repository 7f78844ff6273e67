package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicer/internal/config"
	"invoicer/internal/logger"
	"invoicer/internal/repository"
	"invoicer/internal/storage"
)

var version = "1.0.0"

// app is the state shared by every command of one invocation. The store is
// opened on first use so commands like "fields" work without one.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	now   func() time.Time
	store storage.Store
	repo  *repository.Repository
}

func newApp(cfg *config.Config) *app {
	return &app{
		cfg: cfg,
		log: logger.WithComponent("cmd"),
		now: time.Now,
	}
}

// repository opens the configured store and loads the collection once.
func (a *app) repository(ctx context.Context) (*repository.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}

	store, err := storage.Open(ctx, a.cfg.GetStorageConfig())
	if err != nil {
		a.log.Error().Err(err).Str("driver", a.cfg.StoreDriver).Msg("Failed to open store")
		return nil, fmt.Errorf("failed to open %s store: %w", a.cfg.StoreDriver, err)
	}

	repo, err := repository.Open(ctx, store, repository.WithKey(a.cfg.StoreKey))
	if err != nil {
		_ = store.Close()
		return nil, handleRepositoryError(err, a.log)
	}

	a.store, a.repo = store, repo
	return repo, nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Failed to close store")
	}
	a.store, a.repo = nil, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "invoicer",
		Short: "Create, edit, render and export invoices",
		Long: `invoicer keeps a collection of invoices and turns them into PDF documents.

Invoices are stored as one JSON collection in the configured store (a local
directory by default, or SQLite / Google Cloud Storage). Totals are derived on
demand and amounts are shown in Algerian dinar.

Configuration is read from the environment and from a .env file in the
working directory. See "invoicer <command> --help" for details.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCreateCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newSheetsSyncCmd(a),
		newSendCmd(a),
		newFieldsCmd(a),
	)
	return root
}

// Execute runs the CLI with the loaded configuration and exits non-zero on
// failure.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg)
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()

	if err != nil {
		log.Debug().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
