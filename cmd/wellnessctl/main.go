package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/wellness-api/internal/kv"
	"github.com/noah-isme/wellness-api/internal/repository"
	"github.com/noah-isme/wellness-api/pkg/config"
	"github.com/noah-isme/wellness-api/pkg/logger"
)

// env is the store and logger shared by every subcommand.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *repository.DataStore
	closer io.Closer
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	backing, closer, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := repository.NewDataStore(repository.Deps{
		KV:        backing,
		KeyPrefix: cfg.Storage.KeyPrefix,
		IDs:       repository.NewIDGenerator(cfg.Storage.IDStrategy),
		Logger:    logr,
	})
	return &env{cfg: cfg, logger: logr, store: store, closer: closer}, nil
}

func (e *env) Close() {
	_ = e.logger.Sync()
	_ = e.closer.Close()
}

// withEnv opens the store around fn.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wellnessctl",
		Short:         "Administer the wellness portal store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCollectionsCmd(), newSeedCmd(), newReportCmd())
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
