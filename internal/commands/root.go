// Package commands implements the trackerctl maintenance CLI.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/internal/storage"
	"github.com/fastygo/tracker/repository"
)

// Env is what the commands operate on.
type Env struct {
	Config *config.Config
	Users  repository.UserRepository
	Logger *zap.Logger
	close  func() error
}

func (e *Env) Close() error {
	if e == nil || e.close == nil {
		return nil
	}
	return e.close()
}

// Opener builds an Env for a command run.
type Opener func(ctx context.Context) (*Env, error)

// Execute runs the CLI against the configured database.
func Execute(cfg *config.Config, logger *zap.Logger) error {
	return NewRoot(cfg, DefaultOpener(cfg, logger)).Execute()
}

// DefaultOpener opens the configured store.
func DefaultOpener(cfg *config.Config, logger *zap.Logger) Opener {
	return func(ctx context.Context) (*Env, error) {
		store, err := storage.Open(ctx, cfg, storage.Clock(cfg.Location()), logger)
		if err != nil {
			return nil, err
		}
		return &Env{Config: cfg, Users: store.Users, Logger: logger, close: store.Close}, nil
	}
}

// NewRoot assembles the command tree.
func NewRoot(cfg *config.Config, open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Maintenance commands for the project tracker",
		Long:          "trackerctl applies database migrations and manages user accounts outside the web interface.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newMigrateCmd(cfg))
	root.AddCommand(newCreateUserCmd(cfg, open))
	root.AddCommand(newPromoteCmd(open))
	return root
}

func withEnv(cmd *cobra.Command, open Opener, fn func(ctx context.Context, env *Env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := open(ctx)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(ctx, env)
}
