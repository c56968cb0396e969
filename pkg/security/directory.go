package security

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhuss/adminguard/pkg/config"
	"github.com/rhuss/adminguard/pkg/directory"
	"github.com/rhuss/adminguard/pkg/directory/postgres"
)

// LoadDirectory loads the user directory from the configured source.
func LoadDirectory(ctx context.Context, cfg config.DirectoryConfig) (*directory.Directory, error) {
	var (
		dir *directory.Directory
		err error
	)
	switch cfg.Source {
	case "file":
		dir, err = directory.LoadFile(cfg.File)
	case "postgres":
		dir, err = postgres.Load(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
	default:
		return nil, fmt.Errorf("unknown directory source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("user directory loaded", "source", cfg.Source, "users", dir.Len())
	return dir, nil
}
