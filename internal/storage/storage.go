// Package storage opens the configured database and session backends and
// exposes their repositories to the binaries.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/config"
	pgInfra "github.com/fastygo/tracker/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tracker/internal/infrastructure/redis"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/bolt"
	"github.com/fastygo/tracker/repository/postgres"
	redisRepo "github.com/fastygo/tracker/repository/redis"
	"github.com/fastygo/tracker/repository/sqlite"
)

// Clock returns a clock reading wall time in loc, so that "today"
// follows the configured time zone.
func Clock(loc *time.Location) domain.Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

// Store holds the entity repositories of one database.
type Store struct {
	Driver   string
	Users    repository.UserRepository
	Projects repository.ProjectRepository
	Tasks    repository.TaskRepository
	AdminLog repository.AdminLogRepository

	pool *pgxpool.Pool
	db   *sqlx.DB
}

// Open connects to PostgreSQL (running migrations when enabled) or opens
// the SQLite file, which migrates itself.
func Open(ctx context.Context, cfg *config.Config, clock domain.Clock, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:   "sqlite",
			Users:    sqlite.NewUserRepository(db, clock),
			Projects: sqlite.NewProjectRepository(db, clock),
			Tasks:    sqlite.NewTaskRepository(db, clock),
			AdminLog: sqlite.NewAdminLogRepository(db, clock),
			db:       db,
		}, nil

	case "postgres":
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, cfg.AppName, logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver:   "postgres",
			Users:    postgres.NewUserRepository(pool, clock),
			Projects: postgres.NewProjectRepository(pool, clock),
			Tasks:    postgres.NewTaskRepository(pool, clock),
			AdminLog: postgres.NewAdminLogRepository(pool, clock),
			pool:     pool,
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

// Ping checks the underlying database connection.
func (s *Store) Ping(ctx context.Context) error {
	switch {
	case s.pool != nil:
		return s.pool.Ping(ctx)
	case s.db != nil:
		return s.db.PingContext(ctx)
	}
	return errors.New("store is closed")
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Sessions is the opened session backend. Local is set for the bolt
// backend, which needs sweeping; Redis expires keys on its own.
type Sessions struct {
	Backend string
	Repo    repository.SessionRepository
	Local   *bolt.SessionStore

	redis *goRedis.Client
}

func OpenSessions(ctx context.Context, cfg *config.Config) (*Sessions, error) {
	switch cfg.Sessions.Backend {
	case "bolt":
		store, err := bolt.Open(cfg.Sessions.BoltPath, cfg.Sessions.TTL)
		if err != nil {
			return nil, fmt.Errorf("opening session store: %w", err)
		}
		return &Sessions{Backend: "bolt", Repo: store, Local: store}, nil

	case "redis":
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &Sessions{
			Backend: "redis",
			Repo:    redisRepo.NewSessionRepository(client, cfg.Sessions.TTL),
			redis:   client,
		}, nil
	}
	return nil, fmt.Errorf("unsupported session backend %q", cfg.Sessions.Backend)
}

func (s *Sessions) Ping(ctx context.Context) error {
	switch {
	case s.redis != nil:
		return redisInfra.Pinger(s.redis)(ctx)
	case s.Local != nil:
		return s.Local.Ping(ctx)
	}
	return errors.New("session store is closed")
}

func (s *Sessions) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	if s.Local != nil {
		return s.Local.Close()
	}
	return nil
}
