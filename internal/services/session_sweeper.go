package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionPurger is a session store that does not expire entries on its
// own (the bolt store). Redis drops keys by TTL and needs no sweeper.
type SessionPurger interface {
	PurgeExpired(now time.Time) (int, error)
}

// SessionSweeper removes expired sessions on a cron schedule.
type SessionSweeper struct {
	store  SessionPurger
	clock  func() time.Time
	logger *zap.Logger
	cron   *cron.Cron
}

// NewSessionSweeper schedules Sweep with a standard cron expression or a
// descriptor such as "@every 15m".
func NewSessionSweeper(store SessionPurger, schedule string, logger *zap.Logger) (*SessionSweeper, error) {
	if schedule == "" {
		schedule = "@every 15m"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SessionSweeper{
		store:  store,
		clock:  time.Now,
		logger: logger,
		cron:   cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.Sweep(); err != nil {
			s.logger.Error("session sweep failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SessionSweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("session sweeper started")
}

func (s *SessionSweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("session sweeper stopped")
}

// Sweep purges expired sessions once and returns how many were removed.
func (s *SessionSweeper) Sweep() (int, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	removed, err := s.store.PurgeExpired(s.clock())
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		s.logger.Info("expired sessions purged", zap.Int("count", removed))
	}
	return removed, nil
}
