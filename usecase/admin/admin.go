// Package admin implements the staff-only record management backend.
// Every mutation is recorded in the admin history.
package admin

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/scope"
)

type UseCase struct {
	users      repository.UserRepository
	projects   repository.ProjectRepository
	tasks      repository.TaskRepository
	log        repository.AdminLogRepository
	clock      domain.Clock
	bcryptCost int
	logger     *zap.Logger
}

type Option func(*UseCase)

// WithBcryptCost overrides the cost used for passwords set through the
// admin backend.
func WithBcryptCost(cost int) Option {
	return func(uc *UseCase) { uc.bcryptCost = cost }
}

func New(
	users repository.UserRepository,
	projects repository.ProjectRepository,
	tasks repository.TaskRepository,
	log repository.AdminLogRepository,
	clock domain.Clock,
	logger *zap.Logger,
	opts ...Option,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		users:    users,
		projects: projects,
		tasks:    tasks,
		log:      log,
		clock:    clock,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RequireStaff rejects anonymous actors with ErrUnauthorized and
// non-staff actors with ErrForbidden.
func RequireStaff(actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.IsStaff || !actor.IsActive {
		return domain.ErrForbidden
	}
	return nil
}

func requireSuperuser(actor *domain.User) error {
	if err := RequireStaff(actor); err != nil {
		return err
	}
	if !actor.IsSuperuser {
		return domain.ErrForbidden
	}
	return nil
}

func (uc *UseCase) record(ctx context.Context, actor *domain.User, objectType, objectID, repr string, action domain.AdminAction) {
	entry := &domain.AdminLogEntry{
		ActorID:    actor.ID,
		ObjectType: objectType,
		ObjectID:   objectID,
		ObjectRepr: truncate(repr, 200),
		Action:     action,
	}
	if err := uc.log.Append(ctx, entry); err != nil {
		uc.logger.Error("failed to append admin log entry",
			zap.String("object_type", objectType),
			zap.String("object_id", objectID),
			zap.Error(err),
		)
	}
}

// Log lists admin history: everything for superusers, own entries for
// other staff.
func (uc *UseCase) Log(ctx context.Context, actor *domain.User, filter repository.AdminLogFilter) ([]domain.AdminLogEntry, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if base := scope.AdminLog(actor); base.ActorID != "" {
		filter.ActorID = base.ActorID
	}
	return uc.log.List(ctx, filter)
}

func merge(errs domain.FieldErrors, err error) error {
	if err == nil {
		return nil
	}
	fe, ok := domain.AsFieldErrors(err)
	if !ok {
		return err
	}
	for field, msgs := range fe {
		for _, msg := range msgs {
			errs.Add(field, msg)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
