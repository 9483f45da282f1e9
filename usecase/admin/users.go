package admin

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/auth"
	"github.com/fastygo/tracker/usecase/form"
	"github.com/fastygo/tracker/usecase/scope"
)

// UserInput is an admin submission for a user. An empty Password keeps
// the current one on update.
type UserInput struct {
	Username    string `json:"username" form:"username" validate:"required,max=150,username"`
	Email       string `json:"email" form:"email" validate:"omitempty,max=254,email"`
	Password    string `json:"password" form:"password"`
	FirstName   string `json:"first_name" form:"first_name" validate:"max=150"`
	LastName    string `json:"last_name" form:"last_name" validate:"max=150"`
	IsStaff     bool   `json:"is_staff" form:"is_staff"`
	IsSuperuser bool   `json:"is_superuser" form:"is_superuser"`
	IsActive    bool   `json:"is_active" form:"is_active"`
}

// ListUsers applies the admin user scope on top of filter.
func (uc *UseCase) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if base := scope.AdminUsers(actor); base.ID != "" {
		filter.ID = base.ID
	}
	return uc.users.List(ctx, filter)
}

func (uc *UseCase) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := RequireStaff(actor); err != nil {
		return nil, err
	}
	if base := scope.AdminUsers(actor); base.ID != "" && base.ID != id {
		return nil, domain.ErrUserNotFound
	}
	return uc.users.GetByID(ctx, id)
}

// CreateUser is reserved to superusers.
func (uc *UseCase) CreateUser(ctx context.Context, actor *domain.User, in UserInput) (*domain.User, error) {
	if err := requireSuperuser(actor); err != nil {
		return nil, err
	}
	in.Username = trimmed(in.Username)
	in.Email = trimmed(in.Email)

	errs := form.Struct(&in)
	if in.Password == "" {
		errs.Add("password", domain.MsgRequired)
	}
	if !errs.Has("username") {
		taken, err := uc.users.UsernameExists(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("username", domain.MsgUsernameTaken)
		}
	}
	if err := domain.ValidationFailed(errs); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, uc.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsStaff:      in.IsStaff || in.IsSuperuser,
		IsSuperuser:  in.IsSuperuser,
		IsActive:     in.IsActive,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.record(ctx, actor, domain.ObjectUser, user.ID, user.String(), domain.AdminAddition)
	return user, nil
}

// UpdateUser edits a user in the actor's scope. Only superusers may
// change permission flags.
func (uc *UseCase) UpdateUser(ctx context.Context, actor *domain.User, id string, in UserInput) (*domain.User, error) {
	user, err := uc.GetUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.Username = trimmed(in.Username)
	in.Email = trimmed(in.Email)

	errs := form.Struct(&in)
	if !errs.Has("username") && !strings.EqualFold(in.Username, user.Username) {
		taken, err := uc.users.UsernameExists(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("username", domain.MsgUsernameTaken)
		}
	}
	if err := domain.ValidationFailed(errs); err != nil {
		return nil, err
	}

	user.Username = in.Username
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	if actor.IsSuperuser {
		user.IsStaff = in.IsStaff || in.IsSuperuser
		user.IsSuperuser = in.IsSuperuser
		user.IsActive = in.IsActive
	}
	if in.Password != "" {
		if user.PasswordHash, err = auth.HashPassword(in.Password, uc.bcryptCost); err != nil {
			return nil, err
		}
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.record(ctx, actor, domain.ObjectUser, user.ID, user.String(), domain.AdminChange)
	return user, nil
}

// DeleteUser is reserved to superusers. Owned projects and created tasks
// go with the user; assignments are cleared.
func (uc *UseCase) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if err := requireSuperuser(actor); err != nil {
		return err
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	uc.record(ctx, actor, domain.ObjectUser, user.ID, user.String(), domain.AdminDeletion)
	uc.logger.Info("user deleted through admin", zap.String("user_id", user.ID), zap.String("actor_id", actor.ID))
	return nil
}
