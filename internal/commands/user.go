package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/usecase/auth"
	"github.com/fastygo/tracker/usecase/form"
)

type newAccount struct {
	Username string `form:"username" validate:"required,max=150,username"`
	Email    string `form:"email" validate:"omitempty,max=254,email"`
	Password string `form:"password" validate:"required"`
}

func newCreateUserCmd(cfg *config.Config, open Opener) *cobra.Command {
	var (
		email     string
		password  string
		staff     bool
		superuser bool
	)

	cmd := &cobra.Command{
		Use:   "createuser <username>",
		Short: "Create a user account",
		Long:  "Create an active user account. The password is read from stdin when --password is omitted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			in := newAccount{
				Username: strings.TrimSpace(args[0]),
				Email:    strings.TrimSpace(email),
				Password: password,
			}
			if errs := form.Struct(&in); !errs.Empty() {
				return fmt.Errorf("invalid account: %s", errs.Error())
			}

			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				taken, err := env.Users.UsernameExists(ctx, in.Username)
				if err != nil {
					return err
				}
				if taken {
					return fmt.Errorf("username %q is already taken", in.Username)
				}

				hash, err := auth.HashPassword(in.Password, cfg.Security.BcryptCost)
				if err != nil {
					return err
				}
				user := &domain.User{
					Username:     in.Username,
					Email:        in.Email,
					PasswordHash: hash,
					IsStaff:      staff || superuser,
					IsSuperuser:  superuser,
					IsActive:     true,
				}
				if err := env.Users.Create(ctx, user); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s created (%s).\n", user.Username, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	cmd.Flags().BoolVar(&staff, "staff", false, "grant admin access")
	cmd.Flags().BoolVar(&superuser, "superuser", false, "grant every admin permission")
	return cmd
}

func newPromoteCmd(open Opener) *cobra.Command {
	var (
		superuser bool
		revoke    bool
	)

	cmd := &cobra.Command{
		Use:   "promote <username>",
		Short: "Grant or revoke admin access",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(ctx context.Context, env *Env) error {
				user, err := env.Users.GetByUsername(ctx, strings.TrimSpace(args[0]))
				if err != nil {
					if errors.Is(err, domain.ErrUserNotFound) || domain.IsDomainError(err, domain.ErrCodeNotFound) {
						return fmt.Errorf("no user named %q", args[0])
					}
					return err
				}

				if revoke {
					user.IsStaff = false
					user.IsSuperuser = false
				} else {
					user.IsStaff = true
					user.IsSuperuser = user.IsSuperuser || superuser
				}
				if err := env.Users.Update(ctx, user); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s: staff=%t superuser=%t\n", user.Username, user.IsStaff, user.IsSuperuser)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&superuser, "superuser", false, "also grant superuser")
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove staff and superuser flags")
	return cmd
}
