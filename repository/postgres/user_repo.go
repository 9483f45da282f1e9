package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/query"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	is_staff, is_superuser, is_active, date_joined, last_login`

type userRepository struct {
	pool  *pgxpool.Pool
	clock domain.Clock
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, clock domain.Clock) repository.UserRepository {
	return &userRepository{pool: pool, clock: clock}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)
	return scanUser(row)
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return exists, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))`, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking username: %w", err)
	}
	return exists, nil
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	where := query.Users(filter)
	stmt := rebind(`SELECT ` + userColumns + ` FROM users` + where.SQL() +
		` ORDER BY LOWER(username) ASC` + query.Page(filter.Limit, filter.Offset))

	rows, err := r.pool.Query(ctx, stmt, where.Args()...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.Username == "" {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = r.clock.Now()
	}

	const stmt = `
	INSERT INTO users (id, username, email, password_hash, first_name, last_name,
		is_staff, is_superuser, is_active, date_joined, last_login)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := r.pool.Exec(ctx, stmt,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.IsStaff,
		user.IsSuperuser,
		user.IsActive,
		user.DateJoined,
		nullTime(user.LastLogin),
	); err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrCodeConflict, "username already exists", err)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	const stmt = `
	UPDATE users
	SET username = $2,
		email = $3,
		password_hash = $4,
		first_name = $5,
		last_name = $6,
		is_staff = $7,
		is_superuser = $8,
		is_active = $9,
		last_login = $10
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, stmt,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.IsStaff,
		user.IsSuperuser,
		user.IsActive,
		nullTime(user.LastLogin),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrCodeConflict, "username already exists", err)
		}
		return fmt.Errorf("updating user %s: %w", user.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.IsStaff,
		&user.IsSuperuser,
		&user.IsActive,
		&user.DateJoined,
		&user.LastLogin,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}
