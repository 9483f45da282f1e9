package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/repository/query"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	is_staff, is_superuser, is_active, date_joined, last_login`

type userRow struct {
	ID           string         `db:"id"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	IsStaff      bool           `db:"is_staff"`
	IsSuperuser  bool           `db:"is_superuser"`
	IsActive     bool           `db:"is_active"`
	DateJoined   string         `db:"date_joined"`
	LastLogin    sql.NullString `db:"last_login"`
}

func (r userRow) toDomain() (domain.User, error) {
	joined, err := decodeTime(r.DateJoined)
	if err != nil {
		return domain.User{}, err
	}
	lastLogin, err := decodeNullTime(r.LastLogin)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		IsStaff:      r.IsStaff,
		IsSuperuser:  r.IsSuperuser,
		IsActive:     r.IsActive,
		DateJoined:   joined,
		LastLogin:    lastLogin,
	}, nil
}

type userRepository struct {
	db    *sqlx.DB
	clock domain.Clock
}

// NewUserRepository returns a SQLite-backed UserRepository.
func NewUserRepository(db *sqlx.DB, clock domain.Clock) repository.UserRepository {
	return &userRepository{db: db, clock: clock}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE username = ? COLLATE NOCASE", username)
}

func (r *userRepository) getOne(ctx context.Context, stmt string, args ...any) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	user, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users WHERE email = ?", email); err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return n > 0, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users WHERE username = ? COLLATE NOCASE", username); err != nil {
		return false, fmt.Errorf("checking username: %w", err)
	}
	return n > 0, nil
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	where := query.Users(filter)
	stmt := "SELECT " + userColumns + " FROM users" + where.SQL() +
		" ORDER BY username COLLATE NOCASE ASC" + query.Page(filter.Limit, filter.Offset)

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, stmt, where.Args()...); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		user, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || strings.TrimSpace(user.Username) == "" {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = r.clock.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name,
			is_staff, is_superuser, is_active, date_joined, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.IsStaff, user.IsSuperuser, user.IsActive, encodeTime(user.DateJoined), encodeNullTime(user.LastLogin),
	)
	if err != nil {
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
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET username = ?, email = ?, password_hash = ?, first_name = ?, last_name = ?,
			is_staff = ?, is_superuser = ?, is_active = ?, last_login = ?
		WHERE id = ?`,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.IsStaff, user.IsSuperuser, user.IsActive, encodeNullTime(user.LastLogin),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrCodeConflict, "username already exists", err)
		}
		return fmt.Errorf("updating user %s: %w", user.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
