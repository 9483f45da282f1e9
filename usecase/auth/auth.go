package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
	"github.com/fastygo/tracker/usecase/form"
)

// Options configures session and token lifetimes.
type Options struct {
	SessionTTL time.Duration
	JWTSecret  string
	JWTIssuer  string
	JWTTTL     time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	opts     Options
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, opts Options, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 14 * 24 * time.Hour
	}
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		opts:     opts,
		logger:   logger,
	}
}

// HashPassword hashes a raw password with bcrypt.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register validates f and creates the account it describes. An invalid
// form is returned as a wrapped domain.FieldErrors.
func (uc *UseCase) Register(ctx context.Context, f *form.RegisterForm) (*domain.User, error) {
	ok, err := f.Validate(ctx, uc.users)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ValidationFailed(f.Errors)
	}

	user := f.User()
	user.PasswordHash, err = HashPassword(f.Password1, uc.opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate checks credentials. Unknown users, wrong passwords and
// inactive accounts all yield ErrBadCredentials.
func (uc *UseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrBadCredentials
	}
	if !user.CanLogin() {
		return nil, domain.ErrBadCredentials
	}
	return user, nil
}

// Login authenticates and opens a session, recording the login time.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*domain.Session, *domain.User, error) {
	user, err := uc.Authenticate(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	if err := uc.users.Update(ctx, user); err != nil {
		uc.logger.Warn("failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	session, err := uc.CreateSession(ctx, user.ID, uc.opts.SessionTTL)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// CurrentUser loads the user behind an authenticated request.
func (uc *UseCase) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.CanLogin() {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (uc *UseCase) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*domain.Session, error) {
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = uc.opts.SessionTTL
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// StartSession opens an anonymous session so that notifications survive
// a redirect before login (registration, logout).
func (uc *UseCase) StartSession(ctx context.Context) (*domain.Session, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(uc.opts.SessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().Add(ttl)
	return session, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// AddFlash queues a notification for the next page rendered in the
// session. Requests without a session drop it.
func (uc *UseCase) AddFlash(ctx context.Context, session *domain.Session, message string) error {
	if session == nil {
		return nil
	}
	session.Flashes = append(session.Flashes, message)
	return uc.sessions.Save(ctx, session)
}

// PopFlashes returns and clears the queued notifications.
func (uc *UseCase) PopFlashes(ctx context.Context, session *domain.Session) ([]string, error) {
	if session == nil || len(session.Flashes) == 0 {
		return nil, nil
	}
	flashes := session.PopFlashes()
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return flashes, nil
}

// IssueToken signs a bearer token for API clients.
func (uc *UseCase) IssueToken(user *domain.User) (string, time.Time, error) {
	if uc.opts.JWTSecret == "" {
		return "", time.Time{}, domain.NewError(domain.ErrCodeInternal, "token signing is not configured")
	}
	now := time.Now()
	expires := now.Add(uc.opts.JWTTTL)
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"sub":     user.ID,
		"iss":     uc.opts.JWTIssuer,
		"iat":     now.Unix(),
		"exp":     expires.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.opts.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// ParseToken verifies a bearer token and returns its user id.
func (uc *UseCase) ParseToken(tokenString string) (string, error) {
	if uc.opts.JWTSecret == "" {
		return "", domain.ErrUnauthorized
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(uc.opts.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", domain.ErrUnauthorized
	}
	if uc.opts.JWTIssuer != "" && !claims.VerifyIssuer(uc.opts.JWTIssuer, true) {
		return "", domain.ErrUnauthorized
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}
