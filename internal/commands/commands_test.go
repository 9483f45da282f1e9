package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/internal/testutil"
)

func run(t *testing.T, store *testutil.Store, stdin string, args ...string) (string, error) {
	t.Helper()
	cfg := &config.Config{Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost}}
	open := func(context.Context) (*Env, error) {
		return &Env{Config: cfg, Users: store.Users}, nil
	}

	root := NewRoot(cfg, open)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(bytes.NewBufferString(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCreateUser(t *testing.T) {
	store := testutil.NewStore(t)

	out, err := run(t, store, "", "createuser", "ana", "--email", "ana@example.com", "--password", "s3cret-pass", "--superuser")
	require.NoError(t, err)
	assert.Contains(t, out, "User ana created")

	user, err := store.Users.GetByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestCreateUserReadsPasswordFromStdin(t *testing.T) {
	store := testutil.NewStore(t)

	_, err := run(t, store, "typed-pass\n", "createuser", "luis")
	require.NoError(t, err)

	user, err := store.Users.GetByUsername(context.Background(), "luis")
	require.NoError(t, err)
	assert.False(t, user.IsStaff)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("typed-pass")))
}

func TestCreateUserRejectsTakenAndInvalidNames(t *testing.T) {
	store := testutil.NewStore(t)
	store.CreateUser(t, "ana")

	_, err := run(t, store, "", "createuser", "ANA", "--password", "x")
	assert.ErrorContains(t, err, "already taken")

	_, err = run(t, store, "", "createuser", "bad name", "--password", "x")
	assert.ErrorContains(t, err, "invalid account")
}

func TestPromote(t *testing.T) {
	store := testutil.NewStore(t)
	store.CreateUser(t, "ana")

	_, err := run(t, store, "", "promote", "ana")
	require.NoError(t, err)
	user, err := store.Users.GetByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)

	_, err = run(t, store, "", "promote", "ana", "--revoke")
	require.NoError(t, err)
	user, err = store.Users.GetByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.False(t, user.IsStaff)

	_, err = run(t, store, "", "promote", "nobody")
	assert.ErrorContains(t, err, "no user named")
}
