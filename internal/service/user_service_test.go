package service

import (
	"context"
	"testing"

	"badgereg/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test_secret")

// TestLoginHappyPath verifies a created account can log in and gets a token.
func TestLoginHappyPath(t *testing.T) {
	env := setupEnv(t)
	svc := NewUserService(env.users, testSecret)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{Username: "anna", Password: "s3cret-pw", Role: "admin"})
	require.NoError(t, err)

	token, err := svc.Login(ctx, LoginRequest{Username: "anna", Password: "s3cret-pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
}

// TestLoginWrongPassword verifies bad credentials are indistinguishable
// from an unknown user.
func TestLoginWrongPassword(t *testing.T) {
	env := setupEnv(t)
	svc := NewUserService(env.users, testSecret)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{Username: "anna", Password: "s3cret-pw", Role: "admin"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "anna", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, err = svc.Login(ctx, LoginRequest{Username: "nobody", Password: "s3cret-pw"})
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

// TestLoginDisabledAccount verifies a disabled account cannot log in even
// with the right password.
func TestLoginDisabledAccount(t *testing.T) {
	env := setupEnv(t)
	svc := NewUserService(env.users, testSecret)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{Username: "anna", Password: "s3cret-pw", Role: "admin"})
	require.NoError(t, err)

	enabled := false
	_, err = svc.UpdateUser(ctx, "anna", UpdateUserRequest{Enabled: &enabled})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Username: "anna", Password: "s3cret-pw"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

// TestPasswordsAreHashed verifies no plaintext password ever reaches
// storage.
func TestPasswordsAreHashed(t *testing.T) {
	env := setupEnv(t)
	svc := NewUserService(env.users, testSecret)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "anna", Password: "s3cret-pw", Role: "admin",
	})
	require.NoError(t, err)

	var stored model.User
	require.NoError(t, env.db.First(&stored, "username = ?", "anna").Error)
	assert.NotEqual(t, "s3cret-pw", stored.Password)
	assert.Contains(t, stored.Password, "$2a$", "password should be a bcrypt hash")
}

// TestCreateUserDuplicateUsername verifies the uniqueness check.
func TestCreateUserDuplicateUsername(t *testing.T) {
	env := setupEnv(t)
	svc := NewUserService(env.users, testSecret)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserRequest{Username: "anna", Password: "s3cret-pw", Role: "admin"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateUserRequest{Username: "anna", Password: "other-pw", Role: "gate"})
	assert.Error(t, err, "duplicate username should be rejected")
}
