package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/krkdev/contacts-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	database := newTestDB(t)
	repo := NewUserRepository(database)
	ctx := context.Background()

	user := createUser(t, database, "a@b.com")

	byID, err := repo.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", byID.Email)
	assert.Equal(t, model.SubscriptionStarter, byID.Subscription)
	assert.False(t, byID.Verified)

	byEmail, err := repo.ByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.ByEmail(ctx, "missing@b.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	database := newTestDB(t)
	createUser(t, database, "dup@b.com")

	user := *createUserValue("dup@b.com")
	err := NewUserRepository(database).Create(context.Background(), &user)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_Updates(t *testing.T) {
	database := newTestDB(t)
	repo := NewUserRepository(database)
	ctx := context.Background()
	user := createUser(t, database, "u@b.com")

	require.NoError(t, repo.MarkVerified(ctx, user.ID))
	require.NoError(t, repo.UpdateAvatarURL(ctx, user.ID, "/avatars/new.png"))

	updated, err := repo.UpdateSubscription(ctx, user.ID, model.SubscriptionPro)
	require.NoError(t, err)
	assert.True(t, updated.Verified)
	assert.Equal(t, "/avatars/new.png", updated.AvatarURL)
	assert.Equal(t, model.SubscriptionPro, updated.Subscription)

	assert.ErrorIs(t, repo.MarkVerified(ctx, "missing"), ErrUserNotFound)
	_, err = repo.UpdateSubscription(ctx, "missing", model.SubscriptionPro)
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, repo.Delete(ctx, user.ID))
	assert.ErrorIs(t, repo.Delete(ctx, user.ID), ErrUserNotFound)
}

func TestUserRepository_DriverErrorIsPropagated(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewUserRepository(sqlx.NewDb(mockDB, "sqlmock"))
	boom := errors.New("connection reset")

	mock.ExpectQuery(`SELECT \* FROM users WHERE email = \$1`).
		WithArgs("a@b.com").
		WillReturnError(boom)

	_, err = repo.ByEmail(context.Background(), "a@b.com")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	mock.ExpectExec(`UPDATE users SET avatar_url`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateAvatarURL(context.Background(), "u1", "/avatars/x.png")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation_FallsBackToMessage(t *testing.T) {
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`)))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func createUserValue(email string) *model.User {
	u := &model.User{
		ID:           "other-" + email,
		Email:        email,
		PasswordHash: "hash",
		Subscription: model.SubscriptionStarter,
	}
	return u
}
