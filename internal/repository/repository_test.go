package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/krkdev/contacts-api/internal/db/dbtest"
	"github.com/krkdev/contacts-api/internal/model"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, database *sqlx.DB, email string) *model.User {
	t.Helper()

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "hash",
		Subscription: model.SubscriptionStarter,
		AvatarURL:    "https://www.gravatar.com/avatar/x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(database).Create(context.Background(), user))
	return user
}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	return dbtest.New(t)
}
