package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/krkdev/contacts-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	repository.SessionRepository
	before time.Time
	n      int64
	err    error
}

func (f *fakeSessions) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	f.before = before
	return f.n, f.err
}

type fakeTokens struct {
	repository.TokenRepository
	olderThan time.Duration
	n         int64
}

func (f *fakeTokens) CleanupExpired(_ context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return f.n, nil
}

func TestCleanup_Run(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	stale := filepath.Join(dir, "stale.png")
	fresh := filepath.Join(dir, "fresh.png")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0o644))
	old := now.Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	sessions := &fakeSessions{n: 2}
	tokens := &fakeTokens{n: 3}
	c := NewCleanup(sessions, tokens, dir)
	c.now = func() time.Time { return now }

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Sessions: 2, Tokens: 3, TmpFiles: 1}, res)
	assert.Equal(t, now.UTC(), sessions.before)
	assert.Equal(t, usedTokenRetention, tokens.olderThan)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
}

func TestCleanup_MissingTmpDir(t *testing.T) {
	c := NewCleanup(&fakeSessions{}, &fakeTokens{}, filepath.Join(t.TempDir(), "absent"))

	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.TmpFiles)
}

func TestCleanup_StopsOnSessionError(t *testing.T) {
	tokens := &fakeTokens{}
	c := NewCleanup(&fakeSessions{err: errors.New("db locked")}, tokens, t.TempDir())

	_, err := c.Run(context.Background())
	assert.ErrorContains(t, err, "db locked")
	assert.Zero(t, tokens.olderThan)
}

func TestNewScheduler(t *testing.T) {
	c := NewCleanup(&fakeSessions{}, &fakeTokens{}, t.TempDir())

	_, err := NewScheduler(c, "not a schedule")
	assert.Error(t, err)

	s, err := NewScheduler(c, "@hourly")
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
