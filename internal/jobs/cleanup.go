// Package jobs runs periodic maintenance on the database and the upload
// staging directory.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/krkdev/contacts-api/internal/repository"
	"github.com/robfig/cron/v3"
)

const (
	// Used tokens are kept briefly so a repeated click still finds a record.
	usedTokenRetention = time.Hour
	// Staged uploads older than this were abandoned mid-request.
	staleUploadAge = time.Hour
)

// Cleanup removes expired sessions, spent tokens and abandoned uploads.
type Cleanup struct {
	sessions repository.SessionRepository
	tokens   repository.TokenRepository
	tmpDir   string
	now      func() time.Time
}

type Result struct {
	Sessions int64
	Tokens   int64
	TmpFiles int
}

func NewCleanup(sessions repository.SessionRepository, tokens repository.TokenRepository, tmpDir string) *Cleanup {
	return &Cleanup{
		sessions: sessions,
		tokens:   tokens,
		tmpDir:   tmpDir,
		now:      time.Now,
	}
}

// Run performs one cleanup pass.
func (c *Cleanup) Run(ctx context.Context) (Result, error) {
	var res Result
	var err error

	res.Sessions, err = c.sessions.DeleteExpired(ctx, c.now().UTC())
	if err != nil {
		return res, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	res.Tokens, err = c.tokens.CleanupExpired(ctx, usedTokenRetention)
	if err != nil {
		return res, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	res.TmpFiles, err = c.sweepTmp()
	if err != nil {
		return res, fmt.Errorf("failed to sweep temp dir: %w", err)
	}

	return res, nil
}

func (c *Cleanup) sweepTmp() (int, error) {
	entries, err := os.ReadDir(c.tmpDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := c.now().Add(-staleUploadAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(c.tmpDir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("failed to remove stale upload", "error", err, "path", path)
			continue
		}
		removed++
	}
	return removed, nil
}

// Scheduler runs Cleanup on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	cleanup *Cleanup
}

// NewScheduler registers cleanup under spec, a standard cron expression or
// descriptor such as "@hourly".
func NewScheduler(cleanup *Cleanup, spec string) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, cleanup: cleanup}

	_, err := c.AddFunc(spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	slog.Info("cleanup scheduler started")
	s.cron.Start()
}

// Stop waits for a running pass to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	slog.Info("cleanup scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := s.cleanup.Run(ctx)
	if err != nil {
		slog.Error("cleanup failed", "error", err)
		return
	}

	slog.Info("cleanup finished",
		"sessions", res.Sessions,
		"tokens", res.Tokens,
		"tmp_files", res.TmpFiles,
	)
}
