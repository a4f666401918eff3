package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/krkdev/contacts-api/internal/apperr"
	"github.com/krkdev/contacts-api/internal/imageproc"
	"github.com/krkdev/contacts-api/internal/model"
	"github.com/krkdev/contacts-api/internal/repository"
	"github.com/krkdev/contacts-api/internal/storage"
	"github.com/krkdev/contacts-api/internal/validation"
)

const (
	MsgNoFileUploaded = "No file uploaded"
	MsgInvalidImage   = "Unsupported or corrupt image"
)

const avatarFolder = "avatars"

type AvatarService struct {
	userRepository repository.UserRepository
	fileRepository repository.FileRepository
	storage        storage.Storage
	tmpDir         string
}

func NewAvatarService(userRepository repository.UserRepository, fileRepository repository.FileRepository, storage storage.Storage, tmpDir string) *AvatarService {
	return &AvatarService{
		userRepository: userRepository,
		fileRepository: fileRepository,
		storage:        storage,
		tmpDir:         tmpDir,
	}
}

// Update processes an uploaded picture into the user's avatar and returns
// its public URL. The avatar is in storage before Update returns; the
// previous avatar is removed best-effort.
func (s *AvatarService) Update(ctx context.Context, userID string, header *multipart.FileHeader) (string, error) {
	mimeType, err := validation.ValidateFile(header, validation.AvatarConstraints)
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, err.Error(), err)
	}

	staged, err := s.stage(header)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(staged); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove staged upload", "error", err, "path", staged)
		}
	}()

	size, err := s.process(staged)
	if err != nil {
		return "", err
	}

	filename := uuid.New().String() + ".png"
	storagePath := avatarFolder + "/" + filename
	if err := s.save(ctx, staged, storagePath); err != nil {
		return "", err
	}

	previous, err := s.fileRepository.LatestByType(ctx, userID, model.FileTypeAvatar)
	if err != nil && !errors.Is(err, repository.ErrFileNotFound) {
		slog.Warn("failed to look up previous avatar", "error", err, "user_id", userID)
	}

	avatarURL := s.storage.URL(storagePath)
	if err := s.userRepository.UpdateAvatarURL(ctx, userID, avatarURL); err != nil {
		s.deleteObject(ctx, storagePath)
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperr.Unauthorized(MsgNotAuthorized)
		}
		return "", fmt.Errorf("failed to update avatar url: %w", err)
	}

	err = s.fileRepository.Create(ctx, &model.File{
		ID:           uuid.New().String(),
		UserID:       userID,
		Type:         model.FileTypeAvatar,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     "image/png",
		Size:         size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to record avatar file", "error", err, "user_id", userID, "path", storagePath)
	}

	if previous != nil && previous.StoragePath != storagePath {
		s.deleteObject(ctx, previous.StoragePath)
		if err := s.fileRepository.Delete(ctx, previous.ID); err != nil {
			slog.Warn("failed to delete previous avatar record", "error", err, "file_id", previous.ID)
		}
	}

	slog.Info("avatar updated", "user_id", userID, "source_type", mimeType, "path", storagePath)
	return avatarURL, nil
}

// stage copies the upload into the temp directory under a random name.
func (s *AvatarService) stage(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(s.tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := filepath.Join(s.tmpDir, uuid.New().String()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}

	return path, nil
}

// process replaces the staged file with the finished PNG avatar and returns
// its size.
func (s *AvatarService) process(path string) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open staged upload: %w", err)
	}
	img, err := imageproc.Avatar(src)
	_ = src.Close()
	if errors.Is(err, imageproc.ErrImageTooLarge) {
		return 0, apperr.Wrap(apperr.KindValidation, imageproc.ErrImageTooLarge.Error(), err)
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.KindValidation, MsgInvalidImage, err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to write avatar: %w", err)
	}
	if err := imageproc.EncodePNG(dst, img); err != nil {
		_ = dst.Close()
		return 0, fmt.Errorf("failed to encode avatar: %w", err)
	}
	if err := dst.Close(); err != nil {
		return 0, fmt.Errorf("failed to write avatar: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat avatar: %w", err)
	}
	return info.Size(), nil
}

func (s *AvatarService) save(ctx context.Context, path, storagePath string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open processed avatar: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := s.storage.Save(ctx, storagePath, f); err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}
	return nil
}

func (s *AvatarService) deleteObject(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		slog.Warn("failed to delete avatar from storage", "error", err, "path", path)
	}
}
