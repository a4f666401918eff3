package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/krkdev/contacts-api/internal/apperr"
	"github.com/krkdev/contacts-api/internal/model"
	"github.com/krkdev/contacts-api/internal/repository"
)

type UserService struct {
	userRepository repository.UserRepository
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{
		userRepository: userRepository,
	}
}

// Current re-reads the authenticated user. A user deleted since the token
// was issued is unauthorized.
func (s *UserService) Current(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepository.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Unauthorized(MsgNotAuthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateSubscription(ctx context.Context, userID, tier string) (*model.User, error) {
	if !model.IsSubscriptionTier(tier) {
		return nil, apperr.Validation(fmt.Sprintf("unknown subscription %q", tier))
	}

	user, err := s.userRepository.UpdateSubscription(ctx, userID, tier)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Unauthorized(MsgNotAuthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	slog.Info("subscription updated", "user_id", userID, "subscription", tier)
	return user, nil
}
