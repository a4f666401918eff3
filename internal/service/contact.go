package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/krkdev/contacts-api/internal/apperr"
	"github.com/krkdev/contacts-api/internal/model"
	"github.com/krkdev/contacts-api/internal/repository"
)

const (
	MsgNotFound       = "Not found"
	MsgContactDeleted = "contact deleted"
)

const (
	DefaultContactsLimit = 20
	MaxContactsLimit     = 100
	MaxContactsPage      = 100000
)

// ContactService manages the contacts of a single owner per call. Contacts
// of other users are indistinguishable from missing ones.
type ContactService struct {
	contactRepository repository.ContactRepository
}

func NewContactService(contactRepository repository.ContactRepository) *ContactService {
	return &ContactService{
		contactRepository: contactRepository,
	}
}

func (s *ContactService) List(ctx context.Context, ownerID string, filter model.ContactFilter) ([]*model.Contact, error) {
	contacts, err := s.contactRepository.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (s *ContactService) Get(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	contact, err := s.contactRepository.ByID(ctx, ownerID, id)
	return contact, notFound(err, "get contact")
}

func (s *ContactService) Create(ctx context.Context, ownerID string, contact *model.Contact) (*model.Contact, error) {
	contact.OwnerID = ownerID
	if err := s.contactRepository.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, ownerID, id string, patch model.ContactPatch) (*model.Contact, error) {
	contact, err := s.contactRepository.Update(ctx, ownerID, id, patch)
	return contact, notFound(err, "update contact")
}

func (s *ContactService) SetFavorite(ctx context.Context, ownerID, id string, favorite bool) (*model.Contact, error) {
	contact, err := s.contactRepository.SetFavorite(ctx, ownerID, id, favorite)
	return contact, notFound(err, "update favorite")
}

func (s *ContactService) Delete(ctx context.Context, ownerID, id string) error {
	_, err := s.contactRepository.Delete(ctx, ownerID, id)
	return notFound(err, "delete contact")
}

// notFound classifies a repository error from a single-contact operation.
func notFound(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrContactNotFound) {
		return apperr.NotFound(MsgNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
