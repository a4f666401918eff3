package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/krkdev/contacts-api/internal/model"
)

var (
	ErrContactNotFound = errors.New("contact not found")
)

// ContactRepository persists contacts. Every method is scoped to the owning
// user; a contact owned by someone else is reported as ErrContactNotFound.
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	List(ctx context.Context, ownerID string, filter model.ContactFilter) ([]*model.Contact, error)
	ByID(ctx context.Context, ownerID, id string) (*model.Contact, error)
	Update(ctx context.Context, ownerID, id string, patch model.ContactPatch) (*model.Contact, error)
	SetFavorite(ctx context.Context, ownerID, id string, favorite bool) (*model.Contact, error)
	Delete(ctx context.Context, ownerID, id string) (*model.Contact, error)
}

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = contact.CreatedAt

	query := `INSERT INTO contacts (id, owner_id, name, email, phone, favorite, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		contact.ID,
		contact.OwnerID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Favorite,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	return err
}

func (r *contactRepository) List(ctx context.Context, ownerID string, filter model.ContactFilter) ([]*model.Contact, error) {
	var (
		where = []string{"owner_id = ?"}
		args  = []any{ownerID}
	)

	if filter.Favorite != nil {
		where = append(where, "favorite = ?")
		args = append(args, *filter.Favorite)
	}

	query := `SELECT * FROM contacts WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at, id`

	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	contacts := []*model.Contact{}
	err := r.db.SelectContext(ctx, &contacts, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

func (r *contactRepository) ByID(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	contact := &model.Contact{}
	query := `SELECT * FROM contacts WHERE id = $1 AND owner_id = $2`

	err := r.db.GetContext(ctx, contact, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}

	return contact, nil
}

// Update applies the non-nil fields of patch in a single statement so
// concurrent partial updates never overwrite each other's untouched fields.
func (r *contactRepository) Update(ctx context.Context, ownerID, id string, patch model.ContactPatch) (*model.Contact, error) {
	contact := &model.Contact{}
	query := `
		UPDATE contacts
		SET name = COALESCE($1, name),
		    email = COALESCE($2, email),
		    phone = COALESCE($3, phone),
		    favorite = COALESCE($4, favorite),
		    updated_at = $5
		WHERE id = $6 AND owner_id = $7
		RETURNING *
	`

	err := r.db.GetContext(ctx, contact, query,
		patch.Name,
		patch.Email,
		patch.Phone,
		patch.Favorite,
		time.Now().UTC(),
		id,
		ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}

	return contact, nil
}

func (r *contactRepository) SetFavorite(ctx context.Context, ownerID, id string, favorite bool) (*model.Contact, error) {
	contact := &model.Contact{}
	query := `UPDATE contacts SET favorite = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4 RETURNING *`

	err := r.db.GetContext(ctx, contact, query, favorite, time.Now().UTC(), id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}

	return contact, nil
}

func (r *contactRepository) Delete(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	contact := &model.Contact{}
	query := `DELETE FROM contacts WHERE id = $1 AND owner_id = $2 RETURNING *`

	err := r.db.GetContext(ctx, contact, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}

	return contact, nil
}
