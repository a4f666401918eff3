package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/krkdev/contacts-api/internal/apperr"
	"github.com/krkdev/contacts-api/internal/ctxkeys"
	"github.com/krkdev/contacts-api/internal/model"
	"github.com/krkdev/contacts-api/internal/service"
	"github.com/krkdev/contacts-api/internal/validation"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := contactFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	contacts, err := h.contactService.List(r.Context(), ctxkeys.User(r.Context()).ID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contactService.Get(r.Context(), ctxkeys.User(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := payload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	input, err := validation.ValidateContactCreate(p)
	if err != nil {
		writeError(w, r, invalid(err))
		return
	}

	contact, err := h.contactService.Create(r.Context(), ctxkeys.User(r.Context()).ID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, err := payload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	patch, err := validation.ValidateContactUpdate(p)
	if err != nil {
		writeError(w, r, invalid(err))
		return
	}

	contact, err := h.contactService.Update(r.Context(), ctxkeys.User(r.Context()).ID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.contactService.Delete(r.Context(), ctxkeys.User(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, service.MsgContactDeleted)
}

func (h *ContactHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	p, err := payload(w, r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, validation.ErrMissingFavorite.Error())
		return
	}

	favorite, err := validation.ValidateFavorite(p)
	if err != nil {
		writeError(w, r, invalid(err))
		return
	}

	contact, err := h.contactService.SetFavorite(r.Context(), ctxkeys.User(r.Context()).ID, r.PathValue("contactId"), favorite)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// contactFilter reads ?favorite=&page=&limit=. Without page and limit the
// whole list is returned.
func contactFilter(r *http.Request) (model.ContactFilter, error) {
	var filter model.ContactFilter
	q := r.URL.Query()

	if v := q.Get("favorite"); v != "" {
		favorite, err := strconv.ParseBool(v)
		if err != nil {
			return filter, apperr.Validation(`"favorite" must be a boolean`)
		}
		filter.Favorite = &favorite
	}

	pageStr, limitStr := q.Get("page"), q.Get("limit")
	if pageStr == "" && limitStr == "" {
		return filter, nil
	}

	page, err := positiveInt(pageStr, 1, "page")
	if err != nil {
		return filter, err
	}
	if page > service.MaxContactsPage {
		return filter, apperr.Validation(fmt.Sprintf(`"page" must be less than or equal to %d`, service.MaxContactsPage))
	}
	limit, err := positiveInt(limitStr, service.DefaultContactsLimit, "limit")
	if err != nil {
		return filter, err
	}
	if limit > service.MaxContactsLimit {
		return filter, apperr.Validation(fmt.Sprintf(`"limit" must be less than or equal to %d`, service.MaxContactsLimit))
	}

	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter, nil
}

func positiveInt(v string, def int, name string) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, apperr.Validation(fmt.Sprintf(`"%s" must be a positive integer`, name))
	}
	return n, nil
}
