package handler

import (
	"errors"
	"net/http"

	"github.com/krkdev/contacts-api/internal/ctxkeys"
	"github.com/krkdev/contacts-api/internal/model"
	"github.com/krkdev/contacts-api/internal/service"
	"github.com/krkdev/contacts-api/internal/validation"
)

const (
	// multipart overhead on top of the largest accepted avatar
	maxAvatarRequestBytes = 6 << 20
	msgMissingEmail       = "missing required field email"
)

type UserHandler struct {
	authService   *service.AuthService
	userService   *service.UserService
	avatarService *service.AvatarService
}

func NewUserHandler(authService *service.AuthService, userService *service.UserService, avatarService *service.AvatarService) *UserHandler {
	return &UserHandler{
		authService:   authService,
		userService:   userService,
		avatarService: avatarService,
	}
}

type signupResponse struct {
	User model.PublicUser `json:"user"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

type avatarResponse struct {
	AvatarURL string `json:"avatarURL"`
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	creds, err := h.credentials(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.authService.Signup(r.Context(), creds)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{User: user.PublicWithAvatar()})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := h.credentials(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, user, err := h.authService.Login(r.Context(), creds)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user.Public()})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.authService.Logout(r.Context(), ctxkeys.SessionHash(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Current(r.Context(), ctxkeys.User(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

func (h *UserHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	p, err := payload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tier, err := validation.ValidateSubscription(p)
	if err != nil {
		writeError(w, r, invalid(err))
		return
	}

	user, err := h.userService.UpdateSubscription(r.Context(), ctxkeys.User(r.Context()).ID, tier)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user.Public())
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarRequestBytes)

	err := r.ParseMultipartForm(1 << 20)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusBadRequest, "file too large: maximum size is 5 MB")
			return
		}
		writeMessage(w, http.StatusBadRequest, service.MsgNoFileUploaded)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, service.MsgNoFileUploaded)
		return
	}
	_ = file.Close()

	avatarURL, err := h.avatarService.Update(r.Context(), ctxkeys.User(r.Context()).ID, header)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, avatarResponse{AvatarURL: avatarURL})
}

func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	err := h.authService.Verify(r.Context(), r.PathValue("verificationToken"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, service.MsgVerificationSucceeded)
}

func (h *UserHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	p, err := payload(w, r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgMissingEmail)
		return
	}

	email, err := validation.ValidateEmailOnly(p)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgMissingEmail)
		return
	}

	err = h.authService.ResendVerification(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, service.MsgVerificationSent)
}

func (h *UserHandler) credentials(w http.ResponseWriter, r *http.Request) (validation.Credentials, error) {
	p, err := payload(w, r)
	if err != nil {
		return validation.Credentials{}, err
	}

	creds, err := validation.ValidateCredentials(p)
	if err != nil {
		return validation.Credentials{}, invalid(err)
	}

	return creds, nil
}

