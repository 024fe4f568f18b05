package handler

import (
	"net/http"
	"strings"

	"go-vidtube/internal/middleware"
	"go-vidtube/internal/model"
	"go-vidtube/internal/service"
	"go-vidtube/internal/storage"
	"go-vidtube/pkg/apierror"
)

type UserHandler struct {
	users   *service.UserService
	forms   *formParser
	cookies sessionCookies
}

func NewUserHandler(users *service.UserService, staging *storage.Staging, maxUploadSize int64, secureCookies bool) *UserHandler {
	return &UserHandler{
		users:   users,
		forms:   &formParser{staging: staging, maxBytes: maxUploadSize},
		cookies: sessionCookies{secure: secureCookies},
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) error {
	form, err := h.forms.parse(w, r, "avatar", "coverImage")
	if err != nil {
		return err
	}
	defer h.forms.cleanup(form)

	user, err := h.users.Register(r.Context(), model.RegisterInput{
		FullName:       form.Values["fullName"],
		Email:          form.Values["email"],
		Username:       form.Values["username"],
		Password:       form.Values["password"],
		AvatarPath:     form.Files["avatar"],
		CoverImagePath: form.Files["coverImage"],
	})
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusCreated, user, "User registered successfully")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	user, pair, err := h.users.Login(r.Context(), req)
	if err != nil {
		return err
	}

	h.cookies.set(w, pair)
	return writeSuccess(w, http.StatusOK, model.LoginResult{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	if err := h.users.Logout(r.Context(), user.ID); err != nil {
		return err
	}

	h.cookies.clear(w)
	return writeSuccess(w, http.StatusOK, struct{}{}, "User logged out")
}

// RefreshToken takes the refresh token from its cookie, falling back to the
// JSON body for clients that do not keep cookies.
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) error {
	token := ""
	if cookie, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
		token = strings.TrimSpace(cookie.Value)
	}
	if token == "" {
		var req model.RefreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return err
		}
		token = strings.TrimSpace(req.RefreshToken)
	}

	pair, err := h.users.Refresh(r.Context(), token)
	if err != nil {
		return err
	}

	h.cookies.set(w, pair)
	return writeSuccess(w, http.StatusOK, pair, "Access token refreshed")
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	var req model.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	if err := h.users.ChangePassword(r.Context(), user.ID, req); err != nil {
		return err
	}

	return writeSuccess(w, http.StatusOK, struct{}{}, "Password changed successfully")
}

func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}
	return writeSuccess(w, http.StatusOK, user, "Current user fetched successfully")
}

func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	var req model.UpdateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	updated, err := h.users.UpdateAccount(r.Context(), user.ID, req)
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusOK, updated, "Account details updated successfully")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	form, err := h.forms.parse(w, r, "avatar")
	if err != nil {
		return err
	}
	defer h.forms.cleanup(form)

	updated, err := h.users.UpdateAvatar(r.Context(), user.ID, form.Files["avatar"])
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusOK, updated, "Avatar image updated successfully")
}

func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) error {
	user, err := currentUser(r)
	if err != nil {
		return err
	}

	form, err := h.forms.parse(w, r, "coverImage")
	if err != nil {
		return err
	}
	defer h.forms.cleanup(form)

	updated, err := h.users.UpdateCoverImage(r.Context(), user.ID, form.Files["coverImage"])
	if err != nil {
		return err
	}

	return writeSuccess(w, http.StatusOK, updated, "Cover image updated successfully")
}

func currentUser(r *http.Request) (model.User, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return model.User{}, apierror.Unauthorized("Unauthorized request")
	}
	return user, nil
}
