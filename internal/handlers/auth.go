package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/snaplife/apiserver/internal/services"
	"github.com/snaplife/apiserver/internal/store"
)

// AuthHandler provides the account and session endpoints.
type AuthHandler struct {
	accounts *services.AccountService
	sessions *services.SessionService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(accounts *services.AccountService, sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, accounts *services.AccountService, sessions *services.SessionService) {
	handler := NewAuthHandler(accounts, sessions)

	r.Post("/user/login", handler.Login)
	r.Post("/user/logoff", handler.Logoff)
	r.Post("/user/create", handler.Create)
	r.Post("/user/delete", handler.Delete)
}

// Login authenticates a user's login request and opens their session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, decodeErrorMessage)
		return
	}

	user, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("user %s is not found", req.Username))
		case errors.Is(err, services.ErrAlreadyLoggedIn):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("user %s is already signed in", req.Username))
		case errors.Is(err, services.ErrPasswordMismatch):
			writeError(w, http.StatusForbidden, fmt.Sprintf("username %s, or password is incorrect", req.Username))
		default:
			writeError(w, http.StatusInternalServerError, "failed to sign in")
		}
		return
	}

	writeJSON(w, http.StatusOK, UserIDResponse{Message: "success", UserID: user.UserID})
}

// Logoff closes the user's session. Logging off a user who is not
// signed in succeeds as a no-op.
func (h *AuthHandler) Logoff(w http.ResponseWriter, r *http.Request) {
	var req LogoffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, decodeErrorMessage)
		return
	}

	if err := h.sessions.Logoff(r.Context(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("userid %d is not found", req.UserID))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to sign out")
		return
	}

	writeJSON(w, http.StatusOK, UserIDResponse{Message: "success", UserID: req.UserID})
}

// Create registers a new user account.
func (h *AuthHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, decodeErrorMessage)
		return
	}

	var profileImage []byte
	if strings.TrimSpace(req.ProfilePic) != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ProfilePic)
		if err != nil {
			writeError(w, http.StatusBadRequest, "image decode error, bad data sent to the server")
			return
		}
		profileImage = decoded
	}

	user, err := h.accounts.Create(r.Context(), services.CreateAccountParams{
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Password:     req.Password,
		Email:        req.Email,
		About:        req.About,
		ProfileImage: profileImage,
	})
	if err != nil {
		var validationErr *services.ValidationError
		var duplicateErr *services.DuplicateUsernameError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, validationErr.Error())
		case errors.As(err, &duplicateErr):
			writeError(w, http.StatusBadRequest, duplicateErr.Error())
		case errors.Is(err, store.ErrUserIDTaken), errors.Is(err, store.ErrConflict):
			writeError(w, http.StatusInternalServerError, "username and email need to be unique")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	writeJSON(w, http.StatusOK, UserIDResponse{Message: "success", UserID: user.UserID})
}

// Delete removes a user account after re-verifying their password.
func (h *AuthHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req DeleteUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, decodeErrorMessage)
		return
	}

	userID, err := h.accounts.Delete(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("user %s is not found", req.Username))
		case errors.Is(err, services.ErrPasswordMismatch):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("username %s, or password is incorrect", req.Username))
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete user")
		}
		return
	}

	writeJSON(w, http.StatusOK, UserIDResponse{Message: "success", UserID: userID})
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LogoffRequest struct {
	UserID int64 `json:"userid"`
}

type CreateUserRequest struct {
	Username   string `json:"username"`
	FirstName  string `json:"firstname"`
	LastName   string `json:"lastname"`
	Password   string `json:"password"`
	Email      string `json:"email"`
	About      string `json:"about"`
	ProfilePic string `json:"profilepic"`
}

type DeleteUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserIDResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userid"`
}
