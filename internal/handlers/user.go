package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/snaplife/apiserver/internal/services"
	"github.com/snaplife/apiserver/internal/store"
)

// UserHandler provides the follow graph and profile endpoints.
type UserHandler struct {
	users    *services.UserService
	sessions *services.SessionService
	follows  *services.FollowService
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(users *services.UserService, sessions *services.SessionService, follows *services.FollowService) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, follows: follows}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, users *services.UserService, sessions *services.SessionService, follows *services.FollowService) {
	handler := NewUserHandler(users, sessions, follows)

	r.Post("/follow/new", handler.FollowNew)
	r.Post("/follow/remove", handler.FollowRemove)
	r.Get("/online/{username}", handler.Online)
	r.Get("/description/{userid}", handler.GetDescription)
	r.Post("/description", handler.SetDescription)
	r.Get("/count/{userid}/{counttype}", handler.Count)
}

// FollowNew adds a follow edge from the signed-in user to the named target.
func (h *UserHandler) FollowNew(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, decodeErrorMessage)
		return
	}

	target, count, err := h.follows.Follow(r.Context(), req.UserID, req.Username)
	if err != nil {
		writeFollowError(w, req.Username, err)
		return
	}

	writeJSON(w, http.StatusOK, FollowResponse{
		Message:      "success",
		FollowCount:  count,
		FollowName:   target.Username,
		FollowAvatar: target.ProfileURL,
	})
}

// FollowRemove removes the follow edge if present.
func (h *UserHandler) FollowRemove(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, decodeErrorMessage)
		return
	}

	_, count, err := h.follows.Unfollow(r.Context(), req.UserID, req.Username)
	if err != nil {
		writeFollowError(w, req.Username, err)
		return
	}

	writeJSON(w, http.StatusOK, UnfollowResponse{Message: "success", FollowerCount: count})
}

// Online reports whether the named user is signed in, expiring stale
// sessions as a side effect.
func (h *UserHandler) Online(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	loggedIn, user, err := h.sessions.Online(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("user %s is not found", username))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check user")
		return
	}

	writeJSON(w, http.StatusOK, OnlineResponse{Message: "success", LoggedIn: loggedIn, UserID: user.UserID})
}

// GetDescription returns the user's about text.
func (h *UserHandler) GetDescription(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad user id")
		return
	}

	about, err := h.users.Description(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("userid %d is not found", userID))
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, DescriptionResponse{Message: "success", Description: about})
}

// SetDescription updates the user's about text.
func (h *UserHandler) SetDescription(w http.ResponseWriter, r *http.Request) {
	var req DescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, decodeErrorMessage)
		return
	}

	if err := h.users.SetDescription(r.Context(), req.UserID, req.Description); err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, validationErr.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusBadRequest, fmt.Sprintf("userid %d is not found", req.UserID))
		default:
			writeError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "success"})
}

// Count returns the user's post or follower count.
func (h *UserHandler) Count(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad user id")
		return
	}

	if _, err := h.users.GetByUserID(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "bad user id")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	countType := chi.URLParam(r, "counttype")
	count, ok, err := h.users.Count(r.Context(), userID, countType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("count type %s is not valid", countType))
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Message: "success", Count: count})
}

func writeFollowError(w http.ResponseWriter, username string, err error) {
	switch {
	case errors.Is(err, services.ErrNotSignedIn):
		writeError(w, http.StatusBadRequest, "user is not signed in")
	case errors.Is(err, services.ErrSelfFollow):
		writeError(w, http.StatusBadRequest, "cannot follow yourself")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("user %s is not found", username))
	default:
		writeError(w, http.StatusInternalServerError, "failed to update followers")
	}
}

func userIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "userid"), 10, 64)
}

type FollowRequest struct {
	UserID   int64  `json:"userid"`
	Username string `json:"username"`
}

type FollowResponse struct {
	Message      string `json:"message"`
	FollowCount  int    `json:"followcount"`
	FollowName   string `json:"followname"`
	FollowAvatar string `json:"followavatar"`
}

type UnfollowResponse struct {
	Message       string `json:"message"`
	FollowerCount int    `json:"followercount"`
}

type OnlineResponse struct {
	Message  string `json:"message"`
	LoggedIn bool   `json:"loggedin"`
	UserID   int64  `json:"userid"`
}

type DescriptionRequest struct {
	UserID      int64  `json:"userid"`
	Description string `json:"description"`
}

type DescriptionResponse struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

type CountResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
