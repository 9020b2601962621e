package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mblog/apiserver/internal/services"
	"github.com/mblog/apiserver/internal/store"
	"github.com/mblog/apiserver/types"
)

// UserHandler provides account management endpoints.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router. All routes
// require authentication; listing additionally requires the admin flag.
func UserRouter(r chi.Router, userService *services.UserService, authHandler *AuthHandler) {
	handler := NewUserHandler(userService)

	r.Use(authHandler.RequireAuth)
	r.With(authHandler.RequireAdmin).Get("/", handler.ListUsers)
	r.Route("/{userID}", func(r chi.Router) {
		r.Post("/deactivate", handler.DeactivateUser)
		r.Delete("/", handler.DeleteUser)
	})
}

// ListUsers returns a page of accounts. Admin only.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.userService.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// DeactivateUser soft-deletes an account. Callers may deactivate
// themselves; admins may deactivate anyone.
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeTarget(w, r)
	if !ok {
		return
	}

	if err := h.userService.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to deactivate user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser permanently removes an account. Same authorization rule as
// DeactivateUser.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeTarget(w, r)
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizeTarget parses the target user id and enforces the
// self-or-admin rule. It writes the error response itself when the
// check fails.
func (h *UserHandler) authorizeTarget(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}

	actor, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	if actor.ID != id && !actor.IsAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return 0, false
	}
	return id, true
}

func parseUserID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

// UserListResponse is the paginated list response payload.
type UserListResponse struct {
	Items []types.User `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int          `json:"total"`
}
