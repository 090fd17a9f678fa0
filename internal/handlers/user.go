package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/useraccounts/apiserver/internal/services"
	"github.com/useraccounts/apiserver/types"
)

// UserHandler provides HTTP handlers for user records.
type UserHandler struct {
	userService *services.UserService

	// exposePasswordHash selects the extended response projection on
	// update and lookup responses. The register response always carries
	// the hash.
	exposePasswordHash bool
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService, exposePasswordHash bool) *UserHandler {
	return &UserHandler{
		userService:        userService,
		exposePasswordHash: exposePasswordHash,
	}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, exposePasswordHash bool) {
	handler := NewUserHandler(userService, exposePasswordHash)

	r.Post("/register", handler.Register)
	r.Put("/edit/{userID}", handler.Edit)
	r.Get("/{userID}", handler.GetByID)
	r.Get("/username/{username}", handler.GetByUsername)
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Password    string            `json:"password"`
	Address     string            `json:"address"`
	PhoneNumber string            `json:"phone_number"`
	Role        string            `json:"role"`
	SocialLinks types.SocialLinks `json:"social_links"`
}

// Register creates a new user account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    req.Password,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		SocialLinks: req.SocialLinks,
	})
	if err != nil {
		writeServiceError(w, err, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Edit applies a partial profile update to an existing user.
func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	var update types.UserUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, update)
	if err != nil {
		writeServiceError(w, err, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, h.project(user))
}

// GetByID retrieves a user's details by their ID.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, h.project(user))
}

// GetByUsername retrieves a user's details by their username (exact match).
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "missing username")
		return
	}

	user, err := h.userService.GetByUsername(r.Context(), username)
	if err != nil {
		writeServiceError(w, err, "failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, h.project(user))
}

func (h *UserHandler) project(user types.User) types.User {
	if h.exposePasswordHash {
		return user
	}
	return user.Redacted()
}
