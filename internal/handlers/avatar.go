package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/useraccounts/apiserver/internal/services"
	"github.com/useraccounts/apiserver/internal/storage"
)

const maxAvatarBytes = 5 << 20

// AvatarHandler stores and serves profile avatars through the configured
// object storage backend.
type AvatarHandler struct {
	userService *services.UserService
	objects     storage.ObjectStorage
}

// NewAvatarHandler constructs a handler. objects may be nil when no
// storage backend is configured; the endpoints then report 503.
func NewAvatarHandler(userService *services.UserService, objects storage.ObjectStorage) *AvatarHandler {
	return &AvatarHandler{
		userService: userService,
		objects:     objects,
	}
}

// AvatarRouter registers avatar routes on the given router.
func AvatarRouter(r chi.Router, userService *services.UserService, objects storage.ObjectStorage) {
	handler := NewAvatarHandler(userService, objects)

	r.Put("/{userID}/avatar", handler.Upload)
	r.Get("/{userID}/avatar", handler.Download)
}

// Upload stores a new avatar image for the user.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.objects == nil {
		writeError(w, http.StatusServiceUnavailable, "avatar storage is not configured")
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	if _, err := h.userService.GetByID(r.Context(), userID); err != nil {
		writeServiceError(w, err, "failed to fetch user")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "avatar must be an image")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAvatarBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar too large")
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty avatar")
		return
	}

	key := avatarKey(userID)
	if err := h.objects.Put(r.Context(), key, bytes.NewReader(body), int64(len(body)), contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store avatar")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Download streams the user's avatar image.
func (h *AvatarHandler) Download(w http.ResponseWriter, r *http.Request) {
	if h.objects == nil {
		writeError(w, http.StatusServiceUnavailable, "avatar storage is not configured")
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	key := avatarKey(userID)
	info, err := h.objects.Stat(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "avatar not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch avatar")
		return
	}

	object, err := h.objects.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch avatar")
		return
	}
	defer object.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	_, _ = io.Copy(w, object)
}

func avatarKey(userID string) string {
	return "avatars/" + userID
}
