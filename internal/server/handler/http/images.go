package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iamlokanath/imagehub/internal/middleware"
	"github.com/iamlokanath/imagehub/internal/models"
	"github.com/iamlokanath/imagehub/internal/repository"
	"github.com/iamlokanath/imagehub/internal/service"
)

// maxUploadBytes caps multipart upload parsing.
const maxUploadBytes = 32 << 20

// ImageService defines the interface for image collection operations
// required by the HTTP handlers.
type ImageService interface {
	// ListOwn returns the images uploaded by the given user.
	ListOwn(ctx context.Context, userID string) ([]models.Image, error)
	// ListAll returns the whole collection for elevated roles.
	ListAll(ctx context.Context, viewer models.User) ([]models.Image, error)
	// Create stores a binary and inserts its image record.
	Create(ctx context.Context, owner models.User, title, description string, file io.Reader, filename string) (models.Image, error)
	// Delete removes an image record and its binary.
	Delete(ctx context.Context, viewer models.User, id string) error
}

// ImagesHandler handles HTTP requests for the image collection.
type ImagesHandler struct {
	// ImageService performs the underlying collection operations.
	ImageService ImageService
}

// ListMine handles GET /api/images/my-images.
// The owner reference in the response stays a bare user id.
func (h *ImagesHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	images, err := h.ImageService.ListOwn(r.Context(), user.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

// ListAll handles GET /api/images/all.
// Only admin and super_admin roles may call it; owners come back expanded.
func (h *ImagesHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	images, err := h.ImageService.ListAll(r.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

// Create handles POST /api/images.
// It expects a multipart form with parts "image" (the binary), "title"
// and "description", and responds 201 with the stored record.
func (h *ImagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	img, err := h.ImageService.Create(
		r.Context(),
		user,
		r.FormValue("title"),
		r.FormValue("description"),
		file,
		header.Filename,
	)
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, img)
}

// Delete handles DELETE /api/images/{id}.
// Only super_admin may delete; other roles get 403.
func (h *ImagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.ImageService.Delete(r.Context(), user, id); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, repository.ErrNotFound):
			http.Error(w, "image not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
