package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iamlokanath/imagehub/internal/models"
)

// ErrForbidden is returned when the caller's role does not permit the operation.
var ErrForbidden = errors.New("forbidden")

// ErrTitleRequired is returned when an upload has an empty title.
var ErrTitleRequired = errors.New("title is required")

// ImageRepository defines the persistence operations needed by the ImageService.
type ImageRepository interface {
	// ListByOwner retrieves the images uploaded by the given user.
	ListByOwner(ctx context.Context, userID string) ([]models.Image, error)
	// ListAll retrieves every image with expanded owner records.
	ListAll(ctx context.Context) ([]models.Image, error)
	// Create inserts a new image record.
	Create(ctx context.Context, img models.Image) error
	// GetByID fetches a single image record by id.
	GetByID(ctx context.Context, id string) (*models.Image, error)
	// Delete removes the image record with the given id.
	Delete(ctx context.Context, id string) error
}

// FileStore persists and removes image binaries.
type FileStore interface {
	Save(r io.Reader, originalName string) (string, error)
	Remove(imageURL string) error
}

// ImageService implements the image collection business logic.
type ImageService struct {
	repo  ImageRepository
	files FileStore
}

// NewImageService constructs an ImageService with the provided repository
// and file store.
func NewImageService(repo ImageRepository, files FileStore) *ImageService {
	return &ImageService{repo: repo, files: files}
}

// ListOwn returns the images uploaded by the given user.
func (s *ImageService) ListOwn(ctx context.Context, userID string) ([]models.Image, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// ListAll returns the whole collection. Only elevated roles may call it.
func (s *ImageService) ListAll(ctx context.Context, viewer models.User) ([]models.Image, error) {
	if !viewer.Role.CanViewAll() {
		return nil, ErrForbidden
	}
	return s.repo.ListAll(ctx)
}

// Create stores the binary and inserts the image record. The title is
// required; the description may be empty. If the record insert fails the
// stored binary is removed again.
func (s *ImageService) Create(ctx context.Context, owner models.User, title, description string, file io.Reader, filename string) (models.Image, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Image{}, ErrTitleRequired
	}

	url, err := s.files.Save(file, filename)
	if err != nil {
		return models.Image{}, fmt.Errorf("store binary: %w", err)
	}

	img := models.Image{
		ID:          uuid.NewString(),
		Owner:       models.OwnerRef{ID: owner.ID},
		ImageURL:    url,
		Title:       title,
		Description: strings.TrimSpace(description),
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, img); err != nil {
		_ = s.files.Remove(url)
		return models.Image{}, fmt.Errorf("create image record: %w", err)
	}
	return img, nil
}

// Delete removes an image record and its binary. Only super admins may call it.
func (s *ImageService) Delete(ctx context.Context, viewer models.User, id string) error {
	if !viewer.Role.CanDelete() {
		return ErrForbidden
	}
	img, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.files.Remove(img.ImageURL)
}
