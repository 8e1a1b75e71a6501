package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/iamlokanath/imagehub/internal/models"
)

// fakeImageRepo implements ImageRepository for testing.
type fakeImageRepo struct {
	own       []models.Image
	all       []models.Image
	created   []models.Image
	createErr error
	byID      *models.Image
	byIDErr   error
	deleted   []string
	deleteErr error
}

func (f *fakeImageRepo) ListByOwner(ctx context.Context, userID string) ([]models.Image, error) {
	return f.own, nil
}
func (f *fakeImageRepo) ListAll(ctx context.Context) ([]models.Image, error) { return f.all, nil }
func (f *fakeImageRepo) Create(ctx context.Context, img models.Image) error {
	f.created = append(f.created, img)
	return f.createErr
}
func (f *fakeImageRepo) GetByID(ctx context.Context, id string) (*models.Image, error) {
	return f.byID, f.byIDErr
}
func (f *fakeImageRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

// fakeFileStore implements FileStore for testing.
type fakeFileStore struct {
	saved   []string
	saveURL string
	saveErr error
	removed []string
}

func (f *fakeFileStore) Save(r io.Reader, name string) (string, error) {
	f.saved = append(f.saved, name)
	return f.saveURL, f.saveErr
}
func (f *fakeFileStore) Remove(url string) error {
	f.removed = append(f.removed, url)
	return nil
}

func TestListAll_RoleGate(t *testing.T) {
	repo := &fakeImageRepo{all: []models.Image{{ID: "img1"}}}
	svc := NewImageService(repo, &fakeFileStore{})

	if _, err := svc.ListAll(context.Background(), models.User{Role: models.RoleUser}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("user role: expected ErrForbidden, got %v", err)
	}
	for _, role := range []models.Role{models.RoleAdmin, models.RoleSuperAdmin} {
		images, err := svc.ListAll(context.Background(), models.User{Role: role})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", role, err)
		}
		if len(images) != 1 {
			t.Errorf("%s: len = %d", role, len(images))
		}
	}
}

func TestCreate(t *testing.T) {
	repo := &fakeImageRepo{}
	files := &fakeFileStore{saveURL: "/uploads/x.png"}
	svc := NewImageService(repo, files)

	owner := models.User{ID: "u1", Role: models.RoleUser}
	img, err := svc.Create(context.Background(), owner, " T ", " D ", strings.NewReader("bin"), "a.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.ID == "" || img.ImageURL != "/uploads/x.png" || img.Title != "T" || img.Description != "D" {
		t.Errorf("image = %+v", img)
	}
	if img.Owner.ID != "u1" {
		t.Errorf("owner = %+v", img.Owner)
	}
	if img.UploadedAt.IsZero() {
		t.Error("uploadedAt not set")
	}
	if len(repo.created) != 1 {
		t.Errorf("created = %d records", len(repo.created))
	}
}

func TestCreate_TitleRequired(t *testing.T) {
	files := &fakeFileStore{saveURL: "/uploads/x.png"}
	svc := NewImageService(&fakeImageRepo{}, files)

	_, err := svc.Create(context.Background(), models.User{ID: "u1"}, "  ", "", strings.NewReader("bin"), "a.png")
	if !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if len(files.saved) != 0 {
		t.Error("binary stored despite validation failure")
	}
}

func TestCreate_InsertFailureRemovesBinary(t *testing.T) {
	repo := &fakeImageRepo{createErr: errors.New("insert failed")}
	files := &fakeFileStore{saveURL: "/uploads/x.png"}
	svc := NewImageService(repo, files)

	_, err := svc.Create(context.Background(), models.User{ID: "u1"}, "T", "", strings.NewReader("bin"), "a.png")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(files.removed) != 1 || files.removed[0] != "/uploads/x.png" {
		t.Errorf("stored binary not cleaned up: %v", files.removed)
	}
}

func TestDelete_RoleGate(t *testing.T) {
	repo := &fakeImageRepo{byID: &models.Image{ID: "img1", ImageURL: "/uploads/x.png"}}
	files := &fakeFileStore{}
	svc := NewImageService(repo, files)

	for _, role := range []models.Role{models.RoleUser, models.RoleAdmin} {
		if err := svc.Delete(context.Background(), models.User{Role: role}, "img1"); !errors.Is(err, ErrForbidden) {
			t.Errorf("%s: expected ErrForbidden, got %v", role, err)
		}
	}
	if len(repo.deleted) != 0 {
		t.Error("record deleted despite role gate")
	}

	if err := svc.Delete(context.Background(), models.User{Role: models.RoleSuperAdmin}, "img1"); err != nil {
		t.Fatalf("super_admin delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "img1" {
		t.Errorf("deleted = %v", repo.deleted)
	}
	if len(files.removed) != 1 || files.removed[0] != "/uploads/x.png" {
		t.Errorf("binary not removed: %v", files.removed)
	}
}
