package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/iamlokanath/imagehub/internal/models"
	"github.com/iamlokanath/imagehub/internal/repository"
	"github.com/iamlokanath/imagehub/internal/service"
)

// fakeImageService implements ImageService for testing.
type fakeImageService struct {
	own       []models.Image
	all       []models.Image
	allErr    error
	created   models.Image
	createErr error
	deleteErr error
	deletedID string
	gotTitle  string
	gotDesc   string
	gotFile   string
	gotBody   []byte
}

func (f *fakeImageService) ListOwn(ctx context.Context, userID string) ([]models.Image, error) {
	return f.own, nil
}

func (f *fakeImageService) ListAll(ctx context.Context, viewer models.User) ([]models.Image, error) {
	return f.all, f.allErr
}

func (f *fakeImageService) Create(ctx context.Context, owner models.User, title, description string, file io.Reader, filename string) (models.Image, error) {
	f.gotTitle = title
	f.gotDesc = description
	f.gotFile = filename
	f.gotBody, _ = io.ReadAll(file)
	return f.created, f.createErr
}

func (f *fakeImageService) Delete(ctx context.Context, viewer models.User, id string) error {
	f.deletedID = id
	return f.deleteErr
}

// fakeUserResolver maps fixed tokens to users.
type fakeUserResolver struct {
	users map[string]models.User
}

func (f *fakeUserResolver) ResolveToken(ctx context.Context, token string) (models.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return models.User{}, errors.New("invalid token")
}

func newTestRouter(t *testing.T, images ImageService) (http.Handler, string) {
	t.Helper()
	resolver := &fakeUserResolver{users: map[string]models.User{
		"user-token":  {ID: "u1", Name: "A", Email: "a@x.com", Role: models.RoleUser},
		"admin-token": {ID: "u2", Name: "B", Email: "b@x.com", Role: models.RoleSuperAdmin},
	}}
	dir := t.TempDir()
	auth := &AuthHandler{AuthService: &fakeAuthService{}}
	return NewRouter(auth, &ImagesHandler{ImageService: images}, resolver, zap.NewNop(), dir), dir
}

func multipartBody(t *testing.T, title, description, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	_ = w.WriteField("title", title)
	_ = w.WriteField("description", description)
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestImages_RequireAuth(t *testing.T) {
	router, _ := newTestRouter(t, &fakeImageService{})

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/auth/me"},
		{"GET", "/api/images/my-images"},
		{"GET", "/api/images/all"},
		{"POST", "/api/images"},
		{"DELETE", "/api/images/img1"},
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestImages_ListMine(t *testing.T) {
	svc := &fakeImageService{own: []models.Image{{ID: "img1", Owner: models.OwnerRef{ID: "u1"}, Title: "T"}}}
	router, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/images/my-images", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var images []models.Image
	if err := json.Unmarshal(rec.Body.Bytes(), &images); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(images) != 1 || images[0].ID != "img1" {
		t.Errorf("images = %+v", images)
	}
}

func TestImages_ListAllForbidden(t *testing.T) {
	svc := &fakeImageService{allErr: service.ErrForbidden}
	router, _ := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/images/all", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestImages_Create(t *testing.T) {
	svc := &fakeImageService{created: models.Image{ID: "img1", Title: "T"}}
	router, _ := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "T", "D", "a.png", "binary")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/images", body)
	req.Header.Set("Authorization", "Bearer user-token")
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.gotTitle != "T" || svc.gotDesc != "D" || svc.gotFile != "a.png" {
		t.Errorf("service saw title=%q desc=%q file=%q", svc.gotTitle, svc.gotDesc, svc.gotFile)
	}
	if string(svc.gotBody) != "binary" {
		t.Errorf("service saw body %q", svc.gotBody)
	}
}

func TestImages_CreateMissingFile(t *testing.T) {
	svc := &fakeImageService{}
	router, _ := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "T", "D", "", "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/images", body)
	req.Header.Set("Authorization", "Bearer user-token")
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestImages_CreateMissingTitle(t *testing.T) {
	svc := &fakeImageService{createErr: service.ErrTitleRequired}
	router, _ := newTestRouter(t, svc)

	body, contentType := multipartBody(t, "", "", "a.png", "binary")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/images", body)
	req.Header.Set("Authorization", "Bearer user-token")
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestImages_Delete(t *testing.T) {
	tests := []struct {
		name      string
		deleteErr error
		wantCode  int
	}{
		{"success", nil, http.StatusOK},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeImageService{deleteErr: tt.deleteErr}
			router, _ := newTestRouter(t, svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("DELETE", "/api/images/img1", nil)
			req.Header.Set("Authorization", "Bearer admin-token")
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if svc.deletedID != "img1" {
				t.Errorf("service saw id %q", svc.deletedID)
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	router, _ := newTestRouter(t, &fakeImageService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var u models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.ID != "u1" || u.Role != models.RoleUser {
		t.Errorf("user = %+v", u)
	}
}

func TestUploadsStatic(t *testing.T) {
	router, dir := newTestRouter(t, &fakeImageService{})
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("img"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/uploads/a.png", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "img" {
		t.Errorf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}
