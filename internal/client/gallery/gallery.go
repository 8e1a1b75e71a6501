// Package gallery keeps the client's in-memory image collection
// consistent with the server. Every mutation is followed by a full
// re-fetch instead of a local patch, so the displayed collection is
// always a snapshot from one point in time on the server.
package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/iamlokanath/imagehub/internal/client/session"
	"github.com/iamlokanath/imagehub/internal/models"
)

// ErrMissingFile is returned when an upload draft has no file selected.
// No request is sent in that case.
var ErrMissingFile = errors.New("no file selected")

// ErrForbidden is returned when the current role does not permit the
// operation. The guard is a UX convenience; the server enforces the
// same rule independently.
var ErrForbidden = errors.New("operation not permitted for current role")

// Draft is the unsent, locally edited upload form state.
type Draft struct {
	Title       string
	Description string
	// File is the selected local binary, nil until the user picks one.
	File io.Reader
	// Filename is the original name of the selected file.
	Filename string
}

// Reset clears the draft back to its empty state.
func (d *Draft) Reset() {
	d.Title = ""
	d.Description = ""
	d.File = nil
	d.Filename = ""
}

// Gallery owns the in-memory image collection for one session.
type Gallery struct {
	session *session.Session
	client  *http.Client

	mu     sync.Mutex
	images []models.Image
}

// New returns a Gallery bound to the given session. All its requests go
// through the session's transport and therefore carry the current token.
func New(sess *session.Session) *Gallery {
	return &Gallery{
		session: sess,
		client:  sess.Client(),
		images:  []models.Image{},
	}
}

// Images returns a copy of the most recently fetched collection.
func (g *Gallery) Images() []models.Image {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Image, len(g.images))
	copy(out, g.images)
	return out
}

// Clear empties the collection, for when the session ends.
func (g *Gallery) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.images = []models.Image{}
}

// FetchAll replaces the collection wholesale with the server's current
// state. The endpoint is scoped by role: plain users fetch only their
// own images, elevated roles fetch everything. On failure the previous
// collection is left untouched. Without an authenticated session this
// is a no-op.
func (g *Gallery) FetchAll(ctx context.Context) error {
	user := g.session.CurrentUser()
	if user == nil {
		return nil
	}

	var path string
	switch user.Role {
	case models.RoleUser:
		path = "/api/images/my-images"
	case models.RoleAdmin, models.RoleSuperAdmin:
		path = "/api/images/all"
	default:
		return fmt.Errorf("unknown role %q", user.Role)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.session.BaseURL()+path, nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch images: %s", resp.Status)
	}
	var images []models.Image
	if err := json.NewDecoder(resp.Body).Decode(&images); err != nil {
		return fmt.Errorf("decode images: %w", err)
	}
	if images == nil {
		images = []models.Image{}
	}

	g.mu.Lock()
	g.images = images
	g.mu.Unlock()
	return nil
}

// Upload sends the draft as a multipart request. A draft without a file
// fails locally with ErrMissingFile before any network call. On success
// the draft is reset immediately and the collection re-fetched; the
// reset happens whether or not the re-fetch succeeds. On failure the
// draft is left untouched so the user can retry without re-entering
// data. Without an authenticated session this is a no-op.
func (g *Gallery) Upload(ctx context.Context, draft *Draft) error {
	if g.session.CurrentUser() == nil {
		return nil
	}
	if draft.File == nil {
		return ErrMissingFile
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", draft.Filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, draft.File); err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	if err := w.WriteField("title", draft.Title); err != nil {
		return err
	}
	if err := w.WriteField("description", draft.Description); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.session.BaseURL()+"/api/images", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("upload image: %s", resp.Status)
	}

	draft.Reset()
	return g.FetchAll(ctx)
}

// Remove deletes an image by id and re-fetches the collection. Only a
// super_admin session issues the request; any other role gets
// ErrForbidden without a network call. Without an authenticated session
// this is a no-op.
func (g *Gallery) Remove(ctx context.Context, imageID string) error {
	user := g.session.CurrentUser()
	if user == nil {
		return nil
	}
	if !user.Role.CanDelete() {
		return ErrForbidden
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, g.session.BaseURL()+"/api/images/"+imageID, nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("delete image: %s", resp.Status)
	}

	return g.FetchAll(ctx)
}
