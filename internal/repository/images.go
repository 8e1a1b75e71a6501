package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iamlokanath/imagehub/internal/models"
)

// PostgresImageRepository implements image persistence against a PostgreSQL database.
type PostgresImageRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresImageRepository creates a new PostgresImageRepository using the
// provided *sql.DB. db must be a valid connection to a PostgreSQL instance.
func NewPostgresImageRepository(db *sql.DB) *PostgresImageRepository {
	return &PostgresImageRepository{DB: db}
}

// ListByOwner fetches all images uploaded by the given user, newest first.
// The owner reference stays a bare user id.
func (r *PostgresImageRepository) ListByOwner(ctx context.Context, userID string) ([]models.Image, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, image_url, title, COALESCE(description, ''), uploaded_at
		  FROM images WHERE user_id = $1 ORDER BY uploaded_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer rows.Close()

	images := []models.Image{}
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.Owner.ID, &img.ImageURL, &img.Title, &img.Description, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ListAll fetches every image with the owner expanded to the full user
// record, newest first.
func (r *PostgresImageRepository) ListAll(ctx context.Context) ([]models.Image, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT i.id, i.image_url, i.title, COALESCE(i.description, ''), i.uploaded_at,
		       u.id, u.name, u.email, u.role
		  FROM images i JOIN users u ON u.id = i.user_id
		 ORDER BY i.uploaded_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	defer rows.Close()

	images := []models.Image{}
	for rows.Next() {
		var (
			img  models.Image
			u    models.User
			role string
		)
		if err := rows.Scan(&img.ID, &img.ImageURL, &img.Title, &img.Description, &img.UploadedAt,
			&u.ID, &u.Name, &u.Email, &role); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		u.Role, err = models.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("ListAll: %w", err)
		}
		img.Owner = models.OwnerRef{ID: u.ID, User: &u}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Create inserts a new image row.
func (r *PostgresImageRepository) Create(ctx context.Context, img models.Image) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO images (id, user_id, image_url, title, description, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, img.ID, img.Owner.ID, img.ImageURL, img.Title, img.Description, img.UploadedAt)
	return err
}

// GetByID fetches a single image by id. Returns ErrNotFound if absent.
func (r *PostgresImageRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	var img models.Image
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, image_url, title, COALESCE(description, ''), uploaded_at
		  FROM images WHERE id = $1
	`, id).Scan(&img.ID, &img.Owner.ID, &img.ImageURL, &img.Title, &img.Description, &img.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &img, nil
}

// Delete removes the image row with the given id. Returns ErrNotFound
// if no row was deleted.
func (r *PostgresImageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}
