// Package models defines the core data structures for users and images.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role defines the set of valid access tiers.
type Role string

const (
	// RoleUser may view and upload only their own images.
	RoleUser Role = "user"
	// RoleAdmin may view every image but not delete.
	RoleAdmin Role = "admin"
	// RoleSuperAdmin may view every image and delete any of them.
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanViewAll reports whether the role is allowed to list the whole collection.
func (r Role) CanViewAll() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanDelete reports whether the role is allowed to delete images.
func (r Role) CanDelete() bool {
	return r == RoleSuperAdmin
}

// User represents an application user.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Name is the display name chosen at registration.
	Name string `json:"name"`
	// Email is the login identifier.
	Email string `json:"email"`
	// Role is the access tier of the user.
	Role Role `json:"role"`
}

// OwnerRef references the uploader of an image. Depending on the viewer's
// role the server returns either a bare user id or the expanded user object,
// so both encodings are accepted.
type OwnerRef struct {
	// ID is always present.
	ID string
	// User is non-nil only when the server expanded the reference.
	User *User
}

// UnmarshalJSON accepts either a JSON string (bare id) or a user object.
func (o *OwnerRef) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &o.ID)
	}
	var u User
	if err := json.Unmarshal(b, &u); err != nil {
		return err
	}
	o.ID = u.ID
	o.User = &u
	return nil
}

// MarshalJSON emits the expanded user when present, the bare id otherwise.
func (o OwnerRef) MarshalJSON() ([]byte, error) {
	if o.User != nil {
		return json.Marshal(o.User)
	}
	return json.Marshal(o.ID)
}

// Image holds the metadata of one uploaded image.
type Image struct {
	// ID is the unique identifier assigned by the server.
	ID string `json:"id"`
	// Owner references the uploading user.
	Owner OwnerRef `json:"user"`
	// ImageURL is the path to the binary, relative to the server base address.
	ImageURL string `json:"imageUrl"`
	// Title is the required display string.
	Title string `json:"title"`
	// Description is optional.
	Description string `json:"description,omitempty"`
	// UploadedAt is the server-assigned upload timestamp.
	UploadedAt time.Time `json:"uploadedAt"`
}

// ResolveURL joins an image path with the server base address.
func ResolveURL(base, imageURL string) string {
	if strings.HasPrefix(imageURL, "http://") || strings.HasPrefix(imageURL, "https://") {
		return imageURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(imageURL, "/")
}
