package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Roles a user may hold. New accounts default to RoleUser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SocialLinks maps a link label (e.g. "github") to a URL.
// It is stored as a JSONB column.
type SocialLinks map[string]string

// Value implements driver.Valuer so the map round-trips through lib/pq.
func (s SocialLinks) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB columns.
func (s *SocialLinks) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, s)
	case string:
		return json.Unmarshal([]byte(data), s)
	default:
		return fmt.Errorf("social links: cannot scan %T", src)
	}
}

// User represents an account in the system.
// It contains identity, profile, role, and audit metadata.
type User struct {
	// ID is the opaque unique identifier of the user, generated at
	// creation and immutable afterwards.
	ID string `json:"user_id" db:"user_id"`

	// Username is the unique login name chosen by the user.
	// Immutable after creation.
	Username string `json:"username" db:"username"`

	// Email is the user's email address. Unique and immutable after creation.
	Email string `json:"email" db:"email"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Role indicates the user's authorization level within the
	// system, either "user" or "admin".
	Role string `json:"role" db:"role"`

	// Address is the user's postal address, if provided.
	Address string `json:"address,omitempty" db:"address"`

	// PhoneNumber is the user's phone number, if provided.
	PhoneNumber string `json:"phone_number,omitempty" db:"phone_number"`

	// SocialLinks holds optional labeled profile URLs.
	SocialLinks SocialLinks `json:"social_links,omitempty" db:"social_links"`

	// PasswordHash stores the hashed representation of the user's password.
	// Present in the extended response projection only.
	PasswordHash string `json:"password_hash,omitempty" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Redacted returns a copy of the user with the password hash cleared,
// for the minimal response projection.
func (u User) Redacted() User {
	u.PasswordHash = ""
	return u
}

// UserUpdate describes a partial profile update. A nil field means
// "leave unchanged"; a non-nil value is applied verbatim, so an explicit
// empty string clears an optional field.
type UserUpdate struct {
	FirstName   *string     `json:"first_name"`
	LastName    *string     `json:"last_name"`
	Address     *string     `json:"address"`
	PhoneNumber *string     `json:"phone_number"`
	SocialLinks SocialLinks `json:"social_links"`
}

// ValidRole reports whether role is one of the accepted user roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
