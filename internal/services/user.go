package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/useraccounts/apiserver/internal/store"
	"github.com/useraccounts/apiserver/types"
)

// ErrInvalidInput is returned when a request fails well-formedness checks.
var ErrInvalidInput = errors.New("invalid input")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// PasswordHasher derives a one-way hash from a plaintext password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username    string
	Email       string
	FirstName   string
	LastName    string
	Password    string
	Address     string
	PhoneNumber string
	Role        string
	SocialLinks types.SocialLinks
}

// UserService encapsulates the user record lifecycle.
type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
	events EventPublisher
	now    Clock
}

// NewUserService constructs a UserService. events may be nil when no
// broker is configured.
func NewUserService(repo UserRepository, hasher PasswordHasher, events EventPublisher) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		events: events,
		now:    defaultClock,
	}
}

// Register creates a new user record. Email is checked for duplicates
// before username, so when both collide the email conflict is reported.
// The unique indexes remain the authoritative check: a concurrent
// registration that slips past the lookups is rejected by the insert and
// surfaces as the same duplicate error.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (types.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if input.Username == "" || input.FirstName == "" || input.LastName == "" {
		return types.User{}, fmt.Errorf("%w: missing required fields", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return types.User{}, fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if input.Password == "" {
		return types.User{}, fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	}
	if input.Role == "" {
		input.Role = types.RoleUser
	}
	if !types.ValidRole(input.Role) {
		return types.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return types.User{}, store.ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}
	if _, err := s.repo.GetByUsername(ctx, input.Username); err == nil {
		return types.User{}, store.ErrDuplicateUsername
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := types.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
		Address:      input.Address,
		PhoneNumber:  input.PhoneNumber,
		SocialLinks:  input.SocialLinks,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return types.User{}, err
	}

	s.publish(ctx, ChannelUserRegistered, created)
	return created, nil
}

// UpdateProfile applies a partial update to the mutable profile fields.
// Nil fields are left unchanged; a non-nil empty string clears an optional
// field but is rejected for the required name fields. updated_at is
// refreshed even when no field is set.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update types.UserUpdate) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if update.FirstName != nil {
		name := strings.TrimSpace(*update.FirstName)
		if name == "" {
			return types.User{}, fmt.Errorf("%w: first_name must not be empty", ErrInvalidInput)
		}
		user.FirstName = name
	}
	if update.LastName != nil {
		name := strings.TrimSpace(*update.LastName)
		if name == "" {
			return types.User{}, fmt.Errorf("%w: last_name must not be empty", ErrInvalidInput)
		}
		user.LastName = name
	}
	if update.Address != nil {
		user.Address = *update.Address
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.SocialLinks != nil {
		user.SocialLinks = update.SocialLinks
	}

	user.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, err
	}

	s.publish(ctx, ChannelUserUpdated, updated)
	return updated, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}
