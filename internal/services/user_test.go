package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/useraccounts/apiserver/internal/store"
	"github.com/useraccounts/apiserver/types"
)

type fakeUserRepo struct {
	users map[string]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]types.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrDuplicateUsername
		}
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

type recordedEvent struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type recordingPublisher struct {
	events []recordedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	p.events = append(p.events, recordedEvent{channel: channel, data: data, attrs: attrs})
	return "msg-1", nil
}

func newTestService(repo *fakeUserRepo, events EventPublisher) *UserService {
	svc := NewUserService(repo, stubHasher{}, events)
	// Deterministic clock that advances a second per call.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
	return svc
}

func validInput() RegisterInput {
	return RegisterInput{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "pw123",
	}
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	publisher := &recordingPublisher{}
	svc := newTestService(repo, publisher)

	user, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected a generated user id")
	}
	if user.Role != types.RoleUser {
		t.Fatalf("expected default role %q, got %q", types.RoleUser, user.Role)
	}
	if user.PasswordHash != "hashed:pw123" {
		t.Fatalf("expected hashed password, got %q", user.PasswordHash)
	}
	if !user.CreatedAt.Equal(user.UpdatedAt) {
		t.Fatalf("expected created_at == updated_at on registration")
	}
	if _, err := repo.GetByID(context.Background(), user.ID); err != nil {
		t.Fatalf("expected the user to be persisted: %v", err)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.events))
	}
	if publisher.events[0].channel != ChannelUserRegistered {
		t.Fatalf("expected %q event, got %q", ChannelUserRegistered, publisher.events[0].channel)
	}
	if publisher.events[0].attrs["user_id"] != user.ID {
		t.Fatalf("expected user_id attribute %q, got %q", user.ID, publisher.events[0].attrs["user_id"])
	}
}

func TestRegisterGeneratesDistinctIDs(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	first, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	input := validInput()
	input.Username = "bob"
	input.Email = "bob@example.com"
	second, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, both were %q", first.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	input := validInput()
	input.Username = "alice2"
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	input := validInput()
	input.Email = "alice2@example.com"
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, store.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestRegisterDuplicateEmailTakesPrecedence(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Same username and same email: the email conflict wins.
	if _, err := svc.Register(context.Background(), validInput()); !errors.Is(err, store.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"empty username", func(in *RegisterInput) { in.Username = "  " }},
		{"empty first name", func(in *RegisterInput) { in.FirstName = "" }},
		{"empty last name", func(in *RegisterInput) { in.LastName = "" }},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"empty password", func(in *RegisterInput) { in.Password = "" }},
		{"unknown role", func(in *RegisterInput) { in.Role = "superuser" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(newFakeUserRepo(), nil)
			input := validInput()
			tc.mutate(&input)

			if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegisterAcceptsAdminRole(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), nil)

	input := validInput()
	input.Role = types.RoleAdmin
	user, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != types.RoleAdmin {
		t.Fatalf("expected admin role, got %q", user.Role)
	}
}

func strptr(s string) *string { return &s }

func TestUpdateProfilePartial(t *testing.T) {
	repo := newFakeUserRepo()
	publisher := &recordingPublisher{}
	svc := newTestService(repo, publisher)

	input := validInput()
	input.Address = "1 Main St"
	created, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), created.ID, types.UserUpdate{
		FirstName: strptr("Alicia"),
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FirstName != "Alicia" {
		t.Fatalf("expected first name to change, got %q", updated.FirstName)
	}
	if updated.LastName != created.LastName {
		t.Fatalf("expected last name to stay %q, got %q", created.LastName, updated.LastName)
	}
	if updated.Address != "1 Main St" {
		t.Fatalf("expected address to stay, got %q", updated.Address)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at to advance")
	}

	last := publisher.events[len(publisher.events)-1]
	if last.channel != ChannelUserUpdated {
		t.Fatalf("expected %q event, got %q", ChannelUserUpdated, last.channel)
	}
}

func TestUpdateProfileClearsOptionalField(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	input := validInput()
	input.Address = "1 Main St"
	input.PhoneNumber = "555-0100"
	created, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), created.ID, types.UserUpdate{
		Address: strptr(""),
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Address != "" {
		t.Fatalf("expected address to be cleared, got %q", updated.Address)
	}
	if updated.PhoneNumber != "555-0100" {
		t.Fatalf("expected phone number to stay, got %q", updated.PhoneNumber)
	}
}

func TestUpdateProfileRejectsEmptyName(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	created, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.UpdateProfile(context.Background(), created.ID, types.UserUpdate{
		FirstName: strptr("  "),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UpdateProfile(context.Background(), created.ID, types.UserUpdate{
		LastName: strptr(""),
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateProfileNoFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	created, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), created.ID, types.UserUpdate{})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FirstName != created.FirstName || updated.Email != created.Email {
		t.Fatalf("expected profile fields to be unchanged")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at to advance even with no fields set")
	}
}

func TestUpdateProfileReplacesSocialLinks(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	input := validInput()
	input.SocialLinks = types.SocialLinks{"github": "https://github.com/alice", "blog": "https://alice.dev"}
	created, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), created.ID, types.UserUpdate{
		SocialLinks: types.SocialLinks{"github": "https://github.com/alicia"},
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if len(updated.SocialLinks) != 1 {
		t.Fatalf("expected social links to be replaced wholesale, got %v", updated.SocialLinks)
	}
	if updated.SocialLinks["github"] != "https://github.com/alicia" {
		t.Fatalf("unexpected social links: %v", updated.SocialLinks)
	}
}

func TestUpdateProfileNotFound(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), nil)

	if _, err := svc.UpdateProfile(context.Background(), "missing", types.UserUpdate{
		FirstName: strptr("Alicia"),
	}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByIDAndUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	created, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	byID, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Username != "alice" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	byName, err := svc.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("unexpected user: %+v", byName)
	}

	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetByUsername(context.Background(), "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
