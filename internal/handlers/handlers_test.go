package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/useraccounts/apiserver/internal/auth"
	"github.com/useraccounts/apiserver/internal/services"
	"github.com/useraccounts/apiserver/internal/storage"
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

type fakeTenantRepo struct {
	tenants map[string]types.Tenant
}

func (r *fakeTenantRepo) GetByCompanyName(_ context.Context, companyName string) (types.Tenant, error) {
	tenant, ok := r.tenants[companyName]
	if !ok {
		return types.Tenant{}, store.ErrNotFound
	}
	return tenant, nil
}

type fakeObject struct {
	data        []byte
	contentType string
}

type fakeObjectStorage struct {
	objects map[string]fakeObject
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string]fakeObject)}
}

func (s *fakeObjectStorage) EnsureBucket(context.Context) error { return nil }

func (s *fakeObjectStorage) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = fakeObject{data: data, contentType: contentType}
	return nil
}

func (s *fakeObjectStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	object, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(object.data)), nil
}

func (s *fakeObjectStorage) Stat(_ context.Context, key string) (storage.ObjectInfo, error) {
	object, ok := s.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Size: int64(len(object.data)), ContentType: object.contentType}, nil
}

func (s *fakeObjectStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeObjectStorage) Bucket() string { return "test-bucket" }

type testEnv struct {
	router  *chi.Mux
	repo    *fakeUserRepo
	tenants *fakeTenantRepo
	objects *fakeObjectStorage
}

type envOptions struct {
	exposePasswordHash bool
	noObjectStorage    bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	repo := newFakeUserRepo()
	tenants := &fakeTenantRepo{tenants: make(map[string]types.Tenant)}

	passwords := auth.NewPasswordHasher(bcrypt.MinCost)
	tokens, err := auth.NewTokenIssuer("test-secret", "HS256", 30*time.Minute)
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}

	userService := services.NewUserService(repo, passwords, nil)
	tenantService := services.NewTenantService(tenants)

	var objects *fakeObjectStorage
	var objectStorage storage.ObjectStorage
	if !opts.noObjectStorage {
		objects = newFakeObjectStorage()
		objectStorage = objects
	}

	router := chi.NewRouter()
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userService, opts.exposePasswordHash)
		TenantRouter(r, tenantService)
		AvatarRouter(r, userService, objectStorage)
	})
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, passwords, tokens)
	})

	return &testEnv{
		router:  router,
		repo:    repo,
		tenants: tenants,
		objects: objects,
	}
}

func (env *testEnv) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(rec.Body.Bytes(), &value); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
	return value
}

func registerRequest() RegisterRequest {
	return RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "pw123",
	}
}

func (env *testEnv) register(t *testing.T, req RegisterRequest) types.User {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/users/register", req, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[types.User](t, rec)
}
