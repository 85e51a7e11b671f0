package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialgraph/socialgraph-api/internal/domain/user"
	"github.com/socialgraph/socialgraph-api/internal/pkg/jwt"
	"github.com/socialgraph/socialgraph-api/internal/pkg/password"
)

func init() {
	password.Cost = bcrypt.MinCost
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*user.User
	createErr error
	lastLogin map[uuid.UUID]bool
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uuid.UUID]*user.User{}, lastLogin: map[uuid.UUID]bool{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, displayName, bio sql.NullString) error {
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogin[id] = true
	return nil
}

type fakeTokenStore struct {
	mu    sync.Mutex
	items map[string]uuid.UUID
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{items: map[string]uuid.UUID{}}
}

func (s *fakeTokenStore) Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tokenHash] = userID
	return nil
}

func (s *fakeTokenStore) Consume(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.items[tokenHash]
	if !ok {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	delete(s.items, tokenHash)
	return id, nil
}

func (s *fakeTokenStore) Delete(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, tokenHash)
	return nil
}

func newTestService(repo *fakeUserRepo, store *fakeTokenStore) *Service {
	return NewService(repo, jwt.NewService("secret", time.Minute, time.Hour), store)
}

func seedUser(t *testing.T, email, username, pass string) *user.User {
	t.Helper()
	hash, err := password.Hash(pass)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now()
	return &user.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         user.RoleMember,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestRegisterNormalizesAndIssuesTokens(t *testing.T) {
	repo := newFakeUserRepo()
	store := newFakeTokenStore()
	svc := newTestService(repo, store)

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:       "  Alice@Example.COM ",
		Username:    " Alice_1 ",
		Password:    "password123",
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.User.Email)
	}
	if resp.User.Username != "alice_1" {
		t.Fatalf("expected normalized username, got %q", resp.User.Username)
	}
	if resp.User.Role != string(user.RoleMember) {
		t.Fatalf("expected member role, got %q", resp.User.Role)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if resp.Tokens.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", resp.Tokens.TokenType)
	}
	if len(store.items) != 1 {
		t.Fatalf("expected one stored refresh token, got %d", len(store.items))
	}
	if _, ok := store.items[jwt.HashRefreshToken(resp.Tokens.RefreshToken)]; !ok {
		t.Fatal("refresh token must be stored by hash")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	existing := seedUser(t, "taken@example.com", "taken", "password123")

	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
	}{
		{
			name:    "email",
			req:     RegisterRequest{Email: "TAKEN@example.com", Username: "fresh", Password: "password123"},
			wantErr: ErrEmailAlreadyExists,
		},
		{
			name:    "username",
			req:     RegisterRequest{Email: "fresh@example.com", Username: "Taken", Password: "password123"},
			wantErr: ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeUserRepo(existing), newFakeTokenStore())
			req := tt.req
			_, err := svc.Register(context.Background(), &req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRegisterMapsUniqueViolationFromInsert(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = &pq.Error{Code: sqlStateUniqueViolation, Constraint: "users_username_key"}
	svc := newTestService(repo, newFakeTokenStore())

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "race@example.com",
		Username: "race",
		Password: "password123",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	active := seedUser(t, "bob@example.com", "bob", "password123")
	banned := seedUser(t, "eve@example.com", "eve", "password123")
	banned.IsBanned = true

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "success", email: "Bob@example.com", password: "password123"},
		{name: "wrong password", email: "bob@example.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@example.com", password: "password123", wantErr: ErrInvalidCredentials},
		{name: "banned", email: "eve@example.com", password: "password123", wantErr: ErrUserBanned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo(active, banned)
			svc := newTestService(repo, newFakeTokenStore())

			resp, err := svc.Login(context.Background(), &LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.User.ID != active.ID {
				t.Fatalf("expected user %s, got %s", active.ID, resp.User.ID)
			}
			if !repo.lastLogin[active.ID] {
				t.Fatal("expected last login to be recorded")
			}
		})
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	u := seedUser(t, "carol@example.com", "carol", "password123")
	store := newFakeTokenStore()
	svc := newTestService(newFakeUserRepo(u), store)

	first, err := svc.Login(context.Background(), &LoginRequest{Email: u.Email, Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.Tokens.RefreshToken == first.Tokens.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	if _, err := svc.Refresh(context.Background(), first.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected reused token to be rejected, got %v", err)
	}
}

func TestRefreshRejectsInvalidInput(t *testing.T) {
	u := seedUser(t, "dan@example.com", "dan", "password123")
	svc := newTestService(newFakeUserRepo(u), newFakeTokenStore())

	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrRefreshTokenRequired) {
		t.Fatalf("expected ErrRefreshTokenRequired, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}

	// Signed correctly but never stored
	other := jwt.NewService("secret", time.Minute, time.Hour)
	token, _, _, err := other.GenerateRefreshToken(u.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken for unknown token, got %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	u := seedUser(t, "erin@example.com", "erin", "password123")
	store := newFakeTokenStore()
	svc := newTestService(newFakeUserRepo(u), store)

	resp, err := svc.Login(context.Background(), &LoginRequest{Email: u.Email, Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), resp.Tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), resp.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestGetCurrentUserNotFound(t *testing.T) {
	svc := newTestService(newFakeUserRepo(), newFakeTokenStore())
	if _, err := svc.GetCurrentUser(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMapRegisterError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "email constraint", err: &pq.Error{Code: sqlStateUniqueViolation, Constraint: "users_email_key"}, want: ErrEmailAlreadyExists},
		{name: "username constraint", err: &pq.Error{Code: sqlStateUniqueViolation, Constraint: "users_username_key"}, want: ErrUsernameTaken},
		{name: "user repo sentinel", err: user.ErrEmailAlreadyExists, want: ErrEmailAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapRegisterError(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	other := errors.New("connection reset")
	got := mapRegisterError(other)
	if !errors.Is(got, other) {
		t.Fatalf("expected wrapped error, got %v", got)
	}
	if got.Error() != "register step create_user: connection reset" {
		t.Fatalf("unexpected message %q", got.Error())
	}
}
