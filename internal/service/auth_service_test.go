package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"miheater/internal/models"
)

const testSigningKey = "test-signing-key"

// fakeAuthRepo is an in-memory repository.Authorization.
type fakeAuthRepo struct {
	users  map[string]*models.User
	err    error
	nextID int

	creates []string
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[string]*models.User{}, nextID: 1}
}

func (f *fakeAuthRepo) Create(username, hash string) (int, error) {
	f.creates = append(f.creates, username)
	if f.err != nil {
		return 0, f.err
	}
	id := f.nextID
	f.nextID++
	f.users[username] = &models.User{ID: id, Username: username, PasswordHash: hash}
	return id, nil
}

func (f *fakeAuthRepo) GetByUsername(username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

func (f *fakeAuthRepo) Count(ctx context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.users), nil
}

func newTestAuth(repo *fakeAuthRepo) *AuthService {
	return NewAuthService(repo, AuthConfig{SigningKey: testSigningKey, TokenTTL: time.Hour})
}

func signWith(t *testing.T, method jwt.SigningMethod, key any, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestAuthService_SignUpStoresHash(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuth(repo)

	id, err := svc.SignUp("alice", "s3cr3t")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}
	stored := repo.users["alice"].PasswordHash
	if stored == "s3cr3t" {
		t.Fatalf("password stored in clear")
	}
	if err := verifyPassword(stored, "s3cr3t"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestAuthService_SignUpRejectsEmpty(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuth(repo)

	for _, c := range [][2]string{{"bob", "   "}, {" ", "pw"}} {
		if _, err := svc.SignUp(c[0], c[1]); !errors.Is(err, ErrEmptyCredential) {
			t.Fatalf("SignUp(%q,%q): expected ErrEmptyCredential, got %v", c[0], c[1], err)
		}
	}
	if len(repo.creates) != 0 {
		t.Fatalf("repo must not be called, got %v", repo.creates)
	}
}

func TestAuthService_SignUpRepoError(t *testing.T) {
	repo := newFakeAuthRepo()
	repo.err = errors.New("db down")
	if _, err := newTestAuth(repo).SignUp("carl", "pass123"); err == nil {
		t.Fatalf("expected repo error")
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuth(repo)
	if _, err := svc.SignUp("diana", "letmein"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	token, err := svc.GenerateToken("diana", "letmein")
	if err != nil || token == "" {
		t.Fatalf("GenerateToken: %q, %v", token, err)
	}
	uid, err := svc.ParseToken(token)
	if err != nil || uid != 1 {
		t.Fatalf("ParseToken = %d, %v", uid, err)
	}
}

func TestAuthService_GenerateTokenFailures(t *testing.T) {
	repo := newFakeAuthRepo()
	svc := newTestAuth(repo)
	if _, err := svc.SignUp("eve", "correct"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if _, err := svc.GenerateToken("ghost", "pw"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.GenerateToken("eve", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	repo.err = errors.New("query failed")
	if _, err := svc.GenerateToken("eve", "correct"); err == nil {
		t.Fatalf("expected repo error")
	}
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	svc := newTestAuth(newFakeAuthRepo())
	now := time.Now()
	valid := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	expired := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
	}
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa key: %v", err)
	}

	cases := map[string]string{
		"malformed":    "not-a-jwt",
		"wrong key":    signWith(t, jwt.SigningMethodHS256, []byte("other"), &Claims{RegisteredClaims: valid, UserID: 5}),
		"expired":      signWith(t, jwt.SigningMethodHS256, []byte(testSigningKey), &Claims{RegisteredClaims: expired, UserID: 11}),
		"non-HMAC alg": signWith(t, jwt.SigningMethodRS256, rsaKey, &Claims{RegisteredClaims: valid, UserID: 12}),
	}
	for name, token := range cases {
		if _, err := svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestAuthService_TokenTTLFromConfig(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(), AuthConfig{SigningKey: testSigningKey, TokenTTL: time.Minute})
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.issueToken(3)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if _, err := svc.ParseToken(token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expiry after configured TTL, got %v", err)
	}
}

func TestAuthService_Bootstrap(t *testing.T) {
	ctx := context.Background()
	repo := newFakeAuthRepo()
	svc := newTestAuth(repo)

	if err := svc.Bootstrap(ctx, "", ""); err != nil || len(repo.creates) != 0 {
		t.Fatalf("no credentials must be a no-op: %v %v", err, repo.creates)
	}
	if err := svc.Bootstrap(ctx, "admin", "pw"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := svc.Bootstrap(ctx, "admin2", "pw"); err != nil {
		t.Fatalf("Bootstrap second: %v", err)
	}
	if len(repo.creates) != 1 || repo.creates[0] != "admin" {
		t.Fatalf("expected only the first bootstrap to create a user, got %v", repo.creates)
	}
}
