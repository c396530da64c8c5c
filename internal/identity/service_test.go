package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"buyzo/internal/docstore"
)

const testSecret = "test-secret"

func newTestService() *Service {
	return NewService(docstore.NewMemory(), testSecret)
}

func TestCreateAccount(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	ident, token, err := svc.CreateAccount(ctx, "Alice@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ident.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %s", ident.Email)
	}
	if ident.UID == "" || token == "" {
		t.Errorf("expected uid and token, got %q / %q", ident.UID, token)
	}
}

func TestCreateAccount_WeakPassword(t *testing.T) {
	svc := newTestService()

	if _, _, err := svc.CreateAccount(context.Background(), "alice@example.com", "12345"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, _, err := svc.CreateAccount(ctx, "alice@example.com", "secret1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, _, err := svc.CreateAccount(ctx, "ALICE@example.com", "secret2"); !errors.Is(err, ErrEmailInUse) {
		t.Errorf("expected ErrEmailInUse, got %v", err)
	}
}

func TestCreateAccount_PasswordNeverStoredPlain(t *testing.T) {
	docs := docstore.NewMemory()
	svc := NewService(docs, testSecret)
	ctx := context.Background()

	ident, _, err := svc.CreateAccount(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rec, err := docs.Get(ctx, credentialsCollection, ident.UID)
	if err != nil {
		t.Fatalf("credential not stored: %v", err)
	}

	hash, _ := rec["passwordHash"].(string)
	if hash == "" || strings.Contains(hash, "secret1") {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Errorf("expected bcrypt format, got %q", hash)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, _, err := svc.CreateAccount(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	ident, token, err := svc.Authenticate(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if ident.UID != created.UID {
		t.Errorf("uid mismatch: %s vs %s", ident.UID, created.UID)
	}
	if token == "" {
		t.Error("expected a session token")
	}

	if _, _, err := svc.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, token, err := svc.CreateAccount(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	ident, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ident.UID != created.UID || ident.Email != "alice@example.com" {
		t.Errorf("unexpected identity: %+v", ident)
	}

	if _, err := svc.Verify("not-a-token"); err == nil {
		t.Error("expected error for a malformed token")
	}

	// A token signed with a different secret must not verify.
	other := NewService(docstore.NewMemory(), "other-secret")
	if _, err := other.Verify(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestSubscribe(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	events, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	created, _, err := svc.CreateAccount(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if got := <-events; got == nil || got.UID != created.UID {
		t.Errorf("expected signup event for %s, got %+v", created.UID, got)
	}

	if _, _, err := svc.Authenticate(ctx, "alice@example.com", "secret1"); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if got := <-events; got == nil || got.UID != created.UID {
		t.Errorf("expected login event, got %+v", got)
	}

	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("sign-out failed: %v", err)
	}
	if got := <-events; got != nil {
		t.Errorf("expected nil sign-out event, got %+v", got)
	}
}

func TestSubscribe_UnsubscribeClosesChannel(t *testing.T) {
	svc := newTestService()

	events, unsubscribe := svc.Subscribe()
	unsubscribe()

	if _, ok := <-events; ok {
		t.Error("expected a closed channel after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	if err := svc.SignOut(context.Background()); err != nil {
		t.Fatalf("sign-out failed: %v", err)
	}
}
