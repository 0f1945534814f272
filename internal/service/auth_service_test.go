package service

import (
	"context"
	"errors"
	"testing"

	"github.com/omarwdev/feedhub/internal/auth"
)

func TestSignupLoginRoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret")
	ctx := context.Background()

	resp, err := svc.Signup(ctx, SignupInput{Email: "o@example.com", Name: "Omar", Password: "sup3rsecret"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("signup returned no token")
	}
	if resp.User.Status != "I am new!" {
		t.Errorf("default status = %q", resp.User.Status)
	}

	// Issued tokens must classify as authenticated with the same secret.
	ident := auth.NewVerifier("test-secret").Verify("Bearer " + resp.Token)
	if !ident.Authenticated || ident.UserID != resp.User.ID {
		t.Errorf("issued token classified as %+v, want authenticated as %s", ident, resp.User.ID)
	}

	if _, err := svc.Signup(ctx, SignupInput{Email: "o@example.com", Name: "Dup", Password: "sup3rsecret"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate signup err = %v, want ErrEmailTaken", err)
	}

	login, err := svc.Login(ctx, LoginInput{Email: "o@example.com", Password: "sup3rsecret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("login returned user %s, want %s", login.User.ID, resp.User.ID)
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "o@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCreds", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "sup3rsecret"}); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCreds", err)
	}
}
