package store

import (
	"context"
	"testing"
)

func TestCredentialsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.CredentialRepo()
	ctx := context.Background()

	c, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load (empty): %v", err)
	}
	if c != nil {
		t.Fatal("expected nil credentials when signed out")
	}

	err = repo.Save(ctx, Credentials{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Email:        "ada@example.com",
		FirstName:    "Ada",
		Grade:        "10",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	c, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.AccessToken != "access-1" || c.RefreshToken != "refresh-1" {
		t.Errorf("tokens = %q/%q", c.AccessToken, c.RefreshToken)
	}
	if c.FirstName != "Ada" || c.Grade != "10" {
		t.Errorf("identity = %+v", c)
	}
	if c.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}
}

func TestCredentialsSaveReplaces(t *testing.T) {
	s := openTestStore(t)
	repo := s.CredentialRepo()
	ctx := context.Background()

	for _, tok := range []string{"one", "two"} {
		if err := repo.Save(ctx, Credentials{AccessToken: tok, RefreshToken: tok}); err != nil {
			t.Fatalf("save %s: %v", tok, err)
		}
	}

	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM credentials").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}

	c, _ := repo.Load(ctx)
	if c.AccessToken != "two" {
		t.Errorf("access = %q, want two", c.AccessToken)
	}
}

func TestCredentialsUpdateAccessAndClear(t *testing.T) {
	s := openTestStore(t)
	repo := s.CredentialRepo()
	ctx := context.Background()

	// Signed out: update is a no-op.
	if err := repo.UpdateAccess(ctx, "ignored"); err != nil {
		t.Fatalf("update (empty): %v", err)
	}
	if c, _ := repo.Load(ctx); c != nil {
		t.Fatal("update must not create credentials")
	}

	if err := repo.Save(ctx, Credentials{AccessToken: "old", RefreshToken: "r"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.UpdateAccess(ctx, "new"); err != nil {
		t.Fatalf("update: %v", err)
	}
	c, _ := repo.Load(ctx)
	if c.AccessToken != "new" || c.RefreshToken != "r" {
		t.Errorf("after update = %q/%q", c.AccessToken, c.RefreshToken)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if c, _ := repo.Load(ctx); c != nil {
		t.Error("expected nil credentials after clear")
	}
}
