package authctx

import (
	"context"
	"testing"
)

type testClaims struct {
	Subject string
}

func TestSetAndGet(t *testing.T) {
	ctx := Set(context.Background(), &testClaims{Subject: "alice"})

	claims, ok := Get[*testClaims](ctx)
	if !ok {
		t.Fatal("expected claims to be present")
	}
	if claims.Subject != "alice" {
		t.Errorf("subject = %q, want alice", claims.Subject)
	}
}

func TestGetMissing(t *testing.T) {
	if _, ok := Get[*testClaims](context.Background()); ok {
		t.Error("expected no claims in a fresh context")
	}
}

func TestGetWrongType(t *testing.T) {
	ctx := Set(context.Background(), "not-a-claims-struct")
	if _, ok := Get[*testClaims](ctx); ok {
		t.Error("expected type mismatch to report absence")
	}
}

func TestMustGetPanicsWhenMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustGet[*testClaims](context.Background())
}

func TestGetOrError(t *testing.T) {
	if _, err := GetOrError[*testClaims](context.Background()); err != ErrNoClaims {
		t.Errorf("err = %v, want ErrNoClaims", err)
	}

	ctx := Set(context.Background(), &testClaims{Subject: "bob"})
	claims, err := GetOrError[*testClaims](ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "bob" {
		t.Errorf("subject = %q, want bob", claims.Subject)
	}
}
