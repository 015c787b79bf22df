package auth

import (
	"context"
	"errors"
	"testing"
)

func TestHashPrefix_LengthAndDeterminism(t *testing.T) {
	k := "test-key"
	p1 := HashPrefix(k)
	p2 := HashPrefix(k)
	if len(p1) != 8 { t.Fatalf("len=%d", len(p1)) }
	if p1 != p2 { t.Fatalf("non-deterministic: %s vs %s", p1, p2) }
	if HashPrefix("other") == p1 { t.Fatalf("distinct keys share prefix") }
}

func TestNewKey(t *testing.T) {
	a, err := NewKey()
	if err != nil { t.Fatalf("new key: %v", err) }
	b, _ := NewKey()
	if len(a) != 64 || a == b { t.Fatalf("bad keys %q %q", a, b) }
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAPIKeyStore("dev-123", "")
	if ok, err := s.Validate(ctx, "dev-123"); err != nil || !ok { t.Fatalf("seeded key ok=%v err=%v", ok, err) }
	if ok, _ := s.Validate(ctx, "nope"); ok { t.Fatalf("unknown key accepted") }
	if _, err := s.Validate(ctx, ""); !errors.Is(err, ErrMissingKey) { t.Fatalf("err=%v", err) }
	if err := s.Create(ctx, "dev-123", false, "x"); err != nil { t.Fatalf("create: %v", err) }
	if ok, _ := s.Validate(ctx, "dev-123"); ok { t.Fatalf("deactivated key accepted") }
	if err := s.Create(ctx, "", true, ""); !errors.Is(err, ErrMissingKey) { t.Fatalf("err=%v", err) }
	if err := s.Ping(ctx); err != nil { t.Fatalf("ping: %v", err) }
}
