package auth

import (
	"encoding/base64"
	"testing"
)

func TestNewResetToken(t *testing.T) {
	token, digest, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken() error = %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) < 32 {
		t.Errorf("token carries %d bytes, want at least 32", len(raw))
	}
	if digest != HashResetToken(token) {
		t.Error("digest does not match HashResetToken(token)")
	}
	if digest == token {
		t.Error("digest must differ from the token")
	}
}

func TestNewResetToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		token, _, err := NewResetToken()
		if err != nil {
			t.Fatalf("NewResetToken() error = %v", err)
		}
		if seen[token] {
			t.Fatalf("NewResetToken() repeated %q", token)
		}
		seen[token] = true
	}
}

func TestHashResetToken_Deterministic(t *testing.T) {
	if HashResetToken("abc") != HashResetToken("abc") {
		t.Error("HashResetToken() is not deterministic")
	}
	if HashResetToken("abc") == HashResetToken("abd") {
		t.Error("HashResetToken() collided on different inputs")
	}
}
