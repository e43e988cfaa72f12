package crypto

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "secret" {
		t.Fatalf("expected hashed password")
	}
	if err := CheckPassword(hash, "secret"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected password mismatch")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	first, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	second, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct refresh tokens")
	}
	if HashToken(first) != HashToken(first) {
		t.Fatalf("expected stable hash")
	}
	if HashToken(first) == HashToken(second) {
		t.Fatalf("expected distinct hashes")
	}
	if !strings.HasPrefix(first, "hwr_") || !IsRefreshToken(first) {
		t.Fatalf("unexpected token shape: %q", first)
	}
}

func TestIsRefreshTokenRejectsMalformed(t *testing.T) {
	valid, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	for _, token := range []string{"", "hwr_", valid[4:], valid + "00", "hwr_" + strings.Repeat("z", 64), strings.ToUpper(valid[:4]) + valid[4:]} {
		if IsRefreshToken(token) {
			t.Fatalf("expected %q to be rejected", token)
		}
	}
}
