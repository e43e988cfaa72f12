package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseTokenVerifiesRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		UserID: "user-1",
		Role:   "student",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "issuer",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	})
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ParseToken(&key.PublicKey, "issuer", signed)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "student" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"})
	forged, err := hs.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseToken(&key.PublicKey, "issuer", forged); err == nil {
		t.Fatalf("expected HS256 token to be rejected")
	}
}

func TestParseRSAPublicKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	pkcs1 := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey)})
	parsed, err := ParseRSAPublicKey(string(pkcs1))
	if err != nil {
		t.Fatalf("parse pkcs1: %v", err)
	}
	if parsed.N.Cmp(key.PublicKey.N) != 0 {
		t.Fatalf("expected same modulus")
	}
	if _, err := ParseRSAPublicKey(""); err == nil {
		t.Fatalf("expected empty key to fail")
	}
}
