package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"math/big"
)

// KeySet is the JWKS document served at /.well-known/jwks.json.
type KeySet struct {
	Keys []PublicJWK `json:"keys"`
}

type PublicJWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// PublishedKeys lists the signing key first, then any retired keys whose
// access tokens may still be in circulation. Duplicates are dropped.
func PublishedKeys(signing *rsa.PublicKey, retired ...*rsa.PublicKey) (KeySet, error) {
	if signing == nil {
		return KeySet{}, errors.New("jwks: signing public key is required")
	}
	set := KeySet{}
	seen := map[string]bool{}
	for _, key := range append([]*rsa.PublicKey{signing}, retired...) {
		if key == nil {
			continue
		}
		kid, err := KeyID(key)
		if err != nil {
			return KeySet{}, err
		}
		if seen[kid] {
			continue
		}
		seen[kid] = true
		set.Keys = append(set.Keys, PublicJWK{
			Kty: "RSA",
			Use: "sig",
			Kid: kid,
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		})
	}
	return set, nil
}
