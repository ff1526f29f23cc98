package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateSecretHashIsDeterministic(t *testing.T) {
	a := GenerateSecretHash("jane@example.com", "client-id", "client-secret")
	b := GenerateSecretHash("jane@example.com", "client-id", "client-secret")
	if a != b {
		t.Errorf("same inputs produced different hashes: %q vs %q", a, b)
	}

	other := GenerateSecretHash("john@example.com", "client-id", "client-secret")
	if a == other {
		t.Errorf("different usernames produced the same hash %q", a)
	}
	if a == "" {
		t.Error("hash is empty")
	}
}

func TestExtractNameFromEmail(t *testing.T) {
	cases := map[string]string{
		"jane@example.com": "jane",
		"a@b@c":            "a",
		"no-at-sign":       "no-at-sign",
		"@example.com":     "@example.com",
		"":                 "",
	}
	for email, want := range cases {
		if got := ExtractNameFromEmail(email); got != want {
			t.Errorf("ExtractNameFromEmail(%q) = %q, want %q", email, got, want)
		}
	}
}

func TestCheckTokenShape(t *testing.T) {
	if err := CheckTokenShape("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}

	valid, err := GenerateAdminToken("secret", time.Hour, "id", "a@b.com", "admin")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}
	if err := CheckTokenShape(valid); err != nil {
		t.Errorf("fresh token rejected: %v", err)
	}

	expired, err := GenerateAdminToken("secret", -time.Hour, "id", "a@b.com", "admin")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}
	if err := CheckTokenShape(expired); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token: got %v, want ErrTokenExpired", err)
	}

	// A token with no exp claim is malformed for our purposes.
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "x"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	if err := CheckTokenShape(noExp); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token without exp: got %v, want ErrInvalidToken", err)
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken("top-secret", time.Hour, "64f0c2", "staff@example.com", "moderator")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	claims, err := ParseAdminToken("top-secret", token)
	if err != nil {
		t.Fatalf("ParseAdminToken: %v", err)
	}
	if claims.AdminID != "64f0c2" || claims.Email != "staff@example.com" || claims.Role != "moderator" {
		t.Errorf("claims do not round trip: %+v", claims)
	}

	if _, err := ParseAdminToken("wrong-secret", token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: got %v, want ErrInvalidToken", err)
	}

	expired, err := GenerateAdminToken("top-secret", -time.Minute, "64f0c2", "staff@example.com", "admin")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}
	if _, err := ParseAdminToken("top-secret", expired); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expired token: got %v, want ErrTokenExpired", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}
