package util

import (
	"net/http"
	"testing"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "foreman", "test-secret")
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}

	userID, role, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT returned error: %v", err)
	}
	if userID != 42 {
		t.Errorf("user_id = %d, want 42", userID)
	}
	if role != "foreman" {
		t.Errorf("role = %q, want foreman", role)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(1, "admin", "secret-a")
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}

	if _, _, err := ParseJWT(token, "secret-b"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseJWTGarbage(t *testing.T) {
	if _, _, err := ParseJWT("not-a-token", "secret"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestExtractToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"abc123", ""},
		{"", ""},
	}

	for _, c := range cases {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		if got := ExtractToken(req); got != c.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", c.header, got, c.want)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !CheckPassword("hunter2", hash) {
		t.Error("CheckPassword rejected correct password")
	}
	if CheckPassword("wrong", hash) {
		t.Error("CheckPassword accepted wrong password")
	}
}
