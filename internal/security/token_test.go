package security

import (
	"testing"
	"time"
)

func TestActionTokenRoundTrip(t *testing.T) {
	token, err := SignActionToken("secret", 42, PurposeVerifyEmail, time.Hour)
	if err != nil {
		t.Fatalf("SignActionToken() error = %v", err)
	}

	userID, err := ParseActionToken("secret", token, PurposeVerifyEmail)
	if err != nil {
		t.Fatalf("ParseActionToken() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("ParseActionToken() userID = %d, want 42", userID)
	}
}

func TestActionTokenRejectsWrongPurpose(t *testing.T) {
	token, err := SignActionToken("secret", 42, PurposePasswordReset, time.Hour)
	if err != nil {
		t.Fatalf("SignActionToken() error = %v", err)
	}

	if _, err := ParseActionToken("secret", token, PurposeVerifyEmail); err == nil {
		t.Error("expected error for wrong purpose, got nil")
	}
}

func TestActionTokenRejectsWrongSecret(t *testing.T) {
	token, err := SignActionToken("secret", 42, PurposeVerifyEmail, time.Hour)
	if err != nil {
		t.Fatalf("SignActionToken() error = %v", err)
	}

	if _, err := ParseActionToken("other-secret", token, PurposeVerifyEmail); err == nil {
		t.Error("expected error for wrong secret, got nil")
	}
}

func TestActionTokenRejectsExpired(t *testing.T) {
	token, err := SignActionToken("secret", 42, PurposeVerifyEmail, -time.Minute)
	if err != nil {
		t.Fatalf("SignActionToken() error = %v", err)
	}

	if _, err := ParseActionToken("secret", token, PurposeVerifyEmail); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !CheckPassword("hunter2hunter2", hash) {
		t.Error("CheckPassword() = false for correct password")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("CheckPassword() = true for wrong password")
	}
}
