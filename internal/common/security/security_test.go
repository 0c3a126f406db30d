package security

import (
	"errors"
	"hackboard/internal/domain/model"
	"hackboard/internal/platform/config"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func initTestJWT(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	InitJWT()
}

func TestGenerateToken_RoundTripsCaller(t *testing.T) {
	initTestJWT(t)
	want := model.Caller{UserID: "user-1", Email: "ada@example.com", Role: model.RoleApplicant}

	tokenString, err := GenerateToken(want)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	token, err := TokenAuth.Decode(tokenString)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := token.AsMap(t.Context())
	if err != nil {
		t.Fatalf("claims: %v", err)
	}

	got, err := CallerFromClaims(claims)
	if err != nil {
		t.Fatalf("caller: %v", err)
	}
	if got != want {
		t.Fatalf("caller = %+v, want %+v", got, want)
	}
}

func TestGenerateToken_RejectsUnknownRole(t *testing.T) {
	initTestJWT(t)
	if _, err := GenerateToken(model.Caller{UserID: "user-1", Role: "ADMIN"}); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("err = %v, want invalid claims", err)
	}
}

func TestCallerFromClaims_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing user id", jwt.MapClaims{"role": "INDUSTRY"}},
		{"empty user id", jwt.MapClaims{"user_id": "", "role": "INDUSTRY"}},
		{"missing role", jwt.MapClaims{"user_id": "user-1"}},
		{"unknown role", jwt.MapClaims{"user_id": "user-1", "role": "ADMIN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CallerFromClaims(tt.claims); !errors.Is(err, ErrInvalidClaims) {
				t.Fatalf("err = %v, want invalid claims", err)
			}
		})
	}

	caller, err := CallerFromClaims(jwt.MapClaims{"user_id": "user-1", "role": "INDUSTRY"})
	if err != nil || caller.Email != "" || caller.Role != model.RoleIndustry {
		t.Fatalf("caller without email = %+v, %v", caller, err)
	}
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("correct horse", hash) {
		t.Fatalf("expected password to match")
	}
	if CheckPasswordHash("battery staple", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}
