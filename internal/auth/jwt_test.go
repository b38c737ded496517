package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/organizai/organizai/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: "01J0000000000000000000USER", Email: "ana@example.com", Role: model.RoleAdmin}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)
	token, expiresAt, err := m.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Errorf("expiresAt = %v, want about an hour from now", expiresAt)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	ac := claims.AuthContext()
	if ac.UserID != testUser().ID || ac.Email != "ana@example.com" || !ac.IsAdmin() {
		t.Errorf("AuthContext() = %+v", ac)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	t.Parallel()

	m := NewJWTManager("secret-one-secret-one-secret-one", time.Hour)
	other := NewJWTManager("secret-two-secret-two-secret-two", time.Hour)

	expired := NewJWTManager("secret-one-secret-one-secret-one", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Generate(testUser())
	if err != nil {
		t.Fatal(err)
	}

	foreignToken, _, err := other.Generate(testUser())
	if err != nil {
		t.Fatal(err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"wrong secret", foreignToken, ErrInvalidToken},
		{"expired", expiredToken, ErrInvalidToken},
		{"alg none", noneToken, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
