package auth

import (
	"errors"
	"testing"
)

func TestSealer_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewSealer("settings-encryption-key-for-tests")
	sealed, err := s.Seal("gsk_live_1234567890")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if sealed == "gsk_live_1234567890" {
		t.Fatal("Seal() returned plaintext")
	}

	again, _ := s.Seal("gsk_live_1234567890")
	if again == sealed {
		t.Error("two seals of the same value should differ (random nonce)")
	}

	plain, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if plain != "gsk_live_1234567890" {
		t.Errorf("Open() = %q", plain)
	}
}

func TestSealer_OpenFailures(t *testing.T) {
	t.Parallel()

	s := NewSealer("key-a")
	sealed, _ := s.Seal("secret")

	tests := []struct {
		name   string
		sealer *Sealer
		input  string
	}{
		{"wrong key", NewSealer("key-b"), sealed},
		{"not base64", s, "!!!"},
		{"too short", s, "AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.sealer.Open(tt.input); !errors.Is(err, ErrDecrypt) {
				t.Errorf("Open() error = %v, want ErrDecrypt", err)
			}
		})
	}
}

func TestMask(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                "****",
		"abc":             "****",
		"abcd":            "****",
		"tvly-1234567890": "****7890",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
