package gamification

import (
	"strings"
	"testing"
	"time"
)

func TestValidatePayload(t *testing.T) {
	t.Parallel()

	valid := EventPayload{
		UserID:     "01HZX0000000000000000000AA",
		Type:       "goal_created",
		OccurredAt: time.Now().UnixMilli(),
	}
	if err := ValidatePayload(valid); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	cases := []struct {
		name    string
		payload EventPayload
	}{
		{"missing_user", EventPayload{Type: "goal_created", OccurredAt: 1}},
		{"long_user", EventPayload{UserID: strings.Repeat("x", 65), Type: "goal_created", OccurredAt: 1}},
		{"unknown_type", EventPayload{UserID: "u1", Type: "login", OccurredAt: 1}},
		{"missing_time", EventPayload{UserID: "u1", Type: "goal_created"}},
	}

	for _, tc := range cases {
		if err := ValidatePayload(tc.payload); err == nil {
			t.Fatalf("expected error for %s", tc.name)
		}
	}
}
