package gamification

import (
	"fmt"

	"github.com/organizai/organizai/internal/model"
)

const maxUserIDLength = 64

// ValidatePayload checks an event read from the stream.
func ValidatePayload(payload EventPayload) error {
	if payload.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if len(payload.UserID) > maxUserIDLength {
		return fmt.Errorf("user id too long")
	}
	if !IsKnownEvent(model.XPEventType(payload.Type)) {
		return fmt.Errorf("unknown event type %q", payload.Type)
	}
	if payload.OccurredAt <= 0 {
		return fmt.Errorf("occurred_at must be set")
	}
	return nil
}
