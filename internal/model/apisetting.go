package model

import "time"

// Provider names for third-party integrations configurable per user.
const (
	ProviderGroq   = "groq"
	ProviderTavily = "tavily"
)

// ValidProviders contains all providers a user can store a key for.
var ValidProviders = []string{ProviderGroq, ProviderTavily}

// APISetting stores a user's own key for a provider.
// EncryptedKey never leaves the server.
type APISetting struct {
	UserID       string    `json:"user_id"`
	Provider     string    `json:"provider"`
	EncryptedKey string    `json:"-"`
	Model        string    `json:"model,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
