package model

import (
	"strings"
	"time"
)

// MatchType controls how rule keywords are compared to descriptions.
type MatchType string

const (
	MatchContains   MatchType = "contains"
	MatchExact      MatchType = "exact"
	MatchStartsWith MatchType = "starts_with"
)

// IsValid checks if the match type is known.
func (m MatchType) IsValid() bool {
	return m == MatchContains || m == MatchExact || m == MatchStartsWith
}

// CategorizationRule assigns a category to transactions whose description
// matches any of its keywords.
type CategorizationRule struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Keywords   []string  `json:"keywords"`
	MatchType  MatchType `json:"match_type"`
	CategoryID string    `json:"category_id"`
	Priority   int       `json:"priority"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Matches reports whether the normalized description satisfies the rule.
// Keywords are expected to be normalized the same way.
func (r *CategorizationRule) Matches(normalized string) bool {
	if !r.Active || normalized == "" {
		return false
	}
	for _, kw := range r.Keywords {
		if kw == "" {
			continue
		}
		switch r.MatchType {
		case MatchExact:
			if normalized == kw {
				return true
			}
		case MatchStartsWith:
			if strings.HasPrefix(normalized, kw) {
				return true
			}
		default:
			if strings.Contains(normalized, kw) {
				return true
			}
		}
	}
	return false
}
