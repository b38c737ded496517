package service

import (
	"context"
	"errors"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/recurring"
	"github.com/organizai/organizai/internal/sanitize"
)

const maxRuleKeywords = 20

// RuleStore is the storage RuleService needs.
type RuleStore interface {
	CreateRule(ctx context.Context, rule *model.CategorizationRule) error
	GetRule(ctx context.Context, userID, id string) (*model.CategorizationRule, error)
	ListRules(ctx context.Context, userID string, activeOnly bool) ([]*model.CategorizationRule, error)
	UpdateRule(ctx context.Context, rule *model.CategorizationRule) error
	DeleteRule(ctx context.Context, userID, id string) error
	GetCategory(ctx context.Context, userID, id string) (*model.Category, error)
}

// RuleService manages categorization rules.
type RuleService struct {
	store RuleStore
}

// NewRuleService creates a new RuleService.
func NewRuleService(store RuleStore) *RuleService {
	return &RuleService{store: store}
}

// RuleInput defines the fields of a rule.
type RuleInput struct {
	Name       *string
	Keywords   []string
	MatchType  *model.MatchType
	CategoryID *string
	Priority   *int
	Active     *bool
}

// List returns the user's rules, highest priority first.
func (s *RuleService) List(ctx context.Context, userID string) ([]*model.CategorizationRule, error) {
	return s.store.ListRules(ctx, userID, false)
}

// Create adds a rule.
func (s *RuleService) Create(ctx context.Context, userID string, input RuleInput) (*model.CategorizationRule, error) {
	if input.Name == nil {
		return nil, invalid("name", "is required")
	}
	if input.Keywords == nil {
		return nil, invalid("keywords", "is required")
	}
	if input.CategoryID == nil {
		return nil, invalid("category_id", "is required")
	}
	ts := now()
	rule := &model.CategorizationRule{
		ID:        generateULID(),
		UserID:    userID,
		MatchType: model.MatchContains,
		Active:    true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.apply(ctx, rule, input); err != nil {
		return nil, err
	}
	if err := s.store.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Update changes a rule.
func (s *RuleService) Update(ctx context.Context, userID, id string, input RuleInput) (*model.CategorizationRule, error) {
	rule, err := s.store.GetRule(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.apply(ctx, rule, input); err != nil {
		return nil, err
	}
	rule.UpdatedAt = now()
	if err := s.store.UpdateRule(ctx, rule); err != nil {
		return nil, mapRepoErr(err)
	}
	return rule, nil
}

// Delete removes a rule.
func (s *RuleService) Delete(ctx context.Context, userID, id string) error {
	return mapRepoErr(s.store.DeleteRule(ctx, userID, id))
}

// Test returns the active rule that would categorize description, or nil
// when none matches.
func (s *RuleService) Test(ctx context.Context, userID, description string) (*model.CategorizationRule, error) {
	normalized := recurring.Normalize(description)
	if normalized == "" {
		return nil, invalid("description", "is required")
	}
	rules, err := s.store.ListRules(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if rule.Matches(normalized) {
			return rule, nil
		}
	}
	return nil, nil
}

func (s *RuleService) apply(ctx context.Context, rule *model.CategorizationRule, input RuleInput) error {
	if input.Name != nil {
		name, err := requireName("name", sanitize.Line(*input.Name, maxNameLength))
		if err != nil {
			return err
		}
		rule.Name = name
	}
	if input.Keywords != nil {
		keywords := normalizeKeywords(input.Keywords)
		if len(keywords) == 0 {
			return invalid("keywords", "must contain at least one word")
		}
		if len(keywords) > maxRuleKeywords {
			return invalid("keywords", "too many keywords")
		}
		rule.Keywords = keywords
	}
	if input.MatchType != nil {
		if !input.MatchType.IsValid() {
			return invalid("match_type", "must be contains, exact or starts_with")
		}
		rule.MatchType = *input.MatchType
	}
	if input.CategoryID != nil {
		c, err := s.store.GetCategory(ctx, rule.UserID, *input.CategoryID)
		if err != nil {
			if errors.Is(mapRepoErr(err), ErrNotFound) {
				return invalid("category_id", "category not found")
			}
			return err
		}
		rule.CategoryID = c.ID
	}
	if input.Priority != nil {
		rule.Priority = *input.Priority
	}
	if input.Active != nil {
		rule.Active = *input.Active
	}
	return nil
}

// normalizeKeywords normalizes keywords the way descriptions are matched,
// dropping empties and duplicates.
func normalizeKeywords(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, kw := range raw {
		n := recurring.Normalize(kw)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
