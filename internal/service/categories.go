package service

import (
	"context"
	"regexp"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/sanitize"
)

var colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryStore is the storage CategoryService needs.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *model.Category) error
	GetCategory(ctx context.Context, userID, id string) (*model.Category, error)
	ListCategories(ctx context.Context, userID string, flow model.FlowType) ([]*model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error
	CategoryInUse(ctx context.Context, userID, id string) (bool, error)
}

// CategoryService handles category business logic.
type CategoryService struct {
	store      CategoryStore
	invalidate DashboardInvalidator
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(store CategoryStore, invalidate DashboardInvalidator) *CategoryService {
	if invalidate == nil {
		invalidate = noopInvalidator{}
	}
	return &CategoryService{store: store, invalidate: invalidate}
}

// CategoryInput defines the fields of a category.
type CategoryInput struct {
	Name  *string
	Type  *model.FlowType
	Color *string
	Icon  *string
}

// List returns the user's categories, optionally of one flow type.
func (s *CategoryService) List(ctx context.Context, userID string, flow model.FlowType) ([]*model.Category, error) {
	if flow != "" && !flow.IsValid() {
		return nil, invalid("type", "must be income or expense")
	}
	return s.store.ListCategories(ctx, userID, flow)
}

// Create adds a category.
func (s *CategoryService) Create(ctx context.Context, userID string, input CategoryInput) (*model.Category, error) {
	if input.Name == nil {
		return nil, invalid("name", "is required")
	}
	if input.Type == nil {
		return nil, invalid("type", "is required")
	}
	c := &model.Category{
		ID:        generateULID(),
		UserID:    userID,
		CreatedAt: now(),
	}
	if err := applyCategoryInput(c, input); err != nil {
		return nil, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update changes a category. The type is fixed once a transaction or
// budget references the category.
func (s *CategoryService) Update(ctx context.Context, userID, id string, input CategoryInput) (*model.Category, error) {
	c, err := s.store.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if input.Type != nil && *input.Type != c.Type {
		inUse, err := s.store.CategoryInUse(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, ErrCategoryInUse
		}
	}
	if err := applyCategoryInput(c, input); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return c, nil
}

// Delete removes a category. Its transactions become uncategorized and
// budgets on it are removed.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return nil
}

func applyCategoryInput(c *model.Category, input CategoryInput) error {
	if input.Name != nil {
		name, err := requireName("name", sanitize.Line(*input.Name, maxNameLength))
		if err != nil {
			return err
		}
		c.Name = name
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return invalid("type", "must be income or expense")
		}
		c.Type = *input.Type
	}
	if input.Color != nil {
		if *input.Color != "" && !colorRegex.MatchString(*input.Color) {
			return invalid("color", "must be a hex color like #22c55e")
		}
		c.Color = *input.Color
	}
	if input.Icon != nil {
		c.Icon = sanitize.Line(*input.Icon, 50)
	}
	return nil
}
