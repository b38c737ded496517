package service

import (
	"context"
	"errors"
	"testing"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
)

type fakeCategoryStore struct {
	categories map[string]*model.Category
	referenced map[string]bool
	updates    int
}

func (f *fakeCategoryStore) CreateCategory(_ context.Context, c *model.Category) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeCategoryStore) GetCategory(_ context.Context, userID, id string) (*model.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategoryStore) ListCategories(context.Context, string, model.FlowType) ([]*model.Category, error) {
	return nil, nil
}

func (f *fakeCategoryStore) UpdateCategory(_ context.Context, c *model.Category) error {
	f.updates++
	f.categories[c.ID] = c
	return nil
}

func (f *fakeCategoryStore) DeleteCategory(context.Context, string, string) error { return nil }

func (f *fakeCategoryStore) CategoryInUse(_ context.Context, _, id string) (bool, error) {
	return f.referenced[id], nil
}

func newCategoryFixture(referenced bool) *fakeCategoryStore {
	return &fakeCategoryStore{
		categories: map[string]*model.Category{
			"food": {ID: "food", UserID: "user-1", Name: "Food", Type: model.FlowExpense},
		},
		referenced: map[string]bool{"food": referenced},
	}
}

func TestCategoryUpdate_TypeChange(t *testing.T) {
	t.Parallel()

	income := model.FlowIncome
	expense := model.FlowExpense
	tests := []struct {
		name       string
		referenced bool
		input      CategoryInput
		wantErr    error
		wantType   model.FlowType
	}{
		{"unused category may flip", false, CategoryInput{Type: &income}, nil, model.FlowIncome},
		{"referenced category keeps its type", true, CategoryInput{Type: &income}, ErrCategoryInUse, model.FlowExpense},
		{"same type on referenced category", true, CategoryInput{Type: &expense, Name: strPtr("Groceries")}, nil, model.FlowExpense},
		{"rename only on referenced category", true, CategoryInput{Name: strPtr("Groceries")}, nil, model.FlowExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newCategoryFixture(tt.referenced)
			svc := NewCategoryService(store, nil)

			_, err := svc.Update(context.Background(), "user-1", "food", tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Update() error = %v, want %v", err, tt.wantErr)
			}
			if got := store.categories["food"].Type; got != tt.wantType {
				t.Errorf("stored type = %q, want %q", got, tt.wantType)
			}
			if tt.wantErr != nil && store.updates != 0 {
				t.Errorf("rejected update still reached the store")
			}
		})
	}
}

func TestCategoryUpdate_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewCategoryService(newCategoryFixture(false), nil)
	_, err := svc.Update(context.Background(), "user-2", "food", CategoryInput{Name: strPtr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}
