package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// CategoryService handles category business logic
type CategoryService struct {
	store domain.TxManager
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(store domain.TxManager) *CategoryService {
	return &CategoryService{store: store}
}

// CreateCategoryInput holds the input for creating a category
type CreateCategoryInput struct {
	Name     string
	Type     domain.CategoryType
	ParentID *uuid.UUID
	Icon     string
	Color    string
}

// CreateCategory creates a category, validating the parent link
func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if input.Type != domain.CategoryTypeIncome && input.Type != domain.CategoryTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}

	repos := s.store.Repos()
	if input.ParentID != nil {
		parent, err := repos.Categories.GetByID(ctx, userID, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsActive {
			return nil, domain.ErrCategoryNotFound
		}
		// A subcategory inherits its meaning from the parent's type
		if parent.Type != input.Type {
			return nil, domain.ErrCategoryTypeMismatch
		}
	}

	category := &domain.Category{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Type:     input.Type,
		ParentID: input.ParentID,
		Icon:     input.Icon,
		Color:    input.Color,
		IsActive: true,
	}
	return repos.Categories.Create(ctx, category)
}

// UpdateCategoryInput holds the mutable category fields
type UpdateCategoryInput struct {
	Name     *string
	ParentID *uuid.UUID
	// ClearParent promotes the category to top level
	ClearParent bool
	Icon        *string
	Color       *string
}

// UpdateCategory updates a category. Reparenting is checked for cycles by
// walking the proposed ancestor chain.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id uuid.UUID, input UpdateCategoryInput) (*domain.Category, error) {
	repos := s.store.Repos()
	category, err := repos.Categories.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		if len(name) > domain.MaxAccountNameLength {
			return nil, domain.ErrNameTooLong
		}
		category.Name = name
	}
	if input.Icon != nil {
		category.Icon = *input.Icon
	}
	if input.Color != nil {
		category.Color = *input.Color
	}
	if input.ClearParent {
		category.ParentID = nil
	} else if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, domain.ErrCategoryCycle
		}
		parent, err := repos.Categories.GetByID(ctx, userID, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsActive {
			return nil, domain.ErrCategoryNotFound
		}
		if parent.Type != category.Type {
			return nil, domain.ErrCategoryTypeMismatch
		}
		if err := s.checkNoCycle(ctx, repos, userID, id, parent); err != nil {
			return nil, err
		}
		category.ParentID = input.ParentID
	}

	return repos.Categories.Update(ctx, category)
}

// checkNoCycle walks up from the proposed parent; finding the category being
// reparented anywhere in the chain would create a loop.
func (s *CategoryService) checkNoCycle(ctx context.Context, repos domain.Repositories, userID, id uuid.UUID, parent *domain.Category) error {
	for current := parent; current.ParentID != nil; {
		if *current.ParentID == id {
			return domain.ErrCategoryCycle
		}
		next, err := repos.Categories.GetByID(ctx, userID, *current.ParentID)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

// DeleteCategory soft-deletes a category. Categories with active children
// must be emptied first.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	repos := s.store.Repos()
	if _, err := repos.Categories.GetByID(ctx, userID, id); err != nil {
		return err
	}
	hasChildren, err := repos.Categories.HasActiveChildren(ctx, userID, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return domain.ErrCategoryHasChildren
	}
	return repos.Categories.SoftDelete(ctx, userID, id)
}

// GetCategory retrieves a single category
func (s *CategoryService) GetCategory(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	return s.store.Repos().Categories.GetByID(ctx, userID, id)
}

// GetCategories lists the user's categories
func (s *CategoryService) GetCategories(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*domain.Category, error) {
	return s.store.Repos().Categories.GetAllByUser(ctx, userID, includeInactive)
}
