package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/kudiapp/kudi-backend/internal/domain"
	"github.com/kudiapp/kudi-backend/internal/testutil"
)

func TestCreateCategoryWithParent(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := NewCategoryService(store)

	parent, err := svc.CreateCategory(ctx, userID, CreateCategoryInput{Name: "Food", Type: domain.CategoryTypeExpense})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	child, err := svc.CreateCategory(ctx, userID, CreateCategoryInput{
		Name: "Groceries", Type: domain.CategoryTypeExpense, ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Error("child not linked to parent")
	}

	// a subcategory cannot flip the meaning of its parent
	_, err = svc.CreateCategory(ctx, userID, CreateCategoryInput{
		Name: "Salary", Type: domain.CategoryTypeIncome, ParentID: &parent.ID,
	})
	if !errors.Is(err, domain.ErrCategoryTypeMismatch) {
		t.Errorf("error = %v, want ErrCategoryTypeMismatch", err)
	}
}

func TestUpdateCategoryRejectsCycles(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := NewCategoryService(store)

	a, _ := svc.CreateCategory(ctx, userID, CreateCategoryInput{Name: "A", Type: domain.CategoryTypeExpense})
	b, _ := svc.CreateCategory(ctx, userID, CreateCategoryInput{Name: "B", Type: domain.CategoryTypeExpense, ParentID: &a.ID})
	c, _ := svc.CreateCategory(ctx, userID, CreateCategoryInput{Name: "C", Type: domain.CategoryTypeExpense, ParentID: &b.ID})

	if _, err := svc.UpdateCategory(ctx, userID, a.ID, UpdateCategoryInput{ParentID: &a.ID}); !errors.Is(err, domain.ErrCategoryCycle) {
		t.Errorf("self-parent: error = %v, want ErrCategoryCycle", err)
	}
	if _, err := svc.UpdateCategory(ctx, userID, a.ID, UpdateCategoryInput{ParentID: &c.ID}); !errors.Is(err, domain.ErrCategoryCycle) {
		t.Errorf("descendant parent: error = %v, want ErrCategoryCycle", err)
	}

	// reparenting sideways is fine
	if _, err := svc.UpdateCategory(ctx, userID, c.ID, UpdateCategoryInput{ParentID: &a.ID}); err != nil {
		t.Errorf("valid reparent failed: %v", err)
	}
}

func TestUpdateCategoryClearParent(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := NewCategoryService(store)

	parent, _ := svc.CreateCategory(ctx, userID, CreateCategoryInput{Name: "Food", Type: domain.CategoryTypeExpense})
	child, _ := svc.CreateCategory(ctx, userID, CreateCategoryInput{Name: "Snacks", Type: domain.CategoryTypeExpense, ParentID: &parent.ID})

	updated, err := svc.UpdateCategory(ctx, userID, child.ID, UpdateCategoryInput{ClearParent: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ParentID != nil {
		t.Error("parent link survived ClearParent")
	}
}

func TestDeleteCategoryWithChildren(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	store := testutil.NewMockStore()
	svc := NewCategoryService(store)

	parent, _ := svc.CreateCategory(ctx, userID, CreateCategoryInput{Name: "Food", Type: domain.CategoryTypeExpense})
	child, _ := svc.CreateCategory(ctx, userID, CreateCategoryInput{Name: "Snacks", Type: domain.CategoryTypeExpense, ParentID: &parent.ID})

	if err := svc.DeleteCategory(ctx, userID, parent.ID); !errors.Is(err, domain.ErrCategoryHasChildren) {
		t.Errorf("error = %v, want ErrCategoryHasChildren", err)
	}

	// deleting the child first unblocks the parent
	if err := svc.DeleteCategory(ctx, userID, child.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}
	if err := svc.DeleteCategory(ctx, userID, parent.ID); err != nil {
		t.Fatalf("delete parent: %v", err)
	}
	if store.CategoryRepo.Categories[parent.ID].IsActive {
		t.Error("parent still active after delete")
	}
}

func TestCategoryUserScoping(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMockStore()
	svc := NewCategoryService(store)

	owner := uuid.New()
	intruder := uuid.New()

	category, _ := svc.CreateCategory(ctx, owner, CreateCategoryInput{Name: "Food", Type: domain.CategoryTypeExpense})

	if _, err := svc.GetCategory(ctx, intruder, category.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("cross-user read: error = %v, want ErrCategoryNotFound", err)
	}
	if err := svc.DeleteCategory(ctx, intruder, category.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("cross-user delete: error = %v, want ErrCategoryNotFound", err)
	}
}
