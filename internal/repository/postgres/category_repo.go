package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/kudiapp/kudi-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	db DBTX
}

const categoryColumns = `id, user_id, name, type, parent_id, icon, color, is_active, created_at, updated_at`

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO categories (id, user_id, name, type, parent_id, icon, color, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+categoryColumns,
		pgUUID(category.ID), pgUUID(category.UserID), category.Name, string(category.Type),
		pgUUIDPtr(category.ParentID), category.Icon, category.Color, category.IsActive,
	)
	return scanCategory(row)
}

// GetByID retrieves a category by ID for a user
func (r *CategoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Category, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID),
	)
	category, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	return category, err
}

// GetAllByUser retrieves all categories for a user ordered by name
func (r *CategoryRepository) GetAllByUser(ctx context.Context, userID uuid.UUID, includeInactive bool) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE user_id = $1 AND (is_active OR $2)
		ORDER BY name`,
		pgUUID(userID), includeInactive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Update updates a category
func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE categories
		SET name = $3, parent_id = $4, icon = $5, color = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+categoryColumns,
		pgUUID(category.ID), pgUUID(category.UserID), category.Name,
		pgUUIDPtr(category.ParentID), category.Icon, category.Color,
	)
	updated, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	return updated, err
}

// SoftDelete deactivates a category
func (r *CategoryRepository) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE categories SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// HasActiveChildren reports whether any active category points at this one
func (r *CategoryRepository) HasActiveChildren(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM categories WHERE user_id = $1 AND parent_id = $2 AND is_active
		)`,
		pgUUID(userID), pgUUID(id),
	).Scan(&exists)
	return exists, err
}

// scanCategory reads one category row
func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		category     domain.Category
		id, userID   pgtype.UUID
		parentID     pgtype.UUID
		categoryType string
	)
	err := row.Scan(
		&id, &userID, &category.Name, &categoryType, &parentID,
		&category.Icon, &category.Color, &category.IsActive,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	category.ID = fromPgUUID(id)
	category.UserID = fromPgUUID(userID)
	category.Type = domain.CategoryType(categoryType)
	category.ParentID = fromPgUUIDPtr(parentID)
	return &category, nil
}
