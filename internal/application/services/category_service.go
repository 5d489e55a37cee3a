package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

// CategoryService handles category operations
type CategoryService struct {
	categoryRepo ports.CategoryRepository
	logger       *logger.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo ports.CategoryRepository, logger *logger.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// CreateCategory creates a category for the user
func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, req ports.CreateCategoryRequest) (*entities.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	category := &entities.Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Color:     req.Color,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created successfully", "category_id", category.ID, "name", category.Name)

	return category, nil
}

// GetCategory retrieves a category owned by the user
func (s *CategoryService) GetCategory(ctx context.Context, userID, id uuid.UUID) (*entities.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("category not found: %w", err)
	}
	if category.UserID != userID {
		return nil, entities.ErrUnauthorized
	}
	return category, nil
}

// UpdateCategory updates a category's name or color
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, id uuid.UUID, req ports.UpdateCategoryRequest) (*entities.Category, error) {
	category, err := s.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("category name is required")
		}
		category.Name = name
	}
	if req.Color != nil {
		category.Color = req.Color
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("Category updated successfully", "category_id", category.ID)

	return category, nil
}

// DeleteCategory deletes a category; its todos keep existing uncategorized.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetCategory(ctx, userID, id); err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("Category deleted successfully", "category_id", id)

	return nil
}

// ListCategories lists the user's categories in creation order
func (s *CategoryService) ListCategories(ctx context.Context, userID uuid.UUID) ([]*entities.Category, error) {
	categories, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
