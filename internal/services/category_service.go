package services

import (
	"context"

	"finley_backend/internal/repositories"
	"finley_backend/internal/services/dto"

	"gorm.io/gorm"
)

type CategoryService interface {
	ListCategories(ctx context.Context, db *gorm.DB) ([]dto.CategoryResponse, error)
}

type CategoryServiceImpl struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &CategoryServiceImpl{categoryRepo: categoryRepo}
}

func (s *CategoryServiceImpl) ListCategories(ctx context.Context, db *gorm.DB) ([]dto.CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(db)
	if err != nil {
		return nil, storeError(err, "category")
	}
	resp := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return resp, nil
}
