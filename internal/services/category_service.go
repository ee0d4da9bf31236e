package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/filter"
	"catalogapi/internal/pagination"
	"catalogapi/internal/utils"

	"go.uber.org/zap"
)

var CategoryFilters = filter.Whitelist{
	{Param: "name", Column: "name", Kind: filter.Contains},
}

type CategoryStore interface {
	Create(ctx context.Context, c models.Category) (models.Category, error)
	FindByID(ctx context.Context, id string) (models.Category, error)
	FindMany(ctx context.Context, q pagination.Query) ([]models.Category, int, error)
	Update(ctx context.Context, id, name string) (models.Category, error)
	Delete(ctx context.Context, id string) error
}

// ProductCounter guards category deletes.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

type CategoryService struct {
	Categories CategoryStore
	Products   ProductCounter
	Log        *zap.Logger
}

// requireName trims a display name and rejects one that is blank.
func requireName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.ValidationError{Field: "name", Msg: "name is required"}
	}
	return name, nil
}

// Create records ownerID as the creating user.
func (s CategoryService) Create(ctx context.Context, req models.CreateCategoryRequest, ownerID string) (models.CategoryResponse, error) {
	name, err := requireName(req.Name)
	if err != nil {
		return models.CategoryResponse{}, err
	}
	owner := ownerID
	c, err := s.Categories.Create(ctx, models.Category{Name: name, UserID: &owner})
	if err != nil {
		return models.CategoryResponse{}, fmt.Errorf("create category: %w", err)
	}
	utils.LogEvent(ctx, s.Log, "categories", "create", "category_id="+c.ID)
	return models.ToCategoryResponse(c), nil
}

func (s CategoryService) List(ctx context.Context, query url.Values) (pagination.Result[models.CategoryResponse], error) {
	return pagination.Paginate(ctx, s.Categories.FindMany, CategoryFilters.Build(query),
		query.Get("page"), query.Get("limit"), pagination.Pure(models.ToCategoryResponse))
}

func (s CategoryService) Get(ctx context.Context, id string) (models.CategoryResponse, error) {
	c, err := s.Categories.FindByID(ctx, id)
	if err != nil {
		return models.CategoryResponse{}, err
	}
	return models.ToCategoryResponse(c), nil
}

func (s CategoryService) Update(ctx context.Context, id string, req models.UpdateCategoryRequest) (models.CategoryResponse, error) {
	name, err := requireName(req.Name)
	if err != nil {
		return models.CategoryResponse{}, err
	}
	if _, err := s.Categories.FindByID(ctx, id); err != nil {
		return models.CategoryResponse{}, err
	}
	c, err := s.Categories.Update(ctx, id, name)
	if err != nil {
		return models.CategoryResponse{}, fmt.Errorf("update category: %w", err)
	}
	return models.ToCategoryResponse(c), nil
}

func (s CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Categories.FindByID(ctx, id); err != nil {
		return err
	}
	n, err := s.Products.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n > 0 {
		return domain.ConflictError{Msg: fmt.Sprintf("Category still has %d product(s)", n)}
	}
	if err := s.Categories.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	utils.LogEvent(ctx, s.Log, "categories", "delete", "category_id="+id)
	return nil
}
