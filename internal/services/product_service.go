package services

import (
	"context"
	"fmt"
	"net/url"

	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/filter"
	"catalogapi/internal/pagination"
	"catalogapi/internal/utils"

	"go.uber.org/zap"
)

// ProductFilters qualifies columns with the "p." alias used by the product query.
var ProductFilters = filter.Whitelist{
	{Param: "name", Column: "p.name", Kind: filter.Contains},
	{Param: "categoryId", Column: "p.category_id", Kind: filter.Exact},
}

type ProductStore interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	FindByID(ctx context.Context, id string) (models.Product, error)
	FindMany(ctx context.Context, q pagination.Query) ([]models.Product, int, error)
	Update(ctx context.Context, id string, req models.UpdateProductRequest) (models.Product, error)
	Delete(ctx context.Context, id string) error
}

type CategoryLookup interface {
	FindByID(ctx context.Context, id string) (models.Category, error)
}

type ProductService struct {
	Products   ProductStore
	Categories CategoryLookup
	Log        *zap.Logger
}

// requireCategory reports an unknown category as a field error on categoryId.
func (s ProductService) requireCategory(ctx context.Context, id string) error {
	_, err := s.Categories.FindByID(ctx, id)
	if domain.IsNotFound(err) {
		return domain.ValidationError{Field: "categoryId", Msg: "Category not found"}
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

func (s ProductService) Create(ctx context.Context, req models.CreateProductRequest, ownerID string) (models.ProductResponse, error) {
	name, err := requireName(req.Name)
	if err != nil {
		return models.ProductResponse{}, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return models.ProductResponse{}, err
	}
	owner := ownerID
	p, err := s.Products.Create(ctx, models.Product{
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		UserID:      &owner,
	})
	if err != nil {
		return models.ProductResponse{}, fmt.Errorf("create product: %w", err)
	}
	utils.LogEvent(ctx, s.Log, "products", "create", "product_id="+p.ID)
	return models.ToProductResponse(p), nil
}

func (s ProductService) List(ctx context.Context, query url.Values) (pagination.Result[models.ProductResponse], error) {
	return pagination.Paginate(ctx, s.Products.FindMany, ProductFilters.Build(query),
		query.Get("page"), query.Get("limit"), pagination.Pure(models.ToProductResponse))
}

func (s ProductService) Get(ctx context.Context, id string) (models.ProductResponse, error) {
	p, err := s.Products.FindByID(ctx, id)
	if err != nil {
		return models.ProductResponse{}, err
	}
	return models.ToProductResponse(p), nil
}

func (s ProductService) Update(ctx context.Context, id string, req models.UpdateProductRequest) (models.ProductResponse, error) {
	if req.Name != nil {
		name, err := requireName(*req.Name)
		if err != nil {
			return models.ProductResponse{}, err
		}
		req.Name = &name
	}
	if _, err := s.Products.FindByID(ctx, id); err != nil {
		return models.ProductResponse{}, err
	}
	if req.CategoryID != nil {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return models.ProductResponse{}, err
		}
	}
	p, err := s.Products.Update(ctx, id, req)
	if err != nil {
		return models.ProductResponse{}, fmt.Errorf("update product: %w", err)
	}
	return models.ToProductResponse(p), nil
}

func (s ProductService) Delete(ctx context.Context, id string) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("delete product: %w", err)
	}
	utils.LogEvent(ctx, s.Log, "products", "delete", "product_id="+id)
	return nil
}
