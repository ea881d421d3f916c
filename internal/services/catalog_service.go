// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nexpoint/nexpoint-backend/internal/models"
	"github.com/nexpoint/nexpoint-backend/internal/utils"
)

// CatalogService is pure data access over products and categories. Stock is
// only ever written here through administrative edits; order-driven
// decrements go through the inventory ledger.
type CatalogService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=255"`
	Category   string `json:"category" validate:"required,min=1,max=100"`
	Strength   string `json:"strength" validate:"max=100"`
	Stock      int    `json:"stock" validate:"min=0"`
	MultipleOf int    `json:"multipleOf" validate:"required,min=1"`
}

type UpdateProductRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Category   *string `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Strength   *string `json:"strength,omitempty" validate:"omitempty,max=100"`
	Stock      *int    `json:"stock,omitempty" validate:"omitempty,min=0"`
	MultipleOf *int    `json:"multipleOf,omitempty" validate:"omitempty,min=1"`
}

type ProductFilter struct {
	Category string
	Strength string
	Search   string
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Strength != "" {
		query = query.Where("strength = ?", filter.Strength)
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", searchTerm)
	}

	var products []models.Product
	if err := query.Order("category, name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, nil
}

// ListCategories returns the distinct category labels in use. Categories have
// no record of their own: one exists exactly while at least one product
// references it.
func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

// GetProductsByIDs loads the referenced products keyed by id, for cart
// validation.
func (s *CatalogService) GetProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	product := &models.Product{
		Name:       req.Name,
		Category:   req.Category,
		Strength:   req.Strength,
		Stock:      req.Stock,
		MultipleOf: req.MultipleOf,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextProductID(tx, req.Category)
		if err != nil {
			return err
		}
		product.ID = id
		return tx.Create(product).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	product.Status = models.StatusForStock(product.Stock)
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Strength != nil {
		updates["strength"] = *req.Strength
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.MultipleOf != nil {
		updates["multiple_of"] = *req.MultipleOf
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

// DeleteProduct removes a product from the catalog. Order history keeps its
// own denormalized name/strength snapshot, so historical orders survive the
// deletion; the category disappears implicitly with its last product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}

	return nil
}

// nextProductID derives an identifier from the product's category: the
// lowercased first word of the category plus a running index, e.g. "euro-3".
func nextProductID(tx *gorm.DB, category string) (string, error) {
	prefix := categoryPrefix(category)

	var count int64
	if err := tx.Model(&models.Product{}).
		Where("id LIKE ?", prefix+"-%").
		Count(&count).Error; err != nil {
		return "", err
	}

	// The count is only a starting point; deleted products leave gaps, so
	// probe until the candidate is free.
	for i := count; ; i++ {
		candidate := fmt.Sprintf("%s-%d", prefix, i)
		var exists int64
		if err := tx.Model(&models.Product{}).Where("id = ?", candidate).Count(&exists).Error; err != nil {
			return "", err
		}
		if exists == 0 {
			return candidate, nil
		}
	}
}

func categoryPrefix(category string) string {
	first := category
	if idx := strings.IndexByte(category, ' '); idx > 0 {
		first = category[:idx]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(first) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "product"
	}
	return b.String()
}
