package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	pictures     PictureUploader
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, categoryRepo catalog.CategoryRepository) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Create creates a new product with no stock
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.CategoryID, req.Name, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	product.SetPicture(req.PictureURL)
	if err := product.SetDiscounts(req.DiscountRule.toDomain(), req.GlobalDiscountPercent); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, req ProductListRequest) (*shared.Paginated[ProductResponse], error) {
	page := shared.Pagination{Page: req.Page, Limit: req.Limit}.Normalize()
	products, total, err := s.productRepo.List(ctx, catalog.ProductFilter{
		Search:     req.Search,
		CategoryID: req.CategoryID,
		Pagination: page,
	})
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToProductResponses(products), total, page)
	return &result, nil
}

// Update updates descriptive, price and discount attributes. Stock is
// never touched here.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	categoryID := product.CategoryID
	if req.CategoryID != nil && *req.CategoryID != categoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		categoryID = *req.CategoryID
	}
	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	price := product.UnitPrice
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	}
	if err := product.Update(categoryID, name, price); err != nil {
		return nil, err
	}
	if req.PictureURL != nil {
		product.SetPicture(*req.PictureURL)
	}

	switch {
	case req.ClearDiscounts:
		err = product.SetDiscounts(nil, nil)
	case req.DiscountRule != nil || req.GlobalDiscountPercent != nil:
		rule, global := product.DiscountRule, product.GlobalDiscountPercent
		if req.DiscountRule != nil {
			rule = req.DiscountRule.toDomain()
		}
		if req.GlobalDiscountPercent != nil {
			global = req.GlobalDiscountPercent
		}
		err = product.SetDiscounts(rule, global)
	}
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

func (s *ProductService) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("category %s does not exist", id)
		}
		return err
	}
	return nil
}
