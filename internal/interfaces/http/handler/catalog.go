package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/stockroute/backend/internal/application/catalog"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stockroute/backend/internal/interfaces/http/dto"
)

// CategoryManager manages product categories
type CategoryManager interface {
	Create(ctx context.Context, req catalogapp.CreateCategoryRequest) (*catalogapp.CategoryResponse, error)
	List(ctx context.Context) ([]catalogapp.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductManager manages the product catalog
type ProductManager interface {
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*catalogapp.ProductResponse, error)
	List(ctx context.Context, req catalogapp.ProductListRequest) (*shared.Paginated[catalogapp.ProductResponse], error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadPicture(ctx context.Context, id uuid.UUID, in catalogapp.PictureUpload) (*catalogapp.ProductResponse, error)
}

// CategoryHandler handles category requests
type CategoryHandler struct {
	BaseHandler
	categoryService CategoryManager
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService CategoryManager) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// Create handles POST /categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// List handles GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Delete handles DELETE /categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ProductHandler handles product requests
type ProductHandler struct {
	BaseHandler
	productService ProductManager
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService ProductManager) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID handles GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var req catalogapp.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	var ok bool
	if req.CategoryID, ok = h.queryUUID(c, "category_id"); !ok {
		return
	}

	page, err := h.productService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UploadPicture handles POST /products/:id/picture with a multipart
// "picture" file
func (h *ProductHandler) UploadPicture(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	file, header, err := c.Request.FormFile("picture")
	if err != nil {
		h.BadRequest(c, "picture file is required")
		return
	}
	defer file.Close()
	if header.Size > catalogapp.MaxPictureSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation,
			fmt.Sprintf("picture exceeds %d bytes", catalogapp.MaxPictureSize))
		return
	}

	product, err := h.productService.UploadPicture(c.Request.Context(), id, catalogapp.PictureUpload{
		Body:        file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
