package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockroute/backend/internal/domain/catalog"
	"github.com/stockroute/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPictureUploader struct {
	mock.Mock
}

func (m *MockPictureUploader) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func TestProductService_UploadPicture(t *testing.T) {
	ctx := context.Background()
	newProduct := func(t *testing.T) *catalog.Product {
		p, err := catalog.NewProduct(uuid.New(), "Olive oil", decimal.NewFromInt(30))
		require.NoError(t, err)
		return p
	}
	body := func() *strings.Reader { return strings.NewReader("\x89PNG fake") }

	t.Run("stores the picture and points the product at it", func(t *testing.T) {
		product := newProduct(t)
		products := new(MockProductRepository)
		products.On("FindByID", ctx, product.ID).Return(product, nil)
		products.On("Update", ctx, product).Return(nil)
		uploader := new(MockPictureUploader)
		keyPrefix := "products/" + product.ID.String() + "/"
		uploader.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, keyPrefix) && strings.HasSuffix(key, ".png")
		}), mock.Anything, int64(9), "image/png").Return("https://cdn.test/pic.png", nil)

		svc := NewProductService(products, new(MockCategoryRepository))
		svc.SetPictureUploader(uploader)
		resp, err := svc.UploadPicture(ctx, product.ID, PictureUpload{Body: body(), Size: 9, ContentType: "image/png"})
		require.NoError(t, err)

		assert.Equal(t, "https://cdn.test/pic.png", resp.PictureURL)
		uploader.AssertExpectations(t)
		products.AssertExpectations(t)
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), new(MockCategoryRepository))
		svc.SetPictureUploader(new(MockPictureUploader))
		_, err := svc.UploadPicture(ctx, uuid.New(), PictureUpload{Body: body(), Size: 9, ContentType: "application/pdf"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects oversized pictures", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), new(MockCategoryRepository))
		svc.SetPictureUploader(new(MockPictureUploader))
		_, err := svc.UploadPicture(ctx, uuid.New(), PictureUpload{Body: body(), Size: MaxPictureSize + 1, ContentType: "image/jpeg"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), new(MockCategoryRepository))
		_, err := svc.UploadPicture(ctx, uuid.New(), PictureUpload{Body: body(), Size: 9, ContentType: "image/png"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("failed upload keeps the old picture", func(t *testing.T) {
		product := newProduct(t)
		products := new(MockProductRepository)
		products.On("FindByID", ctx, product.ID).Return(product, nil)
		uploader := new(MockPictureUploader)
		uploader.On("Upload", ctx, mock.Anything, mock.Anything, int64(9), "image/webp").Return("", errors.New("bucket down"))

		svc := NewProductService(products, new(MockCategoryRepository))
		svc.SetPictureUploader(uploader)
		_, err := svc.UploadPicture(ctx, product.ID, PictureUpload{Body: body(), Size: 9, ContentType: "image/webp"})
		require.Error(t, err)

		assert.Equal(t, catalog.DefaultPictureURL, product.PictureURL)
		products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
