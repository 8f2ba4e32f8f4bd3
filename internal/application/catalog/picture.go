package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/shared"
)

// MaxPictureSize bounds an uploaded product picture
const MaxPictureSize = 5 << 20

var pictureExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PictureUploader stores a picture and returns its public URL
type PictureUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// PictureUpload is one picture file as received
type PictureUpload struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// SetPictureUploader enables picture uploads
func (s *ProductService) SetPictureUploader(uploader PictureUploader) {
	s.pictures = uploader
}

// UploadPicture stores the picture under a fresh products/<id>/ key and
// makes it the product's picture
func (s *ProductService) UploadPicture(ctx context.Context, id uuid.UUID, in PictureUpload) (*ProductResponse, error) {
	if s.pictures == nil {
		return nil, shared.NewInvalidStateError("picture storage is not configured")
	}
	ext, ok := pictureExtensions[in.ContentType]
	if !ok {
		return nil, shared.NewValidationError("picture must be a JPEG, PNG or WebP image, got %q", in.ContentType)
	}
	if in.Size <= 0 || in.Size > MaxPictureSize {
		return nil, shared.NewValidationError("picture must be between 1 byte and %d bytes", MaxPictureSize)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", id, uuid.NewString(), ext)
	url, err := s.pictures.Upload(ctx, key, in.Body, in.Size, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload picture of product %s: %w", id, err)
	}

	product.SetPicture(url)
	product.Touch()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}
