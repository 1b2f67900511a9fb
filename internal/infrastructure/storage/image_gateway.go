package storage

import (
	"context"
	"errors"
	"fmt"
	"path"

	"staff-directory/internal/domains/employee/model"

	"github.com/google/uuid"
)

// ObjectStore is the blob store the gateway writes to.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageGateway stores employee photos. Every call is a single attempt.
type ImageGateway struct {
	store     ObjectStore
	processor *ImageProcessor
	folder    string
	newID     func() string
}

func NewImageGateway(store ObjectStore, processor *ImageProcessor, folder string) *ImageGateway {
	if folder == "" {
		folder = "employees"
	}
	return &ImageGateway{
		store:     store,
		processor: processor,
		folder:    folder,
		newID:     func() string { return uuid.NewString() },
	}
}

// Upload validates, resizes and stores the photo under <folder>/<uuid>.<ext>.
func (g *ImageGateway) Upload(ctx context.Context, upload model.ImageUpload) (*model.Image, error) {
	if err := g.processor.Validate(upload.Data); err != nil {
		return nil, model.NewInvalidImageError(err)
	}
	processed, err := g.processor.Process(upload.Data)
	if err != nil {
		if errors.Is(err, ErrInvalidImage) {
			return nil, model.NewInvalidImageError(err)
		}
		return nil, model.NewUploadFailedError(err)
	}

	key := path.Join(g.folder, g.newID()+"."+processed.Extension)
	url, err := g.store.Upload(ctx, key, processed.Data, processed.ContentType)
	if err != nil {
		return nil, model.NewUploadFailedError(err)
	}

	return &model.Image{URL: url, ExternalID: key}, nil
}

// Delete releases the object. Deleting an unknown id is not an error.
func (g *ImageGateway) Delete(ctx context.Context, externalID string) error {
	if externalID == "" {
		return nil
	}
	if err := g.store.Delete(ctx, externalID); err != nil {
		return fmt.Errorf("delete image %s: %w", externalID, err)
	}
	return nil
}
