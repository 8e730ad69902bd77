package ports

import (
	"context"

	"github.com/medicare/hospital-system/internal/core/domain"
)

// AssetUploader stores an image on the remote asset host.
type AssetUploader interface {
	Upload(ctx context.Context, filename string, data []byte) (*domain.Avatar, error)
	// Delete removes a previously uploaded asset.
	Delete(ctx context.Context, publicID string) error
}
