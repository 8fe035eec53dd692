package service

import (
	"context"
)

// Uploader stores rendered images (QR codes) in remote media storage.
type Uploader interface {
	UploadFromURL(ctx context.Context, sourceURL string, folder string, publicID string) (string, error)
}
