//go:generate go run go.uber.org/mock/mockgen -source=ports.go -destination=../mocks/mock_ports.go -package=mocks
package services

import (
	"chat-core/photo"
	"context"
)

// ProfileImageStore crops a remote picture and returns where it is served.
type ProfileImageStore interface {
	CropAndStore(ctx context.Context, url string, crop photo.Crop, name string) (string, error)
}
