// Package photo fetches, crops and stores profile pictures. It never runs
// under the store gate.
package photo

import (
	"bytes"
	"chat-core/errors"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const maxImageBytes = 10 << 20

// Crop is the rectangle kept from the source image, in pixels. End bounds are
// exclusive.
type Crop struct {
	XStart, YStart, XEnd, YEnd int
}

type Cropper struct {
	log     *slog.Logger
	client  *http.Client
	dir     string
	baseURL string
}

// NewCropper stores images under dir and serves them back as baseURL/<name>.
func NewCropper(log *slog.Logger, client *http.Client, dir, baseURL string) *Cropper {
	return &Cropper{log: log, client: client, dir: dir, baseURL: baseURL}
}

// CropAndStore downloads a JPEG from url, crops it and writes it as
// <name>.jpg. It returns the public URL of the stored image.
func (c *Cropper) CropAndStore(ctx context.Context, url string, crop Crop, name string) (string, error) {
	data, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if !mimetype.Detect(data).Is("image/jpeg") {
		return "", fmt.Errorf("%w: detected %s", errors.ErrInvalidImage, mimetype.Detect(data).String())
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidImage, err)
	}
	cropped, err := cut(img, crop)
	if err != nil {
		return "", err
	}

	if err = os.MkdirAll(c.dir, 0o755); err != nil {
		return "", err
	}
	fileName := name + ".jpg"
	if err = writeJPEG(filepath.Join(c.dir, fileName), cropped); err != nil {
		return "", err
	}
	c.log.Debug("Profile image stored", "file", fileName, "bounds", cropped.Bounds())
	return c.baseURL + "/" + fileName, nil
}

// writeJPEG encodes img to path. A failed write leaves no file behind.
func writeJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = jpeg.Encode(f, img, nil); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Cropper) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidImage, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidImage, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", errors.ErrInvalidImage, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// cut keeps crop from img. The rectangle must be non-empty and inside the
// image bounds.
func cut(img image.Image, crop Crop) (image.Image, error) {
	b := img.Bounds()
	r := image.Rect(crop.XStart, crop.YStart, crop.XEnd, crop.YEnd).Add(b.Min)
	if crop.XStart < 0 || crop.YStart < 0 || crop.XEnd <= crop.XStart || crop.YEnd <= crop.YStart || !r.In(b) {
		return nil, fmt.Errorf("%w: %v outside %v", errors.ErrInvalidCrop, r, b)
	}
	si, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %T", errors.ErrInvalidImage, img)
	}
	return si.SubImage(r), nil
}
