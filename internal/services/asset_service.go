package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Upload rejection reasons. Handlers map these to HTTP 400.
var (
	ErrFileTooLarge     = errors.New("uploaded image exceeds the maximum allowed size")
	ErrUnsupportedImage = errors.New("uploaded file is not a supported image type")
)

// allowedImageTypes maps accepted content types (detected from the bytes,
// not trusted from the request) to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AssetService stores per-product image attachments on disk under a public
// static path. Files are named with a generated UUID so uploads never collide.
type AssetService struct {
	dir     string
	maxSize int64
}

// NewAssetService creates the upload directory if needed and returns a
// service writing into it.
func NewAssetService(dir string, maxSize int64) (*AssetService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &AssetService{
		dir:     dir,
		maxSize: maxSize,
	}, nil
}

// Save persists an uploaded image and returns its public URL path
// ("/uploads/<name>"). The size limit and the image-only content allow-list
// are enforced before any bytes are written.
func (s *AssetService) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type: %w", err)
	}
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create asset file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write asset file: %w", err)
	}
	return "/uploads/" + name, nil
}

// Remove deletes the stored file behind a public URL. A missing file is not
// an error, so Remove is safe to call twice and never blocks the product
// mutation that triggered it. Only the base name of the URL is used, so a
// crafted URL cannot escape the upload directory.
func (s *AssetService) Remove(publicURL string) error {
	if publicURL == "" {
		return nil
	}
	name := path.Base(publicURL)
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove asset %s: %w", name, err)
	}
	return nil
}
