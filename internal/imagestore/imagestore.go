package imagestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fadakar85/bazaar/pkg/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrDisallowedType is returned for uploads whose extension is not in
	// the allow-list.
	ErrDisallowedType = errors.New("disallowed image type")
	// ErrDecode is returned when the upload is not a readable image.
	ErrDecode = errors.New("unreadable image data")
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

const (
	maxDimension = 800
	jpegQuality  = 85
)

// Store persists product images under a single directory. Every stored
// image is re-encoded to a bounded-dimension JPEG regardless of the upload
// format, so stored filenames always end in .jpg.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &Store{dir: dir}, nil
}

// Save validates, re-encodes and stores an uploaded image. It returns the
// stored filename. A partially written file is removed on any failure.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", ErrDisallowedType
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", errors.Wrap(ErrDecode, err.Error())
	}

	// Aspect-preserving downscale; images already inside the bound are
	// kept at their original size.
	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	base := strings.TrimSuffix(common.SecureFilename(originalName), ext)
	filename := fmt.Sprintf("%s_%s.jpg", common.UUIDstring(), base)
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create image file")
	}
	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrap(err, "encode image")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "close image file")
	}

	zap.L().Info("image stored",
		zap.String("filename", filename),
		zap.String("original", originalName))
	return filename, nil
}

// Delete removes a stored image. A missing file is not an error: the
// caller runs this as compensating cleanup and may retry.
func (s *Store) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	// never follow a path outside the store dir
	path := filepath.Join(s.dir, filepath.Base(filename))
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete image")
	}
	return nil
}

// Path returns the absolute path of a stored image.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filename))
}

// Exists reports whether a stored image is still retrievable.
func (s *Store) Exists(filename string) bool {
	return common.FileExists(s.Path(filename))
}
