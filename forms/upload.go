package forms

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// SaveImage writes an uploaded image under mediaRoot/posts/ with a uuid
// filename and returns the media-relative path stored on the post row.
func SaveImage(file multipart.File, header *multipart.FileHeader, mediaRoot string) (string, error) {
	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return "", errors.New("Only JPEG, PNG and GIF images are allowed.")
	}

	dir := filepath.Join(mediaRoot, "posts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logrus.WithError(err).Error("failed to create media directory")
		return "", errors.New("Could not store the uploaded image.")
	}

	name := uuid.New().String() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		logrus.WithError(err).Error("failed to create media file")
		return "", errors.New("Could not store the uploaded image.")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		logrus.WithError(err).Error("failed to write media file")
		return "", errors.New("Could not store the uploaded image.")
	}

	return filepath.ToSlash(filepath.Join("posts", name)), nil
}
