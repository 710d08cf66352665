// Package filemgr stores uploaded product images on disk and renders the
// thumbnail variant served in listings.
package filemgr

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	productPicDir = "static/productpic"
	thumbWidth    = 320
)

var allowedImageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// SaveProductImage writes the upload under a fresh uuid name and renders a
// jpeg thumbnail next to it. Returns (imagePath, publicID).
func SaveProductImage(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	mimeType := header.Header.Get("Content-Type")
	if !allowedImageMIMEs[mimeType] {
		return "", "", fmt.Errorf("unsupported image type %q", mimeType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	publicID := uuid.NewString()

	if err := os.MkdirAll(productPicDir, 0o755); err != nil {
		return "", "", err
	}

	fullPath := filepath.Join(productPicDir, publicID+ext)
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(fullPath)
		return "", "", err
	}

	if err := writeThumbnail(fullPath, publicID); err != nil {
		// Listing falls back to the full image if the thumb is missing.
		return "/" + fullPath, publicID, nil
	}
	return "/" + fullPath, publicID, nil
}

func writeThumbnail(srcPath, publicID string) error {
	img, err := imaging.Open(srcPath)
	if err != nil {
		return err
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	return imaging.Save(thumb, filepath.Join(productPicDir, publicID+".thumb.jpg"))
}

// DeleteProductImage removes the stored image and its thumbnail by publicID.
func DeleteProductImage(publicID string) {
	if publicID == "" {
		return
	}
	matches, err := filepath.Glob(filepath.Join(productPicDir, publicID+"*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		os.Remove(m)
	}
}
