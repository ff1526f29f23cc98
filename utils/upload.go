package utils

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Upload buckets under the upload directory.
const (
	BucketAvatars = "avatars"
	BucketPosts   = "posts"
	BucketStories = "stories"
)

const maxUploadBytes = 5 << 20

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// SaveImageUpload writes an uploaded image into uploadDir/bucket under a
// random name and returns the public path clients can fetch it from.
func SaveImageUpload(c *gin.Context, file *multipart.FileHeader, uploadDir, bucket string) (string, error) {
	if file.Size > maxUploadBytes {
		return "", fmt.Errorf("file too large")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported file type %q", ext)
	}

	dir := filepath.Join(uploadDir, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("preparing upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return "/uploads/" + bucket + "/" + name, nil
}
