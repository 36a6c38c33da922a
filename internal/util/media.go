package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"socialnet/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const tmpDirName = "tmp"

// CloudinaryClient wraps the media storage backend. Files are uploaded first,
// classification and thumbnail derivation happen against the stored asset.
type CloudinaryClient struct {
	cld *cloudinary.Cloudinary
	cfg *config.Config
}

func NewCloudinaryClient(cfg *config.Config) (*CloudinaryClient, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not configured")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryClient{
		cld: cld,
		cfg: cfg,
	}, nil
}

// UploadFile stores raw file bytes and returns the durable URL. The resource
// type is resolved by the backend, so any content can go through this path.
func (c *CloudinaryClient) UploadFile(data []byte, filename string) (string, error) {
	ctx := context.Background()

	result, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       c.cfg.CloudinaryFolder,
		PublicID:     uuid.New().String() + "_" + sanitizeFilename(filename),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("error uploading to cloudinary: %w", err)
	}

	return result.SecureURL, nil
}

// VideoThumbnailURL derives a first-frame JPEG URL for a stored video.
// Returns "" when the URL shape is not transformable.
func (c *CloudinaryClient) VideoThumbnailURL(videoURL string) string {
	if !strings.Contains(videoURL, "/upload/") {
		return ""
	}
	thumb := strings.Replace(videoURL, "/upload/", "/upload/so_0/", 1)
	ext := filepath.Ext(thumb)
	if ext == "" {
		return thumb + ".jpg"
	}
	return strings.TrimSuffix(thumb, ext) + ".jpg"
}

// UploadImage compresses an image held in memory and uploads it, delivered
// as WebP. Used for profile pictures.
func (c *CloudinaryClient) UploadImage(data []byte, filename string) (string, error) {
	tmpDir, err := ensureTmpDir()
	if err != nil {
		return "", err
	}

	tempFile := filepath.Join(tmpDir, uuid.New().String()+filepath.Ext(filename))
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return "", fmt.Errorf("error writing temp file: %w", err)
	}
	defer os.Remove(tempFile)

	// Compress
	compressedPath, err := c.compressImage(tempFile)
	if err != nil {
		// If compression fails, use original
		compressedPath = tempFile
	} else if compressedPath != tempFile {
		defer os.Remove(compressedPath)
	}

	ctx := context.Background()
	result, err := c.cld.Upload.Upload(ctx, compressedPath, uploader.UploadParams{
		Folder:         c.cfg.CloudinaryFolder,
		Transformation: "q_auto,f_webp,w_1280",
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("error uploading to cloudinary: %w", err)
	}

	url := result.SecureURL
	url = strings.Replace(url, "/upload/", "/upload/f_webp,q_auto,w_1280/", 1)
	return url, nil
}

// compressImage re-encodes an image file as quality-80 JPEG in the tmp directory
func (c *CloudinaryClient) compressImage(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	var img image.Image
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
		if err != nil {
			return "", fmt.Errorf("error decoding JPEG: %w", err)
		}
	case ".png":
		img, err = png.Decode(file)
		if err != nil {
			return "", fmt.Errorf("error decoding PNG: %w", err)
		}
	default:
		// Other formats are uploaded as-is
		return filePath, nil
	}

	tmpDir, err := ensureTmpDir()
	if err != nil {
		return "", err
	}

	compressedPath := filepath.Join(tmpDir, uuid.New().String()+".compressed.jpg")
	compressedFile, err := os.Create(compressedPath)
	if err != nil {
		return "", fmt.Errorf("error creating compressed file: %w", err)
	}
	defer compressedFile.Close()

	if err := jpeg.Encode(compressedFile, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("error encoding compressed image: %w", err)
	}

	return compressedPath, nil
}

// DetectFileType classifies file content as image, video or other. The
// filename and its extension play no part in the decision.
func DetectFileType(data []byte) string {
	mtype := mimetype.Detect(data)
	switch {
	case strings.HasPrefix(mtype.String(), "image/"):
		return "image"
	case strings.HasPrefix(mtype.String(), "video/"):
		return "video"
	default:
		return "other"
	}
}

// ReadFileFromReader drains an upload stream into memory
func ReadFileFromReader(reader io.Reader, filename string) ([]byte, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filename, err)
	}
	return data, nil
}

func sanitizeFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}

// ensureTmpDir ensures the tmp directory exists
func ensureTmpDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		tmpDir := filepath.Join(os.TempDir(), tmpDirName)
		return tmpDir, os.MkdirAll(tmpDir, 0755)
	}

	tmpDir := filepath.Join(wd, tmpDirName)
	return tmpDir, os.MkdirAll(tmpDir, 0755)
}
