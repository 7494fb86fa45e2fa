package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fleamart/internal/middleware"
	"fleamart/internal/models"
	"fleamart/internal/observability"
	"fleamart/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	// Register decoders for the accepted input formats.
	_ "image/jpeg"

	_ "golang.org/x/image/webp"
)

const (
	// MaxUploadFiles is the most files accepted in one request.
	MaxUploadFiles = 5
	// MaxUploadSize is the per-file size cap in bytes.
	MaxUploadSize = 5 << 20
	// maxImageWidth caps the stored width; wider images are scaled down.
	maxImageWidth = 2000
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadService validates, normalizes and stores image uploads.
// Every stored file is re-encoded as PNG, which strips any payload hiding
// behind a spoofed extension.
type UploadService struct {
	uploadDir string
	baseURL   string
	imageRepo repository.ImageRepository
	logRepo   repository.UploadLogRepository
}

func NewUploadService(uploadDir, baseURL string, imageRepo repository.ImageRepository, logRepo repository.UploadLogRepository) *UploadService {
	return &UploadService{
		uploadDir: uploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		imageRepo: imageRepo,
		logRepo:   logRepo,
	}
}

// Process stores every valid file from the batch and returns their public
// URLs. Invalid files are dropped silently; the request only fails when
// nothing valid remains.
func (s *UploadService) Process(ctx context.Context, userID *uint, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, models.NewValidationError("No files uploaded")
	}
	if len(files) > MaxUploadFiles {
		return nil, models.NewValidationError(fmt.Sprintf("Too many files (max %d)", MaxUploadFiles))
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, models.NewInternalError(err)
	}

	urls := make([]string, 0, len(files))
	for _, header := range files {
		url, err := s.processOne(ctx, userID, header)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "dropping invalid upload",
				"filename", header.Filename, "reason", err.Error())
			continue
		}
		urls = append(urls, url)
	}

	if len(urls) == 0 {
		return nil, models.NewValidationError("No valid image files in upload")
	}
	return urls, nil
}

func (s *UploadService) processOne(ctx context.Context, userID *uint, header *multipart.FileHeader) (string, error) {
	if header.Size > MaxUploadSize {
		observability.UploadsRejected.WithLabelValues("too_large").Inc()
		return "", fmt.Errorf("file exceeds %d bytes", MaxUploadSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		observability.UploadsRejected.WithLabelValues("extension").Inc()
		return "", fmt.Errorf("extension %q not allowed", ext)
	}

	file, err := header.Open()
	if err != nil {
		observability.UploadsRejected.WithLabelValues("open").Inc()
		return "", err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		observability.UploadsRejected.WithLabelValues("read").Inc()
		return "", err
	}
	if len(data) > MaxUploadSize {
		observability.UploadsRejected.WithLabelValues("too_large").Inc()
		return "", fmt.Errorf("file exceeds %d bytes", MaxUploadSize)
	}

	// The MIME check inspects the actual bytes, not the client-sent header.
	mimeType := http.DetectContentType(data)
	if !allowedMimeTypes[mimeType] {
		observability.UploadsRejected.WithLabelValues("mime").Inc()
		return "", fmt.Errorf("content type %q not allowed", mimeType)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		observability.UploadsRejected.WithLabelValues("decode").Inc()
		return "", fmt.Errorf("not a decodable image: %w", err)
	}

	img = scaleDown(img, maxImageWidth)

	filename := uuid.NewString() + ".png"
	path := filepath.Join(s.uploadDir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	url := s.baseURL + "/images/" + filename
	if err := s.imageRepo.Create(ctx, &models.Image{URL: url}); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	entry := &models.UploadLog{
		UserID:       userID,
		Filename:     filename,
		OriginalName: header.Filename,
		Mimetype:     mimeType,
		Size:         header.Size,
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	observability.UploadsAccepted.Inc()
	return url, nil
}

// ListUserUploads returns the upload history of the user, newest first.
func (s *UploadService) ListUserUploads(ctx context.Context, userID uint, req PageRequest) (Page[*models.UploadLog], error) {
	req = req.Normalize()
	total, err := s.logRepo.CountByUser(ctx, userID)
	if err != nil {
		return Page[*models.UploadLog]{}, models.NewInternalError(err)
	}
	entries, err := s.logRepo.ListByUser(ctx, userID, req.PageSize, req.Offset())
	if err != nil {
		return Page[*models.UploadLog]{}, models.NewInternalError(err)
	}
	return NewPage(entries, total, req), nil
}

// scaleDown resizes the image to maxWidth when it is wider, preserving the
// aspect ratio. Smaller images pass through untouched.
func scaleDown(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth {
		return img
	}
	height := bounds.Dy() * maxWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
