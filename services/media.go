package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/Aryaveer-14/civic-mind/config"
)

// MediaService uploads complaint evidence to Cloudinary. When credentials
// are absent uploads are skipped and complaints keep a nil media URL.
type MediaService struct {
	cld *cloudinary.Cloudinary
}

// NewMediaService builds the uploader from config. A nil inner client means
// media storage is disabled.
func NewMediaService() *MediaService {
	cfg := config.AppConfig.Cloudinary
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		log.Println("⚠️ Cloudinary not configured, complaint media will not be stored")
		return &MediaService{}
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		log.Printf("❌ Failed to initialize Cloudinary: %v", err)
		return &MediaService{}
	}
	log.Println("✅ Cloudinary media storage enabled")
	return &MediaService{cld: cld}
}

// Configured reports whether uploads will actually be stored.
func (m *MediaService) Configured() bool { return m.cld != nil }

// Upload stores image bytes and returns the served URL. Returns nil without
// error when media storage is disabled.
func (m *MediaService) Upload(ctx context.Context, data []byte, filename string) (*string, error) {
	if m.cld == nil {
		return nil, nil
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := m.cld.Upload.Upload(uploadCtx, bytes.NewReader(data), uploader.UploadParams{
		Folder: "complaints",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}
	log.Printf("📸 Media uploaded: %s", result.SecureURL)
	return &result.SecureURL, nil
}
