package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/leolibre/leolibre-backend/internal/model"
	"github.com/leolibre/leolibre-backend/internal/repository"
	"github.com/leolibre/leolibre-backend/internal/storage"
)

// Common resource errors.
var (
	ErrResourceNotFound    = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
)

// allowedExtensions maps accepted document extensions to their MIME type.
var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".epub": "application/epub+zip",
	".txt":  "text/plain",
}

// ResourceService handles reading resource uploads and retrieval. Documents
// live in object storage; the database row keeps the object key.
type ResourceService struct {
	resources *repository.ResourceRepository
	members   *repository.MembershipRepository
	store     *storage.ObjectStore
	maxBytes  int64
	log       zerolog.Logger
}

// NewResourceService creates a new ResourceService.
func NewResourceService(resources *repository.ResourceRepository, members *repository.MembershipRepository, store *storage.ObjectStore, maxBytes int64, log zerolog.Logger) *ResourceService {
	return &ResourceService{
		resources: resources,
		members:   members,
		store:     store,
		maxBytes:  maxBytes,
		log:       log.With().Str("component", "resource_service").Logger(),
	}
}

// Upload stores a document and registers it as a club reading resource.
func (s *ResourceService) Upload(ctx context.Context, clubID int64, req *model.UploadResourceRequest, filename string, size int64, reader io.Reader) (*model.Resource, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, ErrUnsupportedFileType
	}
	if size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	objectName := fmt.Sprintf("clubs/%d/resources/%s%s", clubID, uuid.New().String(), ext)
	key, err := s.store.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	res := &model.Resource{
		ClubID:      clubID,
		Title:       req.Title,
		Author:      req.Author,
		BiblioRef:   req.BiblioRef,
		Description: req.Description,
		URL:         key,
	}
	if err := s.resources.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("register resource: %w", err)
	}

	s.log.Info().Int64("club_id", clubID).Int64("resource_id", res.ID).Str("object", key).Msg("resource uploaded")
	return res, nil
}

// GetResource retrieves an active resource belonging to a club.
func (s *ResourceService) GetResource(ctx context.Context, clubID, resourceID int64) (*model.Resource, error) {
	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	if res.ClubID != clubID {
		return nil, ErrResourceNotFound
	}
	return res, nil
}

// GetDownloadURL returns a time-limited link to the stored document and
// bumps the caller's read counter.
func (s *ResourceService) GetDownloadURL(ctx context.Context, clubID, resourceID, userID int64) (string, error) {
	res, err := s.GetResource(ctx, clubID, resourceID)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignedURL(ctx, res.URL)
	if err != nil {
		return "", fmt.Errorf("presign resource: %w", err)
	}
	if err := s.members.MarkResourceRead(ctx, clubID, userID); err != nil {
		s.log.Warn().Err(err).Int64("resource_id", resourceID).Msg("read counter update failed")
	}
	return url, nil
}

// ResourceURL returns a time-limited link to the document without touching
// read counters. Used when handing the document to the quiz generator.
func (s *ResourceService) ResourceURL(ctx context.Context, clubID, resourceID int64) (string, error) {
	res, err := s.GetResource(ctx, clubID, resourceID)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignedURL(ctx, res.URL)
	if err != nil {
		return "", fmt.Errorf("presign resource: %w", err)
	}
	return url, nil
}

// ListResources retrieves a club's active resources with pagination.
func (s *ResourceService) ListResources(ctx context.Context, clubID int64, page, perPage int) ([]model.Resource, int, error) {
	offset := (page - 1) * perPage
	resources, total, err := s.resources.ListByClub(ctx, clubID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}
	return resources, total, nil
}

// DeleteResource soft-deletes a resource. The stored document is kept so
// past quiz results keep their provenance.
func (s *ResourceService) DeleteResource(ctx context.Context, clubID, resourceID int64) error {
	if _, err := s.GetResource(ctx, clubID, resourceID); err != nil {
		return err
	}
	if err := s.resources.SoftDelete(ctx, resourceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResourceNotFound
		}
		return fmt.Errorf("delete resource: %w", err)
	}
	s.log.Info().Int64("club_id", clubID).Int64("resource_id", resourceID).Msg("resource deactivated")
	return nil
}
