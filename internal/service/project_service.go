package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"project_tracker/internal/apperror"
	"project_tracker/internal/cache"
	"project_tracker/internal/model"
	"project_tracker/internal/repository"
	"project_tracker/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	msgProjectNotFound = "Project not found"
	msgProjectExists   = "Project already exists"

	imageContentType = "image/jpeg"
)

// ProjectService defines operations for projects and their images
type ProjectService interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, slug string) (*model.Project, error)
	CreateProject(ctx context.Context, req model.CreateProjectRequest) (*model.Project, error)
	DeleteProject(ctx context.Context, slug string) error
	UpdateProjectAccess(ctx context.Context, slug string, req model.UpdateProjectAccessRequest) (*model.Project, error)
	AddProjectData(ctx context.Context, slug string, req model.CreateProjectDataRequest, file *multipart.FileHeader) (*model.ProjectData, error)
}

// ProjectServiceOptions carries the optional collaborators of the project service
type ProjectServiceOptions struct {
	// Cache may be nil, which disables the read cache
	Cache         cache.Client
	CacheTTL      time.Duration
	MaxImageBytes int64
}

type projectService struct {
	repo          repository.ProjectRepository
	images        storage.ImageStore
	cache         cache.Client
	cacheTTL      time.Duration
	maxImageBytes int64
	logger        *slog.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo repository.ProjectRepository, images storage.ImageStore, opts ProjectServiceOptions, logger *slog.Logger) ProjectService {
	return &projectService{
		repo:          repo,
		images:        images,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		maxImageBytes: opts.MaxImageBytes,
		logger:        logger,
	}
}

// Slugify lowercases s and collapses every run of non-alphanumerics into one dash
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func cacheKey(slug string) string {
	return "project:" + slug
}

func (s *projectService) ListProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return projects, nil
}

// GetProject reads through the cache when one is configured
func (s *projectService) GetProject(ctx context.Context, slug string) (*model.Project, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey(slug)); err == nil {
			var p model.Project
			if err := json.Unmarshal([]byte(cached), &p); err == nil {
				return &p, nil
			}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "project cache read failed", "slug", slug, "error", err)
		}
	}

	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound(msgProjectNotFound)
		}
		return nil, apperror.Internal(err)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(p); err == nil {
			if err := s.cache.Set(ctx, cacheKey(slug), payload, s.cacheTTL); err != nil {
				s.logger.WarnContext(ctx, "project cache write failed", "slug", slug, "error", err)
			}
		}
	}
	return p, nil
}

func (s *projectService) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(slug)); err != nil {
		s.logger.WarnContext(ctx, "project cache invalidation failed", "slug", slug, "error", err)
	}
}

func (s *projectService) CreateProject(ctx context.Context, req model.CreateProjectRequest) (*model.Project, error) {
	source := req.Slug
	if source == "" {
		source = req.Name
	}
	slug := Slugify(source)
	if slug == "" {
		return nil, apperror.Validation("Invalid request", map[string]string{"slug": "must contain letters or digits"})
	}

	access := req.Access
	if access == "" {
		access = model.AccessPrivate
	}

	project := &model.Project{
		Slug:        slug,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Access:      access,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict(msgProjectExists)
		}
		return nil, apperror.Internal(err)
	}

	s.logger.InfoContext(ctx, "project created", "slug", slug)
	return project, nil
}

// DeleteProject removes the record, then its stored images on a best-effort basis
func (s *projectService) DeleteProject(ctx context.Context, slug string) error {
	keys, err := s.repo.ListDataKeys(ctx, slug)
	if err != nil {
		return apperror.Internal(err)
	}

	s.invalidate(ctx, slug)
	if err := s.repo.Delete(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound(msgProjectNotFound)
		}
		return apperror.Internal(err)
	}
	s.invalidate(ctx, slug)

	for _, key := range keys {
		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "failed to delete project image", "slug", slug, "key", key, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "project deleted", "slug", slug, "images", len(keys))
	return nil
}

// UpdateProjectAccess drops the cached copy both before and after the write, which narrows
// the window in which a concurrent read can re-cache the old row. Any entry that still
// slips in lives at most one cache TTL.
func (s *projectService) UpdateProjectAccess(ctx context.Context, slug string, req model.UpdateProjectAccessRequest) (*model.Project, error) {
	s.invalidate(ctx, slug)
	p, err := s.repo.UpdateAccess(ctx, slug, req.Access)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound(msgProjectNotFound)
		}
		return nil, apperror.Internal(err)
	}
	s.invalidate(ctx, slug)
	return p, nil
}

// AddProjectData validates a JPEG upload, stores it and records it against the project.
// The stored object is removed again if the record cannot be written.
func (s *projectService) AddProjectData(ctx context.Context, slug string, req model.CreateProjectDataRequest, fileHeader *multipart.FileHeader) (*model.ProjectData, error) {
	if fileHeader == nil {
		return nil, apperror.Validation("Invalid request", map[string]string{"file": "required"})
	}
	if fileHeader.Size > s.maxImageBytes {
		return nil, apperror.Validation("File too large", map[string]string{"file": fmt.Sprintf("max %d bytes", s.maxImageBytes)})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxImageBytes+1))
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to read uploaded file: %w", err))
	}
	if int64(len(data)) > s.maxImageBytes {
		return nil, apperror.Validation("File too large", map[string]string{"file": fmt.Sprintf("max %d bytes", s.maxImageBytes)})
	}
	if !mimetype.Detect(data).Is(imageContentType) {
		return nil, apperror.Validation("Invalid file type", map[string]string{"file": "must be " + imageContentType})
	}

	if _, err := s.repo.FindBySlug(ctx, slug); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound(msgProjectNotFound)
		}
		return nil, apperror.Internal(err)
	}

	id := uuid.NewString()
	record := &model.ProjectData{
		ID:          id,
		ProjectSlug: slug,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ImageKey:    fmt.Sprintf("projects/%s/%s.jpg", slug, id),
		ContentType: imageContentType,
		SizeBytes:   int64(len(data)),
	}

	if err := s.images.Put(ctx, record.ImageKey, record.ContentType, bytes.NewReader(data), record.SizeBytes); err != nil {
		return nil, apperror.Internal(err)
	}

	if err := s.repo.AddData(ctx, record); err != nil {
		if delErr := s.images.Delete(ctx, record.ImageKey); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned image", "key", record.ImageKey, "error", delErr)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound(msgProjectNotFound)
		}
		return nil, apperror.Internal(err)
	}

	return record, nil
}
