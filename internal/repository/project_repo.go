package repository

import (
	"context"
	"errors"
	"fmt"

	"project_tracker/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProjectRepository defines operations for project data
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindAll(ctx context.Context) ([]model.Project, error)
	FindBySlug(ctx context.Context, slug string) (*model.Project, error)
	Delete(ctx context.Context, slug string) error
	UpdateAccess(ctx context.Context, slug string, access model.ProjectAccess) (*model.Project, error)
	AddData(ctx context.Context, data *model.ProjectData) error
	ListDataKeys(ctx context.Context, slug string) ([]string, error)
}

type projectRepository struct {
	db DBTX
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db DBTX) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `slug, name, description, access, created_at, updated_at`

func scanProject(row pgx.Row) (*model.Project, error) {
	p := &model.Project{}
	var access string
	if err := row.Scan(&p.Slug, &p.Name, &p.Description, &access, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Access = model.ProjectAccess(access)
	return p, nil
}

// Create inserts a new project
func (r *projectRepository) Create(ctx context.Context, p *model.Project) error {
	sql := `INSERT INTO projects (slug, name, description, access)
            VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, p.Slug, p.Name, p.Description, string(p.Access)).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// FindAll returns every project, newest first
func (r *projectRepository) FindAll(ctx context.Context) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// FindBySlug retrieves a project, ErrNotFound when absent
func (r *projectRepository) FindBySlug(ctx context.Context, slug string) (*model.Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project by slug: %w", err)
	}
	return p, nil
}

// Delete removes a project; its data rows go with it through the cascade
func (r *projectRepository) Delete(ctx context.Context, slug string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAccess changes the access level and returns the updated project
func (r *projectRepository) UpdateAccess(ctx context.Context, slug string, access model.ProjectAccess) (*model.Project, error) {
	sql := `UPDATE projects SET access = $1, updated_at = NOW() WHERE slug = $2 RETURNING ` + projectColumns
	p, err := scanProject(r.db.QueryRow(ctx, sql, string(access), slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update project access: %w", err)
	}
	return p, nil
}

// AddData records an uploaded image. A missing project surfaces as ErrNotFound.
func (r *projectRepository) AddData(ctx context.Context, d *model.ProjectData) error {
	sql := `INSERT INTO project_data (id, project_slug, title, description, image_key, content_type, size_bytes)
            SELECT $1::uuid, slug, $3::text, $4::text, $5::text, $6::text, $7::bigint FROM projects WHERE slug = $2
            RETURNING created_at`
	err := r.db.QueryRow(ctx, sql, d.ID, d.ProjectSlug, d.Title, d.Description, d.ImageKey, d.ContentType, d.SizeBytes).Scan(&d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to add project data: %w", err)
	}
	return nil
}

// ListDataKeys returns the storage keys of every image attached to a project
func (r *projectRepository) ListDataKeys(ctx context.Context, slug string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT image_key FROM project_data WHERE project_slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to query project data keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan project data key: %w", err)
		}
		keys = append(keys, key)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project data keys: %w", err)
	}
	return keys, nil
}
