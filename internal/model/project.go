package model

import "time"

// ProjectAccess controls who may see a project outside of administration
type ProjectAccess string

const (
	AccessPublic  ProjectAccess = "public"
	AccessPrivate ProjectAccess = "private"
)

// Project is a record keyed by its unique slug
type Project struct {
	Slug        string        `json:"slug"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Access      ProjectAccess `json:"access"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ProjectData is an image attached to a project
type ProjectData struct {
	ID          string    `json:"id"`
	ProjectSlug string    `json:"projectSlug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageKey    string    `json:"imageKey"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateProjectRequest is used for creating a new project
type CreateProjectRequest struct {
	Slug        string        `json:"slug" binding:"omitempty,max=100"`
	Name        string        `json:"name" binding:"required,max=200"`
	Description string        `json:"description" binding:"max=2000"`
	Access      ProjectAccess `json:"access" binding:"omitempty,oneof=public private"`
}

// UpdateProjectAccessRequest changes the access level of a project
type UpdateProjectAccessRequest struct {
	Access ProjectAccess `json:"access" binding:"required,oneof=public private"`
}

// CreateProjectDataRequest carries the form fields sent alongside an uploaded image
type CreateProjectDataRequest struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description" binding:"max=2000"`
}
