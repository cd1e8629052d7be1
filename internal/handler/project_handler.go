package handler

import (
	"errors"
	"net/http"

	"project_tracker/internal/model"
	"project_tracker/internal/response"
	"project_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ProjectHandler handles project requests
type ProjectHandler struct {
	service service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: s}
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.service.ListProjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.service.GetProject(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, project)
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req model.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, project)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	slug := c.Param("slug")
	if err := h.service.DeleteProject(c.Request.Context(), slug); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"slug": slug})
}

func (h *ProjectHandler) UpdateProjectAccess(c *gin.Context) {
	var req model.UpdateProjectAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	project, err := h.service.UpdateProjectAccess(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, project)
}

func (h *ProjectHandler) AddProjectData(c *gin.Context) {
	var req model.CreateProjectDataRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	file, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		response.Error(c, response.BindError(err))
		return
	}

	record, err := h.service.AddProjectData(c.Request.Context(), c.Param("slug"), req, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, record)
}

// RegisterProjectRoutes registers project routes. Access is enforced by RoleGuard using Policy.
func (h *ProjectHandler) RegisterProjectRoutes(rg *gin.RouterGroup) {
	projectGroup := rg.Group("/project")
	{
		projectGroup.GET("", h.ListProjects)
		projectGroup.POST("/new", h.CreateProject)
		projectGroup.GET("/:slug", h.GetProject)
		projectGroup.DELETE("/:slug", h.DeleteProject)
		projectGroup.PATCH("/:slug/access", h.UpdateProjectAccess)
		projectGroup.POST("/:slug/data/new", h.AddProjectData)
	}
}
