package handler

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	"project_tracker/internal/model"
	"project_tracker/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, email, password string) (*model.SignupResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*model.SignupResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) Signin(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*model.TokenResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) SignToken(email string, role model.Role) (*model.TokenResponse, error) {
	args := m.Called(email, role)
	resp, _ := args.Get(0).(*model.TokenResponse)
	return resp, args.Error(1)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) ListProjects(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func (m *MockProjectService) GetProject(ctx context.Context, slug string) (*model.Project, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*model.Project)
	return p, args.Error(1)
}

func (m *MockProjectService) CreateProject(ctx context.Context, req model.CreateProjectRequest) (*model.Project, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*model.Project)
	return p, args.Error(1)
}

func (m *MockProjectService) DeleteProject(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *MockProjectService) UpdateProjectAccess(ctx context.Context, slug string, req model.UpdateProjectAccessRequest) (*model.Project, error) {
	args := m.Called(ctx, slug, req)
	p, _ := args.Get(0).(*model.Project)
	return p, args.Error(1)
}

func (m *MockProjectService) AddProjectData(ctx context.Context, slug string, req model.CreateProjectDataRequest, file *multipart.FileHeader) (*model.ProjectData, error) {
	args := m.Called(ctx, slug, req, file)
	d, _ := args.Get(0).(*model.ProjectData)
	return d, args.Error(1)
}

// userTable stands in for the users table, including its unique email key
type userTable struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newUserTable() *userTable {
	return &userTable{users: make(map[string]model.User)}
}

func (t *userTable) Create(_ context.Context, user *model.User) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	user.CreatedAt = time.Now().UTC()
	t.users[user.Email] = *user
	return nil
}

func (t *userTable) FindByEmail(_ context.Context, email string) (*model.User, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}
