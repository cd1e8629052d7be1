package service

import (
	"context"
	"sync"
	"time"

	"project_tracker/internal/model"
	"project_tracker/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a testify mock of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

// memoryUserRepository enforces the unique email key like the real table
type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]model.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	user.CreatedAt = time.Now()
	r.users[user.Email] = *user
	return nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// MockTokenIssuer is a testify mock of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(email string, role model.Role) (string, error) {
	args := m.Called(email, role)
	return args.String(0), args.Error(1)
}

// MockProjectRepository is a testify mock of repository.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) FindAll(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]model.Project)
	return projects, args.Error(1)
}

func (m *MockProjectRepository) FindBySlug(ctx context.Context, slug string) (*model.Project, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*model.Project)
	return p, args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *MockProjectRepository) UpdateAccess(ctx context.Context, slug string, access model.ProjectAccess) (*model.Project, error) {
	args := m.Called(ctx, slug, access)
	p, _ := args.Get(0).(*model.Project)
	return p, args.Error(1)
}

func (m *MockProjectRepository) AddData(ctx context.Context, d *model.ProjectData) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockProjectRepository) ListDataKeys(ctx context.Context, slug string) ([]string, error) {
	args := m.Called(ctx, slug)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}
