package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"staff-directory/internal/domains/employee/model"
	"staff-directory/internal/infrastructure/cache"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*model.Employee); ok {
		return e.Clone(), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Create(ctx context.Context, e *model.Employee) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockRepository) Update(ctx context.Context, e *model.Employee) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepository) List(ctx context.Context, filter model.ListFilter) ([]*model.Employee, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]*model.Employee); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) DistinctDepartments(ctx context.Context, category model.Category) ([]string, error) {
	args := m.Called(ctx, category)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) Upload(ctx context.Context, upload model.ImageUpload) (*model.Image, error) {
	args := m.Called(ctx, upload)
	if img, ok := args.Get(0).(*model.Image); ok {
		return img, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageStore) Delete(ctx context.Context, externalID string) error {
	return m.Called(ctx, externalID).Error(0)
}

type mockOrphans struct {
	mock.Mock
}

func (m *mockOrphans) Record(ctx context.Context, entry cache.OrphanEntry) error {
	return m.Called(ctx, entry).Error(0)
}
