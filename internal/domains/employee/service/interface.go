package service

import (
	"context"

	"github.com/google/uuid"

	"staff-directory/internal/domains/employee/model"
	"staff-directory/internal/infrastructure/cache"
)

// =====================================================
// EMPLOYEE SERVICE INTERFACE
// =====================================================

type ServiceInterface interface {
	// ========================================
	// OWNER OPERATIONS
	// ========================================

	// CreateEmployee classifies, uploads the optional photo, then persists
	CreateEmployee(ctx context.Context, caller model.Caller, req model.CreateEmployeeRequest, upload *model.ImageUpload) (*model.EmployeeResponse, error)

	// UpdateEmployee applies a partial update; see ImageField for image intent
	UpdateEmployee(ctx context.Context, caller model.Caller, id uuid.UUID, req model.UpdateEmployeeRequest, upload *model.ImageUpload) (*model.EmployeeResponse, error)

	// DeleteEmployee releases the photo and removes the record
	DeleteEmployee(ctx context.Context, caller model.Caller, id uuid.UUID) error

	// GetEmployee returns the full view to the owner or an admin
	GetEmployee(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.EmployeeResponse, error)

	// ListEmployeesForOwner lists the caller's records, every record for admins
	ListEmployeesForOwner(ctx context.Context, caller model.Caller) ([]*model.EmployeeResponse, error)

	// ========================================
	// PUBLIC DIRECTORY
	// ========================================

	ListPublishedEmployees(ctx context.Context) ([]*model.PublicEmployeeResponse, error)
	GetPublishedEmployee(ctx context.Context, id uuid.UUID) (*model.PublicEmployeeResponse, error)
	ListDistinctDepartments(ctx context.Context, category model.Category) ([]string, error)
	ListEmployeesByDepartment(ctx context.Context, category model.Category, department string) ([]*model.PublicEmployeeResponse, error)
	Taxonomy() model.TaxonomyResponse
}

// ImageStore is the external photo store.
type ImageStore interface {
	Upload(ctx context.Context, upload model.ImageUpload) (*model.Image, error)
	Delete(ctx context.Context, externalID string) error
}

// OrphanRecorder keeps track of photos whose release failed.
type OrphanRecorder interface {
	Record(ctx context.Context, entry cache.OrphanEntry) error
}
