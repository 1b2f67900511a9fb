package repository

import (
	"context"

	"github.com/google/uuid"

	"staff-directory/internal/domains/employee/model"
)

// =====================================================
// EMPLOYEE REPOSITORY INTERFACE
// =====================================================

type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when the row does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)

	// Create inserts the record and fills in its timestamps
	Create(ctx context.Context, employee *model.Employee) error

	// Update overwrites every mutable column of an existing record
	Update(ctx context.Context, employee *model.Employee) error

	// Delete removes the row permanently
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the records matching every predicate of the filter
	List(ctx context.Context, filter model.ListFilter) ([]*model.Employee, error)

	// DistinctDepartments lists department values of one category that have
	// published records, ordered by serial
	DistinctDepartments(ctx context.Context, category model.Category) ([]string, error)
}
