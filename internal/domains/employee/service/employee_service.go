package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"staff-directory/internal/domains/employee/model"
	"staff-directory/internal/domains/employee/repository"
	"staff-directory/internal/infrastructure/cache"
	"staff-directory/pkg/logger"
)

// Reasons recorded for images that could not be released.
const (
	ReasonCompensateCreate = "compensate_create"
	ReasonCompensateUpdate = "compensate_update"
	ReasonSuperseded       = "superseded"
	ReasonRecordDeleted    = "record_deleted"
)

// releaseTimeout bounds a best-effort release running after the request ended.
const releaseTimeout = 10 * time.Second

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type employeeService struct {
	repo    repository.EmployeeRepository
	images  ImageStore
	orphans OrphanRecorder // optional
}

func NewEmployeeService(
	repo repository.EmployeeRepository,
	images ImageStore,
	orphans OrphanRecorder,
) ServiceInterface {
	return &employeeService{
		repo:    repo,
		images:  images,
		orphans: orphans,
	}
}

// =====================================================
// CREATE EMPLOYEE
// =====================================================

func (s *employeeService) CreateEmployee(
	ctx context.Context,
	caller model.Caller,
	req model.CreateEmployeeRequest,
	upload *model.ImageUpload,
) (*model.EmployeeResponse, error) {
	// Step 1: Validate and classify before touching any store
	if err := req.Validate(); err != nil {
		return nil, err
	}
	classification, err := model.Classify(req.Department)
	if err != nil {
		return nil, err
	}

	employee := req.ToEntity(caller.ID)
	employee.ApplyClassification(classification)

	// Step 2: Upload the photo, nothing is written if this fails
	if !upload.Empty() {
		img, err := s.uploadImage(ctx, *upload)
		if err != nil {
			return nil, err
		}
		employee.Image = img
	}

	// Step 3: Persist, releasing the fresh upload on failure
	if err := s.repo.Create(ctx, employee); err != nil {
		if employee.HasImage() {
			s.releaseImage(ctx, employee.Image.ExternalID, employee.ID, ReasonCompensateCreate)
		}
		return nil, model.NewPersistFailedError(err)
	}

	logger.Info("employee created", map[string]interface{}{
		"employee_id": employee.ID.String(),
		"owner_id":    caller.ID.String(),
		"category":    string(employee.Category),
	})

	return OwnerView(employee), nil
}

// =====================================================
// UPDATE EMPLOYEE
// =====================================================

func (s *employeeService) UpdateEmployee(
	ctx context.Context,
	caller model.Caller,
	id uuid.UUID,
	req model.UpdateEmployeeRequest,
	upload *model.ImageUpload,
) (*model.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Load
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Step 2: Only the owner may modify a record
	if !caller.Owns(current) {
		return nil, model.NewForbiddenError()
	}

	// Step 3: Merge the supplied fields onto a copy, reclassifying a new department
	next := current.Clone()
	req.ApplyToEntity(next)
	if req.Department != nil {
		classification, err := model.Classify(next.Department)
		if err != nil {
			return nil, err
		}
		next.ApplyClassification(classification)
	}

	// Step 4: Image intent. New content wins over an explicit null.
	var uploaded *model.Image
	switch {
	case !upload.Empty():
		uploaded, err = s.uploadImage(ctx, *upload)
		if err != nil {
			return nil, err
		}
		next.Image = uploaded
	case req.Image.ClearRequested():
		logger.Debug("employee image cleared by request")
		next.Image = nil
	}

	// Step 5: Persist
	if err := s.repo.Update(ctx, next); err != nil {
		if uploaded != nil {
			s.releaseImage(ctx, uploaded.ExternalID, id, ReasonCompensateUpdate)
		}
		if errors.Is(err, model.ErrEmployeeNotFound) {
			return nil, err
		}
		return nil, model.NewPersistFailedError(err)
	}

	// Step 6: The old photo goes only once the new state is durable
	if current.HasImage() && !sameImage(current.Image, next.Image) {
		s.releaseImage(ctx, current.Image.ExternalID, id, ReasonSuperseded)
	}

	return OwnerView(next), nil
}

// =====================================================
// DELETE EMPLOYEE
// =====================================================

func (s *employeeService) DeleteEmployee(ctx context.Context, caller model.Caller, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.Owns(current) {
		return model.NewForbiddenError()
	}

	// Image first; its failure never blocks the row delete
	if current.HasImage() {
		s.releaseImage(ctx, current.Image.ExternalID, id, ReasonRecordDeleted)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrEmployeeNotFound) {
			return err
		}
		return model.NewPersistFailedError(err)
	}

	logger.Info("employee deleted", map[string]interface{}{
		"employee_id": id.String(),
		"owner_id":    caller.ID.String(),
	})
	return nil
}

// =====================================================
// OWNER READS
// =====================================================

func (s *employeeService) GetEmployee(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.EmployeeResponse, error) {
	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(employee) && !caller.IsAdmin() {
		return nil, model.NewForbiddenError()
	}
	return OwnerView(employee), nil
}

func (s *employeeService) ListEmployeesForOwner(ctx context.Context, caller model.Caller) ([]*model.EmployeeResponse, error) {
	filter := model.ListFilter{Order: model.OrderNewestFirst}
	if !caller.IsAdmin() {
		ownerID := caller.ID
		filter.OwnerID = &ownerID
	}

	employees, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	out := make([]*model.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, OwnerView(e))
	}
	return out, nil
}

// =====================================================
// PUBLIC DIRECTORY
// =====================================================

func (s *employeeService) ListPublishedEmployees(ctx context.Context) ([]*model.PublicEmployeeResponse, error) {
	employees, err := s.repo.List(ctx, model.ListFilter{
		PublishedOnly: true,
		Order:         model.OrderDirectory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list published employees: %w", err)
	}

	SortForDirectory(employees)
	return publicViews(employees), nil
}

func (s *employeeService) GetPublishedEmployee(ctx context.Context, id uuid.UUID) (*model.PublicEmployeeResponse, error) {
	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view, ok := PublicView(employee)
	if !ok {
		return nil, model.NewEmployeeNotFoundError()
	}
	return view, nil
}

func (s *employeeService) ListDistinctDepartments(ctx context.Context, category model.Category) ([]string, error) {
	if !category.Valid() {
		return nil, model.NewInvalidDepartmentError(string(category))
	}
	departments, err := s.repo.DistinctDepartments(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

func (s *employeeService) ListEmployeesByDepartment(
	ctx context.Context,
	category model.Category,
	department string,
) ([]*model.PublicEmployeeResponse, error) {
	classification, err := model.Classify(department)
	if err != nil {
		return nil, err
	}
	if classification.Category != category {
		return nil, model.NewInvalidDepartmentError(department)
	}

	employees, err := s.repo.List(ctx, model.ListFilter{
		Category:      &category,
		Department:    &department,
		PublishedOnly: true,
		Order:         model.OrderSortingOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by department: %w", err)
	}

	SortWithinDepartment(employees)
	return publicViews(employees), nil
}

func (s *employeeService) Taxonomy() model.TaxonomyResponse {
	return model.TaxonomyResponse{
		Departments: model.Departments(),
		Offices:     model.Offices(),
	}
}

// =====================================================
// IMAGE HELPERS
// =====================================================

func (s *employeeService) uploadImage(ctx context.Context, upload model.ImageUpload) (*model.Image, error) {
	img, err := s.images.Upload(ctx, upload)
	if err != nil {
		var empErr *model.EmployeeError
		if errors.As(err, &empErr) {
			return nil, err
		}
		return nil, model.NewUploadFailedError(err)
	}
	if !img.Complete() {
		// Never attach half an image reference
		return nil, model.NewUploadFailedError(fmt.Errorf("image store returned an incomplete reference"))
	}
	return img, nil
}

// releaseImage is a single best-effort delete. Failures are logged and
// recorded as orphans, never returned. It outlives a cancelled request.
func (s *employeeService) releaseImage(ctx context.Context, externalID string, employeeID uuid.UUID, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	err := s.images.Delete(ctx, externalID)
	if err == nil {
		return
	}

	logger.Warn("failed to release employee image", err, map[string]interface{}{
		"external_id": externalID,
		"employee_id": employeeID.String(),
		"reason":      reason,
	})

	if s.orphans == nil {
		return
	}
	recErr := s.orphans.Record(ctx, cache.OrphanEntry{
		ExternalID: externalID,
		Reason:     reason,
		EmployeeID: employeeID.String(),
		Error:      err.Error(),
	})
	if recErr != nil {
		logger.Error("failed to record orphaned image "+externalID, recErr)
	}
}

func sameImage(a, b *model.Image) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ExternalID == b.ExternalID
}
