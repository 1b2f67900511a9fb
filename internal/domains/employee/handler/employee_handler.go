package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"staff-directory/internal/domains/employee/model"
	"staff-directory/internal/domains/employee/service"
	"staff-directory/internal/shared/middleware"
	"staff-directory/internal/shared/payload"
	"staff-directory/internal/shared/response"
	"staff-directory/pkg/logger"
)

// =====================================================
// EMPLOYEE HANDLER
// =====================================================

// multipart bodies may carry form fields next to the photo
const formOverheadBytes = 1 << 20

type EmployeeHandler struct {
	employeeService service.ServiceInterface
	normalizer      *payload.Pipeline
	maxUploadBytes  int64
}

func NewEmployeeHandler(employeeService service.ServiceInterface, maxUploadBytes int64) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		normalizer: payload.NewPipeline(
			payload.ParseJSONFields(model.JSONFields...),
			payload.ParseBoolFields(model.BooleanFields...),
			payload.ParseIntFields(model.IntegerFields...),
		),
		maxUploadBytes: maxUploadBytes,
	}
}

// =====================================================
// OWNER ENDPOINTS
// =====================================================

// Create registers a new employee
// POST /api/v1/employees (multipart/form-data or application/json)
func (h *EmployeeHandler) Create(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	raw, upload, err := h.readBody(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req model.CreateEmployeeRequest
	if err := h.bind(raw, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.employeeService.CreateEmployee(c.Request.Context(), caller, req, upload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// Update applies a partial update; "image": null removes the photo
// PATCH /api/v1/employees/:id
func (h *EmployeeHandler) Update(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid employee ID")
		return
	}

	raw, upload, err := h.readBody(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req model.UpdateEmployeeRequest
	if err := h.bind(raw, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.employeeService.UpdateEmployee(c.Request.Context(), caller, id, req, upload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Delete removes an employee and its photo
// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) Delete(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid employee ID")
		return
	}

	if err := h.employeeService.DeleteEmployee(c.Request.Context(), caller, id); err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// Get returns the full record to its owner or an admin
// GET /api/v1/employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid employee ID")
		return
	}

	resp, err := h.employeeService.GetEmployee(c.Request.Context(), caller, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ListMine lists the caller's records (all records for admins)
// GET /api/v1/employees
func (h *EmployeeHandler) ListMine(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	list, err := h.employeeService.ListEmployeesForOwner(c.Request.Context(), caller)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, list, &response.Meta{Total: len(list)})
}

// =====================================================
// PUBLIC DIRECTORY ENDPOINTS
// =====================================================

// ListPublished GET /api/v1/directory/employees
func (h *EmployeeHandler) ListPublished(c *gin.Context) {
	list, err := h.employeeService.ListPublishedEmployees(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, list, &response.Meta{Total: len(list)})
}

// GetPublished GET /api/v1/directory/employees/:id
func (h *EmployeeHandler) GetPublished(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid employee ID")
		return
	}

	resp, err := h.employeeService.GetPublishedEmployee(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ListDepartments GET /api/v1/directory/departments
func (h *EmployeeHandler) ListDepartments(c *gin.Context) {
	h.listDistinct(c, model.CategoryDepartment)
}

// ListOffices GET /api/v1/directory/offices
func (h *EmployeeHandler) ListOffices(c *gin.Context) {
	h.listDistinct(c, model.CategoryOffice)
}

// ListByDepartment GET /api/v1/directory/departments/:name
func (h *EmployeeHandler) ListByDepartment(c *gin.Context) {
	h.listByDepartment(c, model.CategoryDepartment)
}

// ListByOffice GET /api/v1/directory/offices/:name
func (h *EmployeeHandler) ListByOffice(c *gin.Context) {
	h.listByDepartment(c, model.CategoryOffice)
}

// Taxonomy GET /api/v1/directory/taxonomy
func (h *EmployeeHandler) Taxonomy(c *gin.Context) {
	response.Success(c, http.StatusOK, h.employeeService.Taxonomy())
}

func (h *EmployeeHandler) listDistinct(c *gin.Context, category model.Category) {
	list, err := h.employeeService.ListDistinctDepartments(c.Request.Context(), category)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, list, &response.Meta{Total: len(list)})
}

func (h *EmployeeHandler) listByDepartment(c *gin.Context, category model.Category) {
	list, err := h.employeeService.ListEmployeesByDepartment(c.Request.Context(), category, c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, list, &response.Meta{Total: len(list)})
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

// errBadRequest marks request-shape problems answered with 400.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// getCaller reads the identity stored by AuthMiddleware
func getCaller(c *gin.Context) (model.Caller, bool) {
	v, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return model.Caller{}, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return model.Caller{}, false
	}
	return model.Caller{ID: userID, Role: model.Role(c.GetString(middleware.ContextRole))}, true
}

// readBody returns the raw fields and the optional photo of a multipart or JSON body.
func (h *EmployeeHandler) readBody(c *gin.Context) (payload.Payload, *model.ImageUpload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+formOverheadBytes)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return h.readMultipart(c)
	}

	raw := payload.Payload{}
	if err := json.NewDecoder(c.Request.Body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return raw, nil, nil
		}
		return nil, nil, badRequest("invalid JSON body: %v", err)
	}
	return raw, nil, nil
}

func (h *EmployeeHandler) readMultipart(c *gin.Context) (payload.Payload, *model.ImageUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, badRequest("invalid multipart body: %v", err)
	}

	raw := payload.Payload{}
	for key, values := range form.Value {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}

	files := form.File["image"]
	if len(files) == 0 {
		return raw, nil, nil
	}

	upload, err := h.readImage(files[0])
	if err != nil {
		return nil, nil, err
	}
	return raw, upload, nil
}

func (h *EmployeeHandler) readImage(fh *multipart.FileHeader) (*model.ImageUpload, error) {
	if fh.Size > h.maxUploadBytes {
		return nil, model.NewInvalidImageError(fmt.Errorf("image exceeds %d bytes", h.maxUploadBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, badRequest("cannot read image: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		return nil, badRequest("cannot read image: %v", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &model.ImageUpload{
		Data:        data,
		ContentType: fh.Header.Get("Content-Type"),
		Filename:    fh.Filename,
	}, nil
}

// bind normalizes the raw payload and decodes it into dst.
func (h *EmployeeHandler) bind(raw payload.Payload, dst interface{}) error {
	normalized, err := h.normalizer.Run(raw)
	if err != nil {
		return err
	}

	if err := payload.Decode(normalized, dst); err != nil {
		// wrong primitive types are field errors, anything else is a bad body
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return validation.Errors{
				typeErr.Field: fmt.Errorf("must be a %s", typeErr.Type.String()),
			}
		}
		return badRequest("%v", err)
	}
	return nil
}

// respondError maps domain and request errors to the API envelope
func (h *EmployeeHandler) respondError(c *gin.Context, err error) {
	var (
		verrs    validation.Errors
		fieldErr *payload.FieldError
		empErr   *model.EmployeeError
	)

	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(c, verrs)
	case errors.As(err, &fieldErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST",
			fmt.Sprintf("Malformed field: %s", fieldErr.Field), gin.H{"field": fieldErr.Field})
	case errors.Is(err, errBadRequest):
		response.BadRequest(c, err.Error())
	case errors.As(err, &empErr):
		status := model.ToHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("employee request failed", err)
		}
		response.ErrorResponse(c, status, empErr.Code, empErr.Message)
	default:
		logger.Error("unexpected employee error", err)
		response.InternalServerError(c, "Internal server error")
	}
}
