package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"staff-directory/internal/domains/employee/model"
	"staff-directory/internal/shared/middleware"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) CreateEmployee(ctx context.Context, caller model.Caller, req model.CreateEmployeeRequest, upload *model.ImageUpload) (*model.EmployeeResponse, error) {
	args := m.Called(ctx, caller, req, upload)
	resp, _ := args.Get(0).(*model.EmployeeResponse)
	return resp, args.Error(1)
}

func (m *mockService) UpdateEmployee(ctx context.Context, caller model.Caller, id uuid.UUID, req model.UpdateEmployeeRequest, upload *model.ImageUpload) (*model.EmployeeResponse, error) {
	args := m.Called(ctx, caller, id, req, upload)
	resp, _ := args.Get(0).(*model.EmployeeResponse)
	return resp, args.Error(1)
}

func (m *mockService) DeleteEmployee(ctx context.Context, caller model.Caller, id uuid.UUID) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *mockService) GetEmployee(ctx context.Context, caller model.Caller, id uuid.UUID) (*model.EmployeeResponse, error) {
	args := m.Called(ctx, caller, id)
	resp, _ := args.Get(0).(*model.EmployeeResponse)
	return resp, args.Error(1)
}

func (m *mockService) ListEmployeesForOwner(ctx context.Context, caller model.Caller) ([]*model.EmployeeResponse, error) {
	args := m.Called(ctx, caller)
	resp, _ := args.Get(0).([]*model.EmployeeResponse)
	return resp, args.Error(1)
}

func (m *mockService) ListPublishedEmployees(ctx context.Context) ([]*model.PublicEmployeeResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).([]*model.PublicEmployeeResponse)
	return resp, args.Error(1)
}

func (m *mockService) GetPublishedEmployee(ctx context.Context, id uuid.UUID) (*model.PublicEmployeeResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*model.PublicEmployeeResponse)
	return resp, args.Error(1)
}

func (m *mockService) ListDistinctDepartments(ctx context.Context, category model.Category) ([]string, error) {
	args := m.Called(ctx, category)
	resp, _ := args.Get(0).([]string)
	return resp, args.Error(1)
}

func (m *mockService) ListEmployeesByDepartment(ctx context.Context, category model.Category, department string) ([]*model.PublicEmployeeResponse, error) {
	args := m.Called(ctx, category, department)
	resp, _ := args.Get(0).([]*model.PublicEmployeeResponse)
	return resp, args.Error(1)
}

func (m *mockService) Taxonomy() model.TaxonomyResponse {
	return m.Called().Get(0).(model.TaxonomyResponse)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func setupRouter(svc *mockService, caller *model.Caller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewEmployeeHandler(svc, 1<<20)

	r := gin.New()
	auth := func(c *gin.Context) {
		if caller != nil {
			c.Set(middleware.ContextUserID, caller.ID)
			c.Set(middleware.ContextRole, string(caller.Role))
		}
		c.Next()
	}

	r.POST("/employees", auth, h.Create)
	r.PATCH("/employees/:id", auth, h.Update)
	r.DELETE("/employees/:id", auth, h.Delete)
	r.GET("/employees", auth, h.ListMine)
	r.GET("/directory/employees", h.ListPublished)
	r.GET("/directory/offices", h.ListOffices)
	r.GET("/directory/offices/:name", h.ListByOffice)
	r.GET("/directory/taxonomy", h.Taxonomy)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func do(r *gin.Engine, method, path string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, envelope) {
	if body == nil {
		body = new(bytes.Buffer)
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestCreateMultipartNormalizesFields(t *testing.T) {
	svc := new(mockService)
	caller := &model.Caller{ID: uuid.New(), Role: model.RoleUser}

	svc.On("CreateEmployee", mock.Anything, *caller, mock.MatchedBy(func(req model.CreateEmployeeRequest) bool {
		return req.Name == "Jane" &&
			req.ShowEmail != nil && !*req.ShowEmail &&
			req.IsPublished != nil && *req.IsPublished &&
			req.SortingOrder != nil && *req.SortingOrder == 2 &&
			req.ShowOfficialPhone == nil
	}), mock.MatchedBy(func(u *model.ImageUpload) bool {
		return u != nil && string(u.Data) == "jpeg-bytes" && u.Filename == "photo.jpg"
	})).Return(&model.EmployeeResponse{Name: "Jane"}, nil).Once()

	body, ct := multipartBody(t, map[string]string{
		"name":          "Jane",
		"designation":   "Officer",
		"department":    "HR",
		"show_email":    "false",
		"is_published":  "true",
		"sorting_order": "2",
	}, []byte("jpeg-bytes"))

	w, env := do(setupRouter(svc, caller), http.MethodPost, "/employees", body, ct)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}

func TestCreateRejectsUncoercibleBoolean(t *testing.T) {
	svc := new(mockService)
	caller := &model.Caller{ID: uuid.New()}

	body := bytes.NewBufferString(`{"name":"Jane","designation":"Officer","department":"HR","show_email":"yes"}`)
	w, env := do(setupRouter(svc, caller), http.MethodPost, "/employees", body, "application/json")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "show_email")
	svc.AssertNotCalled(t, "CreateEmployee", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateMissingRequiredFields(t *testing.T) {
	svc := new(mockService)
	body := bytes.NewBufferString(`{"designation":"Officer"}`)
	w, env := do(setupRouter(svc, &model.Caller{ID: uuid.New()}), http.MethodPost, "/employees", body, "application/json")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error.Details, "name")
	assert.Contains(t, env.Error.Details, "department")
}

func TestCreateRejectsUnknownFields(t *testing.T) {
	svc := new(mockService)
	body := bytes.NewBufferString(`{"name":"Jane","designation":"Officer","department":"HR","owner_id":"x"}`)
	w, env := do(setupRouter(svc, &model.Caller{ID: uuid.New()}), http.MethodPost, "/employees", body, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestCreateInvalidDepartment(t *testing.T) {
	svc := new(mockService)
	svc.On("CreateEmployee", mock.Anything, mock.Anything, mock.Anything, (*model.ImageUpload)(nil)).
		Return(nil, model.NewInvalidDepartmentError("Marketing"))

	body := bytes.NewBufferString(`{"name":"Jane","designation":"Officer","department":"Marketing"}`)
	w, env := do(setupRouter(svc, &model.Caller{ID: uuid.New()}), http.MethodPost, "/employees", body, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeInvalidDepartment, env.Error.Code)
}

func TestCreateRequiresCaller(t *testing.T) {
	svc := new(mockService)
	body := bytes.NewBufferString(`{}`)
	w, _ := do(setupRouter(svc, nil), http.MethodPost, "/employees", body, "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateMultipartImageNullRequestsClear(t *testing.T) {
	svc := new(mockService)
	caller := &model.Caller{ID: uuid.New()}
	id := uuid.New()

	svc.On("UpdateEmployee", mock.Anything, *caller, id, mock.MatchedBy(func(req model.UpdateEmployeeRequest) bool {
		return req.Image.ClearRequested() && req.Name == nil
	}), (*model.ImageUpload)(nil)).Return(&model.EmployeeResponse{ID: id}, nil).Once()

	body, ct := multipartBody(t, map[string]string{"image": "null"}, nil)
	w, _ := do(setupRouter(svc, caller), http.MethodPatch, "/employees/"+id.String(), body, ct)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdateAbsentImageIsNotAClear(t *testing.T) {
	svc := new(mockService)
	caller := &model.Caller{ID: uuid.New()}
	id := uuid.New()

	svc.On("UpdateEmployee", mock.Anything, *caller, id, mock.MatchedBy(func(req model.UpdateEmployeeRequest) bool {
		return !req.Image.ClearRequested() && req.Designation != nil && *req.Designation == "Director"
	}), (*model.ImageUpload)(nil)).Return(&model.EmployeeResponse{ID: id}, nil).Once()

	body := bytes.NewBufferString(`{"designation":"Director"}`)
	w, _ := do(setupRouter(svc, caller), http.MethodPatch, "/employees/"+id.String(), body, "application/json")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdateMalformedJSONField(t *testing.T) {
	svc := new(mockService)
	body, ct := multipartBody(t, map[string]string{"image": "{broken"}, nil)
	w, env := do(setupRouter(svc, &model.Caller{ID: uuid.New()}), http.MethodPatch, "/employees/"+uuid.NewString(), body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	assert.Contains(t, env.Error.Message, "image")
	svc.AssertNotCalled(t, "UpdateEmployee", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateRejectsImageObject(t *testing.T) {
	svc := new(mockService)
	body := bytes.NewBufferString(`{"image":{"image_url":"http://x","image_public_id":"y"}}`)
	w, _ := do(setupRouter(svc, &model.Caller{ID: uuid.New()}), http.MethodPatch, "/employees/"+uuid.NewString(), body, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"forbidden", model.NewForbiddenError(), http.StatusForbidden, model.ErrCodeForbidden},
		{"not found", model.NewEmployeeNotFoundError(), http.StatusNotFound, model.ErrCodeEmployeeNotFound},
		{"upload failed", model.NewUploadFailedError(assert.AnError), http.StatusBadGateway, model.ErrCodeUploadFailed},
		{"persist failed", model.NewPersistFailedError(assert.AnError), http.StatusInternalServerError, model.ErrCodePersistFailed},
		{"invalid image", model.NewInvalidImageError(assert.AnError), http.StatusBadRequest, model.ErrCodeInvalidImage},
		{"unexpected", assert.AnError, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			svc.On("UpdateEmployee", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			body := bytes.NewBufferString(`{"name":"New"}`)
			w, env := do(setupRouter(svc, &model.Caller{ID: uuid.New()}), http.MethodPatch, "/employees/"+uuid.NewString(), body, "application/json")

			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestUpdateInvalidID(t *testing.T) {
	svc := new(mockService)
	w, _ := do(setupRouter(svc, &model.Caller{ID: uuid.New()}), http.MethodPatch, "/employees/not-a-uuid", bytes.NewBufferString(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete(t *testing.T) {
	svc := new(mockService)
	caller := &model.Caller{ID: uuid.New()}
	id := uuid.New()
	svc.On("DeleteEmployee", mock.Anything, *caller, id).Return(nil).Once()

	w, env := do(setupRouter(svc, caller), http.MethodDelete, "/employees/"+id.String(), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}

func TestPublicListing(t *testing.T) {
	svc := new(mockService)
	svc.On("ListPublishedEmployees", mock.Anything).Return([]*model.PublicEmployeeResponse{
		{Name: "Jane"}, {Name: "Bob"},
	}, nil)

	w, env := do(setupRouter(svc, nil), http.MethodGet, "/directory/employees", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Total)
	assert.NotContains(t, string(env.Data), "show_email")
}

func TestListByOfficeDecodesPathName(t *testing.T) {
	svc := new(mockService)
	svc.On("ListEmployeesByDepartment", mock.Anything, model.CategoryOffice, "Registrar's Office").
		Return([]*model.PublicEmployeeResponse{}, nil).Once()

	w, _ := do(setupRouter(svc, nil), http.MethodGet, "/directory/offices/Registrar's%20Office", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestListOfficesAndTaxonomy(t *testing.T) {
	svc := new(mockService)
	svc.On("ListDistinctDepartments", mock.Anything, model.CategoryOffice).Return([]string{"Library"}, nil)
	svc.On("Taxonomy").Return(model.TaxonomyResponse{Departments: model.Departments(), Offices: model.Offices()})
	r := setupRouter(svc, nil)

	w, env := do(r, http.MethodGet, "/directory/offices", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["Library"]`, string(env.Data))

	w, env = do(r, http.MethodGet, "/directory/taxonomy", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(string(env.Data), `"value":"HR"`))
}
