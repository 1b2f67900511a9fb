package model

import (
	"encoding/json"
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func TestCreateRequestToEntityDefaultsFlagsToTrue(t *testing.T) {
	owner := uuid.New()
	req := CreateEmployeeRequest{
		Name:        " Jane Doe ",
		Email:       strPtr("jane@example.com"),
		Designation: "Officer",
		Department:  "HR",
	}

	e := req.ToEntity(owner)

	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, "Jane Doe", e.Name)
	assert.Equal(t, owner, e.OwnerID)
	assert.True(t, e.ShowEmail)
	assert.True(t, e.ShowOfficialPhone)
	assert.True(t, e.ShowPersonalPhone)
	assert.True(t, e.IsPublished)
	assert.Nil(t, e.Image)
}

func TestCreateRequestToEntityHonoursExplicitFalse(t *testing.T) {
	req := CreateEmployeeRequest{
		Name:              "Jane",
		Designation:       "Officer",
		Department:        "HR",
		ShowEmail:         boolPtr(false),
		ShowPersonalPhone: boolPtr(false),
		IsPublished:       boolPtr(false),
	}

	e := req.ToEntity(uuid.New())

	assert.False(t, e.ShowEmail)
	assert.True(t, e.ShowOfficialPhone)
	assert.False(t, e.ShowPersonalPhone)
	assert.False(t, e.IsPublished)
}

func TestCreateRequestValidate(t *testing.T) {
	valid := CreateEmployeeRequest{Name: "Jane", Designation: "Officer", Department: "HR"}
	assert.NoError(t, valid.Validate())

	missing := CreateEmployeeRequest{}
	err := missing.Validate()
	require.Error(t, err)
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "designation")
	assert.Contains(t, errs, "department")

	badEmail := valid
	badEmail.Email = strPtr("not-an-email")
	assert.Error(t, badEmail.Validate())

	blankEmail := valid
	blankEmail.Email = strPtr("")
	assert.NoError(t, blankEmail.Validate())
}

func TestUpdateRequestValidateRejectsEmptyRequiredFields(t *testing.T) {
	req := UpdateEmployeeRequest{Name: strPtr(""), Department: strPtr("")}
	err := req.Validate()
	require.Error(t, err)
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "department")

	assert.NoError(t, UpdateEmployeeRequest{}.Validate())
}

func TestValidateRejectsWhitespaceOnlyRequiredFields(t *testing.T) {
	create := CreateEmployeeRequest{Name: "   ", Designation: "\t ", Department: "HR"}
	err := create.Validate()
	require.Error(t, err)
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "designation")

	update := UpdateEmployeeRequest{Name: strPtr("   "), Designation: strPtr(" ")}
	err = update.Validate()
	require.Error(t, err)
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "designation")

	padded := CreateEmployeeRequest{Name: "  Jane  ", Designation: "Officer", Department: "HR"}
	assert.NoError(t, padded.Validate())
	assert.Equal(t, "  Jane  ", padded.Name)
}

func TestValidateSortingOrderFitsColumn(t *testing.T) {
	create := CreateEmployeeRequest{Name: "Jane", Designation: "Officer", Department: "HR", SortingOrder: intPtr(MaxSortingOrder)}
	assert.NoError(t, create.Validate())

	create.SortingOrder = intPtr(MaxSortingOrder + 1)
	assert.Error(t, create.Validate())

	update := UpdateEmployeeRequest{SortingOrder: intPtr(MaxSortingOrder + 1)}
	assert.Error(t, update.Validate())
}

func TestUpdateRequestApplyIsPartial(t *testing.T) {
	e := &Employee{
		Name:              "Old",
		Email:             strPtr("old@example.com"),
		ShowEmail:         true,
		OfficialPhone:     strPtr("111"),
		ShowOfficialPhone: true,
		Designation:       "Clerk",
		Department:        "HR",
		SortingOrder:      intPtr(4),
		IsPublished:       true,
		Image:             &Image{URL: "http://img/a.jpg", ExternalID: "employees/a.jpg"},
	}

	req := UpdateEmployeeRequest{
		Name:      strPtr("New"),
		ShowEmail: boolPtr(false),
		Email:     strPtr(""),
	}
	req.ApplyToEntity(e)

	assert.Equal(t, "New", e.Name)
	assert.False(t, e.ShowEmail)
	assert.Nil(t, e.Email, "blank email clears the value")
	assert.Equal(t, "111", *e.OfficialPhone)
	assert.Equal(t, "Clerk", e.Designation)
	assert.Equal(t, 4, *e.SortingOrder)
	assert.True(t, e.IsPublished)
	assert.Equal(t, "employees/a.jpg", e.Image.ExternalID)
}

func TestImageFieldTriState(t *testing.T) {
	var absent UpdateEmployeeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"x"}`), &absent))
	assert.False(t, absent.Image.ClearRequested())

	var cleared UpdateEmployeeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"image":null}`), &cleared))
	assert.True(t, cleared.Image.ClearRequested())

	var replaced UpdateEmployeeRequest
	err := json.Unmarshal([]byte(`{"image":{"image_url":"http://evil","image_public_id":"x"}}`), &replaced)
	assert.ErrorIs(t, err, ErrImageNotClearable)
}

func TestEmployeeCloneIsDeep(t *testing.T) {
	e := &Employee{
		Email:        strPtr("a@example.com"),
		SortingOrder: intPtr(1),
		Image:        &Image{URL: "u", ExternalID: "id"},
	}
	cp := e.Clone()
	*cp.Email = "b@example.com"
	*cp.SortingOrder = 2
	cp.Image.ExternalID = "other"

	assert.Equal(t, "a@example.com", *e.Email)
	assert.Equal(t, 1, *e.SortingOrder)
	assert.Equal(t, "id", e.Image.ExternalID)
}

func TestCallerOwnership(t *testing.T) {
	owner := uuid.New()
	e := &Employee{OwnerID: owner}

	assert.True(t, Caller{ID: owner, Role: RoleUser}.Owns(e))
	assert.False(t, Caller{ID: uuid.New(), Role: RoleAdmin}.Owns(e))
	assert.True(t, Caller{Role: RoleAdmin}.IsAdmin())
}

func TestErrorMapping(t *testing.T) {
	assert.Equal(t, 404, ToHTTPStatus(NewEmployeeNotFoundError()))
	assert.Equal(t, 403, ToHTTPStatus(NewForbiddenError()))
	assert.Equal(t, 400, ToHTTPStatus(NewInvalidDepartmentError("x")))
	assert.Equal(t, 502, ToHTTPStatus(NewUploadFailedError(errors.New("timeout"))))
	assert.Equal(t, 500, ToHTTPStatus(NewPersistFailedError(errors.New("db down"))))
	assert.Equal(t, 500, ToHTTPStatus(errors.New("boom")))

	cause := errors.New("db down")
	err := NewPersistFailedError(cause)
	assert.ErrorIs(t, err, ErrPersistFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodePersistFailed, ToErrorCode(err))
	assert.Equal(t, "INTERNAL_ERROR", ToErrorCode(cause))
}
