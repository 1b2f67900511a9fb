package model

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Constants for validation
const (
	MaxNameLength        = 255
	MaxDesignationLength = 255
	MaxPhoneLength       = 32
	// sorting_order is an INTEGER column
	MaxSortingOrder = math.MaxInt32
)

// Payload field names that arrive as strings from multipart forms.
var (
	JSONFields    = []string{"image"}
	BooleanFields = []string{"show_email", "show_official_phone", "show_personal_phone", "is_published"}
	IntegerFields = []string{"sorting_order"}
)

// ========================================
// REQUEST DTOs
// ========================================

// CreateEmployeeRequest - POST /v1/employees
// Visibility flags and is_published default to true when omitted.
type CreateEmployeeRequest struct {
	Name              string  `json:"name"`
	Email             *string `json:"email,omitempty"`
	ShowEmail         *bool   `json:"show_email,omitempty"`
	OfficialPhone     *string `json:"official_phone,omitempty"`
	ShowOfficialPhone *bool   `json:"show_official_phone,omitempty"`
	PersonalPhone     *string `json:"personal_phone,omitempty"`
	ShowPersonalPhone *bool   `json:"show_personal_phone,omitempty"`
	Designation       string  `json:"designation"`
	Department        string  `json:"department"`
	SortingOrder      *int    `json:"sorting_order,omitempty"`
	IsPublished       *bool   `json:"is_published,omitempty"`
}

// Validate checks the trimmed values, the same ones ToEntity stores.
func (r CreateEmployeeRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Designation = strings.TrimSpace(r.Designation)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, MaxNameLength),
		),
		validation.Field(&r.Email, validation.When(!isBlank(r.Email), is.EmailFormat.Error("invalid email format"))),
		validation.Field(&r.OfficialPhone, validation.Length(0, MaxPhoneLength)),
		validation.Field(&r.PersonalPhone, validation.Length(0, MaxPhoneLength)),
		validation.Field(&r.Designation,
			validation.Required.Error("designation is required"),
			validation.Length(1, MaxDesignationLength),
		),
		validation.Field(&r.Department, validation.Required.Error("department is required")),
		validation.Field(&r.SortingOrder, validation.Min(0), validation.Max(MaxSortingOrder)),
	)
}

// ToEntity builds a new record owned by ownerID. Classification and image
// are filled in by the service.
func (r *CreateEmployeeRequest) ToEntity(ownerID uuid.UUID) *Employee {
	return &Employee{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(r.Name),
		Email:             normalizeOptional(r.Email),
		ShowEmail:         flagOrDefault(r.ShowEmail),
		OfficialPhone:     normalizeOptional(r.OfficialPhone),
		ShowOfficialPhone: flagOrDefault(r.ShowOfficialPhone),
		PersonalPhone:     normalizeOptional(r.PersonalPhone),
		ShowPersonalPhone: flagOrDefault(r.ShowPersonalPhone),
		Designation:       strings.TrimSpace(r.Designation),
		Department:        r.Department,
		SortingOrder:      r.SortingOrder,
		IsPublished:       flagOrDefault(r.IsPublished),
		OwnerID:           ownerID,
	}
}

// UpdateEmployeeRequest - PATCH /v1/employees/:id
// Only fields present in the payload are applied. Image is tri-state: see ImageField.
type UpdateEmployeeRequest struct {
	Name              *string    `json:"name,omitempty"`
	Email             *string    `json:"email,omitempty"`
	ShowEmail         *bool      `json:"show_email,omitempty"`
	OfficialPhone     *string    `json:"official_phone,omitempty"`
	ShowOfficialPhone *bool      `json:"show_official_phone,omitempty"`
	PersonalPhone     *string    `json:"personal_phone,omitempty"`
	ShowPersonalPhone *bool      `json:"show_personal_phone,omitempty"`
	Designation       *string    `json:"designation,omitempty"`
	Department        *string    `json:"department,omitempty"`
	SortingOrder      *int       `json:"sorting_order,omitempty"`
	IsPublished       *bool      `json:"is_published,omitempty"`
	Image             ImageField `json:"image"`
}

// Validate checks the trimmed values, the same ones ApplyToEntity stores.
func (r UpdateEmployeeRequest) Validate() error {
	r.Name = trimmed(r.Name)
	r.Designation = trimmed(r.Designation)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty.Error("name cannot be empty"), validation.Length(1, MaxNameLength)),
		validation.Field(&r.Email, validation.When(!isBlank(r.Email), is.EmailFormat.Error("invalid email format"))),
		validation.Field(&r.OfficialPhone, validation.Length(0, MaxPhoneLength)),
		validation.Field(&r.PersonalPhone, validation.Length(0, MaxPhoneLength)),
		validation.Field(&r.Designation, validation.NilOrNotEmpty.Error("designation cannot be empty"), validation.Length(1, MaxDesignationLength)),
		validation.Field(&r.Department, validation.NilOrNotEmpty.Error("department cannot be empty")),
		validation.Field(&r.SortingOrder, validation.Min(0), validation.Max(MaxSortingOrder)),
	)
}

// ApplyToEntity merges the supplied fields onto e. Department changes must
// be reclassified by the caller; Image is never touched here.
func (r *UpdateEmployeeRequest) ApplyToEntity(e *Employee) {
	if r.Name != nil {
		e.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		e.Email = normalizeOptional(r.Email)
	}
	if r.ShowEmail != nil {
		e.ShowEmail = *r.ShowEmail
	}
	if r.OfficialPhone != nil {
		e.OfficialPhone = normalizeOptional(r.OfficialPhone)
	}
	if r.ShowOfficialPhone != nil {
		e.ShowOfficialPhone = *r.ShowOfficialPhone
	}
	if r.PersonalPhone != nil {
		e.PersonalPhone = normalizeOptional(r.PersonalPhone)
	}
	if r.ShowPersonalPhone != nil {
		e.ShowPersonalPhone = *r.ShowPersonalPhone
	}
	if r.Designation != nil {
		e.Designation = strings.TrimSpace(*r.Designation)
	}
	if r.Department != nil {
		e.Department = *r.Department
	}
	if r.SortingOrder != nil {
		v := *r.SortingOrder
		e.SortingOrder = &v
	}
	if r.IsPublished != nil {
		e.IsPublished = *r.IsPublished
	}
}

// ErrImageNotClearable is returned when the image key carries anything but null.
var ErrImageNotClearable = errors.New("image can only be set to null; upload a file to replace it")

// ImageField distinguishes an absent "image" key from an explicit null.
// The stored image is owned by the service, so null is the only value a
// client may send.
type ImageField struct {
	Present bool
}

// UnmarshalJSON only runs when the key exists in the payload.
func (f *ImageField) UnmarshalJSON(data []byte) error {
	if !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrImageNotClearable
	}
	f.Present = true
	return nil
}

// ClearRequested reports an explicit "image": null.
func (f ImageField) ClearRequested() bool {
	return f.Present
}

// ImageUpload is new binary photo content submitted with a create or update.
type ImageUpload struct {
	Data        []byte
	ContentType string
	Filename    string
}

func (u *ImageUpload) Empty() bool {
	return u == nil || len(u.Data) == 0
}

// ========================================
// RESPONSE DTOs
// ========================================

// EmployeeResponse is the owner/admin view: every stored field.
type EmployeeResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             *string   `json:"email"`
	ShowEmail         bool      `json:"show_email"`
	OfficialPhone     *string   `json:"official_phone"`
	ShowOfficialPhone bool      `json:"show_official_phone"`
	PersonalPhone     *string   `json:"personal_phone"`
	ShowPersonalPhone bool      `json:"show_personal_phone"`
	Designation       string    `json:"designation"`
	Department        string    `json:"department"`
	Category          Category  `json:"category"`
	Serial            int       `json:"serial"`
	SortingOrder      *int      `json:"sorting_order"`
	IsPublished       bool      `json:"is_published"`
	Image             *Image    `json:"image"`
	OwnerID           uuid.UUID `json:"owner_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PublicEmployeeResponse is the anonymous directory view. Hidden contact
// fields are emitted as null and the flags themselves are not exposed.
type PublicEmployeeResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         *string   `json:"email"`
	OfficialPhone *string   `json:"official_phone"`
	PersonalPhone *string   `json:"personal_phone"`
	Designation   string    `json:"designation"`
	Department    string    `json:"department"`
	SortingOrder  *int      `json:"sorting_order"`
	IsPublished   bool      `json:"is_published"`
	Image         *Image    `json:"image"`
}

// TaxonomyResponse - GET /v1/directory/taxonomy
type TaxonomyResponse struct {
	Departments []TaxonomyEntry `json:"departments"`
	Offices     []TaxonomyEntry `json:"offices"`
}

// ListFilter narrows repository listings with equality predicates.
type ListFilter struct {
	OwnerID       *uuid.UUID
	Category      *Category
	Department    *string
	PublishedOnly bool
	Order         ListOrder
}

// ListOrder selects one of the supported orderings.
type ListOrder int

const (
	OrderNewestFirst ListOrder = iota
	// OrderDirectory: category, serial, sorting_order, name
	OrderDirectory
	// OrderSortingOrder: sorting_order, name (within one department)
	OrderSortingOrder
)

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// normalizeOptional turns blank optional strings into nil.
func normalizeOptional(s *string) *string {
	if isBlank(s) {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func flagOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
