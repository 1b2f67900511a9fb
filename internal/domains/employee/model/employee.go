package model

import (
	"time"

	"github.com/google/uuid"
)

// Employee is one directory record.
// Category and Serial are derived from Department by Classify and are never
// taken from client input.
type Employee struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`

	// Contact fields, each paired with a public visibility flag
	Email             *string `json:"email" db:"email"`
	ShowEmail         bool    `json:"show_email" db:"show_email"`
	OfficialPhone     *string `json:"official_phone" db:"official_phone"`
	ShowOfficialPhone bool    `json:"show_official_phone" db:"show_official_phone"`
	PersonalPhone     *string `json:"personal_phone" db:"personal_phone"`
	ShowPersonalPhone bool    `json:"show_personal_phone" db:"show_personal_phone"`

	Designation string   `json:"designation" db:"designation"`
	Department  string   `json:"department" db:"department"`
	Category    Category `json:"category" db:"category"`
	Serial      int      `json:"serial" db:"serial"`

	SortingOrder *int `json:"sorting_order" db:"sorting_order"`
	IsPublished  bool `json:"is_published" db:"is_published"`

	// Image is nil or fully populated, never half-written
	Image *Image `json:"image" db:"image"`

	OwnerID   uuid.UUID `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Image is the external photo attachment: where it is served from and the
// id the image store knows it by.
type Image struct {
	URL        string `json:"image_url"`
	ExternalID string `json:"image_public_id"`
}

// Complete reports whether both halves of the attachment are present.
func (i *Image) Complete() bool {
	return i != nil && i.URL != "" && i.ExternalID != ""
}

// HasImage checks if the employee currently references an external image
func (e *Employee) HasImage() bool {
	return e.Image.Complete()
}

// ApplyClassification stores the derived category and serial.
func (e *Employee) ApplyClassification(c Classification) {
	e.Category = c.Category
	e.Serial = c.Serial
}

// Clone returns a copy that shares no pointers with e.
func (e *Employee) Clone() *Employee {
	cp := *e
	cp.Email = cloneString(e.Email)
	cp.OfficialPhone = cloneString(e.OfficialPhone)
	cp.PersonalPhone = cloneString(e.PersonalPhone)
	if e.SortingOrder != nil {
		v := *e.SortingOrder
		cp.SortingOrder = &v
	}
	if e.Image != nil {
		img := *e.Image
		cp.Image = &img
	}
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Role of the authenticated caller as resolved by the auth middleware.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Caller is the already-authenticated identity of the request.
type Caller struct {
	ID   uuid.UUID
	Role Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Owns reports whether the caller created the record.
func (c Caller) Owns(e *Employee) bool {
	return e != nil && e.OwnerID == c.ID
}
