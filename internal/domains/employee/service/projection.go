package service

import (
	"sort"

	"staff-directory/internal/domains/employee/model"
)

// OwnerView exposes every stored field.
func OwnerView(e *model.Employee) *model.EmployeeResponse {
	if e == nil {
		return nil
	}
	cp := e.Clone()
	return &model.EmployeeResponse{
		ID:                cp.ID,
		Name:              cp.Name,
		Email:             cp.Email,
		ShowEmail:         cp.ShowEmail,
		OfficialPhone:     cp.OfficialPhone,
		ShowOfficialPhone: cp.ShowOfficialPhone,
		PersonalPhone:     cp.PersonalPhone,
		ShowPersonalPhone: cp.ShowPersonalPhone,
		Designation:       cp.Designation,
		Department:        cp.Department,
		Category:          cp.Category,
		Serial:            cp.Serial,
		SortingOrder:      cp.SortingOrder,
		IsPublished:       cp.IsPublished,
		Image:             cp.Image,
		OwnerID:           cp.OwnerID,
		CreatedAt:         cp.CreatedAt,
		UpdatedAt:         cp.UpdatedAt,
	}
}

// PublicView hides unpublished records and masks contact fields whose flag is off.
func PublicView(e *model.Employee) (*model.PublicEmployeeResponse, bool) {
	if e == nil || !e.IsPublished {
		return nil, false
	}
	cp := e.Clone()
	return &model.PublicEmployeeResponse{
		ID:            cp.ID,
		Name:          cp.Name,
		Email:         visible(cp.Email, cp.ShowEmail),
		OfficialPhone: visible(cp.OfficialPhone, cp.ShowOfficialPhone),
		PersonalPhone: visible(cp.PersonalPhone, cp.ShowPersonalPhone),
		Designation:   cp.Designation,
		Department:    cp.Department,
		SortingOrder:  cp.SortingOrder,
		IsPublished:   cp.IsPublished,
		Image:         cp.Image,
	}, true
}

func publicViews(list []*model.Employee) []*model.PublicEmployeeResponse {
	out := make([]*model.PublicEmployeeResponse, 0, len(list))
	for _, e := range list {
		if v, ok := PublicView(e); ok {
			out = append(out, v)
		}
	}
	return out
}

func visible(value *string, show bool) *string {
	if !show {
		return nil
	}
	return value
}

// SortForDirectory orders a cross-department listing: Department before
// Office, then serial, then sorting_order (nulls last), then name.
func SortForDirectory(list []*model.Employee) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Category != b.Category {
			return categoryRank(a.Category) < categoryRank(b.Category)
		}
		if a.Serial != b.Serial {
			return a.Serial < b.Serial
		}
		return lessBySortingOrder(a, b)
	})
}

// SortWithinDepartment orders one department's records by sorting_order
// (nulls last), then name.
func SortWithinDepartment(list []*model.Employee) {
	sort.SliceStable(list, func(i, j int) bool {
		return lessBySortingOrder(list[i], list[j])
	})
}

func lessBySortingOrder(a, b *model.Employee) bool {
	switch {
	case a.SortingOrder != nil && b.SortingOrder != nil:
		if *a.SortingOrder != *b.SortingOrder {
			return *a.SortingOrder < *b.SortingOrder
		}
	case a.SortingOrder != nil:
		return true
	case b.SortingOrder != nil:
		return false
	}
	return a.Name < b.Name
}

func categoryRank(c model.Category) int {
	if c == model.CategoryDepartment {
		return 0
	}
	return 1
}
