package model

import "sort"

// Category groups a department value into one of the two taxonomy lists.
type Category string

const (
	CategoryDepartment Category = "Department"
	CategoryOffice     Category = "Office"
)

func (c Category) Valid() bool {
	return c == CategoryDepartment || c == CategoryOffice
}

// TaxonomyEntry is one canonical department/office value and its display serial.
type TaxonomyEntry struct {
	Value  string `json:"value"`
	Serial int    `json:"serial"`
}

// Classification is the result of Classify.
type Classification struct {
	Category Category `json:"category"`
	Serial   int      `json:"serial"`
}

// departments and offices are matched in this order; smaller serials are listed first.
var departments = []TaxonomyEntry{
	{Value: "Administration", Serial: 1},
	{Value: "Finance", Serial: 2},
	{Value: "HR", Serial: 3},
	{Value: "IT", Serial: 4},
	{Value: "Planning & Development", Serial: 5},
	{Value: "Engineering", Serial: 6},
	{Value: "Procurement", Serial: 7},
	{Value: "Accounts", Serial: 8},
	{Value: "Internal Audit", Serial: 9},
	{Value: "Legal", Serial: 10},
	{Value: "Estate", Serial: 11},
	{Value: "Public Relations", Serial: 12},
}

var offices = []TaxonomyEntry{
	{Value: "Vice-Chancellor's Office", Serial: 1},
	{Value: "Pro-Vice-Chancellor's Office", Serial: 2},
	{Value: "Treasurer's Office", Serial: 3},
	{Value: "Registrar's Office", Serial: 4},
	{Value: "Controller of Examinations", Serial: 5},
	{Value: "Proctor's Office", Serial: 6},
	{Value: "Student Welfare", Serial: 7},
	{Value: "Library", Serial: 8},
	{Value: "Medical Center", Serial: 9},
	{Value: "Chief Engineer's Office", Serial: 10},
}

// Classify resolves a department value to its category and serial.
// Departments are checked before offices; matching is exact.
func Classify(value string) (Classification, error) {
	for _, d := range departments {
		if d.Value == value {
			return Classification{Category: CategoryDepartment, Serial: d.Serial}, nil
		}
	}
	for _, o := range offices {
		if o.Value == value {
			return Classification{Category: CategoryOffice, Serial: o.Serial}, nil
		}
	}
	return Classification{}, NewInvalidDepartmentError(value)
}

// Departments returns a copy of the department list ordered by serial.
func Departments() []TaxonomyEntry {
	return sortedCopy(departments)
}

// Offices returns a copy of the office list ordered by serial.
func Offices() []TaxonomyEntry {
	return sortedCopy(offices)
}

func sortedCopy(entries []TaxonomyEntry) []TaxonomyEntry {
	out := make([]TaxonomyEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out
}
