package domain

import "strings"

// PageRequest is a 1-based page of Limit items.
type PageRequest struct {
	Limit int
	Page  int
}

// Validate rejects windows that would make the store return everything.
func (p PageRequest) Validate() error {
	if p.Limit < 1 {
		return NewValidationError("limit", "limit must be greater than 0")
	}
	return nil
}

// Offset is (Page-1)*Limit for positive pages and 0 otherwise.
func (p PageRequest) Offset() int64 {
	if p.Page > 0 {
		return int64(p.Page-1) * int64(p.Limit)
	}
	return 0
}

// RegionLabel renders "{city, }{admin, }{country}", leaving out empty components.
func RegionLabel(loc Location) string {
	var b strings.Builder
	if loc.City != "" {
		b.WriteString(loc.City)
		b.WriteString(", ")
	}
	if loc.Admin != "" {
		b.WriteString(loc.Admin)
		b.WriteString(", ")
	}
	b.WriteString(loc.Country)
	return b.String()
}
