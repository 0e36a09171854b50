package dto

// CourseListQuery filters the catalog listing.
type CourseListQuery struct {
	Major string `form:"major"`
	Term  string `form:"term" validate:"omitempty,oneof=Fall Winter Spring Summer fall winter spring summer"`
}

// ImportRowError describes a rejected CSV row.
type ImportRowError struct {
	Line     int    `json:"line"`
	CourseID string `json:"courseId,omitempty"`
	Message  string `json:"message"`
}

// CourseImportResponse summarises a catalog import.
type CourseImportResponse struct {
	Imported int              `json:"imported"`
	Rejected []ImportRowError `json:"rejected"`
	Warnings []string         `json:"warnings,omitempty"`
}
