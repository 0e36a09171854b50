package planner

import "github.com/noah-isme/course-planner-api/internal/models"

// CatalogIndex resolves course identifiers to catalog records for a single planning run.
type CatalogIndex struct {
	courses map[string]models.Course
}

// NewCatalogIndex indexes the given courses. Later duplicates replace earlier ones.
func NewCatalogIndex(courses []models.Course) *CatalogIndex {
	idx := &CatalogIndex{courses: make(map[string]models.Course, len(courses))}
	for _, c := range courses {
		idx.courses[c.ID] = c
	}
	return idx
}

// Get returns the course for id.
func (i *CatalogIndex) Get(id string) (models.Course, bool) {
	if i == nil {
		return models.Course{}, false
	}
	c, ok := i.courses[id]
	return c, ok
}

// Has reports whether id is in the catalog.
func (i *CatalogIndex) Has(id string) bool {
	_, ok := i.Get(id)
	return ok
}

// Len returns the number of indexed courses.
func (i *CatalogIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.courses)
}
