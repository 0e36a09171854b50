package models

// DegreeRequirement lists what a major needs for graduation.
type DegreeRequirement struct {
	Major             string   `json:"major" yaml:"major"`
	CoreCourses       []string `json:"coreCourses" yaml:"coreCourses"`
	ElectiveCourses   []string `json:"electiveCourses" yaml:"electiveCourses"`
	ElectivesRequired int      `json:"electivesRequired" yaml:"electivesRequired"`
}

// Progress counts satisfied core courses and allowed electives.
func (r DegreeRequirement) Progress(completed CompletedSet) (core, electives int) {
	for _, id := range r.CoreCourses {
		if completed.Has(id) {
			core++
		}
	}
	for _, id := range r.ElectiveCourses {
		if completed.Has(id) {
			electives++
		}
	}
	return core, electives
}

// SatisfiedBy reports whether every core course and enough electives are complete.
func (r DegreeRequirement) SatisfiedBy(completed CompletedSet) bool {
	core, electives := r.Progress(completed)
	return core == len(r.CoreCourses) && electives >= r.ElectivesRequired
}
