// Package transcript defines the academic record model shared by the
// extraction, validation and reporting layers.
package transcript

import (
	"encoding/json"
	"errors"
	"io"
	"sort"
)

// SemesterKind identifies one of the three registration periods per
// academic year.
type SemesterKind string

const (
	SemesterFirst  SemesterKind = "First"
	SemesterSecond SemesterKind = "Second"
	SemesterSummer SemesterKind = "Summer"
)

// OrderIndex returns the within-year chronological position. Summer sessions
// run before the First semester of the same calendar year on this transcript
// layout.
func (k SemesterKind) OrderIndex() int {
	switch k {
	case SemesterSummer:
		return 0
	case SemesterFirst:
		return 1
	default:
		return 2
	}
}

// StudentInfo is extracted once per transcript. Fields default to "Unknown"
// when their pattern fails to match; partial extraction is success.
type StudentInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	FieldOfStudy    string `json:"field_of_study"`
	DateOfAdmission string `json:"date_of_admission"`
}

// CourseRecord is a single registration line from the transcript.
type CourseRecord struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Grade   string `json:"grade"`
	Credits int    `json:"credits"`
}

// Semester is one semester block of the transcript. The slice order in
// Transcript follows document order, not chronological order; callers that
// need chronology must use SortChronological.
type Semester struct {
	Label         string         `json:"semester"`
	Kind          SemesterKind   `json:"semester_kind"`
	Year          int            `json:"year"`
	Courses       []CourseRecord `json:"courses"`
	SemesterGPA   *float64       `json:"semester_gpa,omitempty"`
	CumulativeGPA *float64       `json:"cumulative_gpa,omitempty"`
	TotalCredits  int            `json:"total_credits"`
}

// OrderIndex returns the semester position within its calendar year.
func (s *Semester) OrderIndex() int {
	return s.Kind.OrderIndex()
}

// HasCourse reports whether a course code already appears in this semester.
func (s *Semester) HasCourse(code string) bool {
	for _, c := range s.Courses {
		if c.Code == code {
			return true
		}
	}
	return false
}

// Transcript is the persisted shape: student info plus semesters in
// document order.
type Transcript struct {
	StudentInfo StudentInfo `json:"student_info"`
	Semesters   []Semester  `json:"semesters"`
}

// SortChronological returns a copy of the semesters sorted by calendar year,
// then by within-year order. Extraction preserves document order, which for
// some transcript layouts is not chronological.
func SortChronological(semesters []Semester) []Semester {
	sorted := make([]Semester, len(semesters))
	copy(sorted, semesters)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year < sorted[j].Year
		}
		return sorted[i].OrderIndex() < sorted[j].OrderIndex()
	})
	return sorted
}

// GradeRules interprets the institution's grade vocabulary. The sets come
// from configuration so the extractor and validator never hard-code them.
type GradeRules struct {
	passing    map[string]struct{}
	inProgress map[string]struct{}
	allowed    map[string]struct{}
}

// NewGradeRules builds lookup sets from the configured grade lists.
func NewGradeRules(passing, inProgress, allowed []string) *GradeRules {
	r := &GradeRules{
		passing:    make(map[string]struct{}, len(passing)),
		inProgress: make(map[string]struct{}, len(inProgress)),
		allowed:    make(map[string]struct{}, len(allowed)),
	}
	for _, g := range passing {
		r.passing[g] = struct{}{}
	}
	for _, g := range inProgress {
		r.inProgress[g] = struct{}{}
	}
	for _, g := range allowed {
		r.allowed[g] = struct{}{}
	}
	return r
}

// IsPassing reports whether the grade counts toward the passed-course history.
func (r *GradeRules) IsPassing(grade string) bool {
	_, ok := r.passing[grade]
	return ok
}

// IsInProgress reports whether the grade marks a withdrawn or still-running
// registration, which is excluded from semester credit totals.
func (r *GradeRules) IsInProgress(grade string) bool {
	_, ok := r.inProgress[grade]
	return ok
}

// IsFailed reports whether the grade is a terminal failure.
func (r *GradeRules) IsFailed(grade string) bool {
	return grade == "F"
}

// IsAllowed reports whether the token belongs to the grade vocabulary at all.
func (r *GradeRules) IsAllowed(grade string) bool {
	_, ok := r.allowed[grade]
	return ok
}

// ErrInvalidTranscript marks a saved transcript document that does not carry
// the expected structure.
var ErrInvalidTranscript = errors.New("invalid transcript document")

// Encode writes the transcript as indented JSON.
func (t *Transcript) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Decode reads a saved transcript, distinguishing structural garbage from a
// legitimately empty transcript.
func Decode(r io.Reader) (*Transcript, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	if _, ok := raw["student_info"]; !ok {
		return nil, ErrInvalidTranscript
	}
	if _, ok := raw["semesters"]; !ok {
		return nil, ErrInvalidTranscript
	}

	var t Transcript
	if err := json.Unmarshal(raw["student_info"], &t.StudentInfo); err != nil {
		return nil, ErrInvalidTranscript
	}
	if err := json.Unmarshal(raw["semesters"], &t.Semesters); err != nil {
		return nil, ErrInvalidTranscript
	}
	return &t, nil
}
