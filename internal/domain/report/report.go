// Package report renders the analysis outputs: Excel workbook, HTML flow
// chart, plain-text validation report, JSON export and CSV export. Every
// renderer consumes the same immutable Data snapshot so the formats cannot
// drift apart.
package report

import (
	"time"

	"github.com/nuttakit-v/transcript-audit/internal/domain/catalog"
	"github.com/nuttakit-v/transcript-audit/internal/domain/curriculum"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
	"github.com/nuttakit-v/transcript-audit/internal/domain/validation"
)

// Data is everything a renderer may need for one transcript analysis.
// Progress is nil when the curriculum has no template.
type Data struct {
	StudentInfo    transcript.StudentInfo
	Semesters      []transcript.Semester
	Results        []validation.Result
	Catalog        *catalog.Catalog
	Grades         *transcript.GradeRules
	Progress       *curriculum.Progress
	CurriculumName string
	GeneratedAt    time.Time
}

// Status is the per-course display status shared by the Excel and HTML
// renderers.
type Status string

const (
	StatusCompleted    Status = "COMPLETED"
	StatusFailed       Status = "FAILED"
	StatusWithdrawn    Status = "WITHDRAWN"
	StatusInProgress   Status = "IN PROGRESS"
	StatusInvalid      Status = "INVALID"
	StatusUnidentified Status = "NEW COURSE - NEEDS CLASSIFICATION"
)

// courseStatus resolves the display status of one registration. Catalog
// identity beats validity beats grade, mirroring how severe each finding is
// for the reader.
func (d *Data) courseStatus(course transcript.CourseRecord, verdict validation.Result, identified bool) Status {
	switch {
	case !identified:
		return StatusUnidentified
	case !verdict.IsValid:
		return StatusInvalid
	case d.Grades.IsPassing(course.Grade):
		return StatusCompleted
	case d.Grades.IsFailed(course.Grade):
		return StatusFailed
	case course.Grade == "W":
		return StatusWithdrawn
	default:
		return StatusInProgress
	}
}

// verdicts indexes course results by code, skipping warning rows. A course
// with no result defaults to valid, which only happens for inputs that
// bypassed the validator.
func (d *Data) verdicts() map[string]validation.Result {
	lookup := make(map[string]validation.Result, len(d.Results))
	for _, r := range d.Results {
		if !r.IsWarning() {
			lookup[r.CourseCode] = r
		}
	}
	return lookup
}

// creditWarnings returns the synthetic credit-limit rows.
func (d *Data) creditWarnings() []validation.Result {
	var warnings []validation.Result
	for _, r := range d.Results {
		if r.IsWarning() {
			warnings = append(warnings, r)
		}
	}
	return warnings
}

// invalidResults returns genuine rule violations, excluding warnings.
func (d *Data) invalidResults() []validation.Result {
	var invalid []validation.Result
	for _, r := range d.Results {
		if !r.IsValid && !r.IsWarning() {
			invalid = append(invalid, r)
		}
	}
	return invalid
}

// courseResultCount counts per-course results, excluding warning rows.
func (d *Data) courseResultCount() int {
	n := 0
	for _, r := range d.Results {
		if !r.IsWarning() {
			n++
		}
	}
	return n
}

// unidentifiedCount counts registrations the catalog cannot classify.
func (d *Data) unidentifiedCount() int {
	return len(d.Catalog.Unidentified(d.Semesters))
}
