// Package curriculum loads curriculum templates and measures a student's
// progress against them: which planned courses are done, which are missing,
// and where the actual timeline deviates from the planned one. Templates
// feed reports only; the validator never consults them.
package curriculum

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nuttakit-v/transcript-audit/internal/domain/catalog"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

// Template is the planned course placement for one curriculum: course codes
// per academic-year/semester slot, plus required elective credits per
// category.
type Template struct {
	// CoreCurriculum maps "year_N" -> {"first_semester"|"second_semester"} ->
	// course codes expected in that slot.
	CoreCurriculum map[string]map[string][]string `json:"core_curriculum"`
	// ElectiveRequirements maps an elective category to required credits.
	ElectiveRequirements map[string]int `json:"elective_requirements"`
}

// LoadTemplate reads dir/<curriculum>/template.json.
func LoadTemplate(dir, curriculum string) (*Template, error) {
	path := filepath.Join(dir, curriculum, "template.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curriculum template: %w", err)
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &t, nil
}

// Placement is the planned slot of one core course.
type Placement struct {
	Year     int
	Semester transcript.SemesterKind
}

// Slots flattens the template into code -> planned placement.
func (t *Template) Slots() map[string]Placement {
	slots := make(map[string]Placement)
	for yearKey, yearData := range t.CoreCurriculum {
		year := yearOf(yearKey)
		for semKey, codes := range yearData {
			kind := transcript.SemesterSecond
			if strings.Contains(semKey, "first") {
				kind = transcript.SemesterFirst
			}
			for _, code := range codes {
				slots[strings.ToUpper(code)] = Placement{Year: year, Semester: kind}
			}
		}
	}
	return slots
}

// IsCore reports whether the template plans the code in any slot.
func (t *Template) IsCore(code string) bool {
	_, ok := t.Slots()[strings.ToUpper(code)]
	return ok
}

func yearOf(yearKey string) int {
	parts := strings.Split(yearKey, "_")
	if len(parts) != 2 {
		return 0
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return year
}

// Outcome is the best-known status of one course in the student's record.
type Outcome struct {
	Grade        string                  `json:"grade"`
	Semester     string                  `json:"semester"`
	Credits      int                     `json:"credits"`
	CalendarYear int                     `json:"calendar_year"`
	AcademicYear int                     `json:"academic_year"`
	SemesterKind transcript.SemesterKind `json:"semester_kind"`
}

// Severity grades a timeline deviation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Deviation records a core course completed far from its planned slot.
type Deviation struct {
	CourseCode string   `json:"course_code"`
	Expected   string   `json:"expected"`
	Actual     string   `json:"actual"`
	Severity   Severity `json:"severity"`
	YearDiff   int      `json:"year_diff"`
}

// ElectiveCourse is one passed course counted toward an elective category.
type ElectiveCourse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Credits    int    `json:"credits"`
	Semester   string `json:"semester"`
	Identified bool   `json:"is_identified"`
}

// ElectiveProgress tracks one elective category against its requirement.
type ElectiveProgress struct {
	Required  int              `json:"required"`
	Completed int              `json:"completed"`
	Courses   []ElectiveCourse `json:"courses"`
}

// Progress is the full template analysis for one transcript.
type Progress struct {
	Completed   map[string]Outcome           `json:"completed_courses"`
	Failed      map[string]Outcome           `json:"failed_courses"`
	Withdrawn   map[string]Outcome           `json:"withdrawn_courses"`
	InProgress  map[string]Outcome           `json:"current_courses"`
	MissingCore []string                     `json:"missing_core"`
	Deviations  []Deviation                  `json:"deviations"`
	Electives   map[string]*ElectiveProgress `json:"elective_analysis"`
}

// Analyzer measures transcripts against one template and catalog.
type Analyzer struct {
	template *Template
	slots    map[string]Placement
	catalog  *catalog.Catalog
	grades   *transcript.GradeRules
}

// NewAnalyzer binds a template to the catalog used to classify electives.
func NewAnalyzer(template *Template, cat *catalog.Catalog, grades *transcript.GradeRules) *Analyzer {
	return &Analyzer{template: template, slots: template.Slots(), catalog: cat, grades: grades}
}

// Analyze walks the semester history once and buckets every course by
// outcome, then derives slot deviations and elective progress. The semesters
// must be in chronological order.
func (a *Analyzer) Analyze(semesters []transcript.Semester) *Progress {
	p := &Progress{
		Completed:  make(map[string]Outcome),
		Failed:     make(map[string]Outcome),
		Withdrawn:  make(map[string]Outcome),
		InProgress: make(map[string]Outcome),
		Electives:  make(map[string]*ElectiveProgress),
	}

	earliest := 0
	for _, sem := range semesters {
		if sem.Year > 1900 && (earliest == 0 || sem.Year < earliest) {
			earliest = sem.Year
		}
	}

	for _, sem := range semesters {
		academicYear := 1
		if earliest > 0 && sem.Year > 1900 {
			academicYear = sem.Year - earliest + 1
		}

		for _, course := range sem.Courses {
			outcome := Outcome{
				Grade:        course.Grade,
				Semester:     sem.Label,
				Credits:      course.Credits,
				CalendarYear: sem.Year,
				AcademicYear: academicYear,
				SemesterKind: sem.Kind,
			}
			code := strings.ToUpper(course.Code)
			switch {
			case a.grades.IsPassing(course.Grade):
				p.Completed[code] = outcome
			case a.grades.IsFailed(course.Grade):
				p.Failed[code] = outcome
			case course.Grade == "W":
				p.Withdrawn[code] = outcome
			default:
				p.InProgress[code] = outcome
			}
		}
	}

	a.analyzeDeviations(p)
	a.analyzeElectives(semesters, p)
	return p
}

// analyzeDeviations flags completed core courses taken far off-plan and
// collects planned courses with no passing outcome yet.
func (a *Analyzer) analyzeDeviations(p *Progress) {
	codes := make([]string, 0, len(a.slots))
	for code := range a.slots {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		planned := a.slots[code]

		outcome, done := p.Completed[code]
		if !done {
			p.MissingCore = append(p.MissingCore, code)
			continue
		}

		yearDiff := outcome.AcademicYear - planned.Year
		if yearDiff < 0 {
			yearDiff = -yearDiff
		}
		offSemester := outcome.SemesterKind != planned.Semester

		var severity Severity
		switch {
		case yearDiff > 2:
			severity = SeverityHigh
		case yearDiff == 2 && offSemester:
			severity = SeverityModerate
		case yearDiff <= 1 && outcome.SemesterKind == transcript.SemesterSummer && planned.Semester != transcript.SemesterSummer:
			severity = SeverityLow
		default:
			continue
		}

		p.Deviations = append(p.Deviations, Deviation{
			CourseCode: code,
			Expected:   fmt.Sprintf("Year %d %s", planned.Year, planned.Semester),
			Actual:     fmt.Sprintf("Year %d %s", outcome.AcademicYear, outcome.SemesterKind),
			Severity:   severity,
			YearDiff:   yearDiff,
		})
	}
}

// analyzeElectives counts passed non-core credits toward the categories the
// template requires. Categories without a requirement are not tracked.
func (a *Analyzer) analyzeElectives(semesters []transcript.Semester, p *Progress) {
	for category, required := range a.template.ElectiveRequirements {
		p.Electives[category] = &ElectiveProgress{Required: required}
	}

	for _, sem := range semesters {
		for _, course := range sem.Courses {
			if !a.grades.IsPassing(course.Grade) {
				continue
			}
			if _, core := a.slots[strings.ToUpper(course.Code)]; core {
				continue
			}

			cls := a.catalog.Classify(course.Code)
			var key string
			switch cls.Category {
			case catalog.CategoryTechnicalElective:
				key = string(catalog.CategoryTechnicalElective)
			case catalog.CategoryGenEd:
				key = cls.Subcategory
			default:
				key = string(catalog.CategoryFreeElective)
			}

			progress, tracked := p.Electives[key]
			if !tracked {
				continue
			}
			progress.Completed += course.Credits
			progress.Courses = append(progress.Courses, ElectiveCourse{
				Code:       course.Code,
				Name:       course.Name,
				Credits:    course.Credits,
				Semester:   sem.Label,
				Identified: cls.Identified,
			})
		}
	}
}
