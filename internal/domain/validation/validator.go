// Package validation decides, per course registration, whether prerequisite
// and credit-load rules were respected, using only information available at
// or before the registration's semester. The validator is fail-open: gaps in
// the catalog resolve to valid, because its job is to surface known
// violations, not to penalize holes in its own database.
package validation

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nuttakit-v/transcript-audit/internal/domain/catalog"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
	"github.com/nuttakit-v/transcript-audit/pkg/config"
)

// Kind discriminates the two result families.
type Kind string

const (
	KindPrerequisite Kind = "prerequisite"
	KindCreditLimit  Kind = "credit_limit"
)

// CreditLimitCode is the synthetic course code carried by per-semester
// credit-load warning rows, so report layers can filter them out of
// per-course tallies.
const CreditLimitCode = "CREDIT_LIMIT"

// Result is the terminal verdict for one registration, or one synthetic
// credit-load warning for a semester. Every course that reaches the validator
// gets exactly one Result; warnings are additive rows, never substitutes.
type Result struct {
	Semester      string `json:"semester" csv:"semester"`
	SemesterIndex int    `json:"semester_index" csv:"semester_index"`
	CourseCode    string `json:"course_code" csv:"course_code"`
	CourseName    string `json:"course_name" csv:"course_name"`
	Grade         string `json:"grade" csv:"grade"`
	IsValid       bool   `json:"is_valid" csv:"is_valid"`
	Reason        string `json:"reason" csv:"reason"`
	Kind          Kind   `json:"type" csv:"type"`
}

// IsWarning reports whether the result is a credit-load warning row.
func (r Result) IsWarning() bool { return r.CourseCode == CreditLimitCode }

// Validator checks registrations against one catalog under one policy.
type Validator struct {
	catalog *catalog.Catalog
	policy  config.PolicyConfig
	grades  *transcript.GradeRules
	logger  *slog.Logger
}

// New creates a validator. The catalog is read-only to it.
func New(cat *catalog.Catalog, policy config.PolicyConfig, grades *transcript.GradeRules, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{catalog: cat, policy: policy, grades: grades, logger: logger}
}

// ValidateCourse checks one registration against the passed-course history
// for its semester index. The grade of the registration itself does not gate
// validity; only what the student had completed beforehand matters.
func (v *Validator) ValidateCourse(course transcript.CourseRecord, semesterIndex int, history map[int]map[string]bool) (bool, string) {
	entry, ok := v.catalog.Lookup(course.Code)
	if !ok {
		return true, "Course not found in database"
	}
	if len(entry.Prerequisites) == 0 {
		return true, "No prerequisites required"
	}

	passed := history[semesterIndex]

	var missing []string
	for _, prereq := range entry.Prerequisites {
		if !passed[strings.ToUpper(prereq)] {
			missing = append(missing, prereq)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return false, "Missing prerequisites: " + strings.Join(missing, ", ")
	}
	return true, "All prerequisites satisfied"
}

// ValidateCreditLimit checks a semester's total load against the policy
// ceiling for its kind. Exceeding the ceiling is a warning, never a
// rejection: the returned ok flag drives the warning row, not validity.
func (v *Validator) ValidateCreditLimit(sem transcript.Semester) (bool, string) {
	limit := v.policy.MaxCreditsRegular
	if sem.Kind == transcript.SemesterSummer {
		limit = v.policy.MaxCreditsSummer
	}

	if sem.TotalCredits > limit {
		return false, fmt.Sprintf("Total of %d credits exceeds the %d-credit limit for %s", sem.TotalCredits, limit, sem.Label)
	}
	return true, fmt.Sprintf("Credit load of %d within the %d-credit limit", sem.TotalCredits, limit)
}

// ValidateTranscript runs the full pipeline over a chronologically sorted
// semester list: history building, per-semester credit-limit checks,
// per-course prerequisite checks, then forward invalidation propagation.
// Each semester contributes its warning row (if any) before its course rows.
func (v *Validator) ValidateTranscript(semesters []transcript.Semester) []Result {
	history := BuildPassedHistory(semesters, v.grades)

	var results []Result
	for i, sem := range semesters {
		if ok, reason := v.ValidateCreditLimit(sem); !ok {
			results = append(results, Result{
				Semester:      sem.Label,
				SemesterIndex: i,
				CourseCode:    CreditLimitCode,
				CourseName:    "Credit Limit Check",
				Grade:         "N/A",
				IsValid:       true,
				Reason:        reason,
				Kind:          KindCreditLimit,
			})
		}

		for _, course := range sem.Courses {
			valid, reason := v.ValidateCourse(course, i, history)
			results = append(results, Result{
				Semester:      sem.Label,
				SemesterIndex: i,
				CourseCode:    course.Code,
				CourseName:    course.Name,
				Grade:         course.Grade,
				IsValid:       valid,
				Reason:        reason,
				Kind:          KindPrerequisite,
			})
		}
	}

	flipped := v.Propagate(semesters, results)

	invalid := 0
	for _, r := range results {
		if !r.IsValid && !r.IsWarning() {
			invalid++
		}
	}
	v.logger.Debug("transcript validated",
		slog.Int("semesters", len(semesters)),
		slog.Int("results", len(results)),
		slog.Int("invalid", invalid),
		slog.Int("propagated", flipped),
	)

	return results
}
