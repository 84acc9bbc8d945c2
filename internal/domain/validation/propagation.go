package validation

import (
	"sort"
	"strings"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

// Propagate walks the validated results forward in semester order and flips
// any still-valid registration whose prerequisite is, at that point in the
// timeline, broken: failed and not yet retaken successfully, or itself an
// invalid registration. It returns the number of results flipped.
//
// The pass is monotonic (results only go valid -> invalid) and reaches a
// fixed point in one sweep: a second call on the same results changes
// nothing. A retake that passes clears the broken state for registrations in
// later semesters only; dependents registered between the failure and the
// retake stay invalid.
func (v *Validator) Propagate(semesters []transcript.Semester, results []Result) int {
	bySemester := make(map[int][]*Result)
	for i := range results {
		r := &results[i]
		if r.Kind != KindPrerequisite || r.IsWarning() {
			continue
		}
		bySemester[r.SemesterIndex] = append(bySemester[r.SemesterIndex], r)
	}

	flipped := 0
	broken := make(map[string]bool)

	for i, sem := range semesters {
		// Flip first against the state accumulated from earlier semesters;
		// this semester's own outcomes become visible to later ones only.
		for _, r := range bySemester[i] {
			if !r.IsValid {
				continue
			}
			entry, ok := v.catalog.Lookup(r.CourseCode)
			if !ok {
				continue
			}
			var bad []string
			for _, prereq := range entry.Prerequisites {
				if broken[strings.ToUpper(prereq)] {
					bad = append(bad, prereq)
				}
			}
			if len(bad) > 0 {
				sort.Strings(bad)
				r.IsValid = false
				r.Reason = "Prerequisite failed or invalidated: " + strings.Join(bad, ", ")
				flipped++
			}
		}

		invalidHere := make(map[string]bool)
		for _, r := range bySemester[i] {
			if !r.IsValid {
				invalidHere[strings.ToUpper(r.CourseCode)] = true
			}
		}
		for _, course := range sem.Courses {
			code := strings.ToUpper(course.Code)
			switch {
			case v.grades.IsFailed(course.Grade) || invalidHere[code]:
				broken[code] = true
			case v.grades.IsPassing(course.Grade):
				// A clean retake restores the course for later dependents.
				delete(broken, code)
			}
		}
	}
	return flipped
}
