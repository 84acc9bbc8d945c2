package validation

import (
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

// BuildPassedHistory maps each semester index to the set of course codes the
// student had passed strictly before that semester began. Courses taken in
// the semester itself never appear in its own set, so a prerequisite
// registered concurrently does not satisfy the requirement.
//
// The semesters must already be in chronological order.
func BuildPassedHistory(semesters []transcript.Semester, grades *transcript.GradeRules) map[int]map[string]bool {
	history := make(map[int]map[string]bool, len(semesters))

	passed := make(map[string]bool)
	for i, sem := range semesters {
		snapshot := make(map[string]bool, len(passed))
		for code := range passed {
			snapshot[code] = true
		}
		history[i] = snapshot

		for _, course := range sem.Courses {
			if grades.IsPassing(course.Grade) {
				passed[course.Code] = true
			}
		}
	}
	return history
}
