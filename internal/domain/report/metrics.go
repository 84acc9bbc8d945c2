package report

import (
	"github.com/shopspring/decimal"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

// CompletionMetrics are the headline numbers for one transcript.
type CompletionMetrics struct {
	TotalCourses     int             `json:"total_courses"`
	CompletedCourses int             `json:"completed_courses"`
	FailedCourses    int             `json:"failed_courses"`
	WithdrawnCourses int             `json:"withdrawn_courses"`
	CurrentCourses   int             `json:"current_courses"`
	TotalCredits     int             `json:"total_credits"`
	CompletedCredits int             `json:"completed_credits"`
	CompletionRate   decimal.Decimal `json:"completion_rate"`
}

// Completion tallies course outcomes across the whole history. The rate is
// completed over total courses, as a percentage with two decimal places.
func Completion(semesters []transcript.Semester, grades *transcript.GradeRules) CompletionMetrics {
	var m CompletionMetrics
	for _, sem := range semesters {
		for _, course := range sem.Courses {
			m.TotalCourses++
			m.TotalCredits += course.Credits
			switch {
			case grades.IsPassing(course.Grade):
				m.CompletedCourses++
				m.CompletedCredits += course.Credits
			case grades.IsFailed(course.Grade):
				m.FailedCourses++
			case course.Grade == "W":
				m.WithdrawnCourses++
			default:
				m.CurrentCourses++
			}
		}
	}

	if m.TotalCourses > 0 {
		m.CompletionRate = decimal.NewFromInt(int64(m.CompletedCourses)).
			Div(decimal.NewFromInt(int64(m.TotalCourses))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return m
}

// GPATrend returns the cumulative GPA per semester in order. Semesters
// without a parsed GPA contribute zero, matching their display as gaps.
func GPATrend(semesters []transcript.Semester) []decimal.Decimal {
	trend := make([]decimal.Decimal, 0, len(semesters))
	for _, sem := range semesters {
		if sem.CumulativeGPA == nil {
			trend = append(trend, decimal.Zero)
			continue
		}
		trend = append(trend, decimal.NewFromFloat(*sem.CumulativeGPA).Round(2))
	}
	return trend
}

// gradePoints is the institution's 4.0 scale. Grades outside it carry no
// weight and are excluded from the computed GPA.
var gradePoints = map[string]decimal.Decimal{
	"A":  decimal.NewFromFloat(4.0),
	"B+": decimal.NewFromFloat(3.5),
	"B":  decimal.NewFromFloat(3.0),
	"C+": decimal.NewFromFloat(2.5),
	"C":  decimal.NewFromFloat(2.0),
	"D+": decimal.NewFromFloat(1.5),
	"D":  decimal.NewFromFloat(1.0),
	"F":  decimal.Zero,
}

// ComputedGPA recalculates the credit-weighted GPA from the raw records,
// independent of the GPA lines printed on the transcript. Useful for
// cross-checking extraction: a large gap between the two flags a bad parse.
func ComputedGPA(semesters []transcript.Semester) decimal.Decimal {
	points := decimal.Zero
	credits := decimal.Zero

	for _, sem := range semesters {
		for _, course := range sem.Courses {
			weight, graded := gradePoints[course.Grade]
			if !graded {
				continue
			}
			c := decimal.NewFromInt(int64(course.Credits))
			points = points.Add(weight.Mul(c))
			credits = credits.Add(c)
		}
	}

	if credits.IsZero() {
		return decimal.Zero
	}
	return points.Div(credits).Round(2)
}
