package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

func testConfig() Config {
	return Config{
		CourseCodeLength: 8,
		MaxCourseCredits: 9,
		Grades: transcript.NewGradeRules(
			[]string{"A", "B+", "B", "C+", "C", "D+", "D", "P"},
			[]string{"W", "N", ""},
			[]string{"A", "B+", "B", "C+", "C", "D+", "D", "F", "W", "N", "P", "I", "S", "U"},
		),
	}
}

func TestExtractor_Extract(t *testing.T) {
	t.Run("parses a simple semester block", func(t *testing.T) {
		text := `Student No 6510501234
First Semester 2021
01206111 Engineering Mechanics I A 3
sem. G.P.A. = 3.50 cum. G.P.A. = 3.50`

		result := New(testConfig()).Extract(text)

		require.Len(t, result.Semesters, 1)
		sem := result.Semesters[0]
		assert.Equal(t, transcript.SemesterFirst, sem.Kind)
		assert.Equal(t, 2021, sem.Year)
		assert.Equal(t, "First Semester 2021", sem.Label)

		require.Len(t, sem.Courses, 1)
		course := sem.Courses[0]
		assert.Equal(t, "01206111", course.Code)
		assert.Equal(t, "Engineering Mechanics I", course.Name)
		assert.Equal(t, "A", course.Grade)
		assert.Equal(t, 3, course.Credits)

		require.NotNil(t, sem.SemesterGPA)
		require.NotNil(t, sem.CumulativeGPA)
		assert.InDelta(t, 3.50, *sem.SemesterGPA, 0.001)
		assert.InDelta(t, 3.50, *sem.CumulativeGPA, 0.001)
		assert.Equal(t, 3, sem.TotalCredits)
	})

	t.Run("empty input yields empty result", func(t *testing.T) {
		result := New(testConfig()).Extract("   \n  ")

		assert.Empty(t, result.Semesters)
		assert.Empty(t, result.StudentInfo.ID)
	})

	t.Run("extracts student info with independent defaults", func(t *testing.T) {
		text := `Student No 6510501234
Name Somchai Jaidee Field of Study Industrial Engineering
First Semester 2021
01206111 Engineering Mechanics I A 3`

		result := New(testConfig()).Extract(text)

		info := result.StudentInfo
		assert.Equal(t, "6510501234", info.ID)
		assert.Equal(t, "Somchai Jaidee", info.Name)
		assert.Equal(t, "Industrial Engineering", info.FieldOfStudy)
		assert.Equal(t, "Unknown", info.DateOfAdmission)
	})

	t.Run("handles concatenated semester headers", func(t *testing.T) {
		text := `FirstSemester2022
01206111 Engineering Mechanics I B+ 3
SummerSession2023
01206222 Quality Control C 3`

		result := New(testConfig()).Extract(text)

		require.Len(t, result.Semesters, 2)
		assert.Equal(t, transcript.SemesterFirst, result.Semesters[0].Kind)
		assert.Equal(t, 2022, result.Semesters[0].Year)
		assert.Equal(t, transcript.SemesterSummer, result.Semesters[1].Kind)
		assert.Equal(t, "Summer Session 2023", result.Semesters[1].Label)
	})

	t.Run("parses tight-spaced course lines", func(t *testing.T) {
		text := `First Semester 2021
01206221Engineering Statistics I B+ 3`

		result := New(testConfig()).Extract(text)

		require.Len(t, result.Semesters, 1)
		require.Len(t, result.Semesters[0].Courses, 1)
		course := result.Semesters[0].Courses[0]
		assert.Equal(t, "01206221", course.Code)
		assert.Equal(t, "B+", course.Grade)
		assert.Equal(t, 3, course.Credits)
	})

	t.Run("rejoins a course code broken by a stray space", func(t *testing.T) {
		text := `First Semester 2021
0120 6111 Engineering Mechanics I A 3`

		result := New(testConfig()).Extract(text)

		require.Len(t, result.Semesters, 1)
		require.Len(t, result.Semesters[0].Courses, 1)
		assert.Equal(t, "01206111", result.Semesters[0].Courses[0].Code)
	})

	t.Run("deduplicates a course code within one block", func(t *testing.T) {
		text := `First Semester 2021
01206111 Engineering Mechanics I A 3
01206111 Engineering Mechanics I A 3
01206112 Engineering Drawing B 3`

		result := New(testConfig()).Extract(text)

		require.Len(t, result.Semesters, 1)
		assert.Len(t, result.Semesters[0].Courses, 2)
	})

	t.Run("rejects implausible credit values", func(t *testing.T) {
		text := `First Semester 2021
01206111 Engineering Mechanics I A 45`

		result := New(testConfig()).Extract(text)

		// Every pattern matched the line but validation rejected it, so the
		// whole semester is dropped as empty.
		assert.Empty(t, result.Semesters)
		assert.NotZero(t, result.DroppedCourses)
	})

	t.Run("excludes withdrawn and in-progress courses from credit totals", func(t *testing.T) {
		text := `First Semester 2021
01206111 Engineering Mechanics I A 3
01206112 Engineering Drawing W 3
01206113 Engineering Materials N 3
01206114 Workshop Practice F 2`

		result := New(testConfig()).Extract(text)

		require.Len(t, result.Semesters, 1)
		sem := result.Semesters[0]
		assert.Len(t, sem.Courses, 4)
		// A (3) + F (2); W and N excluded.
		assert.Equal(t, 5, sem.TotalCredits)
	})

	t.Run("drops semesters with no parseable courses", func(t *testing.T) {
		text := `First Semester 2021
administrative section, nothing useful
Second Semester 2021
01206112 Engineering Drawing B 3`

		result := New(testConfig()).Extract(text)

		require.Len(t, result.Semesters, 1)
		assert.Equal(t, transcript.SemesterSecond, result.Semesters[0].Kind)
	})

	t.Run("swallows malformed GPA values", func(t *testing.T) {
		text := `First Semester 2021
01206111 Engineering Mechanics I A 3
sem. G.P.A. = 3.5O cum. G.P.A. = 3.50`

		result := New(testConfig()).Extract(text)

		require.Len(t, result.Semesters, 1)
		assert.Nil(t, result.Semesters[0].SemesterGPA)
	})

	t.Run("ignores registrar portal noise lines", func(t *testing.T) {
		text := `First Semester 2021
https://registrar.example.edu/transcript.php?id=01206999
01206111 Engineering Mechanics I A 3`

		result := New(testConfig()).Extract(text)

		require.Len(t, result.Semesters, 1)
		assert.Len(t, result.Semesters[0].Courses, 1)
	})

	t.Run("counts unmatched course-code lines as skipped", func(t *testing.T) {
		text := `First Semester 2021
01206111 Engineering Mechanics I A 3
01206115 garbled beyond repair`

		result := New(testConfig()).Extract(text)

		assert.Equal(t, 1, result.CoursesParsed)
		assert.Equal(t, 1, result.SkippedLines)
	})

	t.Run("is deterministic across runs", func(t *testing.T) {
		text := `Student No 6510501234
First Semester 2021
01206111 Engineering Mechanics I A 3
01206112 Engineering Drawing B+ 3
sem. G.P.A. = 3.75 cum. G.P.A. = 3.75`

		e := New(testConfig())
		first := e.Extract(text)
		second := e.Extract(text)

		assert.Equal(t, first, second)
	})
}

func TestCleanCourseName(t *testing.T) {
	t.Run("keeps roman numeral suffixes", func(t *testing.T) {
		assert.Equal(t, "Engineering Mechanics I", cleanCourseName("Engineering Mechanics I", "A"))
	})

	t.Run("strips a duplicated grade fragment", func(t *testing.T) {
		assert.Equal(t, "Engineering Drawing", cleanCourseName("Engineering Drawing B", "B"))
	})

	t.Run("normalizes interior whitespace", func(t *testing.T) {
		assert.Equal(t, "Quality Control", cleanCourseName("  Quality   Control ", "A"))
	})
}
