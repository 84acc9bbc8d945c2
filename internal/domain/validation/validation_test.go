package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuttakit-v/transcript-audit/internal/domain/catalog"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
	"github.com/nuttakit-v/transcript-audit/pkg/config"
)

func testPolicy() config.PolicyConfig {
	return config.PolicyConfig{
		MaxCreditsRegular: 22,
		MaxCreditsSummer:  9,
		MaxCreditsCourse:  9,
		CourseCodeLength:  8,
	}
}

func testGrades() *transcript.GradeRules {
	return transcript.NewGradeRules(
		[]string{"A", "B+", "B", "C+", "C", "D+", "D", "P"},
		[]string{"W", "N", ""},
		[]string{"A", "B+", "B", "C+", "C", "D+", "D", "F", "W", "N", "P", "I", "S", "U"},
	)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	data := `{
		"industrial_engineering_courses": [
			{"code": "01206111", "name": "Engineering Mechanics I", "credits": 3, "prerequisites": []},
			{"code": "01206211", "name": "Engineering Statistics", "credits": 3, "prerequisites": ["01206111"]},
			{"code": "01206311", "name": "Operations Research I", "credits": 3, "prerequisites": ["01206211"]},
			{"code": "01206321", "name": "Production Planning", "credits": 3, "prerequisites": ["01206211", "01206111"]}
		]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B-IE-2565.json"), []byte(data), 0644))

	cat, err := catalog.Load(dir)
	require.NoError(t, err)
	return cat
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	return New(testCatalog(t), testPolicy(), testGrades(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sem(kind transcript.SemesterKind, year int, courses ...transcript.CourseRecord) transcript.Semester {
	total := 0
	grades := testGrades()
	for _, c := range courses {
		if !grades.IsInProgress(c.Grade) {
			total += c.Credits
		}
	}
	label := string(kind) + " Semester"
	if kind == transcript.SemesterSummer {
		label = "Summer Session"
	}
	return transcript.Semester{
		Label:        label + " " + strconv.Itoa(year),
		Kind:         kind,
		Year:         year,
		Courses:      courses,
		TotalCredits: total,
	}
}

func course(code, grade string) transcript.CourseRecord {
	return transcript.CourseRecord{Code: code, Name: "Course " + code, Grade: grade, Credits: 3}
}

func TestBuildPassedHistory(t *testing.T) {
	semesters := []transcript.Semester{
		sem(transcript.SemesterFirst, 2021, course("01206111", "A"), course("01206112", "F")),
		sem(transcript.SemesterSecond, 2021, course("01206112", "C"), course("01206113", "W")),
		sem(transcript.SemesterFirst, 2022, course("01206211", "B")),
	}

	history := BuildPassedHistory(semesters, testGrades())

	t.Run("first semester sees nothing", func(t *testing.T) {
		assert.Empty(t, history[0])
	})

	t.Run("failed courses are not in history until retaken", func(t *testing.T) {
		assert.True(t, history[1]["01206111"])
		assert.False(t, history[1]["01206112"])
	})

	t.Run("retake pass and withdrawn handling", func(t *testing.T) {
		assert.True(t, history[2]["01206112"], "passed retake joins history")
		assert.False(t, history[2]["01206113"], "withdrawn course never joins history")
	})

	t.Run("history is monotonic", func(t *testing.T) {
		for i := 1; i < len(semesters); i++ {
			for code := range history[i-1] {
				assert.True(t, history[i][code], "code %s vanished at index %d", code, i)
			}
		}
	})
}

func TestValidator_ValidateCourse(t *testing.T) {
	v := newTestValidator(t)

	t.Run("unknown course is valid fail-open", func(t *testing.T) {
		valid, reason := v.ValidateCourse(course("99999999", "A"), 0, map[int]map[string]bool{})
		assert.True(t, valid)
		assert.Equal(t, "Course not found in database", reason)
	})

	t.Run("no prerequisites", func(t *testing.T) {
		valid, reason := v.ValidateCourse(course("01206111", "A"), 0, map[int]map[string]bool{})
		assert.True(t, valid)
		assert.Equal(t, "No prerequisites required", reason)
	})

	t.Run("missing prerequisite in first semester", func(t *testing.T) {
		valid, reason := v.ValidateCourse(course("01206211", "B"), 0, map[int]map[string]bool{0: {}})
		assert.False(t, valid)
		assert.Contains(t, reason, "01206111")
	})

	t.Run("reason enumerates every missing prerequisite", func(t *testing.T) {
		valid, reason := v.ValidateCourse(course("01206321", "B"), 0, map[int]map[string]bool{0: {}})
		assert.False(t, valid)
		assert.Equal(t, "Missing prerequisites: 01206111, 01206211", reason)
	})

	t.Run("satisfied prerequisites", func(t *testing.T) {
		history := map[int]map[string]bool{1: {"01206111": true}}
		valid, reason := v.ValidateCourse(course("01206211", "B"), 1, history)
		assert.True(t, valid)
		assert.Equal(t, "All prerequisites satisfied", reason)
	})

	t.Run("grade does not gate prerequisite validity", func(t *testing.T) {
		history := map[int]map[string]bool{1: {"01206111": true}}
		valid, _ := v.ValidateCourse(course("01206211", "F"), 1, history)
		assert.True(t, valid)
	})

	t.Run("concurrent registration does not satisfy a prerequisite", func(t *testing.T) {
		// History holds only strictly earlier passes, so a same-semester
		// prerequisite is simply absent.
		valid, reason := v.ValidateCourse(course("01206211", "B"), 0, map[int]map[string]bool{0: {}})
		assert.False(t, valid)
		assert.Contains(t, reason, "Missing prerequisites")
	})
}

func TestValidator_ValidateCreditLimit(t *testing.T) {
	v := newTestValidator(t)

	t.Run("summer over its ceiling", func(t *testing.T) {
		s := sem(transcript.SemesterSummer, 2022,
			course("01206111", "A"), course("01206112", "B"),
			course("01206113", "C"), course("01206114", "D"))
		require.Equal(t, 12, s.TotalCredits)

		ok, reason := v.ValidateCreditLimit(s)
		assert.False(t, ok)
		assert.Contains(t, reason, "12")
		assert.Contains(t, reason, "9")
	})

	t.Run("regular semester under its ceiling", func(t *testing.T) {
		ok, _ := v.ValidateCreditLimit(sem(transcript.SemesterFirst, 2022,
			course("01206111", "A"), course("01206112", "B"),
			course("01206113", "C"), course("01206114", "D")))
		assert.True(t, ok)
	})
}

func TestValidator_ValidateTranscript(t *testing.T) {
	v := newTestValidator(t)

	t.Run("every course gets exactly one result", func(t *testing.T) {
		semesters := []transcript.Semester{
			sem(transcript.SemesterFirst, 2021, course("01206111", "A")),
			sem(transcript.SemesterSecond, 2021, course("01206211", "B"), course("01206311", "C")),
		}

		results := v.ValidateTranscript(semesters)

		var courses []Result
		for _, r := range results {
			if !r.IsWarning() {
				courses = append(courses, r)
			}
		}
		require.Len(t, courses, 3)

		assert.True(t, courses[0].IsValid)
		assert.True(t, courses[1].IsValid, "prerequisite passed in earlier semester")
		assert.False(t, courses[2].IsValid, "prerequisite taken concurrently")
		assert.Equal(t, KindPrerequisite, courses[2].Kind)
	})

	t.Run("credit overload yields a warning row that stays valid", func(t *testing.T) {
		overloaded := sem(transcript.SemesterSummer, 2022,
			course("01206111", "A"), course("01206112", "B"),
			course("01206113", "C"), course("01206114", "D"))

		results := v.ValidateTranscript([]transcript.Semester{overloaded})

		require.NotEmpty(t, results)
		warning := results[0]
		assert.True(t, warning.IsWarning())
		assert.Equal(t, CreditLimitCode, warning.CourseCode)
		assert.Equal(t, "Credit Limit Check", warning.CourseName)
		assert.Equal(t, "N/A", warning.Grade)
		assert.True(t, warning.IsValid, "credit limit is a warning, not a rejection")
		assert.Equal(t, KindCreditLimit, warning.Kind)

		// The warning is additive: the four courses still have results.
		assert.Len(t, results, 5)
	})

	t.Run("no warning row when within the ceiling", func(t *testing.T) {
		results := v.ValidateTranscript([]transcript.Semester{
			sem(transcript.SemesterFirst, 2021, course("01206111", "A")),
		})

		require.Len(t, results, 1)
		assert.False(t, results[0].IsWarning())
	})
}

func TestValidator_Propagate(t *testing.T) {
	v := newTestValidator(t)

	t.Run("failed prerequisite invalidates later dependents", func(t *testing.T) {
		semesters := []transcript.Semester{
			sem(transcript.SemesterFirst, 2021, course("01206111", "F")),
			sem(transcript.SemesterSecond, 2021, course("01206211", "B")),
		}

		results := v.ValidateTranscript(semesters)

		require.Len(t, results, 2)
		assert.False(t, results[1].IsValid)
		assert.Contains(t, results[1].Reason, "01206111")
	})

	t.Run("invalid registration cascades through passed courses", func(t *testing.T) {
		// Statistics is passed but registered without Mechanics, so Operations
		// Research, which relied on Statistics, falls with it.
		semesters := []transcript.Semester{
			sem(transcript.SemesterFirst, 2021, course("01206211", "B")),
			sem(transcript.SemesterSecond, 2021, course("01206311", "A")),
		}

		results := v.ValidateTranscript(semesters)

		require.Len(t, results, 2)
		assert.False(t, results[0].IsValid)
		assert.False(t, results[1].IsValid)
		assert.Contains(t, results[1].Reason, "01206211")
	})

	t.Run("clean retake restores later dependents only", func(t *testing.T) {
		semesters := []transcript.Semester{
			sem(transcript.SemesterFirst, 2021, course("01206111", "F")),
			sem(transcript.SemesterSecond, 2021, course("01206211", "C")), // between failure and retake
			sem(transcript.SemesterFirst, 2022, course("01206111", "B")),
			sem(transcript.SemesterSecond, 2022, course("01206211", "A")), // after the retake
		}

		results := v.ValidateTranscript(semesters)

		require.Len(t, results, 4)
		assert.False(t, results[1].IsValid, "dependent before the retake stays invalid")
		assert.True(t, results[3].IsValid, "dependent after the retake is restored")
	})

	t.Run("propagation reaches a fixed point in one pass", func(t *testing.T) {
		semesters := []transcript.Semester{
			sem(transcript.SemesterFirst, 2021, course("01206111", "F")),
			sem(transcript.SemesterSecond, 2021, course("01206211", "B")),
			sem(transcript.SemesterFirst, 2022, course("01206311", "A")),
		}

		results := v.ValidateTranscript(semesters)

		flipped := v.Propagate(semesters, results)
		assert.Zero(t, flipped, "second pass must change nothing")
	})

	t.Run("propagation never flips invalid to valid", func(t *testing.T) {
		semesters := []transcript.Semester{
			sem(transcript.SemesterFirst, 2021, course("01206211", "B")),
		}

		results := v.ValidateTranscript(semesters)
		require.False(t, results[0].IsValid)

		v.Propagate(semesters, results)
		assert.False(t, results[0].IsValid)
	})

	t.Run("warning rows are never touched", func(t *testing.T) {
		overloaded := sem(transcript.SemesterSummer, 2022,
			course("01206111", "F"), course("01206112", "B"),
			course("01206113", "C"), course("01206114", "D"))
		semesters := []transcript.Semester{overloaded}

		results := v.ValidateTranscript(semesters)

		require.True(t, results[0].IsWarning())
		assert.True(t, results[0].IsValid)
	})
}
