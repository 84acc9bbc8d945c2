// Package extractor converts raw PDF-derived transcript text into structured
// student info and semester records. Input documents are third-party and
// unowned, so every per-line failure is swallowed: an unparsable line is
// skipped and the extractor returns whatever it could read.
package extractor

import (
	"strconv"
	"strings"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

const unknownField = "Unknown"

// Config controls the validation limits applied to candidate course lines.
type Config struct {
	CourseCodeLength int
	MaxCourseCredits int
	Grades           *transcript.GradeRules
}

// Result carries the extracted records plus per-run parsing statistics.
type Result struct {
	StudentInfo transcript.StudentInfo
	Semesters   []transcript.Semester

	TotalLines     int
	CoursesParsed  int
	SkippedLines   int // lines bearing a course code that matched no pattern
	DroppedCourses int // matches rejected by grade or credit validation
}

// Extractor parses transcript text. It is stateless and safe for reuse.
type Extractor struct {
	cfg Config
}

// New creates an extractor with the given limits.
func New(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract parses the full transcript text. Empty input yields an empty
// result, not an error; a transcript that parses to zero semesters is a
// valid outcome.
func (e *Extractor) Extract(text string) *Result {
	result := &Result{}
	if strings.TrimSpace(text) == "" {
		return result
	}

	result.StudentInfo = e.extractStudentInfo(text)

	lines := strings.Split(text, "\n")
	result.TotalLines = len(lines)
	e.extractSemesters(lines, result)

	return result
}

// extractStudentInfo locates the labeled header fields. Each field is
// searched independently and defaults to "Unknown" on a miss.
func (e *Extractor) extractStudentInfo(text string) transcript.StudentInfo {
	info := transcript.StudentInfo{
		ID:              unknownField,
		Name:            unknownField,
		FieldOfStudy:    unknownField,
		DateOfAdmission: unknownField,
	}

	if m := studentIDPattern.FindStringSubmatch(text); m != nil {
		info.ID = strings.TrimSpace(m[1])
	}
	if m := studentNamePattern.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
		info.Name = strings.TrimSpace(m[1])
	}
	if m := fieldPattern.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
		info.FieldOfStudy = strings.TrimSpace(m[1])
	}
	if m := admissionPattern.FindStringSubmatch(text); m != nil && strings.TrimSpace(m[1]) != "" {
		info.DateOfAdmission = strings.TrimSpace(m[1])
	}

	return info
}

type semesterMarker struct {
	lineNum int
	kind    transcript.SemesterKind
	year    int
}

// extractSemesters segments the text into semester blocks and parses the
// course lines inside each block. A block with zero parsed courses is
// treated as noise and dropped.
func (e *Extractor) extractSemesters(lines []string, result *Result) {
	markers := findSemesterMarkers(lines)

	for idx, marker := range markers {
		end := len(lines)
		if idx+1 < len(markers) {
			end = markers[idx+1].lineNum
		}

		sem := transcript.Semester{
			Label: semesterLabel(marker.kind, marker.year),
			Kind:  marker.kind,
			Year:  marker.year,
		}

		for lineNum := marker.lineNum + 1; lineNum < end; lineNum++ {
			line := strings.TrimSpace(lines[lineNum])
			if line == "" {
				continue
			}
			// Footer noise: page URLs from the registrar portal.
			lower := strings.ToLower(line)
			if strings.Contains(lower, "http") || strings.Contains(lower, ".php") {
				continue
			}

			if m := gpaPattern.FindStringSubmatch(line); m != nil {
				// Malformed floats leave the fields unset.
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					sem.SemesterGPA = &v
				}
				if v, err := strconv.ParseFloat(m[2], 64); err == nil {
					sem.CumulativeGPA = &v
				}
				continue
			}

			e.parseCourseLine(line, &sem, result)
		}

		if len(sem.Courses) > 0 {
			result.Semesters = append(result.Semesters, sem)
		}
	}
}

func findSemesterMarkers(lines []string) []semesterMarker {
	var markers []semesterMarker
	for lineNum, line := range lines {
		clean := strings.TrimSpace(line)
		if clean == "" {
			continue
		}
		for _, pattern := range semesterPatterns {
			m := pattern.FindStringSubmatch(clean)
			if m == nil {
				continue
			}
			year, err := strconv.Atoi(m[2])
			if err != nil {
				break
			}
			markers = append(markers, semesterMarker{
				lineNum: lineNum,
				kind:    semesterKindOf(m[1]),
				year:    year,
			})
			break
		}
	}
	return markers
}

func semesterKindOf(token string) transcript.SemesterKind {
	switch strings.ToLower(token) {
	case "first":
		return transcript.SemesterFirst
	case "second":
		return transcript.SemesterSecond
	default:
		return transcript.SemesterSummer
	}
}

func semesterLabel(kind transcript.SemesterKind, year int) string {
	if kind == transcript.SemesterSummer {
		return "Summer Session " + strconv.Itoa(year)
	}
	return string(kind) + " Semester " + strconv.Itoa(year)
}

// parseCourseLine tries the pattern ladder against one line and appends the
// first validated match to the semester. Rejections fall through to the next
// pattern; a line that defeats every pattern but carries a course code is
// counted as skipped.
func (e *Extractor) parseCourseLine(line string, sem *transcript.Semester, result *Result) {
	line = rejoinSplitCode(line, e.cfg.CourseCodeLength)

	for _, pattern := range coursePatterns {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		code := strings.TrimSpace(m[1])
		grade := strings.TrimSpace(m[3])
		credits, err := strconv.Atoi(strings.TrimSpace(m[4]))

		if len(code) != e.cfg.CourseCodeLength {
			continue
		}
		if !e.cfg.Grades.IsAllowed(grade) {
			result.DroppedCourses++
			continue
		}
		// A credit value outside the sane per-course range is a strong
		// signal the pattern latched onto the wrong digits.
		if err != nil || credits <= 0 || credits > e.cfg.MaxCourseCredits {
			result.DroppedCourses++
			continue
		}

		// Overlapping matches can surface the same registration twice
		// within one block; the first occurrence wins.
		if sem.HasCourse(code) {
			return
		}

		sem.Courses = append(sem.Courses, transcript.CourseRecord{
			Code:    code,
			Name:    cleanCourseName(m[2], grade),
			Grade:   grade,
			Credits: credits,
		})
		if !e.cfg.Grades.IsInProgress(grade) {
			sem.TotalCredits += credits
		}
		result.CoursesParsed++
		return
	}

	if bareCodePattern.MatchString(line) {
		result.SkippedLines++
	}
}

// rejoinSplitCode repairs a course code broken by one stray interior space,
// but only when the rejoined token has exactly the expected width.
func rejoinSplitCode(line string, codeLen int) string {
	return splitCodePattern.ReplaceAllStringFunc(line, func(match string) string {
		joined := strings.Replace(match, " ", "", 1)
		if len(joined) == codeLen {
			return joined
		}
		return match
	})
}

// cleanCourseName normalizes whitespace and drops a trailing fragment that
// duplicates the grade token, which happens when tokenization glues the
// grade onto the name before the real grade column.
func cleanCourseName(name, grade string) string {
	name = strings.TrimSpace(whitespacePattern.ReplaceAllString(name, " "))

	if idx := strings.LastIndexByte(name, ' '); idx > 0 {
		if name[idx+1:] == grade {
			name = name[:idx]
		}
	}
	return name
}
