package report

import (
	"fmt"
	"strings"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
	"github.com/nuttakit-v/transcript-audit/internal/domain/validation"
)

// Text renders the plain-text validation report: student header, per-semester
// summary, validation totals, then every violation and credit warning.
func Text(data *Data) string {
	var b strings.Builder

	b.WriteString("COURSE REGISTRATION VALIDATION REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Student ID:        %s\n", data.StudentInfo.ID))
	b.WriteString(fmt.Sprintf("Name:              %s\n", data.StudentInfo.Name))
	b.WriteString(fmt.Sprintf("Field of Study:    %s\n", data.StudentInfo.FieldOfStudy))
	b.WriteString(fmt.Sprintf("Date of Admission: %s\n", data.StudentInfo.DateOfAdmission))
	b.WriteString(fmt.Sprintf("Curriculum:        %s\n", data.CurriculumName))
	b.WriteString(fmt.Sprintf("Generated:         %s\n\n", data.GeneratedAt.Format("2006-01-02 15:04")))

	b.WriteString("SEMESTER SUMMARY\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	for _, sem := range data.Semesters {
		gpa := "N/A"
		if sem.CumulativeGPA != nil {
			gpa = fmt.Sprintf("%.2f", *sem.CumulativeGPA)
		}
		b.WriteString(fmt.Sprintf("%s: %d courses, %d credits, GPA: %s\n",
			sem.Label, len(sem.Courses), sem.TotalCredits, gpa))
	}
	b.WriteString("\n")

	total := data.courseResultCount()
	invalid := data.invalidResults()
	warnings := data.creditWarnings()

	b.WriteString("VALIDATION SUMMARY\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")
	b.WriteString(fmt.Sprintf("Total Validations:     %d\n", total))
	b.WriteString(fmt.Sprintf("Invalid Registrations: %d\n", len(invalid)))
	if total > 0 {
		rate := float64(total-len(invalid)) / float64(total) * 100
		b.WriteString(fmt.Sprintf("Success Rate:          %.1f%%\n", rate))
	}
	b.WriteString("\n")

	if len(invalid) > 0 {
		b.WriteString("INVALID REGISTRATIONS\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, r := range invalid {
			b.WriteString(formatViolation(r))
		}
		b.WriteString("\n")
	}

	if len(warnings) > 0 {
		b.WriteString("CREDIT LOAD WARNINGS\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, r := range warnings {
			b.WriteString(fmt.Sprintf("%s: %s\n", r.Semester, r.Reason))
		}
		b.WriteString("\n")
	}

	if unknown := data.Catalog.Unidentified(data.Semesters); len(unknown) > 0 {
		b.WriteString("COURSES NOT IN DATABASE\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, course := range unknown {
			b.WriteString(fmt.Sprintf("%s %s (%s)\n", course.Code, course.Name, course.Semester))
		}
		b.WriteString("\n")
	}

	if len(invalid) == 0 {
		b.WriteString("All course registrations are valid.\n")
	}

	return b.String()
}

func formatViolation(r validation.Result) string {
	return fmt.Sprintf("%s [%s] %s %s\n    %s\n", r.Semester, r.Grade, r.CourseCode, r.CourseName, r.Reason)
}

// TextFilename names the text report download for one student.
func TextFilename(info transcript.StudentInfo) string {
	return fmt.Sprintf("validation_report_%s.txt", info.ID)
}
