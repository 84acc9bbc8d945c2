package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/nuttakit-v/transcript-audit/internal/domain/catalog"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

const excelSheet = "Registration Analysis"

// excelRow is one course flattened for the workbook.
type excelRow struct {
	course   transcript.CourseRecord
	semester string
	status   Status
	reason   string
}

type excelStyles struct {
	title     int
	alert     int
	section   int
	colHeader int
	completed int
	failed    int
	withdrawn int
	invalid   int
	unknown   int
	plain     int
}

// Excel renders the classification workbook: one section per curriculum
// category, each row colored by status, with database-expansion and
// validation alerts up top.
func Excel(data *Data) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(excelSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(excelSheet, "A", "A", 12)
	f.SetColWidth(excelSheet, "B", "B", 42)
	f.SetColWidth(excelSheet, "C", "D", 8)
	f.SetColWidth(excelSheet, "E", "E", 22)
	f.SetColWidth(excelSheet, "F", "F", 45)

	styles, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}

	row := writeExcelHeader(f, data, styles)
	row = writeExcelAlerts(f, data, styles, row)

	sections := buildExcelSections(data)
	for _, section := range sections {
		row = writeExcelSection(f, styles, section, row)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	var s excelStyles
	var err error

	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}
	borders := []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Fill:      fill("#E6F3FF"),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.alert, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: fill("#FFA500"),
	}); err != nil {
		return s, err
	}
	if s.section, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: fill("#E6F3FF"),
	}); err != nil {
		return s, err
	}
	if s.colHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Fill:      fill("#F0F0F0"),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    borders,
	}); err != nil {
		return s, err
	}

	rowStyle := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Font:   &excelize.Font{Size: 9},
			Fill:   fill(color),
			Border: borders,
		})
	}
	if s.completed, err = rowStyle("#90EE90"); err != nil {
		return s, err
	}
	if s.failed, err = rowStyle("#FFE6E6"); err != nil {
		return s, err
	}
	if s.withdrawn, err = rowStyle("#FFFF00"); err != nil {
		return s, err
	}
	if s.invalid, err = rowStyle("#FFE6E6"); err != nil {
		return s, err
	}
	if s.unknown, err = rowStyle("#FFA500"); err != nil {
		return s, err
	}
	if s.plain, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 9},
		Border: borders,
	}); err != nil {
		return s, err
	}
	return s, nil
}

func writeExcelHeader(f *excelize.File, data *Data, styles excelStyles) int {
	f.SetCellValue(excelSheet, "A1", "COURSE REGISTRATION ANALYSIS - "+data.CurriculumName)
	f.MergeCell(excelSheet, "A1", "F1")
	f.SetCellStyle(excelSheet, "A1", "A1", styles.title)

	f.SetCellValue(excelSheet, "A3", "Student ID:")
	f.SetCellValue(excelSheet, "B3", data.StudentInfo.ID)
	f.SetCellValue(excelSheet, "D3", "Name:")
	f.SetCellValue(excelSheet, "E3", data.StudentInfo.Name)
	f.SetCellValue(excelSheet, "A4", "Field of Study:")
	f.SetCellValue(excelSheet, "B4", data.StudentInfo.FieldOfStudy)

	return 6
}

func writeExcelAlerts(f *excelize.File, data *Data, styles excelStyles, row int) int {
	unknown := data.unidentifiedCount()
	issues := len(data.invalidResults())
	if unknown == 0 && issues == 0 {
		return row
	}

	cell := fmt.Sprintf("A%d", row)
	f.SetCellValue(excelSheet, cell, "SYSTEM ALERTS:")
	f.SetCellStyle(excelSheet, cell, cell, styles.alert)
	row++

	if unknown > 0 {
		cell = fmt.Sprintf("A%d", row)
		f.SetCellValue(excelSheet, cell, fmt.Sprintf("DATABASE EXPANSION NEEDED: %d new courses found", unknown))
		f.MergeCell(excelSheet, cell, fmt.Sprintf("F%d", row))
		f.SetCellStyle(excelSheet, cell, cell, styles.alert)
		row++
	}
	if issues > 0 {
		cell = fmt.Sprintf("A%d", row)
		f.SetCellValue(excelSheet, cell, fmt.Sprintf("VALIDATION ISSUES: %d courses have prerequisite problems", issues))
		f.MergeCell(excelSheet, cell, fmt.Sprintf("F%d", row))
		f.SetCellStyle(excelSheet, cell, cell, styles.alert)
		row++
	}
	return row + 1
}

type excelSection struct {
	title string
	rows  []excelRow
}

// buildExcelSections classifies every registration and groups the rows by
// category, gen-ed subcategories listed separately.
func buildExcelSections(data *Data) []excelSection {
	verdicts := data.verdicts()

	grouped := make(map[string][]excelRow)
	for _, sem := range data.Semesters {
		for _, course := range sem.Courses {
			cls := data.Catalog.Classify(course.Code)
			verdict := verdicts[course.Code]

			key := string(cls.Category)
			if cls.Category == catalog.CategoryGenEd {
				key = "gen_ed:" + cls.Subcategory
			}
			grouped[key] = append(grouped[key], excelRow{
				course:   course,
				semester: sem.Label,
				status:   data.courseStatus(course, verdict, cls.Identified),
				reason:   verdict.Reason,
			})
		}
	}

	sections := []excelSection{
		{title: "CORE COURSES", rows: grouped[string(catalog.CategoryCore)]},
	}
	for _, sub := range data.Catalog.Subcategories() {
		if rows := grouped["gen_ed:"+sub]; len(rows) > 0 {
			sections = append(sections, excelSection{title: "GEN-ED: " + sub, rows: rows})
		}
	}
	sections = append(sections,
		excelSection{title: "TECHNICAL ELECTIVES", rows: grouped[string(catalog.CategoryTechnicalElective)]},
		excelSection{title: "FREE ELECTIVES", rows: grouped[string(catalog.CategoryFreeElective)]},
	)

	for i := range sections {
		rows := sections[i].rows
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].course.Code < rows[b].course.Code })
	}
	return sections
}

func writeExcelSection(f *excelize.File, styles excelStyles, section excelSection, row int) int {
	earned := 0
	for _, r := range section.rows {
		if r.status == StatusCompleted {
			earned += r.course.Credits
		}
	}

	cell := fmt.Sprintf("A%d", row)
	f.SetCellValue(excelSheet, cell, fmt.Sprintf("%s - Earned: %d credits", section.title, earned))
	f.MergeCell(excelSheet, cell, fmt.Sprintf("F%d", row))
	f.SetCellStyle(excelSheet, cell, cell, styles.section)
	row++

	if len(section.rows) == 0 {
		f.SetCellValue(excelSheet, fmt.Sprintf("A%d", row), "No courses in this category")
		return row + 2
	}

	headers := []string{"Code", "Course Name", "Grade", "Credits", "Semester", "Status"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		c := fmt.Sprintf("%s%d", col, row)
		f.SetCellValue(excelSheet, c, h)
		f.SetCellStyle(excelSheet, c, c, styles.colHeader)
	}
	row++

	for _, r := range section.rows {
		status := string(r.status)
		if r.status == StatusInvalid {
			status = "INVALID: " + r.reason
		}

		f.SetCellValue(excelSheet, fmt.Sprintf("A%d", row), r.course.Code)
		f.SetCellValue(excelSheet, fmt.Sprintf("B%d", row), r.course.Name)
		f.SetCellValue(excelSheet, fmt.Sprintf("C%d", row), r.course.Grade)
		f.SetCellValue(excelSheet, fmt.Sprintf("D%d", row), r.course.Credits)
		f.SetCellValue(excelSheet, fmt.Sprintf("E%d", row), r.semester)
		f.SetCellValue(excelSheet, fmt.Sprintf("F%d", row), status)

		f.SetCellStyle(excelSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), rowStyleFor(styles, r.status))
		row++
	}
	return row + 1
}

func rowStyleFor(styles excelStyles, status Status) int {
	switch status {
	case StatusCompleted:
		return styles.completed
	case StatusFailed:
		return styles.failed
	case StatusWithdrawn, StatusInProgress:
		return styles.withdrawn
	case StatusInvalid:
		return styles.invalid
	case StatusUnidentified:
		return styles.unknown
	default:
		return styles.plain
	}
}

// ExcelFilename names the workbook download for one student.
func ExcelFilename(info transcript.StudentInfo) string {
	return fmt.Sprintf("transcript_analysis_%s.xlsx", info.ID)
}
