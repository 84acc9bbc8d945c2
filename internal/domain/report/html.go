package report

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

// flowCourse is one course box in the flow chart.
type flowCourse struct {
	Code    string
	Name    string
	Grade   string
	Credits int
	Class   string
	Tooltip string
}

type flowSemester struct {
	Label   string
	Credits int
	GPA     string
	Courses []flowCourse
}

type flowYear struct {
	Number    int
	Semesters []flowSemester
}

type electiveBar struct {
	Category  string
	Required  int
	Completed int
	Percent   int
}

type flowPage struct {
	Student     transcript.StudentInfo
	Curriculum  string
	GeneratedAt string
	Years       []flowYear
	Electives   []electiveBar
	Invalid     int
	Warnings    int
}

var flowTemplate = template.Must(template.New("flow").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Curriculum Flow - {{.Student.ID}}</title>
<style>
body { font-family: "Segoe UI", Arial, sans-serif; background: #f5f6fa; margin: 24px; color: #2d3436; }
h1 { font-size: 1.4em; }
.meta { color: #636e72; margin-bottom: 16px; }
.year { margin-bottom: 28px; }
.year h2 { font-size: 1.1em; border-bottom: 2px solid #dfe6e9; padding-bottom: 4px; }
.semesters { display: flex; gap: 16px; flex-wrap: wrap; }
.semester { background: #fff; border: 1px solid #dfe6e9; border-radius: 6px; padding: 10px; min-width: 260px; flex: 1; }
.semester h3 { font-size: 0.95em; margin: 0 0 8px 0; }
.course { border-radius: 4px; padding: 6px 8px; margin-bottom: 6px; font-size: 0.85em; border: 1px solid transparent; }
.course .code { font-weight: bold; }
.completed { background: #d4efdf; border-color: #27ae60; }
.failed { background: #fadbd8; border-color: #c0392b; }
.withdrawn { background: #fef9e7; border-color: #f1c40f; }
.in-progress { background: #eaf2f8; border-color: #2980b9; }
.invalid { background: #f5b7b1; border-color: #922b21; }
.unidentified { background: #fdebd0; border-color: #e67e22; }
.legend { display: flex; gap: 12px; margin: 16px 0; font-size: 0.85em; flex-wrap: wrap; }
.legend span { padding: 4px 10px; border-radius: 4px; }
.electives { background: #fff; border: 1px solid #dfe6e9; border-radius: 6px; padding: 12px; max-width: 520px; }
.bar { background: #ecf0f1; border-radius: 4px; height: 14px; overflow: hidden; margin: 4px 0 10px 0; }
.bar div { background: #27ae60; height: 100%; }
.summary { margin: 12px 0; font-size: 0.9em; }
</style>
</head>
<body>
<h1>Curriculum Flow Chart</h1>
<div class="meta">
Student {{.Student.ID}} — {{.Student.Name}} ({{.Student.FieldOfStudy}})<br>
Curriculum {{.Curriculum}} · Generated {{.GeneratedAt}}
</div>

{{if or .Invalid .Warnings}}
<div class="summary">
{{if .Invalid}}<strong>{{.Invalid}}</strong> invalid registration(s). {{end}}
{{if .Warnings}}<strong>{{.Warnings}}</strong> credit-load warning(s).{{end}}
</div>
{{end}}

<div class="legend">
<span class="completed">Completed</span>
<span class="failed">Failed</span>
<span class="withdrawn">Withdrawn</span>
<span class="in-progress">In progress</span>
<span class="invalid">Invalid registration</span>
<span class="unidentified">Not in database</span>
</div>

{{range .Years}}
<div class="year">
<h2>Year {{.Number}}</h2>
<div class="semesters">
{{range .Semesters}}
<div class="semester">
<h3>{{.Label}} — {{.Credits}} credits{{if .GPA}} · GPA {{.GPA}}{{end}}</h3>
{{range .Courses}}
<div class="course {{.Class}}" title="{{.Tooltip}}">
<span class="code">{{.Code}}</span> {{.Name}}<br>
Grade {{.Grade}} · {{.Credits}} cr
</div>
{{end}}
</div>
{{end}}
</div>
</div>
{{end}}

{{if .Electives}}
<div class="electives">
<h2>Elective Progress</h2>
{{range .Electives}}
<div>{{.Category}}: {{.Completed}}/{{.Required}} credits</div>
<div class="bar"><div style="width: {{.Percent}}%"></div></div>
{{end}}
</div>
{{end}}
</body>
</html>
`))

// HTML renders the semester-by-semester flow chart with status-colored
// course boxes, a legend, and elective progress bars when a template
// analysis is available.
func HTML(data *Data) (*bytes.Buffer, error) {
	page := flowPage{
		Student:     data.StudentInfo,
		Curriculum:  data.CurriculumName,
		GeneratedAt: data.GeneratedAt.Format("2006-01-02 15:04"),
		Years:       buildFlowYears(data),
		Electives:   buildElectiveBars(data),
		Invalid:     len(data.invalidResults()),
		Warnings:    len(data.creditWarnings()),
	}

	buf := new(bytes.Buffer)
	if err := flowTemplate.Execute(buf, page); err != nil {
		return nil, fmt.Errorf("failed to render flow chart: %w", err)
	}
	return buf, nil
}

func buildFlowYears(data *Data) []flowYear {
	verdicts := data.verdicts()

	earliest := 0
	for _, sem := range data.Semesters {
		if sem.Year > 1900 && (earliest == 0 || sem.Year < earliest) {
			earliest = sem.Year
		}
	}

	var years []flowYear
	byNumber := make(map[int]int) // academic year -> index in years

	for _, sem := range data.Semesters {
		number := 1
		if earliest > 0 && sem.Year > 1900 {
			number = sem.Year - earliest + 1
		}

		idx, ok := byNumber[number]
		if !ok {
			years = append(years, flowYear{Number: number})
			idx = len(years) - 1
			byNumber[number] = idx
		}

		fs := flowSemester{Label: sem.Label, Credits: sem.TotalCredits}
		if sem.CumulativeGPA != nil {
			fs.GPA = fmt.Sprintf("%.2f", *sem.CumulativeGPA)
		}
		for _, course := range sem.Courses {
			cls := data.Catalog.Classify(course.Code)
			verdict := verdicts[course.Code]
			status := data.courseStatus(course, verdict, cls.Identified)

			tooltip := string(status)
			if status == StatusInvalid {
				tooltip = verdict.Reason
			} else if entry, found := data.Catalog.Lookup(course.Code); found && len(entry.Prerequisites) > 0 {
				tooltip = "Prerequisites: " + strings.Join(entry.Prerequisites, ", ")
			}

			fs.Courses = append(fs.Courses, flowCourse{
				Code:    course.Code,
				Name:    course.Name,
				Grade:   course.Grade,
				Credits: course.Credits,
				Class:   statusClass(status),
				Tooltip: tooltip,
			})
		}
		years[idx].Semesters = append(years[idx].Semesters, fs)
	}
	return years
}

func statusClass(status Status) string {
	switch status {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusWithdrawn:
		return "withdrawn"
	case StatusInvalid:
		return "invalid"
	case StatusUnidentified:
		return "unidentified"
	default:
		return "in-progress"
	}
}

func buildElectiveBars(data *Data) []electiveBar {
	if data.Progress == nil {
		return nil
	}

	categories := make([]string, 0, len(data.Progress.Electives))
	for category := range data.Progress.Electives {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var bars []electiveBar
	for _, category := range categories {
		p := data.Progress.Electives[category]
		percent := 0
		if p.Required > 0 {
			percent = p.Completed * 100 / p.Required
			if percent > 100 {
				percent = 100
			}
		}
		bars = append(bars, electiveBar{
			Category:  category,
			Required:  p.Required,
			Completed: p.Completed,
			Percent:   percent,
		})
	}
	return bars
}

// HTMLFilename names the flow chart download for one student.
func HTMLFilename(info transcript.StudentInfo) string {
	return fmt.Sprintf("curriculum_flow_%s.html", info.ID)
}
