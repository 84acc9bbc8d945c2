package catalog

import (
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

// departmentNames maps the 5-digit department prefix of a course code to a
// display name for reports.
var departmentNames = map[string]string{
	"01206": "Industrial Engineering",
	"01204": "Computer Science",
	"01205": "Electrical Engineering",
	"01208": "Mechanical Engineering",
	"01213": "Materials Engineering",
	"01417": "Mathematics",
	"01420": "Physics",
	"01403": "Chemistry",
	"01361": "Thai Language",
	"01355": "English Language",
	"01175": "Physical Education",
	"01999": "General Education",
	"01418": "Information Technology",
}

// DepartmentName resolves the department a course code belongs to.
func DepartmentName(code string) string {
	if code == "" {
		return "Unknown"
	}
	prefix := code
	if len(code) >= 5 {
		prefix = code[:5]
	}
	if name, ok := departmentNames[prefix]; ok {
		return name
	}
	return "Department " + prefix
}

// UnidentifiedCourse is a registration whose code the catalog does not know.
type UnidentifiedCourse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Semester string `json:"semester"`
	Credits  int    `json:"credits"`
	Grade    string `json:"grade"`
}

// Unidentified collects every course registration the catalog cannot
// classify, for the database-expansion report section.
func (c *Catalog) Unidentified(semesters []transcript.Semester) []UnidentifiedCourse {
	var out []UnidentifiedCourse
	for _, sem := range semesters {
		for _, course := range sem.Courses {
			if course.Code == "" {
				continue
			}
			if cls := c.Classify(course.Code); !cls.Identified {
				out = append(out, UnidentifiedCourse{
					Code:     course.Code,
					Name:     course.Name,
					Semester: sem.Label,
					Credits:  course.Credits,
					Grade:    course.Grade,
				})
			}
		}
	}
	return out
}

// CreditSummary totals passed credits per category bucket. Only passing
// grades count; withdrawn, failed and in-progress registrations contribute
// nothing toward graduation requirements.
func (c *Catalog) CreditSummary(semesters []transcript.Semester, grades *transcript.GradeRules) map[string]int {
	summary := map[string]int{
		string(CategoryCore):              0,
		string(CategoryTechnicalElective): 0,
		string(CategoryFreeElective):      0,
	}
	for _, sub := range c.Subcategories() {
		summary[sub] = 0
	}

	for _, sem := range semesters {
		for _, course := range sem.Courses {
			if !grades.IsPassing(course.Grade) {
				continue
			}
			cls := c.Classify(course.Code)
			switch cls.Category {
			case CategoryGenEd:
				summary[cls.Subcategory] += course.Credits
			default:
				summary[string(cls.Category)] += course.Credits
			}
		}
	}
	return summary
}

// keywordRule maps a name fragment to a suggested category. Rules with a
// higher priority win when several fragments appear in one name.
type keywordRule struct {
	keyword     string
	category    Category
	subcategory string
	priority    int
}

var defaultKeywordRules = []keywordRule{
	{"PHYSICAL EDUCATION", CategoryGenEd, "wellness", 30},
	{"SPORT", CategoryGenEd, "wellness", 20},
	{"HEALTH", CategoryGenEd, "wellness", 20},
	{"ENTREPRENEUR", CategoryGenEd, "entrepreneurship", 20},
	{"ENGLISH", CategoryGenEd, "language_communication", 20},
	{"THAI LANGUAGE", CategoryGenEd, "language_communication", 30},
	{"COMMUNICATION", CategoryGenEd, "language_communication", 10},
	{"CITIZEN", CategoryGenEd, "thai_citizen_global", 20},
	{"AESTHETIC", CategoryGenEd, "aesthetics", 20},
	{"MUSIC", CategoryGenEd, "aesthetics", 10},
	{"ART APPRECIATION", CategoryGenEd, "aesthetics", 30},
	{"ENGINEERING", CategoryCore, "core", 10},
	{"MANUFACTURING", CategoryTechnicalElective, "technical", 10},
	{"AUTOMATION", CategoryTechnicalElective, "technical", 10},
}

// Suggester proposes a category for courses the catalog does not know, by
// scanning the course name for telltale keywords in a single pass.
type Suggester struct {
	matcher *ahocorasick.Matcher
	rules   []keywordRule
}

// NewSuggester builds the keyword matcher.
func NewSuggester() *Suggester {
	patterns := make([][]byte, len(defaultKeywordRules))
	for i, rule := range defaultKeywordRules {
		patterns[i] = []byte(rule.keyword)
	}
	return &Suggester{
		matcher: ahocorasick.NewMatcher(patterns),
		rules:   defaultKeywordRules,
	}
}

// Suggest returns the best-priority category hint for a course name, or
// (zero, false) when no keyword matches.
func (s *Suggester) Suggest(courseName string) (Classification, bool) {
	normalized := strings.ToUpper(courseName)
	hits := s.matcher.Match([]byte(normalized))
	if len(hits) == 0 {
		return Classification{}, false
	}

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(s.rules) {
			continue
		}
		if best == -1 || s.rules[idx].priority > s.rules[best].priority {
			best = idx
		}
	}
	if best == -1 {
		return Classification{}, false
	}
	return Classification{
		Category:    s.rules[best].category,
		Subcategory: s.rules[best].subcategory,
		Identified:  false,
	}, true
}

// NameMatch is a fuzzy catalog match for a possibly mis-extracted name.
type NameMatch struct {
	Entry Entry
	Rank  int // Levenshtein distance; lower is closer
}

// SuggestByName finds catalog entries whose names are close to the given
// one. It catches extraction artifacts like truncated or glued names so the
// report can point at the probable real course.
func (c *Catalog) SuggestByName(name string, limit int) []NameMatch {
	if strings.TrimSpace(name) == "" || limit <= 0 {
		return nil
	}

	targets := make([]string, 0, len(c.all))
	codes := make([]string, 0, len(c.all))
	for code, entry := range c.all {
		targets = append(targets, entry.Name)
		codes = append(codes, code)
	}

	ranks := fuzzy.RankFindNormalizedFold(name, targets)
	if len(ranks) == 0 {
		return nil
	}
	sort.Sort(ranks)

	matches := make([]NameMatch, 0, limit)
	for _, r := range ranks {
		entry := c.all[codes[r.OriginalIndex]]
		matches = append(matches, NameMatch{Entry: entry, Rank: r.Distance})
		if len(matches) == limit {
			break
		}
	}
	return matches
}
