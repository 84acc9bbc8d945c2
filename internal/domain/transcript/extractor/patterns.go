package extractor

import "regexp"

// PatternVersion identifies the active extraction pattern revision. Bump it
// when a pattern is added or corrected so downstream caches can tell which
// rule set produced a stored transcript. Corrections are additive: new
// variants are appended, existing ones are never edited in place.
const PatternVersion = 3

// Semester header variants. PDF text extraction sometimes collapses the
// whitespace between tokens, so every spaced form has a concatenated twin.
var semesterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(First|Second)\s+Semester\s+(\d{4})`),
	regexp.MustCompile(`(?i)(Summer)\s+Session\s+(\d{4})`),
	regexp.MustCompile(`(?i)(First|Second)Semester(\d{4})`),
	regexp.MustCompile(`(?i)(Summer)Session(\d{4})`),
}

// Course line variants, ordered by strictness. The first validated match
// wins. Different transcript PDF encoders break the same logical line in
// different ways, hence the ladder:
//
//	v1 tight:    code glued to the name, no separating space
//	v2 spaced:   conventional single-space layout
//	v3 fallback: anything between code and a grade+credit pair at line end
var coursePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{8})([A-Za-z][^\d]{10,80}?)([A-Z][+]?|W|N|F|P)\s*(\d+)`),
	regexp.MustCompile(`(\d{8})\s+([^\d]+?)\s+([A-Z][+]?|W|N|F|P)\s+(\d+)`),
	regexp.MustCompile(`(\d{8})\s*(.+?)\s+([A-Z][+]?)\s+(\d+)\s*$`),
}

// GPA summary line, tolerant of internal spacing variations.
var gpaPattern = regexp.MustCompile(`(?i)sem\.\s*G\.P\.A\.\s*=\s*(\d+\.\d+).*?cum\.\s*G\.P\.A\.\s*=\s*(\d+\.\d+)`)

// Student info field anchors. Each is searched independently; a miss leaves
// the field at its "Unknown" default.
var (
	studentIDPattern   = regexp.MustCompile(`\bStudent No\s*(\d+)`)
	studentNamePattern = regexp.MustCompile(`(?m)\bName\s+(.*?)\s*(?:Field of Study|Date of Admission|$)`)
	fieldPattern       = regexp.MustCompile(`(?m)\bField of Study\s+(.*?)\s*(?:Date of Admission|$)`)
	admissionPattern   = regexp.MustCompile(`(?m)\bDate of Admission\s+(.*?)\s*$`)
)

// splitCodePattern catches an 8-digit course code broken by one stray
// interior space ("0120 6111"). Candidates are rejoined and re-validated
// before course matching.
var splitCodePattern = regexp.MustCompile(`\b(\d{2,7}) (\d{1,6})\b`)

// bareCodePattern detects lines that carry a course code even when no course
// pattern matched, so skips can be counted.
var bareCodePattern = regexp.MustCompile(`\d{8}`)

var whitespacePattern = regexp.MustCompile(`\s+`)
