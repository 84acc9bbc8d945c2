// Package catalog loads the course catalog and classifies course codes
// against it. The catalog is read-only to the rest of the system: the
// validator and reports only ever look entries up.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrNoCatalogData indicates the data directory holds no usable catalog
// files. This is a structural error, distinct from a catalog that loads but
// matches nothing.
var ErrNoCatalogData = errors.New("no catalog data files found")

// CreditValue is a course credit count that may be encoded in the source
// JSON either as a plain number or as a string like "3(3-0-6)", where the
// leading integer is the credit value.
type CreditValue int

// UnmarshalJSON accepts both encodings.
func (c *CreditValue) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = CreditValue(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("credits must be a number or string: %s", data)
	}

	if idx := strings.IndexByte(s, '('); idx >= 0 {
		s = s[:idx]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		*c = 0
		return nil
	}
	*c = CreditValue(n)
	return nil
}

// Int returns the numeric credit value.
func (c CreditValue) Int() int { return int(c) }

// Entry is one catalog course with its declared prerequisites.
type Entry struct {
	Code              string      `json:"code"`
	Name              string      `json:"name"`
	Credits           CreditValue `json:"credits"`
	Prerequisites     []string    `json:"prerequisites"`
	TechnicalElective bool        `json:"technical_electives"`
}

// Category buckets courses for graduation-requirement accounting.
type Category string

const (
	CategoryCore              Category = "core"
	CategoryGenEd             Category = "gen_ed"
	CategoryTechnicalElective Category = "technical_electives"
	CategoryFreeElective      Category = "free_electives"
)

// Classification is the result of classifying one course code.
type Classification struct {
	Category    Category
	Subcategory string
	// Identified is false for codes absent from the catalog; those land in
	// the free-electives bucket by default.
	Identified bool
}

// Catalog is the merged, code-indexed course database for one curriculum.
type Catalog struct {
	name      string
	core      map[string]Entry
	technical map[string]Entry
	genEd     map[string]map[string]Entry
	all       map[string]Entry
}

// Name returns the curriculum name this catalog was loaded for.
func (c *Catalog) Name() string { return c.name }

// Len returns the number of distinct courses.
func (c *Catalog) Len() int { return len(c.all) }

// Lookup finds a catalog entry by course code.
func (c *Catalog) Lookup(code string) (Entry, bool) {
	e, ok := c.all[strings.ToUpper(code)]
	return e, ok
}

// Subcategories lists the gen-ed subcategories present, sorted.
func (c *Catalog) Subcategories() []string {
	subs := make([]string, 0, len(c.genEd))
	for sub := range c.genEd {
		subs = append(subs, sub)
	}
	sort.Strings(subs)
	return subs
}

// Classify buckets a course code. Priority order: gen-ed first, then
// technical electives, then core; anything unknown is a free elective.
func (c *Catalog) Classify(code string) Classification {
	code = strings.ToUpper(code)

	for _, sub := range c.Subcategories() {
		if _, ok := c.genEd[sub][code]; ok {
			return Classification{Category: CategoryGenEd, Subcategory: sub, Identified: true}
		}
	}
	if _, ok := c.technical[code]; ok {
		return Classification{Category: CategoryTechnicalElective, Subcategory: "technical", Identified: true}
	}
	if _, ok := c.core[code]; ok {
		return Classification{Category: CategoryCore, Subcategory: "core", Identified: true}
	}
	return Classification{Category: CategoryFreeElective, Subcategory: "free", Identified: false}
}

// curriculumFile is the top-level shape of a B-IE-*.json catalog document.
type curriculumFile struct {
	EngineeringCourses []Entry `json:"industrial_engineering_courses"`
	RelatedCourses     []Entry `json:"other_related_courses"`
}

type genEdFile struct {
	GenEdCourses map[string][]Entry `json:"gen_ed_courses"`
}

var curriculumNamePattern = regexp.MustCompile(`^B-IE-(\d{4})\.json$`)

// Available lists curriculum names found in the data directory, newest
// first (B-IE-2565.json -> "B-IE-2565").
func Available(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	type versioned struct {
		name string
		year int
	}
	var found []versioned
	for _, entry := range entries {
		m := curriculumNamePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, versioned{name: strings.TrimSuffix(entry.Name(), ".json"), year: year})
	}
	if len(found) == 0 {
		return nil, ErrNoCatalogData
	}

	sort.Slice(found, func(i, j int) bool { return found[i].year > found[j].year })

	names := make([]string, len(found))
	for i, v := range found {
		names[i] = v.name
	}
	return names, nil
}

// ForStudent picks the curriculum a student belongs to from the cohort year
// encoded in the leading digits of the student ID (Buddhist-calendar short
// year, "65" -> 2565). The newest curriculum not newer than the cohort wins;
// students older than every curriculum get the oldest one. Unparseable IDs
// fall back to the newest curriculum.
func ForStudent(dir, studentID string) (string, error) {
	names, err := Available(dir)
	if err != nil {
		return "", err
	}

	if len(studentID) < 2 {
		return names[0], nil
	}
	shortYear, err := strconv.Atoi(studentID[:2])
	if err != nil {
		return names[0], nil
	}
	cohort := 2500 + shortYear

	// names is sorted newest first.
	for _, name := range names {
		year, err := strconv.Atoi(strings.TrimPrefix(name, "B-IE-"))
		if err != nil {
			continue
		}
		if year <= cohort {
			return name, nil
		}
	}
	return names[len(names)-1], nil
}

// Load merges every curriculum file in the directory, newest year first so
// the most recent definition of a course wins, then adds the shared gen-ed
// course list.
func Load(dir string) (*Catalog, error) {
	names, err := Available(dir)
	if err != nil {
		return nil, err
	}

	c := newCatalog("merged")
	for _, name := range names {
		if err := c.mergeCurriculumFile(filepath.Join(dir, name+".json")); err != nil {
			return nil, err
		}
	}
	if err := c.mergeGenEdFile(filepath.Join(dir, "gen_ed_courses.json")); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCurriculum loads a single named curriculum plus the shared gen-ed
// courses, for validating a student against the catalog of their cohort.
func LoadCurriculum(dir, name string) (*Catalog, error) {
	c := newCatalog(name)
	if err := c.mergeCurriculumFile(filepath.Join(dir, name+".json")); err != nil {
		return nil, err
	}
	if err := c.mergeGenEdFile(filepath.Join(dir, "gen_ed_courses.json")); err != nil {
		return nil, err
	}
	return c, nil
}

func newCatalog(name string) *Catalog {
	return &Catalog{
		name:      name,
		core:      make(map[string]Entry),
		technical: make(map[string]Entry),
		genEd:     make(map[string]map[string]Entry),
		all:       make(map[string]Entry),
	}
}

func (c *Catalog) mergeCurriculumFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read curriculum file: %w", err)
	}

	var file curriculumFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	for _, entry := range file.EngineeringCourses {
		code := strings.ToUpper(entry.Code)
		if _, seen := c.all[code]; seen {
			continue
		}
		if entry.TechnicalElective {
			c.technical[code] = entry
		} else {
			c.core[code] = entry
		}
		c.all[code] = entry
	}
	for _, entry := range file.RelatedCourses {
		code := strings.ToUpper(entry.Code)
		if _, seen := c.all[code]; seen {
			continue
		}
		c.core[code] = entry
		c.all[code] = entry
	}
	return nil
}

// mergeGenEdFile is tolerant of a missing gen-ed file: curricula can ship
// without one.
func (c *Catalog) mergeGenEdFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read gen-ed file: %w", err)
	}

	var file genEdFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	for sub, entries := range file.GenEdCourses {
		if c.genEd[sub] == nil {
			c.genEd[sub] = make(map[string]Entry, len(entries))
		}
		for _, entry := range entries {
			code := strings.ToUpper(entry.Code)
			c.genEd[sub][code] = entry
			if _, seen := c.all[code]; !seen {
				c.all[code] = entry
			}
		}
	}
	return nil
}
