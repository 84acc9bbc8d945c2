// Package service orchestrates the analysis pipeline: store the upload,
// extract text, parse semesters, pick the student's curriculum, validate,
// analyze template progress, and render reports on demand.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nuttakit-v/transcript-audit/internal/domain/catalog"
	"github.com/nuttakit-v/transcript-audit/internal/domain/curriculum"
	"github.com/nuttakit-v/transcript-audit/internal/domain/report"
	"github.com/nuttakit-v/transcript-audit/internal/domain/session"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript/extractor"
	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript/pdf"
	"github.com/nuttakit-v/transcript-audit/internal/domain/validation"
	"github.com/nuttakit-v/transcript-audit/pkg/config"
	"github.com/nuttakit-v/transcript-audit/pkg/metrics"
	"github.com/nuttakit-v/transcript-audit/pkg/storage"
)

// ErrAnalysisNotFound indicates the transcript ID is unknown or expired.
var ErrAnalysisNotFound = errors.New("analysis not found")

// ErrUnknownFormat indicates an unsupported report format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Format names a downloadable report rendering.
type Format string

const (
	FormatExcel Format = "excel"
	FormatHTML  Format = "html"
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// ParseFormat resolves a format name from a request.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatExcel, FormatHTML, FormatText, FormatJSON, FormatCSV:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ExtractionStats carries the per-run parsing counters for the caller.
type ExtractionStats struct {
	TotalLines     int `json:"total_lines"`
	CoursesParsed  int `json:"courses_parsed"`
	SkippedLines   int `json:"skipped_lines"`
	DroppedCourses int `json:"dropped_courses"`
}

// Analysis is the cached outcome of one processed upload.
type Analysis struct {
	ID             uuid.UUID                  `json:"id"`
	StudentInfo    transcript.StudentInfo     `json:"student_info"`
	Semesters      []transcript.Semester      `json:"semesters"`
	Results        []validation.Result        `json:"validation_results"`
	Unidentified   []catalog.UnidentifiedCourse `json:"unidentified_courses"`
	Progress       *curriculum.Progress       `json:"progress,omitempty"`
	Completion     report.CompletionMetrics   `json:"completion"`
	CurriculumName string                     `json:"curriculum"`
	Stats          ExtractionStats            `json:"extraction_stats"`
	CreatedAt      time.Time                  `json:"created_at"`

	cat *catalog.Catalog
}

// InvalidCount counts genuine violations, warnings excluded.
func (a *Analysis) InvalidCount() int {
	n := 0
	for _, r := range a.Results {
		if !r.IsValid && !r.IsWarning() {
			n++
		}
	}
	return n
}

// AnalysisService runs the pipeline and serves cached analyses.
type AnalysisService struct {
	store     storage.Storage
	cache     *session.Cache[*Analysis]
	metrics   *metrics.Metrics
	logger    *slog.Logger
	catalogDir string
	policy    config.PolicyConfig
	grades    *transcript.GradeRules
	extractor *extractor.Extractor
}

// NewAnalysisService wires the pipeline dependencies.
func NewAnalysisService(store storage.Storage, cache *session.Cache[*Analysis], m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *AnalysisService {
	grades := transcript.NewGradeRules(cfg.Policy.PassingGrades, cfg.Policy.InProgressGrades, cfg.Policy.AllowedGrades)
	return &AnalysisService{
		store:      store,
		cache:      cache,
		metrics:    m,
		logger:     logger,
		catalogDir: cfg.Catalog.DataDir,
		policy:     cfg.Policy,
		grades:     grades,
		extractor: extractor.New(extractor.Config{
			CourseCodeLength: cfg.Policy.CourseCodeLength,
			MaxCourseCredits: cfg.Policy.MaxCreditsCourse,
			Grades:           grades,
		}),
	}
}

// Process runs the full pipeline on one uploaded PDF and caches the result
// under a fresh transcript ID.
func (s *AnalysisService) Process(ctx context.Context, filename string, fileData []byte) (*Analysis, error) {
	id := uuid.New()
	logger := s.logger.With(slog.String("transcript_id", id.String()))

	// Raw text exports of a transcript are accepted alongside PDFs.
	contentType := "application/pdf"
	if !bytes.HasPrefix(fileData, []byte("%PDF")) {
		contentType = "text/plain"
	}

	if _, err := s.store.Upload(ctx, id, filename, contentType, bytes.NewReader(fileData)); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	var text string
	if contentType == "application/pdf" {
		extracted, err := pdf.ExtractText(bytes.NewReader(fileData), int64(len(fileData)))
		if err != nil {
			s.metrics.ExtractionFailures.Inc()
			return nil, fmt.Errorf("failed to extract text: %w", err)
		}
		text = extracted
	} else {
		text = string(fileData)
		if strings.TrimSpace(text) == "" {
			s.metrics.ExtractionFailures.Inc()
			return nil, pdf.ErrNoText
		}
	}

	result := s.extractor.Extract(text)
	transcript.SortChronological(result.Semesters)

	logger.Info("transcript extracted",
		slog.String("student_id", result.StudentInfo.ID),
		slog.Int("semesters", len(result.Semesters)),
		slog.Int("courses", result.CoursesParsed),
		slog.Int("skipped", result.SkippedLines),
	)

	curriculumName, err := catalog.ForStudent(s.catalogDir, result.StudentInfo.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to select curriculum: %w", err)
	}
	cat, err := catalog.LoadCurriculum(s.catalogDir, curriculumName)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	validator := validation.New(cat, s.policy, s.grades, logger)
	results := validator.ValidateTranscript(result.Semesters)

	var progress *curriculum.Progress
	if tpl, err := curriculum.LoadTemplate(s.catalogDir, curriculumName); err == nil {
		progress = curriculum.NewAnalyzer(tpl, cat, s.grades).Analyze(result.Semesters)
	} else {
		logger.Debug("no curriculum template", slog.String("curriculum", curriculumName), slog.Any("error", err))
	}

	analysis := &Analysis{
		ID:             id,
		StudentInfo:    result.StudentInfo,
		Semesters:      result.Semesters,
		Results:        results,
		Unidentified:   cat.Unidentified(result.Semesters),
		Progress:       progress,
		Completion:     report.Completion(result.Semesters, s.grades),
		CurriculumName: curriculumName,
		Stats: ExtractionStats{
			TotalLines:     result.TotalLines,
			CoursesParsed:  result.CoursesParsed,
			SkippedLines:   result.SkippedLines,
			DroppedCourses: result.DroppedCourses,
		},
		CreatedAt: time.Now(),
		cat:       cat,
	}
	s.cache.Set(id, analysis)

	s.metrics.TranscriptsProcessed.Inc()
	s.metrics.LinesSkipped.Add(float64(result.SkippedLines))
	s.metrics.CoursesExtracted.Add(float64(result.CoursesParsed))
	s.metrics.InvalidRegistrations.Add(float64(analysis.InvalidCount()))
	for _, r := range results {
		if r.IsWarning() {
			s.metrics.CreditLimitWarnings.Inc()
		}
	}

	logger.Info("transcript analyzed",
		slog.String("curriculum", curriculumName),
		slog.Int("invalid", analysis.InvalidCount()),
		slog.Int("unidentified", len(analysis.Unidentified)),
	)
	return analysis, nil
}

// Get returns a cached analysis.
func (s *AnalysisService) Get(id uuid.UUID) (*Analysis, error) {
	analysis, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	return analysis, nil
}

// Invalidate drops a cached analysis, e.g. when its upload is replaced.
func (s *AnalysisService) Invalidate(id uuid.UUID) {
	s.cache.Invalidate(id)
}

// Report renders one download format for a cached analysis and archives a
// copy alongside the original upload.
func (s *AnalysisService) Report(ctx context.Context, id uuid.UUID, format Format) ([]byte, string, string, error) {
	analysis, err := s.Get(id)
	if err != nil {
		return nil, "", "", err
	}

	data := &report.Data{
		StudentInfo:    analysis.StudentInfo,
		Semesters:      analysis.Semesters,
		Results:        analysis.Results,
		Catalog:        analysis.cat,
		Grades:         s.grades,
		Progress:       analysis.Progress,
		CurriculumName: analysis.CurriculumName,
		GeneratedAt:    time.Now(),
	}

	var (
		out         []byte
		filename    string
		contentType string
	)
	switch format {
	case FormatExcel:
		buf, err := report.Excel(data)
		if err != nil {
			return nil, "", "", err
		}
		out = buf.Bytes()
		filename = report.ExcelFilename(analysis.StudentInfo)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		buf, err := report.HTML(data)
		if err != nil {
			return nil, "", "", err
		}
		out = buf.Bytes()
		filename = report.HTMLFilename(analysis.StudentInfo)
		contentType = "text/html; charset=utf-8"
	case FormatText:
		out = []byte(report.Text(data))
		filename = report.TextFilename(analysis.StudentInfo)
		contentType = "text/plain; charset=utf-8"
	case FormatJSON:
		out, err = report.JSON(data, extractor.PatternVersion)
		if err != nil {
			return nil, "", "", err
		}
		filename = report.JSONFilename(analysis.StudentInfo)
		contentType = "application/json"
	case FormatCSV:
		out, err = report.CSV(data)
		if err != nil {
			return nil, "", "", err
		}
		filename = report.CSVFilename(analysis.StudentInfo)
		contentType = "text/csv; charset=utf-8"
	default:
		return nil, "", "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	s.metrics.ReportsGenerated.WithLabelValues(string(format)).Inc()

	if _, err := s.store.Upload(ctx, id, filename, contentType, bytes.NewReader(out)); err != nil {
		s.logger.Warn("failed to archive report", slog.String("format", string(format)), slog.Any("error", err))
	}
	return out, filename, contentType, nil
}
