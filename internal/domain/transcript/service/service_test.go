package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuttakit-v/transcript-audit/internal/domain/session"
	"github.com/nuttakit-v/transcript-audit/pkg/config"
	"github.com/nuttakit-v/transcript-audit/pkg/metrics"
	"github.com/nuttakit-v/transcript-audit/pkg/storage"
)

// rawTranscript is a plain-text transcript export: one passed prerequisite
// chain, one failed course, and a course missing from the catalog.
const rawTranscript = `Student No 6510501234
Name Somchai Jaidee Field of Study Industrial Engineering
First Semester 2022
01206111 Engineering Mechanics I A 3
88888888 Mystery Topics B 3
sem. G.P.A. = 3.50 cum. G.P.A. = 3.50
Second Semester 2022
01206211 Engineering Statistics F 3
sem. G.P.A. = 0.00 cum. G.P.A. = 2.33`

func writeCatalogFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	catalog := `{
		"industrial_engineering_courses": [
			{"code": "01206111", "name": "Engineering Mechanics I", "credits": "3(3-0-6)", "prerequisites": []},
			{"code": "01206211", "name": "Engineering Statistics", "credits": 3, "prerequisites": ["01206111"]}
		]
	}`
	genEd := `{
		"gen_ed_courses": {
			"wellness": [
				{"code": "01175113", "name": "Badminton for Health", "credits": 1, "prerequisites": []}
			]
		}
	}`
	template := `{
		"core_curriculum": {
			"year_1": {
				"first_semester": ["01206111"],
				"second_semester": ["01206211"]
			}
		},
		"elective_requirements": {"free_electives": 6}
	}`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "B-IE-2565.json"), []byte(catalog), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gen_ed_courses.json"), []byte(genEd), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "B-IE-2565"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B-IE-2565", "template.json"), []byte(template), 0644))
	return dir
}

func newTestService(t *testing.T) (*AnalysisService, storage.Storage) {
	t.Helper()

	cfg := &config.Config{
		Catalog: config.CatalogConfig{DataDir: writeCatalogFixture(t)},
		Policy: config.PolicyConfig{
			MaxCreditsRegular: 22,
			MaxCreditsSummer:  9,
			MaxCreditsCourse:  9,
			CourseCodeLength:  8,
			PassingGrades:     []string{"A", "B+", "B", "C+", "C", "D+", "D", "P"},
			InProgressGrades:  []string{"W", "N", ""},
			AllowedGrades:     []string{"A", "B+", "B", "C+", "C", "D+", "D", "F", "W", "N", "P", "I", "S", "U"},
		},
	}

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	cache := session.New[*Analysis](time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAnalysisService(store, cache, metrics.New(), cfg, logger), store
}

func TestAnalysisService_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("raw text upload runs the full pipeline", func(t *testing.T) {
		svc, store := newTestService(t)

		analysis, err := svc.Process(ctx, "transcript.txt", []byte(rawTranscript))
		require.NoError(t, err)

		assert.Equal(t, "6510501234", analysis.StudentInfo.ID)
		assert.Equal(t, "B-IE-2565", analysis.CurriculumName)
		assert.Len(t, analysis.Semesters, 2)
		assert.Equal(t, 3, analysis.Stats.CoursesParsed)

		// Semesters under the credit ceiling: verdicts only, no warning rows.
		assert.Len(t, analysis.Results, 3)
		// The F does not make the registration invalid; the prerequisite was
		// passed before the second semester.
		assert.Zero(t, analysis.InvalidCount())

		require.Len(t, analysis.Unidentified, 1)
		assert.Equal(t, "88888888", analysis.Unidentified[0].Code)

		require.NotNil(t, analysis.Progress)
		assert.Contains(t, analysis.Progress.Completed, "01206111")
		assert.Contains(t, analysis.Progress.Failed, "01206211")

		// The original upload is archived under the transcript ID.
		files, err := store.List(ctx, analysis.ID)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "text/plain", files[0].ContentType)
	})

	t.Run("empty raw text is rejected", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Process(ctx, "empty.txt", []byte("   \n "))
		assert.Error(t, err)
	})

	t.Run("get and invalidate", func(t *testing.T) {
		svc, _ := newTestService(t)

		analysis, err := svc.Process(ctx, "transcript.txt", []byte(rawTranscript))
		require.NoError(t, err)

		got, err := svc.Get(analysis.ID)
		require.NoError(t, err)
		assert.Equal(t, analysis.ID, got.ID)

		svc.Invalidate(analysis.ID)
		_, err = svc.Get(analysis.ID)
		assert.ErrorIs(t, err, ErrAnalysisNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Get(uuid.New())
		assert.ErrorIs(t, err, ErrAnalysisNotFound)
	})
}

func TestAnalysisService_Report(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	analysis, err := svc.Process(ctx, "transcript.txt", []byte(rawTranscript))
	require.NoError(t, err)

	tests := []struct {
		format      Format
		contentType string
	}{
		{FormatExcel, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{FormatHTML, "text/html; charset=utf-8"},
		{FormatText, "text/plain; charset=utf-8"},
		{FormatJSON, "application/json"},
		{FormatCSV, "text/csv; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			out, filename, contentType, err := svc.Report(ctx, analysis.ID, tt.format)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
			assert.Contains(t, filename, "6510501234")
			assert.Equal(t, tt.contentType, contentType)
		})
	}

	t.Run("rendered reports are archived", func(t *testing.T) {
		files, err := store.List(ctx, analysis.ID)
		require.NoError(t, err)
		// The upload plus one copy per rendered format.
		assert.Len(t, files, 1+len(tests))
	})

	t.Run("unknown transcript", func(t *testing.T) {
		_, _, _, err := svc.Report(ctx, uuid.New(), FormatJSON)
		assert.ErrorIs(t, err, ErrAnalysisNotFound)
	})
}

func TestParseFormat(t *testing.T) {
	got, err := ParseFormat("excel")
	require.NoError(t, err)
	assert.Equal(t, FormatExcel, got)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = ParseFormat("")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
