package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
	"github.com/nuttakit-v/transcript-audit/internal/domain/validation"
)

// ExportMetadata describes the run that produced an export.
type ExportMetadata struct {
	CourseCatalog      string    `json:"course_catalog"`
	GeneratedTimestamp time.Time `json:"generated_timestamp"`
	PatternVersion     int       `json:"pattern_version"`
}

// Export is the raw-data JSON document offered for download: everything the
// pipeline extracted and decided, in one self-contained file.
type Export struct {
	StudentInfo       transcript.StudentInfo `json:"student_info"`
	Semesters         []transcript.Semester  `json:"semesters"`
	ValidationResults []validation.Result    `json:"validation_results"`
	UnidentifiedCount int                    `json:"unidentified_count"`
	Metadata          ExportMetadata         `json:"metadata"`
}

// JSON renders the export document, indented for human inspection.
func JSON(data *Data, patternVersion int) ([]byte, error) {
	export := Export{
		StudentInfo:       data.StudentInfo,
		Semesters:         data.Semesters,
		ValidationResults: data.Results,
		UnidentifiedCount: data.unidentifiedCount(),
		Metadata: ExportMetadata{
			CourseCatalog:      data.CurriculumName,
			GeneratedTimestamp: data.GeneratedAt,
			PatternVersion:     patternVersion,
		},
	}

	out, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return out, nil
}

// JSONFilename names the JSON export download for one student.
func JSONFilename(info transcript.StudentInfo) string {
	return fmt.Sprintf("transcript_data_%s.json", info.ID)
}
