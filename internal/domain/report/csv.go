package report

import (
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/nuttakit-v/transcript-audit/internal/domain/transcript"
)

// CSV renders the validation results as a flat spreadsheet-friendly table,
// warning rows included.
func CSV(data *Data) ([]byte, error) {
	out, err := gocsv.MarshalBytes(&data.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}
	return out, nil
}

// CSVFilename names the CSV download for one student.
func CSVFilename(info transcript.StudentInfo) string {
	return fmt.Sprintf("validation_results_%s.csv", info.ID)
}
