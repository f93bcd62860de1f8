package reports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ExportFile is a rendered report ready to stream to the caller or push to
// object storage.
type ExportFile struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Export serializes a report result as CSV or JSON. Any other format fails
// with an UNSUPPORTED_FORMAT error.
func Export(result *ReportResult, format string) (*ExportFile, error) {
	date := time.Now().UTC().Format("2006-01-02")

	switch format {
	case FormatCSV:
		data, err := renderCSV(result)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Data:        data,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("report_%s.csv", date),
		}, nil
	case FormatJSON:
		data, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Data:        data,
			ContentType: "application/json",
			Filename:    fmt.Sprintf("report_%s.json", date),
		}, nil
	default:
		return nil, errUnsupportedFormat(format)
	}
}

func renderCSV(result *ReportResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	record := make([]string, len(result.Columns))
	for _, row := range result.Rows {
		for i, col := range result.Columns {
			record[i] = formatCSVValue(row[col.Name])
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCSVValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
