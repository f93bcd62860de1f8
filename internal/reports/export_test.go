package reports

import (
	"encoding/json"
	"testing"
	"time"

	"lexmart/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *ReportResult {
	issued := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	return &ReportResult{
		Columns: []Column{
			{Name: "invoice_number", Type: FieldTypeText, Label: "Invoice Number"},
			{Name: "total_amount", Type: FieldTypeDecimal, Label: "Total Amount"},
			{Name: "issued_date", Type: FieldTypeDate, Label: "Issued Date"},
			{Name: "paid_date", Type: FieldTypeDate, Label: "Paid Date"},
		},
		Rows: []map[string]interface{}{
			{"invoice_number": "INV-2026-000001", "total_amount": 1180.0, "issued_date": issued, "paid_date": nil},
			{"invoice_number": "INV-2026-000002", "total_amount": 590.5, "issued_date": issued, "paid_date": issued},
		},
		TotalRows: 2,
	}
}

func TestExportCSV(t *testing.T) {
	file, err := Export(sampleResult(), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	assert.Regexp(t, `^report_\d{4}-\d{2}-\d{2}\.csv$`, file.Filename)

	want := "invoice_number,total_amount,issued_date,paid_date\n" +
		"INV-2026-000001,1180,2026-03-15T10:30:00Z,\n" +
		"INV-2026-000002,590.5,2026-03-15T10:30:00Z,2026-03-15T10:30:00Z\n"
	assert.Equal(t, want, string(file.Data))
}

func TestExportCSVEmptyResult(t *testing.T) {
	result := &ReportResult{
		Columns: []Column{{Name: "id", Type: FieldTypeUUID, Label: "Id"}},
		Rows:    []map[string]interface{}{},
	}

	file, err := Export(result, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "id\n", string(file.Data))
}

func TestExportJSON(t *testing.T) {
	file, err := Export(sampleResult(), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "application/json", file.ContentType)
	assert.Regexp(t, `^report_\d{4}-\d{2}-\d{2}\.json$`, file.Filename)

	var decoded ReportResult
	require.NoError(t, json.Unmarshal(file.Data, &decoded))
	assert.Equal(t, 2, decoded.TotalRows)
	assert.Len(t, decoded.Rows, 2)
	assert.Equal(t, "INV-2026-000001", decoded.Rows[0]["invoice_number"])
}

func TestExportUnsupportedFormat(t *testing.T) {
	_, err := Export(sampleResult(), "xlsx")
	require.Error(t, err)

	var domainErr *common.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeUnsupportedFormat, domainErr.Code)
}
