package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportFile is a rendered report ready to be served as an attachment.
type ExportFile struct {
	Data        []byte
	ContentType string
	FileName    string
}

var detailHeader = []string{"Doctor", "Specialty", "Location", "Profile views", "Phone", "Email", "Website", "Total"}

// reportTable lays out the report as rows shared by both formats: period header,
// global totals, then the per-doctor table.
func reportTable(sum *ReportSummary) (head, detail [][]string) {
	head = [][]string{
		{"Report", sum.Period.Name},
		{"From", sum.Period.Start.Format(dateLayout)},
		{"To", sum.Period.End.Format(dateLayout)},
		{},
		{"Interaction", "Count"},
		{"Profile views", strconv.Itoa(sum.Totals.Profile)},
		{"Phone", strconv.Itoa(sum.Totals.Phone)},
		{"Email", strconv.Itoa(sum.Totals.Email)},
		{"Website", strconv.Itoa(sum.Totals.Website)},
		{"Total", strconv.Itoa(sum.Total)},
	}
	detail = [][]string{detailHeader}
	for _, r := range sum.Doctors {
		detail = append(detail, []string{
			r.Name, r.Specialty, r.Location,
			strconv.Itoa(r.Profile), strconv.Itoa(r.Phone), strconv.Itoa(r.Email), strconv.Itoa(r.Website), strconv.Itoa(r.Total),
		})
	}
	return head, detail
}

func ExportSummary(sum *ReportSummary, format string) (*ExportFile, error) {
	name := fmt.Sprintf("doctor-report-%s-%s", sum.Period.Name, sum.Period.End.Format(dateLayout))
	switch format {
	case FormatCSV, "":
		data, err := exportCSV(sum)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Data: data, ContentType: contentTypeCSV, FileName: name + ".csv"}, nil
	case FormatXLSX:
		data, err := exportXLSX(sum)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Data: data, ContentType: contentTypeXLSX, FileName: name + ".xlsx"}, nil
	}
	return nil, &utils.ValidationError{Field: "format", Message: "format must be csv or xlsx"}
}

func exportCSV(sum *ReportSummary) ([]byte, error) {
	head, detail := reportTable(sum)
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(head); err != nil {
		return nil, err
	}
	if err := w.Write([]string{}); err != nil {
		return nil, err
	}
	if err := w.WriteAll(detail); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheetRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			if n, err := strconv.Atoi(v); err == nil && j > 0 {
				values[j] = n
			} else {
				values[j] = v
			}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func exportXLSX(sum *ReportSummary) ([]byte, error) {
	head, detail := reportTable(sum)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, err
	}
	if err := writeSheetRows(f, "Summary", head); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet("Doctors"); err != nil {
		return nil, err
	}
	if err := writeSheetRows(f, "Doctors", detail); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
