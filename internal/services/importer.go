package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
	"github.com/xuri/excelize/v2"
)

// Accepted header spellings per column.
var (
	nameHeaders      = []string{"Name", "Nom", "Full Name", "Doctor"}
	specialtyHeaders = []string{"Specialty", "Speciality", "Spécialité", "Specialite"}
	locationHeaders  = []string{"Location", "City", "Ville", "Address"}
	languageHeaders  = []string{"Languages", "Language", "Langues"}
	phoneHeaders     = []string{"Phone", "Telephone", "Téléphone", "Tel"}
	emailHeaders     = []string{"Email", "E-mail", "Mail"}
	websiteHeaders   = []string{"Website", "Site", "Site Web", "URL"}
	imageHeaders     = []string{"Image", "Photo", "Image URL"}
)

// ReadSheet returns the raw rows of a .csv or .xlsx upload (first sheet).
func ReadSheet(r io.Reader, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		return rows, nil
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		return f.GetRows(sheets[0])
	}
	return nil, &utils.ValidationError{Field: "file", Message: "file must be .csv or .xlsx"}
}

func findColumnIndex(header []string, names []string) int {
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, n := range names {
			if strings.EqualFold(h, n) {
				return i
			}
		}
	}
	return -1
}

func splitLanguages(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == '|' })
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseDoctorRows maps sheet rows to doctor inputs. The first row is the header; blank
// rows are dropped. Validation happens in DoctorService.Import.
func ParseDoctorRows(rows [][]string) ([]DoctorInput, error) {
	if len(rows) == 0 {
		return nil, &utils.ValidationError{Field: "file", Message: "file is empty"}
	}
	header := rows[0]
	idx := map[string]int{
		"name":      findColumnIndex(header, nameHeaders),
		"specialty": findColumnIndex(header, specialtyHeaders),
		"location":  findColumnIndex(header, locationHeaders),
		"languages": findColumnIndex(header, languageHeaders),
		"phone":     findColumnIndex(header, phoneHeaders),
		"email":     findColumnIndex(header, emailHeaders),
		"website":   findColumnIndex(header, websiteHeaders),
		"image":     findColumnIndex(header, imageHeaders),
	}
	if idx["name"] == -1 {
		return nil, &utils.ValidationError{Field: "file", Message: "Name column not found"}
	}

	inputs := make([]DoctorInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		cell := func(col string) string {
			i := idx[col]
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		inputs = append(inputs, DoctorInput{
			Name:      cell("name"),
			Specialty: cell("specialty"),
			Location:  cell("location"),
			Languages: splitLanguages(cell("languages")),
			Phone:     cell("phone"),
			Email:     cell("email"),
			Website:   cell("website"),
			Image:     cell("image"),
		})
	}
	return inputs, nil
}
