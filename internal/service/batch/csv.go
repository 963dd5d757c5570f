package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/octobees/contact-enricher/internal/entity"
)

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

const (
	colLinkedIn = "linkedin_url"
	colEmail    = "email"
	colPerson   = "person_name"
	colCompany  = "company_name"
)

var headerAliases = map[string]string{
	"linkedin_url": colLinkedIn,
	"linkedin":     colLinkedIn,
	"email":        colEmail,
	"person_name":  colPerson,
	"name":         colPerson,
	"company_name": colCompany,
	"company":      colCompany,
}

// ParseContacts reads contact rows. Any non-empty subset of the recognised columns is valid;
// rows with no identifier are dropped. Row numbers count data lines from 1.
func ParseContacts(r io.Reader) ([]entity.ContactRow, error) {
	reader, index, err := openCSV(r)
	if err != nil {
		return nil, err
	}

	var rows []entity.ContactRow
	rowNum := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++

		row := entity.ContactRow{
			Row:         rowNum,
			LinkedInURL: field(record, index, colLinkedIn),
			Email:       field(record, index, colEmail),
			PersonName:  field(record, index, colPerson),
			CompanyName: field(record, index, colCompany),
		}
		if row.Empty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseCompanies reads the company_name (or company) column, skipping blanks.
func ParseCompanies(r io.Reader) ([]string, error) {
	reader, index, err := openCSV(r)
	if err != nil {
		return nil, err
	}
	if _, ok := index[colCompany]; !ok {
		return nil, CSVValidationError{Message: "missing required columns: company_name"}
	}

	var names []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if name := field(record, index, colCompany); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func openCSV(r io.Reader) (*csv.Reader, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, CSVValidationError{Message: "csv file is empty"}
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	index, err := buildHeaderIndex(header)
	if err != nil {
		return nil, nil, err
	}
	return reader, index, nil
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		canonical, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, seen := index[canonical]; !seen {
			index[canonical] = i
		}
	}
	if len(index) == 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("no recognised columns; expected any of: %s", strings.Join([]string{colLinkedIn, colEmail, colPerson, colCompany}, ", "))}
	}
	return index, nil
}

func field(record []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
