package batch

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestParseContacts(t *testing.T) {
	input := "Name, Company ,LinkedIn,email,notes\n" +
		"Karen Lynch,CVS Health,,,x\n" +
		" , , , ,only notes\n" +
		",,linkedin.com/in/jane,,\n" +
		"Bob,,,bob@example.com\n"

	rows, err := ParseContacts(strings.NewReader(input))
	gt.NoError(t, err).Required()
	gt.Array(t, rows).Length(3)

	gt.Value(t, rows[0].Row).Equal(1)
	gt.Value(t, rows[0].PersonName).Equal("Karen Lynch")
	gt.Value(t, rows[0].CompanyName).Equal("CVS Health")
	gt.Value(t, rows[1].Row).Equal(3)
	gt.Value(t, rows[1].LinkedInURL).Equal("linkedin.com/in/jane")
	gt.Value(t, rows[2].Email).Equal("bob@example.com")
}

func TestParseContacts_Invalid(t *testing.T) {
	_, err := ParseContacts(strings.NewReader(""))
	var valErr CSVValidationError
	gt.Bool(t, errors.As(err, &valErr)).True()
	gt.Value(t, valErr.Message).Equal("csv file is empty")

	_, err = ParseContacts(strings.NewReader("first,last\nA,B\n"))
	gt.Bool(t, errors.As(err, &valErr)).True()
	gt.String(t, valErr.Message).Contains("no recognised columns")
}

func TestParseCompanies(t *testing.T) {
	names, err := ParseCompanies(strings.NewReader("\ufeffcompany_name\nCVS Health\n\n  Humana \n"))
	gt.NoError(t, err).Required()
	gt.Value(t, names).Equal([]string{"CVS Health", "Humana"})

	_, err = ParseCompanies(strings.NewReader("email\na@b.co\n"))
	var valErr CSVValidationError
	gt.Bool(t, errors.As(err, &valErr)).True()
}
