package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"

	"github.com/octobees/contact-enricher/internal/entity"
)

// Property names written by the store.
const (
	PropContactName      = "Contact Name"
	PropEmail            = "Email"
	PropPhone            = "Phone"
	PropCompany          = "Company"
	PropTitle            = "Title"
	PropLinkedIn         = "LinkedIn"
	PropCity             = "City"
	PropState            = "State"
	PropCountry          = "Country"
	PropSeniority        = "Seniority"
	PropIndustry         = "Industry"
	PropOutreachContext  = "Outreach Context"
	PropCompanySize      = "Company Size"
	PropCompanyWebsite   = "Company Website"
	PropNotes            = "Notes"
	PropOutreachStatus   = "Outreach Status"
	PropRelationshipType = "Relationship Type"
	PropTier             = "Tier"
	PropPriority         = "Priority"
)

const (
	typeTitle       = notionapi.PropertyConfigType("title")
	typeRichText    = notionapi.PropertyConfigType("rich_text")
	typeEmail       = notionapi.PropertyConfigType("email")
	typePhoneNumber = notionapi.PropertyConfigType("phone_number")
	typeURL         = notionapi.PropertyConfigType("url")
	typeSelect      = notionapi.PropertyConfigType("select")
	typeNumber      = notionapi.PropertyConfigType("number")
	typeStatus      = notionapi.PropertyConfigType("status")
)

// OptionSpec is one select option with its display colour.
type OptionSpec struct {
	Name  string
	Color string
}

// PropertySpec declares a database property the store knows how to write.
type PropertySpec struct {
	Name    string
	Type    notionapi.PropertyConfigType
	Options []OptionSpec
}

// RequiredProperties must exist with the declared type before contacts can be written.
var RequiredProperties = []PropertySpec{
	{Name: PropContactName, Type: typeTitle},
	{Name: PropEmail, Type: typeEmail},
	{Name: PropPhone, Type: typePhoneNumber},
	{Name: PropCompany, Type: typeRichText},
	{Name: PropTitle, Type: typeRichText},
	{Name: PropLinkedIn, Type: typeURL},
	{Name: PropCity, Type: typeRichText},
	{Name: PropState, Type: typeRichText},
	{Name: PropCountry, Type: typeRichText},
}

// OptionalProperties are written only when the database declares them.
var OptionalProperties = []PropertySpec{
	{Name: PropSeniority, Type: typeSelect, Options: []OptionSpec{
		{"C-Suite", "red"}, {"VP", "orange"}, {"Director", "yellow"},
		{"Manager", "green"}, {"Individual Contributor", "blue"},
	}},
	{Name: PropIndustry, Type: typeSelect, Options: []OptionSpec{
		{string(entity.IndustryHealthcareTech), "blue"}, {string(entity.IndustryPharma), "purple"},
		{string(entity.IndustryInsurance), "green"}, {string(entity.IndustryHospitals), "red"},
		{string(entity.IndustryBiotech), "pink"}, {string(entity.IndustryMedicalDevices), "orange"},
		{string(entity.IndustryDigitalHealth), "blue"}, {string(entity.IndustryTelehealth), "green"},
		{string(entity.IndustryHealthServices), "yellow"},
	}},
	{Name: PropOutreachContext, Type: typeRichText},
	{Name: PropCompanySize, Type: typeRichText},
	{Name: PropCompanyWebsite, Type: typeURL},
	{Name: PropNotes, Type: typeRichText},
	{Name: PropRelationshipType, Type: typeSelect, Options: []OptionSpec{
		{RelationshipProspect, "green"}, {RelationshipIndustryExpert, "gray"},
	}},
	{Name: PropTier, Type: typeSelect, Options: []OptionSpec{
		{entity.Tier1.Label(), "red"}, {entity.Tier2.Label(), "orange"},
		{entity.Tier3.Label(), "yellow"}, {entity.Tier4.Label(), "gray"},
	}},
	{Name: PropPriority, Type: typeNumber},
	// Status properties cannot be created through the API; setup reports them instead.
	{Name: PropOutreachStatus, Type: typeStatus},
}

func (p PropertySpec) creatable() bool {
	return p.Type != typeStatus
}

func (p PropertySpec) config() notionapi.PropertyConfig {
	switch p.Type {
	case typeTitle:
		return notionapi.TitlePropertyConfig{Type: p.Type}
	case typeEmail:
		return notionapi.EmailPropertyConfig{Type: p.Type}
	case typePhoneNumber:
		return notionapi.PhoneNumberPropertyConfig{Type: p.Type}
	case typeURL:
		return notionapi.URLPropertyConfig{Type: p.Type}
	case typeNumber:
		return notionapi.NumberPropertyConfig{Type: p.Type, Number: notionapi.NumberFormat{Format: notionapi.FormatNumber}}
	case typeSelect:
		options := make([]notionapi.Option, 0, len(p.Options))
		for _, o := range p.Options {
			options = append(options, notionapi.Option{Name: o.Name, Color: notionapi.Color(o.Color)})
		}
		return notionapi.SelectPropertyConfig{Type: p.Type, Select: notionapi.Select{Options: options}}
	default:
		return notionapi.RichTextPropertyConfig{Type: typeRichText}
	}
}

// TypeMismatch is a required property declared with the wrong type.
type TypeMismatch struct {
	Name     string `json:"name"`
	Expected string `json:"expected"`
	Found    string `json:"found"`
}

// SchemaReport describes how the database schema compares with the store's expectations.
type SchemaReport struct {
	Title           string            `json:"title"`
	Present         map[string]string `json:"present"`
	Missing         []string          `json:"missing"`
	MissingOptional []string          `json:"missing_optional"`
	Mismatches      []TypeMismatch    `json:"mismatches"`
}

// Valid reports whether every required property exists with the right type.
func (r SchemaReport) Valid() bool {
	return len(r.Missing) == 0 && len(r.Mismatches) == 0
}

// Message summarises the report in one line.
func (r SchemaReport) Message() string {
	if r.Valid() {
		return "Schema valid - all required properties present"
	}
	var issues []string
	if len(r.Missing) > 0 {
		issues = append(issues, "Missing properties: "+strings.Join(r.Missing, ", "))
	}
	if len(r.Mismatches) > 0 {
		parts := make([]string, 0, len(r.Mismatches))
		for _, m := range r.Mismatches {
			parts = append(parts, fmt.Sprintf("%s (expected %s, found %s)", m.Name, m.Expected, m.Found))
		}
		issues = append(issues, "Type mismatches: "+strings.Join(parts, ", "))
	}
	return strings.Join(issues, "; ")
}

// SetupResult lists what SetupSchema changed.
type SetupResult struct {
	Added   []string `json:"added"`
	Failed  []string `json:"failed"`
	Manual  []string `json:"manual"`
	Message string   `json:"message"`
}

// Complete reports whether every required property could be added.
func (r SetupResult) Complete() bool {
	return len(r.Failed) == 0
}

// ValidateSchema compares the database schema with the required and optional property sets.
func (s *Store) ValidateSchema(ctx context.Context) (SchemaReport, error) {
	db, err := s.databases.Get(ctx, notionapi.DatabaseID(s.databaseID))
	if err != nil {
		return SchemaReport{}, goerr.Wrap(err, "failed to read database schema", goerr.V("database_id", s.databaseID))
	}
	present := schemaOf(db)
	s.storeSchema(present)

	report := SchemaReport{Title: databaseTitle(db), Present: present}
	for _, prop := range RequiredProperties {
		found, ok := present[prop.Name]
		switch {
		case !ok:
			report.Missing = append(report.Missing, prop.Name)
		case found != string(prop.Type):
			report.Mismatches = append(report.Mismatches, TypeMismatch{Name: prop.Name, Expected: string(prop.Type), Found: found})
		}
	}
	for _, prop := range OptionalProperties {
		if _, ok := present[prop.Name]; !ok {
			report.MissingOptional = append(report.MissingOptional, prop.Name)
		}
	}
	return report, nil
}

// SetupSchema adds missing properties one at a time. Existing properties are never renamed,
// retyped or removed. Failures on optional properties are ignored.
func (s *Store) SetupSchema(ctx context.Context, includeOptional bool) (SetupResult, error) {
	db, err := s.databases.Get(ctx, notionapi.DatabaseID(s.databaseID))
	if err != nil {
		return SetupResult{}, goerr.Wrap(err, "failed to read database schema", goerr.V("database_id", s.databaseID))
	}
	present := schemaOf(db)

	var result SetupResult
	add := func(prop PropertySpec) error {
		_, err := s.databases.Update(ctx, notionapi.DatabaseID(s.databaseID), &notionapi.DatabaseUpdateRequest{
			Properties: notionapi.PropertyConfigs{prop.Name: prop.config()},
		})
		if err != nil {
			return err
		}
		present[prop.Name] = string(prop.Type)
		result.Added = append(result.Added, prop.Name)
		return nil
	}

	for _, prop := range RequiredProperties {
		if _, ok := present[prop.Name]; ok {
			continue
		}
		if err := add(prop); err != nil {
			result.Failed = append(result.Failed, fmt.Sprintf("Failed to add %s: %v", prop.Name, err))
		}
	}
	if includeOptional {
		for _, prop := range OptionalProperties {
			if _, ok := present[prop.Name]; ok {
				continue
			}
			if !prop.creatable() {
				result.Manual = append(result.Manual, prop.Name)
				continue
			}
			if err := add(prop); err != nil {
				s.logger.Warn("optional property not added", "property", prop.Name, "error", err)
			}
		}
	}
	s.storeSchema(present)

	switch {
	case len(result.Failed) > 0:
		result.Message = "Setup incomplete: " + strings.Join(result.Failed, "; ")
	case len(result.Added) > 0:
		result.Message = fmt.Sprintf("Schema setup complete! Added %d properties", len(result.Added))
	default:
		result.Message = "Schema already complete - no changes needed"
	}
	return result, nil
}

func schemaOf(db *notionapi.Database) map[string]string {
	present := make(map[string]string, len(db.Properties))
	for name, cfg := range db.Properties {
		if cfg == nil {
			continue
		}
		present[name] = string(cfg.GetType())
	}
	return present
}

func databaseTitle(db *notionapi.Database) string {
	var b strings.Builder
	for _, rt := range db.Title {
		b.WriteString(rt.PlainText)
	}
	if b.Len() == 0 {
		return "Untitled"
	}
	return b.String()
}
