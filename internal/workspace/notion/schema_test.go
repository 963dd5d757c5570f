package notion

import (
	"context"
	"errors"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/gt"
)

func TestValidateSchema(t *testing.T) {
	props := requiredSchema()
	delete(props, PropPhone)
	props[PropLinkedIn] = notionapi.RichTextPropertyConfig{Type: typeRichText}
	store := newStore(&fakePages{}, &fakeDatabase{properties: props}, "db")

	report, err := store.ValidateSchema(context.Background())
	gt.NoError(t, err).Required()
	gt.Bool(t, report.Valid()).False()
	gt.Value(t, report.Title).Equal("Contacts")
	gt.Array(t, report.Missing).Has(PropPhone)
	gt.Array(t, report.Mismatches).Length(1)
	gt.Value(t, report.Message()).Equal("Missing properties: Phone; Type mismatches: LinkedIn (expected url, found rich_text)")
	gt.Array(t, report.MissingOptional).Length(len(OptionalProperties))
}

func TestValidateSchema_Valid(t *testing.T) {
	store := newStore(&fakePages{}, &fakeDatabase{properties: fullSchema()}, "db")
	report, err := store.ValidateSchema(context.Background())
	gt.NoError(t, err).Required()
	gt.Bool(t, report.Valid()).True()
	gt.Value(t, report.Message()).Equal("Schema valid - all required properties present")
}

func TestValidateSchema_Unreadable(t *testing.T) {
	store := newStore(&fakePages{}, &fakeDatabase{getErr: errors.New("object_not_found")}, "db")
	_, err := store.ValidateSchema(context.Background())
	gt.Value(t, err).NotNil()
}

func TestSetupSchema_AddsMissing(t *testing.T) {
	props := requiredSchema()
	delete(props, PropCountry)
	db := &fakeDatabase{
		properties: props,
		updateErr:  map[string]error{PropPriority: errors.New("rejected")},
	}
	store := newStore(&fakePages{}, db, "db")

	result, err := store.SetupSchema(context.Background(), true)
	gt.NoError(t, err).Required()
	gt.Bool(t, result.Complete()).True()
	gt.Array(t, result.Added).Has(PropCountry)
	gt.Array(t, result.Added).Has(PropNotes)
	gt.Array(t, result.Manual).Has(PropOutreachStatus)
	gt.Number(t, len(result.Added)).Equal(len(OptionalProperties) - 1)
	gt.Value(t, result.Message).Equal("Schema setup complete! Added 9 properties")

	// Later writes see the new properties without another read.
	filtered := store.filterOptional(context.Background(), notionapi.Properties{PropNotes: textValue("x")})
	_, ok := filtered[PropNotes]
	gt.Bool(t, ok).True()
}

func TestSetupSchema_RequiredFailure(t *testing.T) {
	props := requiredSchema()
	delete(props, PropEmail)
	db := &fakeDatabase{properties: props, updateErr: map[string]error{PropEmail: errors.New("denied")}}
	store := newStore(&fakePages{}, db, "db")

	result, err := store.SetupSchema(context.Background(), false)
	gt.NoError(t, err).Required()
	gt.Bool(t, result.Complete()).False()
	gt.Value(t, result.Message).Equal("Setup incomplete: Failed to add Email: denied")
}

func TestSetupSchema_NothingToDo(t *testing.T) {
	store := newStore(&fakePages{}, &fakeDatabase{properties: fullSchema()}, "db")
	result, err := store.SetupSchema(context.Background(), true)
	gt.NoError(t, err).Required()
	gt.Array(t, result.Added).Length(0)
	gt.Value(t, result.Message).Equal("Schema already complete - no changes needed")
}
