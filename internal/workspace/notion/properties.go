package notion

import (
	"strings"
	"unicode/utf8"

	"github.com/jomei/notionapi"
)

// Notion rejects text objects longer than this many characters.
const maxTextLength = 2000

const (
	RelationshipProspect       = "Prospect"
	RelationshipIndustryExpert = "Industry Expert"
	defaultOutreachStatus      = "Not started"
)

func richText(s string) []notionapi.RichText {
	var out []notionapi.RichText
	for _, chunk := range chunkText(s, maxTextLength) {
		out = append(out, notionapi.RichText{
			Type:      notionapi.ObjectTypeText,
			Text:      &notionapi.Text{Content: chunk},
			PlainText: chunk,
		})
	}
	return out
}

func chunkText(s string, size int) []string {
	if s == "" {
		return nil
	}
	var chunks []string
	for utf8.RuneCountInString(s) > size {
		cut := 0
		for i := 0; i < size; i++ {
			_, w := utf8.DecodeRuneInString(s[cut:])
			cut += w
		}
		chunks = append(chunks, s[:cut])
		s = s[cut:]
	}
	return append(chunks, s)
}

func titleValue(s string) notionapi.TitleProperty {
	return notionapi.TitleProperty{Title: richText(s)}
}

func textValue(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{RichText: richText(s)}
}

func selectValue(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{Select: notionapi.Option{Name: name}}
}

func statusValue(name string) notionapi.StatusProperty {
	return notionapi.StatusProperty{Status: notionapi.Status{Name: name}}
}

// plainText extracts the text of a title or rich text property from a decoded page.
func plainText(p notionapi.Property) string {
	var parts []notionapi.RichText
	switch v := p.(type) {
	case *notionapi.TitleProperty:
		parts = v.Title
	case notionapi.TitleProperty:
		parts = v.Title
	case *notionapi.RichTextProperty:
		parts = v.RichText
	case notionapi.RichTextProperty:
		parts = v.RichText
	default:
		return ""
	}
	var b strings.Builder
	for _, rt := range parts {
		if rt.PlainText != "" {
			b.WriteString(rt.PlainText)
		} else if rt.Text != nil {
			b.WriteString(rt.Text.Content)
		}
	}
	return b.String()
}
