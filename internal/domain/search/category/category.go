package category

import "strings"

// Category is the content category a search runs against.
type Category string

// Category constants. Values match the document type stored in the index.
const (
	Book      Category = "book"
	Reference Category = "man_doc"
)

// SectionType is the content-type identifier reserved for book sections.
const SectionType = "section"

// Resolve maps a content-type identifier to its category.
// Only SectionType resolves to Book; every other identifier falls into Reference.
func Resolve(typeID string) Category {
	if typeID == SectionType {
		return Book
	}
	return Reference
}

// Parse accepts the labels used by the HTTP API and CLI
// (book, section, reference, man_doc, docs; case-insensitive).
// Unknown labels report false.
func Parse(label string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "book", SectionType:
		return Resolve(SectionType), true
	case "reference", "man_doc", "docs":
		return Resolve(""), true
	default:
		return "", false
	}
}

// All returns both categories in display order.
func All() []Category {
	return []Category{Book, Reference}
}

// Label returns the human-readable category name used in result envelopes.
func (c Category) Label() string {
	if c == Book {
		return "Book"
	}
	return "Reference"
}

// TitleField is the field prefix clauses run against.
func (c Category) TitleField() string {
	if c == Book {
		return "section"
	}
	return "name"
}

// ContentField is the field term clauses and highlighting run against.
func (c Category) ContentField() string {
	if c == Book {
		return "html"
	}
	return "text"
}

// URL builds the canonical page URL for a hit.
// Book pages are addressed by slug; reference pages by display name.
func (c Category) URL(slug, name string) string {
	if c == Book {
		return "/book/" + slug
	}
	return "/docs/" + name
}

// TypeID returns a content-type identifier that resolves back to c.
func (c Category) TypeID() string {
	if c == Book {
		return SectionType
	}
	return string(Reference)
}
