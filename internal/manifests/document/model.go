package document

import "strings"

// ValueKind enumerates the closed set of value variants a document can hold.
type ValueKind int

// Supported value variants.
const (
	ValueKindString ValueKind = iota
	ValueKindScalar
	ValueKindArray
	ValueKindInlineTable
)

// String returns a human-readable name for the value kind.
func (kind ValueKind) String() string {
	switch kind {
	case ValueKindString:
		return "string"
	case ValueKindScalar:
		return "scalar"
	case ValueKindArray:
		return "array"
	case ValueKindInlineTable:
		return "inline-table"
	default:
		return "unknown"
	}
}

// Value is a node holding a TOML value together with its original text.
// The set of implementations is closed to this package.
type Value interface {
	Kind() ValueKind
	render(builder *strings.Builder)
}

// StringValue is a basic, literal, or multi-line string.
type StringValue struct {
	raw  string
	text string
}

// NewStringValue creates a double-quoted basic string holding text.
func NewStringValue(text string) *StringValue {
	return &StringValue{raw: quoteBasicString(text), text: text}
}

// Kind reports ValueKindString.
func (value *StringValue) Kind() ValueKind { return ValueKindString }

// Text returns the decoded string contents.
func (value *StringValue) Text() string { return value.text }

// Raw returns the string exactly as written, quotes included.
func (value *StringValue) Raw() string { return value.raw }

func (value *StringValue) render(builder *strings.Builder) {
	builder.WriteString(value.raw)
}

// ScalarValue holds integers, floats, booleans and date-times verbatim.
type ScalarValue struct {
	raw string
}

// Kind reports ValueKindScalar.
func (value *ScalarValue) Kind() ValueKind { return ValueKindScalar }

// Raw returns the scalar text.
func (value *ScalarValue) Raw() string { return value.raw }

func (value *ScalarValue) render(builder *strings.Builder) {
	builder.WriteString(value.raw)
}

// ArrayItem is one element of an array with the trivia around it.
type ArrayItem struct {
	prefix string
	value  Value
	suffix string
	comma  bool
}

// Value returns the element value.
func (item *ArrayItem) Value() Value { return item.value }

// ArrayValue is a bracketed array, possibly spanning several lines.
type ArrayValue struct {
	items   []*ArrayItem
	closing string
}

// Kind reports ValueKindArray.
func (value *ArrayValue) Kind() ValueKind { return ValueKindArray }

// Items returns the array elements in order.
func (value *ArrayValue) Items() []*ArrayItem {
	return append([]*ArrayItem(nil), value.items...)
}

func (value *ArrayValue) render(builder *strings.Builder) {
	builder.WriteByte('[')
	for _, item := range value.items {
		builder.WriteString(item.prefix)
		item.value.render(builder)
		builder.WriteString(item.suffix)
		if item.comma {
			builder.WriteByte(',')
		}
	}
	builder.WriteString(value.closing)
	builder.WriteByte(']')
}

// InlineTableValue is a single-line `{ key = value, ... }` table.
type InlineTableValue struct {
	entries []*KeyValue
	padding string
	// template keeps the decor of the last removed entry so a table emptied
	// and refilled keeps its spacing.
	template *KeyValue
}

// Kind reports ValueKindInlineTable.
func (value *InlineTableValue) Kind() ValueKind { return ValueKindInlineTable }

// Entries returns the inline table entries in order.
func (value *InlineTableValue) Entries() []*KeyValue {
	return append([]*KeyValue(nil), value.entries...)
}

func (value *InlineTableValue) render(builder *strings.Builder) {
	builder.WriteByte('{')
	if len(value.entries) == 0 {
		builder.WriteString(value.padding)
	}
	for entryIndex, entry := range value.entries {
		entry.render(builder)
		if entryIndex < len(value.entries)-1 {
			builder.WriteByte(',')
		}
	}
	builder.WriteByte('}')
}

// keyPart is one segment of a possibly dotted key.
type keyPart struct {
	raw  string
	text string
}

// Key is a bare, quoted, or dotted key.
type Key struct {
	raw   string
	parts []keyPart
}

// Raw returns the key as written.
func (key Key) Raw() string { return key.raw }

// Segments returns the decoded key segments.
func (key Key) Segments() []string {
	segments := make([]string, 0, len(key.parts))
	for _, part := range key.parts {
		segments = append(segments, part.text)
	}
	return segments
}

// newKey renders segments as a dotted key, reusing the raw text of
// template parts where the decoded segments agree.
func newKey(segments []string, template Key) Key {
	parts := make([]keyPart, 0, len(segments))
	rawSegments := make([]string, 0, len(segments))
	for segmentIndex, segment := range segments {
		raw := renderKeySegment(segment)
		if segmentIndex < len(template.parts) && template.parts[segmentIndex].text == segment {
			raw = template.parts[segmentIndex].raw
		}
		parts = append(parts, keyPart{raw: raw, text: segment})
		rawSegments = append(rawSegments, raw)
	}
	return Key{raw: strings.Join(rawSegments, "."), parts: parts}
}

// KeyValue is a `key = value` pair in a block table or inline table.
// In a block table the prefix carries the blank lines, comments and
// indentation above the key and the suffix carries the trailing comment and
// newline. In an inline table they carry the spacing around the entry.
type KeyValue struct {
	prefix    string
	key       Key
	separator string
	value     Value
	suffix    string
}

// Key returns the entry key.
func (entry *KeyValue) Key() Key { return entry.key }

// Value returns the entry value.
func (entry *KeyValue) Value() Value { return entry.value }

func (entry *KeyValue) render(builder *strings.Builder) {
	builder.WriteString(entry.prefix)
	builder.WriteString(entry.key.raw)
	builder.WriteString(entry.separator)
	entry.value.render(builder)
	builder.WriteString(entry.suffix)
}

// Table is the body of the root table or of a section. Leading holds
// comments left behind by removed entries when no earlier entry remains.
type Table struct {
	leading    string
	entries    []*KeyValue
	trailing   string
	lineEnding string
	owner      *Section
}

// Entries returns the key/value pairs of the table body.
func (table *Table) Entries() []*KeyValue {
	return append([]*KeyValue(nil), table.entries...)
}

func (table *Table) render(builder *strings.Builder) {
	builder.WriteString(table.leading)
	for _, entry := range table.entries {
		entry.render(builder)
	}
	builder.WriteString(table.trailing)
}

// Section is a `[table]` or `[[array-of-tables]]` header with its body.
type Section struct {
	header       string
	path         Key
	arrayOfTable bool
	headerSuffix string
	body         *Table
}

// Path returns the decoded header path.
func (section *Section) Path() []string { return section.path.Segments() }

// IsArrayOfTables reports whether the header uses double brackets.
func (section *Section) IsArrayOfTables() bool { return section.arrayOfTable }

// Body returns the section body.
func (section *Section) Body() *Table { return section.body }

func (section *Section) render(builder *strings.Builder) {
	builder.WriteString(section.header)
	builder.WriteString(section.headerSuffix)
	section.body.render(builder)
}

// Document is a parsed manifest that renders back to its source text.
type Document struct {
	root     *Table
	sections []*Section
}

// Root returns the body preceding the first section header.
func (document *Document) Root() *Table { return document.root }

// Sections returns the sections in declaration order.
func (document *Document) Sections() []*Section {
	return append([]*Section(nil), document.sections...)
}

// String serializes the document. An unmodified document yields its exact
// source text.
func (document *Document) String() string {
	builder := &strings.Builder{}
	document.root.render(builder)
	for _, section := range document.sections {
		section.render(builder)
	}
	return builder.String()
}
