package document

import (
	"slices"
	"strings"
)

const (
	defaultKeySeparatorConstant      = " = "
	defaultInlinePaddingConstant     = " "
	newlineConstant                  = "\n"
	indentationCharactersConstant    = " \t"
	lineBreakCharactersConstant      = "\r\n"
	defaultInlineEntryPrefixConstant = " "
	carriageReturnNewlineConstant    = "\r\n"
	commentStartConstant             = '#'
)

// TableHandle is a mutable view over a table-shaped value: a section body,
// an inline table, or a group of dotted keys sharing a prefix.
type TableHandle interface {
	// Keys lists the distinct direct child keys in declaration order.
	Keys() []string
	// Contains reports whether key is defined directly or as a dotted parent.
	Contains(key string) bool
	// Get returns the value stored directly under key.
	Get(key string) (Value, bool)
	// Remove deletes every entry defining key and reports whether any existed.
	Remove(key string) bool
	// Insert appends key with value after the existing entries.
	Insert(key string, value Value)
}

// entryContainer is implemented by the two places key/value pairs live.
type entryContainer interface {
	entryList() []*KeyValue
	removeEntryAt(index int)
	insertEntryAt(index int, entry *KeyValue)
	styleEntry(entry *KeyValue, reference *KeyValue)
}

// scopedTable exposes the entries of a container whose keys start with prefix.
type scopedTable struct {
	container entryContainer
	prefix    []string
}

func newScopedTable(container entryContainer, prefix []string) *scopedTable {
	return &scopedTable{container: container, prefix: append([]string(nil), prefix...)}
}

func (table *scopedTable) Keys() []string {
	var keys []string
	for _, entry := range table.container.entryList() {
		segments := entry.key.Segments()
		if len(segments) <= len(table.prefix) || !hasSegmentPrefix(segments, table.prefix) {
			continue
		}
		child := segments[len(table.prefix)]
		if !slices.Contains(keys, child) {
			keys = append(keys, child)
		}
	}
	return keys
}

func (table *scopedTable) Contains(key string) bool {
	target := table.childPath(key)
	for _, entry := range table.container.entryList() {
		if hasSegmentPrefix(entry.key.Segments(), target) {
			return true
		}
	}
	return false
}

func (table *scopedTable) Get(key string) (Value, bool) {
	target := table.childPath(key)
	for _, entry := range table.container.entryList() {
		if slices.Equal(entry.key.Segments(), target) {
			return entry.value, true
		}
	}
	return nil, false
}

func (table *scopedTable) Remove(key string) bool {
	target := table.childPath(key)
	removed := false
	entries := table.container.entryList()
	for entryIndex := len(entries) - 1; entryIndex >= 0; entryIndex-- {
		if hasSegmentPrefix(entries[entryIndex].key.Segments(), target) {
			table.container.removeEntryAt(entryIndex)
			removed = true
		}
	}
	return removed
}

func (table *scopedTable) Insert(key string, value Value) {
	entries := table.container.entryList()

	insertIndex := len(entries)
	var reference *KeyValue
	if len(entries) > 0 {
		reference = entries[len(entries)-1]
	}
	if len(table.prefix) > 0 {
		for entryIndex := len(entries) - 1; entryIndex >= 0; entryIndex-- {
			if hasSegmentPrefix(entries[entryIndex].key.Segments(), table.prefix) {
				insertIndex = entryIndex + 1
				reference = entries[entryIndex]
				break
			}
		}
	}

	var template Key
	if reference != nil {
		template = reference.key
	}
	entry := &KeyValue{key: newKey(table.childPath(key), template), value: value}
	table.container.styleEntry(entry, reference)
	table.container.insertEntryAt(insertIndex, entry)
}

func (table *scopedTable) childPath(key string) []string {
	path := make([]string, 0, len(table.prefix)+1)
	path = append(path, table.prefix...)
	return append(path, key)
}

func hasSegmentPrefix(segments []string, prefix []string) bool {
	if len(segments) < len(prefix) {
		return false
	}
	return slices.Equal(segments[:len(prefix)], prefix)
}

// Block table bodies.

func (table *Table) entryList() []*KeyValue { return table.entries }

// removeEntryAt drops an entry but keeps the blank lines and comments around
// it in place. A trailing comment becomes a line of its own.
func (table *Table) removeEntryAt(index int) {
	removed := table.entries[index]
	table.entries = slices.Delete(table.entries, index, index+1)

	retained := table.retainedTrivia(removed)
	if len(retained) == 0 {
		return
	}
	if index > 0 {
		table.entries[index-1].suffix += retained
		return
	}
	table.leading += retained
}

func (table *Table) retainedTrivia(removed *KeyValue) string {
	indentation := lineIndentation(removed.prefix)
	retained := strings.TrimSuffix(removed.prefix, indentation)

	commentIndex := strings.IndexByte(removed.suffix, commentStartConstant)
	if commentIndex < 0 {
		return retained
	}
	comment := strings.TrimRight(removed.suffix[commentIndex:], lineBreakCharactersConstant)
	lineEnding := lineEndingOf(removed.suffix)
	if len(lineEnding) == 0 {
		lineEnding = table.newline()
	}
	return retained + indentation + comment + lineEnding
}

func (table *Table) insertEntryAt(index int, entry *KeyValue) {
	if index > 0 {
		previous := table.entries[index-1]
		if len(lineEndingOf(previous.suffix)) == 0 {
			previous.suffix += table.newline()
		}
	} else if len(table.entries) == 0 && table.owner != nil && len(lineEndingOf(table.owner.headerSuffix)) == 0 {
		table.owner.headerSuffix += table.newline()
	}
	table.entries = slices.Insert(table.entries, index, entry)
}

// styleEntry places a new line with the indentation, separator and line
// ending of its neighbour.
func (table *Table) styleEntry(entry *KeyValue, reference *KeyValue) {
	entry.separator = defaultKeySeparatorConstant
	entry.suffix = table.newline()
	if reference == nil {
		return
	}
	entry.separator = reference.separator
	entry.prefix = lineIndentation(reference.prefix)
	if lineEnding := lineEndingOf(reference.suffix); len(lineEnding) > 0 {
		entry.suffix = lineEnding
	}
}

// newline returns the line ending used by the document.
func (table *Table) newline() string {
	if len(table.lineEnding) == 0 {
		return newlineConstant
	}
	return table.lineEnding
}

func lineEndingOf(text string) string {
	switch {
	case strings.HasSuffix(text, carriageReturnNewlineConstant):
		return carriageReturnNewlineConstant
	case strings.HasSuffix(text, newlineConstant):
		return newlineConstant
	default:
		return ""
	}
}

func lineIndentation(prefix string) string {
	lastLine := prefix
	if lineBreakIndex := strings.LastIndexAny(prefix, lineBreakCharactersConstant); lineBreakIndex >= 0 {
		lastLine = prefix[lineBreakIndex+1:]
	}
	if strings.Trim(lastLine, indentationCharactersConstant) != "" {
		return ""
	}
	return lastLine
}

// Inline tables.

func (value *InlineTableValue) entryList() []*KeyValue { return value.entries }

func (value *InlineTableValue) removeEntryAt(index int) {
	removed := value.entries[index]
	lastIndex := len(value.entries) - 1
	switch {
	case lastIndex == 0:
		value.template = removed
		value.padding = ""
	case index == lastIndex:
		value.entries[index-1].suffix = removed.suffix
	case index == 0:
		value.entries[1].prefix = removed.prefix
	}
	value.entries = slices.Delete(value.entries, index, index+1)
}

func (value *InlineTableValue) insertEntryAt(index int, entry *KeyValue) {
	if len(value.entries) > 0 && index == len(value.entries) {
		last := value.entries[len(value.entries)-1]
		entry.suffix = last.suffix
		last.suffix = ""
	}
	value.entries = slices.Insert(value.entries, index, entry)
}

func (value *InlineTableValue) styleEntry(entry *KeyValue, reference *KeyValue) {
	entry.prefix = defaultInlineEntryPrefixConstant
	entry.separator = defaultKeySeparatorConstant
	entry.suffix = ""
	switch {
	case reference != nil:
		entry.prefix = reference.prefix
		entry.separator = reference.separator
	case value.template != nil:
		entry.prefix = value.template.prefix
		entry.separator = value.template.separator
		entry.suffix = value.template.suffix
	default:
		entry.suffix = defaultInlinePaddingConstant
	}
}
