package document

import (
	"fmt"
	"strings"
)

const (
	syntaxErrorTemplateConstant            = "line %d, column %d: %s"
	expectedKeyMessageConstant             = "expected key"
	expectedEqualsMessageConstant          = "expected '=' after key"
	expectedValueMessageConstant           = "expected value"
	expectedNewlineMessageConstant         = "expected newline after value"
	expectedArraySeparatorMessageConstant  = "expected ',' or ']' in array"
	expectedInlineSeparatorMessageConstant = "expected ',' or '}' in inline table"
	expectedHeaderCloseTemplateConstant    = "expected %q to close table header"
	unterminatedStringMessageConstant      = "unterminated string"
	unterminatedArrayMessageConstant       = "unterminated array"
	unterminatedInlineMessageConstant      = "unterminated inline table"
	newlineInStringMessageConstant         = "newline in single-line string"
	invalidStringTemplateConstant          = "invalid string: %v"
	basicQuoteConstant                     = `"`
	literalQuoteConstant                   = `'`
	multilineBasicQuoteConstant            = `"""`
	multilineLiteralQuoteConstant          = `'''`
	arrayOfTablesOpenConstant              = "[["
	arrayOfTablesCloseConstant             = "]]"
	tableCloseConstant                     = "]"
	trailingKeyCharactersMessageConstant   = "unexpected characters after key"
)

// SyntaxError reports manifest text that does not follow the TOML grammar.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

// Error describes the syntax error with its position.
func (syntaxError *SyntaxError) Error() string {
	return fmt.Sprintf(syntaxErrorTemplateConstant, syntaxError.Line, syntaxError.Column, syntaxError.Message)
}

type parser struct {
	input      string
	position   int
	lineEnding string
}

// Parse builds a format-preserving document from manifest text.
func Parse(content string) (*Document, error) {
	documentParser := &parser{input: content, lineEnding: detectLineEnding(content)}
	return documentParser.parseDocument()
}

// detectLineEnding reports the line ending of the first line, defaulting to
// a bare newline.
func detectLineEnding(content string) string {
	newlineIndex := strings.IndexByte(content, '\n')
	if newlineIndex > 0 && content[newlineIndex-1] == '\r' {
		return carriageReturnNewlineConstant
	}
	return newlineConstant
}

func (documentParser *parser) parseDocument() (*Document, error) {
	root, rootError := documentParser.parseTableBody(nil)
	if rootError != nil {
		return nil, rootError
	}

	parsedDocument := &Document{root: root}
	for !documentParser.atEnd() {
		section, sectionError := documentParser.parseSection()
		if sectionError != nil {
			return nil, sectionError
		}
		parsedDocument.sections = append(parsedDocument.sections, section)
	}
	return parsedDocument, nil
}

// parseTableBody consumes key/value lines until the next header or the end
// of input. Trivia after the last entry stays with the body.
func (documentParser *parser) parseTableBody(owner *Section) (*Table, error) {
	table := &Table{owner: owner, lineEnding: documentParser.lineEnding}
	for {
		triviaStart := documentParser.position
		documentParser.skipTrivia()
		if documentParser.atEnd() || documentParser.peek() == '[' {
			table.trailing = documentParser.input[triviaStart:documentParser.position]
			return table, nil
		}

		entryStart := documentParser.position
		entry, entryError := documentParser.parseKeyValue()
		if entryError != nil {
			return nil, entryError
		}
		entry.prefix = documentParser.input[triviaStart:entryStart]

		suffix, suffixError := documentParser.parseLineEnd()
		if suffixError != nil {
			return nil, suffixError
		}
		entry.suffix = suffix
		table.entries = append(table.entries, entry)
	}
}

func (documentParser *parser) parseSection() (*Section, error) {
	headerStart := documentParser.position
	closing := tableCloseConstant
	arrayOfTables := documentParser.hasPrefix(arrayOfTablesOpenConstant)
	if arrayOfTables {
		closing = arrayOfTablesCloseConstant
		documentParser.position += len(arrayOfTablesOpenConstant)
	} else {
		documentParser.position++
	}

	documentParser.skipSpaces()
	path, pathError := documentParser.parseKey()
	if pathError != nil {
		return nil, pathError
	}
	documentParser.skipSpaces()
	if !documentParser.hasPrefix(closing) {
		return nil, documentParser.errorf(expectedHeaderCloseTemplateConstant, closing)
	}
	documentParser.position += len(closing)

	section := &Section{
		header:       documentParser.input[headerStart:documentParser.position],
		path:         path,
		arrayOfTable: arrayOfTables,
	}

	headerSuffix, suffixError := documentParser.parseLineEnd()
	if suffixError != nil {
		return nil, suffixError
	}
	section.headerSuffix = headerSuffix

	body, bodyError := documentParser.parseTableBody(section)
	if bodyError != nil {
		return nil, bodyError
	}
	section.body = body
	return section, nil
}

func (documentParser *parser) parseKeyValue() (*KeyValue, error) {
	key, keyError := documentParser.parseKey()
	if keyError != nil {
		return nil, keyError
	}

	separatorStart := documentParser.position
	documentParser.skipSpaces()
	if documentParser.peek() != '=' {
		return nil, documentParser.errorf(expectedEqualsMessageConstant)
	}
	documentParser.position++
	documentParser.skipSpaces()
	separator := documentParser.input[separatorStart:documentParser.position]

	value, valueError := documentParser.parseValue()
	if valueError != nil {
		return nil, valueError
	}
	return &KeyValue{key: key, separator: separator, value: value}, nil
}

func (documentParser *parser) parseKey() (Key, error) {
	keyStart := documentParser.position
	var parts []keyPart
	for {
		part, partError := documentParser.parseSimpleKey()
		if partError != nil {
			return Key{}, partError
		}
		parts = append(parts, part)

		afterPart := documentParser.position
		documentParser.skipSpaces()
		if documentParser.peek() == '.' {
			documentParser.position++
			documentParser.skipSpaces()
			continue
		}
		documentParser.position = afterPart
		break
	}
	return Key{raw: documentParser.input[keyStart:documentParser.position], parts: parts}, nil
}

func (documentParser *parser) parseSimpleKey() (keyPart, error) {
	switch documentParser.peek() {
	case '"':
		raw, text, stringError := documentParser.parseBasicString()
		if stringError != nil {
			return keyPart{}, stringError
		}
		return keyPart{raw: raw, text: text}, nil
	case '\'':
		raw, text, stringError := documentParser.parseLiteralString()
		if stringError != nil {
			return keyPart{}, stringError
		}
		return keyPart{raw: raw, text: text}, nil
	}

	start := documentParser.position
	for !documentParser.atEnd() && isBareKeyByte(documentParser.peek()) {
		documentParser.position++
	}
	if documentParser.position == start {
		return keyPart{}, documentParser.errorf(expectedKeyMessageConstant)
	}
	bare := documentParser.input[start:documentParser.position]
	return keyPart{raw: bare, text: bare}, nil
}

func (documentParser *parser) parseValue() (Value, error) {
	if documentParser.atEnd() {
		return nil, documentParser.errorf(expectedValueMessageConstant)
	}

	switch documentParser.peek() {
	case '"':
		parse := documentParser.parseBasicString
		if documentParser.hasPrefix(multilineBasicQuoteConstant) {
			parse = documentParser.parseMultilineBasicString
		}
		raw, text, stringError := parse()
		if stringError != nil {
			return nil, stringError
		}
		return &StringValue{raw: raw, text: text}, nil
	case '\'':
		parse := documentParser.parseLiteralString
		if documentParser.hasPrefix(multilineLiteralQuoteConstant) {
			parse = documentParser.parseMultilineLiteralString
		}
		raw, text, stringError := parse()
		if stringError != nil {
			return nil, stringError
		}
		return &StringValue{raw: raw, text: text}, nil
	case '[':
		return documentParser.parseArray()
	case '{':
		return documentParser.parseInlineTable()
	default:
		return documentParser.parseScalar()
	}
}

func (documentParser *parser) parseBasicString() (string, string, error) {
	start := documentParser.position
	documentParser.position += len(basicQuoteConstant)
	for {
		if documentParser.atEnd() {
			return "", "", documentParser.errorf(unterminatedStringMessageConstant)
		}
		switch documentParser.peek() {
		case '\\':
			documentParser.position += 2
		case '\n', '\r':
			return "", "", documentParser.errorf(newlineInStringMessageConstant)
		case '"':
			documentParser.position++
			raw := documentParser.input[start:documentParser.position]
			text, decodeError := decodeBasicEscapes(raw[1 : len(raw)-1])
			if decodeError != nil {
				return "", "", documentParser.errorf(invalidStringTemplateConstant, decodeError)
			}
			return raw, text, nil
		default:
			documentParser.position++
		}
	}
}

func (documentParser *parser) parseLiteralString() (string, string, error) {
	start := documentParser.position
	documentParser.position += len(literalQuoteConstant)
	for {
		if documentParser.atEnd() {
			return "", "", documentParser.errorf(unterminatedStringMessageConstant)
		}
		switch documentParser.peek() {
		case '\n', '\r':
			return "", "", documentParser.errorf(newlineInStringMessageConstant)
		case '\'':
			documentParser.position++
			raw := documentParser.input[start:documentParser.position]
			return raw, raw[1 : len(raw)-1], nil
		default:
			documentParser.position++
		}
	}
}

func (documentParser *parser) parseMultilineBasicString() (string, string, error) {
	start := documentParser.position
	documentParser.position += len(multilineBasicQuoteConstant)
	for {
		if documentParser.atEnd() {
			return "", "", documentParser.errorf(unterminatedStringMessageConstant)
		}
		if documentParser.peek() == '\\' {
			documentParser.position += 2
			continue
		}
		if !documentParser.hasPrefix(multilineBasicQuoteConstant) {
			documentParser.position++
			continue
		}

		bodyEnd := documentParser.consumeMultilineClose('"')
		raw := documentParser.input[start:documentParser.position]
		body := documentParser.input[start+len(multilineBasicQuoteConstant) : bodyEnd]
		text, decodeError := decodeBasicEscapes(trimMultilineBasic(trimLeadingNewline(body)))
		if decodeError != nil {
			return "", "", documentParser.errorf(invalidStringTemplateConstant, decodeError)
		}
		return raw, text, nil
	}
}

func (documentParser *parser) parseMultilineLiteralString() (string, string, error) {
	start := documentParser.position
	documentParser.position += len(multilineLiteralQuoteConstant)
	for {
		if documentParser.atEnd() {
			return "", "", documentParser.errorf(unterminatedStringMessageConstant)
		}
		if !documentParser.hasPrefix(multilineLiteralQuoteConstant) {
			documentParser.position++
			continue
		}

		bodyEnd := documentParser.consumeMultilineClose('\'')
		raw := documentParser.input[start:documentParser.position]
		body := documentParser.input[start+len(multilineLiteralQuoteConstant) : bodyEnd]
		return raw, trimLeadingNewline(body), nil
	}
}

// consumeMultilineClose consumes a closing triple quote. Up to two quotes
// directly before the delimiter belong to the string body; the returned
// offset is where the body ends.
func (documentParser *parser) consumeMultilineClose(quote byte) int {
	extraQuotes := 0
	lookahead := documentParser.position + 3
	for extraQuotes < 2 && lookahead < len(documentParser.input) && documentParser.input[lookahead] == quote {
		extraQuotes++
		lookahead++
	}
	bodyEnd := documentParser.position + extraQuotes
	documentParser.position = lookahead
	return bodyEnd
}

func (documentParser *parser) parseArray() (Value, error) {
	documentParser.position++
	array := &ArrayValue{}
	for {
		triviaStart := documentParser.position
		documentParser.skipTrivia()
		if documentParser.atEnd() {
			return nil, documentParser.errorf(unterminatedArrayMessageConstant)
		}
		if documentParser.peek() == ']' {
			array.closing = documentParser.input[triviaStart:documentParser.position]
			documentParser.position++
			return array, nil
		}

		prefix := documentParser.input[triviaStart:documentParser.position]
		value, valueError := documentParser.parseValue()
		if valueError != nil {
			return nil, valueError
		}

		suffixStart := documentParser.position
		documentParser.skipTrivia()
		item := &ArrayItem{prefix: prefix, value: value, suffix: documentParser.input[suffixStart:documentParser.position]}
		array.items = append(array.items, item)

		switch documentParser.peek() {
		case ',':
			item.comma = true
			documentParser.position++
		case ']':
			documentParser.position++
			return array, nil
		default:
			if documentParser.atEnd() {
				return nil, documentParser.errorf(unterminatedArrayMessageConstant)
			}
			return nil, documentParser.errorf(expectedArraySeparatorMessageConstant)
		}
	}
}

func (documentParser *parser) parseInlineTable() (Value, error) {
	documentParser.position++
	table := &InlineTableValue{}

	paddingStart := documentParser.position
	documentParser.skipSpaces()
	if documentParser.peek() == '}' {
		table.padding = documentParser.input[paddingStart:documentParser.position]
		documentParser.position++
		return table, nil
	}
	documentParser.position = paddingStart

	for {
		prefixStart := documentParser.position
		documentParser.skipSpaces()
		prefix := documentParser.input[prefixStart:documentParser.position]

		entry, entryError := documentParser.parseKeyValue()
		if entryError != nil {
			return nil, entryError
		}
		entry.prefix = prefix

		suffixStart := documentParser.position
		documentParser.skipSpaces()
		entry.suffix = documentParser.input[suffixStart:documentParser.position]
		table.entries = append(table.entries, entry)

		switch documentParser.peek() {
		case ',':
			documentParser.position++
		case '}':
			documentParser.position++
			return table, nil
		default:
			if documentParser.atEnd() {
				return nil, documentParser.errorf(unterminatedInlineMessageConstant)
			}
			return nil, documentParser.errorf(expectedInlineSeparatorMessageConstant)
		}
	}
}

func (documentParser *parser) parseScalar() (Value, error) {
	start := documentParser.position
	documentParser.consumeScalarRun()

	// Date-times may separate date and time with a single space.
	if isLocalDate(documentParser.input[start:documentParser.position]) &&
		documentParser.position+2 < len(documentParser.input) &&
		documentParser.input[documentParser.position] == ' ' &&
		isDigit(documentParser.input[documentParser.position+1]) &&
		isDigit(documentParser.input[documentParser.position+2]) {
		documentParser.position++
		documentParser.consumeScalarRun()
	}

	if documentParser.position == start {
		return nil, documentParser.errorf(expectedValueMessageConstant)
	}
	return &ScalarValue{raw: documentParser.input[start:documentParser.position]}, nil
}

func (documentParser *parser) consumeScalarRun() {
	for !documentParser.atEnd() && !isScalarTerminator(documentParser.peek()) {
		documentParser.position++
	}
}

// parseLineEnd consumes trailing spaces, an optional comment and the
// newline ending a key/value or header line.
func (documentParser *parser) parseLineEnd() (string, error) {
	start := documentParser.position
	documentParser.skipSpaces()
	if documentParser.peek() == '#' {
		documentParser.skipComment()
	}
	switch {
	case documentParser.atEnd():
	case documentParser.peek() == '\n':
		documentParser.position++
	case documentParser.hasPrefix("\r\n"):
		documentParser.position += 2
	default:
		return "", documentParser.errorf(expectedNewlineMessageConstant)
	}
	return documentParser.input[start:documentParser.position], nil
}

// skipTrivia consumes whitespace, comments and newlines.
func (documentParser *parser) skipTrivia() {
	for {
		documentParser.skipSpaces()
		if documentParser.peek() == '#' {
			documentParser.skipComment()
		}
		switch {
		case documentParser.peek() == '\n':
			documentParser.position++
		case documentParser.hasPrefix("\r\n"):
			documentParser.position += 2
		default:
			return
		}
	}
}

func (documentParser *parser) skipSpaces() {
	for !documentParser.atEnd() {
		character := documentParser.peek()
		if character != ' ' && character != '\t' {
			return
		}
		documentParser.position++
	}
}

func (documentParser *parser) skipComment() {
	for !documentParser.atEnd() {
		character := documentParser.peek()
		if character == '\n' || documentParser.hasPrefix("\r\n") {
			return
		}
		documentParser.position++
	}
}

func (documentParser *parser) atEnd() bool {
	return documentParser.position >= len(documentParser.input)
}

func (documentParser *parser) peek() byte {
	if documentParser.atEnd() {
		return 0
	}
	return documentParser.input[documentParser.position]
}

func (documentParser *parser) hasPrefix(prefix string) bool {
	if documentParser.atEnd() {
		return false
	}
	return strings.HasPrefix(documentParser.input[documentParser.position:], prefix)
}

func (documentParser *parser) errorf(format string, arguments ...any) *SyntaxError {
	position := documentParser.position
	if position > len(documentParser.input) {
		position = len(documentParser.input)
	}
	consumed := documentParser.input[:position]
	line := strings.Count(consumed, "\n") + 1
	column := position - strings.LastIndex(consumed, "\n")
	return &SyntaxError{Line: line, Column: column, Message: fmt.Sprintf(format, arguments...)}
}

func isScalarTerminator(character byte) bool {
	switch character {
	case ' ', '\t', ',', ']', '}', '#', '\n', '\r':
		return true
	default:
		return false
	}
}

func isLocalDate(candidate string) bool {
	if len(candidate) != 10 || candidate[4] != '-' || candidate[7] != '-' {
		return false
	}
	for index := 0; index < len(candidate); index++ {
		if index == 4 || index == 7 {
			continue
		}
		if !isDigit(candidate[index]) {
			return false
		}
	}
	return true
}

func isDigit(character byte) bool {
	return character >= '0' && character <= '9'
}

// ParseKeyPath splits a dotted key such as `target.'cfg(unix)'.dependencies`
// into decoded segments.
func ParseKeyPath(raw string) ([]string, error) {
	keyParser := &parser{input: strings.TrimSpace(raw)}
	key, keyError := keyParser.parseKey()
	if keyError != nil {
		return nil, keyError
	}
	if !keyParser.atEnd() {
		return nil, keyParser.errorf(trailingKeyCharactersMessageConstant)
	}
	return key.Segments(), nil
}
