package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	invalidEscapeTemplateConstant        = "invalid escape sequence \\%c"
	invalidUnicodeEscapeTemplateConstant = "invalid unicode escape %q"
	truncatedEscapeMessageConstant       = "truncated escape sequence"
)

// quoteBasicString renders text as a TOML basic string.
func quoteBasicString(text string) string {
	builder := &strings.Builder{}
	builder.Grow(len(text) + 2)
	builder.WriteByte('"')
	for _, character := range text {
		switch character {
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		case '\b':
			builder.WriteString(`\b`)
		case '\t':
			builder.WriteString(`\t`)
		case '\n':
			builder.WriteString(`\n`)
		case '\f':
			builder.WriteString(`\f`)
		case '\r':
			builder.WriteString(`\r`)
		default:
			if character < 0x20 || character == 0x7f {
				fmt.Fprintf(builder, `\u%04X`, character)
				continue
			}
			builder.WriteRune(character)
		}
	}
	builder.WriteByte('"')
	return builder.String()
}

// renderKeySegment writes a key segment bare when possible.
func renderKeySegment(segment string) string {
	if isBareKey(segment) {
		return segment
	}
	return quoteBasicString(segment)
}

func isBareKey(segment string) bool {
	if len(segment) == 0 {
		return false
	}
	for index := 0; index < len(segment); index++ {
		if !isBareKeyByte(segment[index]) {
			return false
		}
	}
	return true
}

func isBareKeyByte(character byte) bool {
	switch {
	case character >= 'a' && character <= 'z':
		return true
	case character >= 'A' && character <= 'Z':
		return true
	case character >= '0' && character <= '9':
		return true
	case character == '_' || character == '-':
		return true
	default:
		return false
	}
}

// decodeBasicEscapes resolves backslash escapes in the body of a basic string.
func decodeBasicEscapes(body string) (string, error) {
	if !strings.Contains(body, `\`) {
		return body, nil
	}

	builder := &strings.Builder{}
	builder.Grow(len(body))
	for index := 0; index < len(body); index++ {
		character := body[index]
		if character != '\\' {
			builder.WriteByte(character)
			continue
		}
		index++
		if index >= len(body) {
			return "", errors.New(truncatedEscapeMessageConstant)
		}
		switch body[index] {
		case 'b':
			builder.WriteByte('\b')
		case 't':
			builder.WriteByte('\t')
		case 'n':
			builder.WriteByte('\n')
		case 'f':
			builder.WriteByte('\f')
		case 'r':
			builder.WriteByte('\r')
		case 'e':
			builder.WriteByte(0x1b)
		case '"':
			builder.WriteByte('"')
		case '\\':
			builder.WriteByte('\\')
		case 'u', 'U':
			width := 4
			if body[index] == 'U' {
				width = 8
			}
			if index+width >= len(body) {
				return "", errors.New(truncatedEscapeMessageConstant)
			}
			hexDigits := body[index+1 : index+1+width]
			codePoint, parseError := strconv.ParseUint(hexDigits, 16, 32)
			if parseError != nil || !utf8.ValidRune(rune(codePoint)) {
				return "", fmt.Errorf(invalidUnicodeEscapeTemplateConstant, hexDigits)
			}
			builder.WriteRune(rune(codePoint))
			index += width
		default:
			return "", fmt.Errorf(invalidEscapeTemplateConstant, body[index])
		}
	}
	return builder.String(), nil
}

// trimMultilineBasic applies the line-ending backslash rule of multi-line
// basic strings before escapes are decoded.
func trimMultilineBasic(body string) string {
	if !strings.Contains(body, "\\") {
		return body
	}

	builder := &strings.Builder{}
	for index := 0; index < len(body); index++ {
		if body[index] != '\\' {
			builder.WriteByte(body[index])
			continue
		}
		lookahead := index + 1
		for lookahead < len(body) && (body[lookahead] == ' ' || body[lookahead] == '\t') {
			lookahead++
		}
		if lookahead < len(body) && (body[lookahead] == '\n' || body[lookahead] == '\r') {
			for lookahead < len(body) && isWhitespaceOrNewline(body[lookahead]) {
				lookahead++
			}
			index = lookahead - 1
			continue
		}
		builder.WriteByte('\\')
		if index+1 < len(body) {
			index++
			builder.WriteByte(body[index])
		}
	}
	return builder.String()
}

func trimLeadingNewline(body string) string {
	if strings.HasPrefix(body, "\r\n") {
		return body[2:]
	}
	if strings.HasPrefix(body, "\n") {
		return body[1:]
	}
	return body
}

func isWhitespaceOrNewline(character byte) bool {
	return character == ' ' || character == '\t' || character == '\n' || character == '\r'
}
