// Package encoding provides the escaping and text helpers used when writing
// XML and Markdown output.
package encoding

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// EscapeXMLText escapes the basic XML entities for element content.
func EscapeXMLText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeXMLAttr escapes text for a double-quoted XML attribute value.
func EscapeXMLAttr(s string) string {
	return attrEscaper.Replace(s)
}

// IsBlank reports whether s is empty or consists only of Unicode white space.
func IsBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

// DropLayout removes every run of ASCII white space that contains a line
// break. Other white space, U+3000 included, is kept.
func DropLayout(s string) string {
	if !strings.ContainsAny(s, "\n\r") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		if !isLayoutByte(s[i]) {
			sb.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && isLayoutByte(s[j]) {
			j++
		}
		if !strings.ContainsAny(s[i:j], "\n\r") {
			sb.WriteString(s[i:j])
		}
		i = j
	}
	return sb.String()
}

func isLayoutByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// Truncate returns at most n code points of s.
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// QuoteValue renders a value for a Markdown report: truncated to n code points
// and quoted with Go escaping, keeping printable non-ASCII text readable.
func QuoteValue(s string, n int) string {
	return strconv.Quote(Truncate(s, n))
}

// EscapeMarkdownCode makes s safe inside a single-backtick code span.
func EscapeMarkdownCode(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}
