// Package verify checks that a conversion preserved the sentence content of
// a document.
//
// Extract reduces a document, original or converted, to the ordered sequence
// of sentence values it contains, reading List/Column structures back into
// the sentence they were built from. Compare diffs two such sequences.
package verify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/lawlist/core/encoding"
	"github.com/FocuswithJustin/lawlist/core/split"
	"github.com/FocuswithJustin/lawlist/core/transform"
	"github.com/FocuswithJustin/lawlist/core/xml"
)

// Separator joins the columns of a split sentence. The character removed by
// the split is not recoverable, so it is normalised to a full-width space.
const Separator = "　"

// ErrStructure reports a List that is not in a shape the converter produces.
var ErrStructure = errors.New("unexpected list structure")

// Values is an ordered sequence of extracted values. Order and duplicates
// are significant.
type Values []string

// Mode records how values were extracted.
type Mode int

const (
	// Structural extraction walks the parsed document.
	Structural Mode = iota
	// Lines extraction strips tags line by line.
	Lines
)

func (m Mode) String() string {
	if m == Lines {
		return "lines"
	}
	return "structural"
}

var containerExpr = xpath.MustCompile("//" + transform.DefaultContainer)

// Extract returns the sentence values of every sentence-paragraph container
// in document order.
func Extract(doc *xml.Document) (Values, error) {
	var values Values
	for _, c := range containers(doc) {
		for _, child := range c.Children {
			switch child.Tag {
			case split.TagSentence:
				values = appendNonEmpty(values, sentenceText(child))
			case split.TagList:
				vs, err := listValues(child)
				if err != nil {
					return nil, err
				}
				values = append(values, vs...)
			default:
				values = appendNonEmpty(values, strings.TrimSpace(child.Text))
			}
		}
	}
	return values, nil
}

// containers finds the sentence-paragraph containers. Documents built in
// memory have no source to query and are walked instead.
func containers(doc *xml.Document) []*xml.Element {
	found, err := doc.QueryExpr(containerExpr)
	if err == nil {
		return found
	}
	if doc.Root() != nil {
		doc.Root().Iter(transform.DefaultContainer, func(e *xml.Element) {
			found = append(found, e)
		})
	}
	return found
}

func listValues(list *xml.Element) (Values, error) {
	var values Values
	sentences := list.FindAll(split.TagListSentence)
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: List without ListSentence", ErrStructure)
	}
	for _, ls := range sentences {
		columns := ls.FindAll(split.TagColumn)
		switch len(columns) {
		case 0:
			for _, s := range ls.FindAll(split.TagSentence) {
				values = appendNonEmpty(values, sentenceText(s))
			}
		case 1:
			return nil, fmt.Errorf("%w: ListSentence with a single Column", ErrStructure)
		default:
			parts := make([]string, 0, 2)
			for _, col := range columns {
				if t := columnText(col); t != "" {
					parts = append(parts, t)
				}
			}
			// A split sentence has two columns; text after the second
			// non-empty one is not part of its value.
			if len(parts) > 2 {
				parts = parts[:2]
			}
			values = appendNonEmpty(values, strings.Join(parts, Separator))
		}
	}
	return values, nil
}

// columnText joins the non-empty sentence texts of one column with a space.
func columnText(col *xml.Element) string {
	var parts []string
	for _, s := range col.FindAll(split.TagSentence) {
		if t := sentenceText(s); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// sentenceText is the trimmed text of s without source line breaks, which
// the serializer does not keep inside a sentence.
func sentenceText(s *xml.Element) string {
	return strings.TrimSpace(encoding.DropLayout(s.InnerText()))
}

func appendNonEmpty(values Values, v string) Values {
	if v == "" {
		return values
	}
	return append(values, v)
}

// tagLexer splits a line into markup and character data. A '<' that does not
// open a complete tag is kept as text.
var tagLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Tag", Pattern: `<[^>]+>`},
	{Name: "Text", Pattern: `[^<]+`},
	{Name: "Lt", Pattern: `<`},
})

type taggedLine struct {
	Parts []*linePart `parser:"@@*"`
}

type linePart struct {
	Tag  bool   `parser:"  @Tag"`
	Text string `parser:"| @(Text | Lt)"`
}

var lineParser = participle.MustBuild[taggedLine](
	participle.Lexer(tagLexer),
)

// ExtractLines removes markup from each line of data and returns the
// non-blank remainders. It accepts any input, well-formed or not.
func ExtractLines(data []byte) Values {
	var values Values
	for _, line := range strings.Split(string(data), "\n") {
		values = appendNonEmpty(values, strings.TrimSpace(stripTags(line)))
	}
	return values
}

func stripTags(line string) string {
	parsed, err := lineParser.ParseString("", line)
	if err != nil {
		return line
	}
	var sb strings.Builder
	for _, p := range parsed.Parts {
		if !p.Tag {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// ExtractBytes parses data and extracts its values, falling back to line
// extraction when data is not well-formed or its lists are malformed.
func ExtractBytes(data []byte) (Values, Mode) {
	doc, err := xml.Parse(data)
	if err != nil {
		return ExtractLines(data), Lines
	}
	values, err := Extract(doc)
	if err != nil {
		return ExtractLines(data), Lines
	}
	return values, Structural
}

// Pair holds the values extracted from two documents and how each side was
// extracted.
type Pair struct {
	Values1, Values2 Values
	Mode1, Mode2     Mode
	// Err is the structural error that forced both sides to line mode.
	Err error
}

// ExtractPair extracts both documents for comparison. A side that does not
// parse is read line by line on its own. When a parsed side has a malformed
// list, both sides are read line by line so that they stay comparable.
func ExtractPair(a, b []byte) Pair {
	var p Pair
	docA, errA := xml.Parse(a)
	docB, errB := xml.Parse(b)

	if errA == nil {
		p.Values1, p.Err = Extract(docA)
	}
	if errB == nil && p.Err == nil {
		p.Values2, p.Err = Extract(docB)
	}
	if p.Err != nil {
		return Pair{
			Values1: ExtractLines(a), Mode1: Lines,
			Values2: ExtractLines(b), Mode2: Lines,
			Err: p.Err,
		}
	}
	if errA != nil {
		p.Values1, p.Mode1 = ExtractLines(a), Lines
	}
	if errB != nil {
		p.Values2, p.Mode2 = ExtractLines(b), Lines
	}
	return p
}

// Fallback reports whether either side was extracted line by line.
func (p Pair) Fallback() bool {
	return p.Mode1 == Lines || p.Mode2 == Lines
}
