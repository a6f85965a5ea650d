package xml

import (
	"bytes"
	"io"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/lawlist/core/encoding"
)

// Declaration is written at the top of every serialized document.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

const indentUnit = "  "

// Layout selects how an element's subtree is laid out.
type Layout int

const (
	// Block puts the element on its own line and each child on its own
	// line one level deeper.
	Block Layout = iota
	// Inline flattens the whole subtree onto one line.
	Inline
)

// EmptyForm selects how an element without children or text is written.
type EmptyForm int

const (
	// SelfClose writes <Tag/>.
	SelfClose EmptyForm = iota
	// Explicit writes <Tag></Tag>.
	Explicit
)

// AttrOrder selects the attribute ordering of an element.
type AttrOrder int

const (
	// SourceOrder keeps attributes as parsed.
	SourceOrder AttrOrder = iota
	// NamespacesLast writes plain attributes, then xmlns:*, then xsi:*,
	// and leaves a space before the closing bracket.
	NamespacesLast
)

// Policy is the formatting rule for one tag.
type Policy struct {
	Layout Layout
	Empty  EmptyForm
	Attrs  AttrOrder
	// FlushLeft writes the element at column zero instead of at its
	// nesting level.
	FlushLeft bool
}

// policies lists every tag that does not use the default Block/SelfClose
// rule. The reference layout is defined entirely by this table.
var policies = map[string]Policy{
	"Sentence":     {Layout: Inline, Empty: Explicit},
	"Ruby":         {Layout: Inline, Empty: Explicit, FlushLeft: true},
	"ArithFormula": {Layout: Inline, Empty: Explicit, FlushLeft: true},

	"ArticleTitle":     {Empty: Explicit},
	"ParagraphNum":     {Empty: Explicit},
	"TableStructTitle": {Empty: Explicit},
	"Remarks":          {Empty: Explicit},
	"ItemTitle":        {Empty: Explicit},

	"Law": {Attrs: NamespacesLast},
}

// PolicyFor returns the formatting policy for tag.
func PolicyFor(tag string) Policy {
	return policies[tag]
}

// Serialize renders the document in the reference layout: the declaration,
// the root element, and one trailing newline.
func Serialize(d *Document) []byte {
	var buf bytes.Buffer
	buf.WriteString(Declaration)
	if d.root != nil {
		writeBlock(&buf, d.root, 0)
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// WriteTo writes the serialized document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(Serialize(d))
	return int64(n), err
}

// Render returns e laid out at nesting level zero, without declaration or
// trailing newline.
func Render(e *Element) string {
	var buf bytes.Buffer
	writeBlock(&buf, e, 0)
	return buf.String()
}

func writeBlock(w *bytes.Buffer, e *Element, level int) {
	p := PolicyFor(e.Tag)
	indent := strings.Repeat(indentUnit, level)
	if !p.FlushLeft {
		w.WriteString(indent)
	}

	if p.Layout == Inline {
		writeInline(w, e, true)
		return
	}

	text := strings.TrimSpace(e.Text)
	if len(e.Children) == 0 && text == "" {
		writeEmpty(w, e, p)
		return
	}

	writeOpen(w, e, p)
	w.WriteString(encoding.EscapeXMLText(text))
	if len(e.Children) > 0 {
		w.WriteByte('\n')
		for _, c := range e.Children {
			writeBlock(w, c, level+1)
			w.WriteString(encoding.EscapeXMLText(strings.TrimSpace(c.Tail)))
			w.WriteByte('\n')
		}
		w.WriteString(indent)
	}
	writeClose(w, e)
}

// writeInline writes e and its descendants on the current line. Line breaks
// and the indentation around them are dropped from every text run and tail.
// For the outermost collapsed element the leading and trailing white space of
// its content is dropped as well.
func writeInline(w *bytes.Buffer, e *Element, outer bool) {
	p := PolicyFor(e.Tag)
	last := len(e.Children) - 1

	text := encoding.DropLayout(e.Text)
	if outer {
		text = strings.TrimLeftFunc(text, unicode.IsSpace)
		if last < 0 {
			text = strings.TrimRightFunc(text, unicode.IsSpace)
		}
	}
	if last < 0 && encoding.IsBlank(text) {
		writeEmpty(w, e, p)
		return
	}

	writeOpen(w, e, p)
	w.WriteString(encoding.EscapeXMLText(text))
	for i, c := range e.Children {
		writeInline(w, c, false)
		tail := encoding.DropLayout(c.Tail)
		if outer && i == last {
			tail = strings.TrimRightFunc(tail, unicode.IsSpace)
		}
		w.WriteString(encoding.EscapeXMLText(tail))
	}
	writeClose(w, e)
}

func writeEmpty(w *bytes.Buffer, e *Element, p Policy) {
	writeStart(w, e, p)
	if p.Empty == Explicit {
		w.WriteByte('>')
		writeClose(w, e)
		return
	}
	w.WriteString("/>")
}

func writeOpen(w *bytes.Buffer, e *Element, p Policy) {
	writeStart(w, e, p)
	w.WriteByte('>')
}

// writeStart writes the tag name and attributes without the closing bracket.
func writeStart(w *bytes.Buffer, e *Element, p Policy) {
	w.WriteByte('<')
	w.WriteString(e.Tag)
	for _, a := range orderAttrs(e.Attrs, p.Attrs) {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		w.WriteString(encoding.EscapeXMLAttr(a.Value))
		w.WriteByte('"')
	}
	if p.Attrs == NamespacesLast {
		w.WriteByte(' ')
	}
}

func writeClose(w *bytes.Buffer, e *Element) {
	w.WriteString("</")
	w.WriteString(e.Tag)
	w.WriteByte('>')
}

func orderAttrs(attrs []Attr, order AttrOrder) []Attr {
	if order != NamespacesLast || len(attrs) < 2 {
		return attrs
	}
	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		if !strings.HasPrefix(a.Name, "xmlns:") && !strings.HasPrefix(a.Name, "xsi:") {
			out = append(out, a)
		}
	}
	for _, a := range attrs {
		if strings.HasPrefix(a.Name, "xmlns:") {
			out = append(out, a)
		}
	}
	for _, a := range attrs {
		if strings.HasPrefix(a.Name, "xsi:") {
			out = append(out, a)
		}
	}
	return out
}
