package xml

import (
	"strings"
	"unicode/utf8"
)

// Attr is a single attribute. Name is in prefixed form ("Num",
// "xmlns:xsi", "xsi:noNamespaceSchemaLocation").
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the document tree in text/tail form.
//
// Text is the content before the first child. Tail is the text that follows
// this element's end tag inside the parent; it belongs to the parent's content
// stream but travels with the element, so moving a child moves its tail too.
type Element struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Element
	Tail     string
}

// NewElement creates an element with the given tag and attributes.
func NewElement(tag string, attrs ...Attr) *Element {
	e := &Element{Tag: tag}
	for _, a := range attrs {
		e.Set(a.Name, a.Value)
	}
	return e
}

// Get returns the value of the named attribute.
func (e *Element) Get(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Set assigns an attribute. An existing attribute keeps its position.
func (e *Element) Set(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
}

// Append adds children at the end of e's content.
func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// SubElement creates a child element, appends it and returns it.
func (e *Element) SubElement(tag string, attrs ...Attr) *Element {
	child := NewElement(tag, attrs...)
	e.Append(child)
	return child
}

// Find returns the first direct child with the given tag, or nil.
func (e *Element) Find(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// FindAll returns the direct children with the given tag.
func (e *Element) FindAll(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of direct children with the given tag.
func (e *Element) Count(tag string) int {
	n := 0
	for _, c := range e.Children {
		if c.Tag == tag {
			n++
		}
	}
	return n
}

// Iter calls fn for e and every descendant with the given tag, in document
// order. An empty tag matches every element. fn may replace e's children;
// the replacement is what gets visited.
func (e *Element) Iter(tag string, fn func(*Element)) {
	if tag == "" || e.Tag == tag {
		fn(e)
	}
	for _, c := range e.Children {
		c.Iter(tag, fn)
	}
}

// Clone returns a deep copy of e, tail included.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := &Element{
		Tag:  e.Tag,
		Text: e.Text,
		Tail: e.Tail,
	}
	if len(e.Attrs) > 0 {
		c.Attrs = make([]Attr, len(e.Attrs))
		copy(c.Attrs, e.Attrs)
	}
	if len(e.Children) > 0 {
		c.Children = make([]*Element, len(e.Children))
		for i, child := range e.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// InnerText returns e's own text followed by every descendant's text and
// tail in document order. e's own tail is not included.
func (e *Element) InnerText() string {
	var sb strings.Builder
	e.writeText(&sb)
	return sb.String()
}

func (e *Element) writeText(sb *strings.Builder) {
	sb.WriteString(e.Text)
	for _, c := range e.Children {
		c.writeText(sb)
		sb.WriteString(c.Tail)
	}
}

// RuneLen returns the length of s in code points.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
