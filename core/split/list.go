package split

import (
	"github.com/FocuswithJustin/lawlist/core/xml"
)

// Output element names.
const (
	TagList         = "List"
	TagListSentence = "ListSentence"
	TagColumn       = "Column"
	TagSentence     = "Sentence"
)

// BuildList converts one Sentence into
//
//	List/ListSentence/Sentence                       (no separator found)
//	List/ListSentence/Column[1..2]/Sentence          (split)
//
// The source element is not modified.
func BuildList(s *xml.Element, window int) *xml.Element {
	list, _ := build(s, window)
	return list
}

func build(s *xml.Element, window int) (*xml.Element, Decision) {
	list := xml.NewElement(TagList)
	ls := list.SubElement(TagListSentence)

	d := Decide(s, window)
	if !d.HasSplit {
		ls.Append(copySentence(s))
		return list, d
	}

	left, right := Partition(s, d)
	ls.SubElement(TagColumn, xml.Attr{Name: "Num", Value: "1"}).Append(left)
	ls.SubElement(TagColumn, xml.Attr{Name: "Num", Value: "2"}).Append(right)
	return list, d
}

// copySentence returns a Sentence numbered "1" carrying a deep copy of the
// content of s. The tail of s stays with the source.
func copySentence(s *xml.Element) *xml.Element {
	out := newSentence()
	out.Text = s.Text
	for _, c := range s.Children {
		out.Append(c.Clone())
	}
	return out
}

// Splitter converts sentences and counts what it did.
type Splitter struct {
	// Window is the number of leading code points searched for a separator.
	Window int

	Sentences int
	Splits    int
}

// NewSplitter returns a Splitter with the default window.
func NewSplitter() *Splitter {
	return &Splitter{Window: DefaultWindow}
}

// Convert wraps s in a List, splitting it when a separator is found.
func (sp *Splitter) Convert(s *xml.Element) *xml.Element {
	list, d := build(s, sp.Window)
	sp.Sentences++
	if d.HasSplit {
		sp.Splits++
	}
	return list
}

// Columns returns the Column elements of a List built by BuildList.
func Columns(list *xml.Element) []*xml.Element {
	ls := list.Find(TagListSentence)
	if ls == nil {
		return nil
	}
	return ls.FindAll(TagColumn)
}
