// Package split turns a Sentence element into a List element, separating a
// leading enumerator ("１　", "一　", "（１）　") from the rest of the sentence
// at the first white space near the start of its text.
package split

import (
	"unicode"

	"github.com/FocuswithJustin/lawlist/core/xml"
)

// DefaultWindow is the number of leading code points searched for a separator.
const DefaultWindow = 10

// Decision records whether and where a sentence is split. Offset is a code
// point index into the sentence's InnerText and is only meaningful when
// HasSplit is set.
type Decision struct {
	HasSplit bool
	Offset   int
}

// Decide looks for the first white space code point among the first window
// code points of the sentence text.
func Decide(s *xml.Element, window int) Decision {
	if window <= 0 {
		return Decision{}
	}
	i := 0
	for _, r := range s.InnerText() {
		if i >= window {
			break
		}
		if unicode.IsSpace(r) {
			return Decision{HasSplit: true, Offset: i}
		}
		i++
	}
	return Decision{}
}

// Partition divides the content of s around the separator at d.Offset. The
// separator itself is dropped. Text runs and tails that straddle the offset
// are cut; a child element is never cut, and one whose text reaches past the
// offset goes to the right side whole, tail included.
//
// Both results are new Sentence elements numbered "1" holding deep copies.
// Partition must only be called with a Decision where HasSplit is set.
func Partition(s *xml.Element, d Decision) (left, right *xml.Element) {
	p := d.Offset
	left = newSentence()
	right = newSentence()

	// lastLeft is the copy of the most recent child placed on the left; its
	// tail segment, if any, follows immediately.
	var lastLeft *xml.Element

	for _, seg := range s.Segments() {
		switch seg.Kind {
		case xml.TextSegment:
			if seg.End > p {
				before, after := cut(seg.Text, p-seg.Start)
				left.Text = before
				right.Text = after
			} else {
				left.Text = seg.Text
			}

		case xml.ChildSegment:
			c := seg.Child.Clone()
			if seg.End <= p {
				c.Tail = ""
				left.Append(c)
				lastLeft = c
			} else {
				right.Append(c)
				lastLeft = nil
			}

		case xml.TailSegment:
			if lastLeft == nil {
				// Travelled with its element to the right side.
				continue
			}
			if seg.End > p {
				// Nothing has reached the right side yet, so the remainder
				// starts its text.
				before, after := cut(seg.Text, p-seg.Start)
				lastLeft.Tail = before
				right.Text = after
			} else {
				lastLeft.Tail = seg.Text
			}
		}
	}
	return left, right
}

// cut splits s around the code point at index i, dropping that code point.
func cut(s string, i int) (before, after string) {
	runes := []rune(s)
	if i >= len(runes) {
		return s, ""
	}
	return string(runes[:i]), string(runes[i+1:])
}

func newSentence() *xml.Element {
	return xml.NewElement("Sentence", xml.Attr{Name: "Num", Value: "1"})
}
