package xml

// SegmentKind distinguishes the pieces of an element's mixed content.
type SegmentKind int

const (
	// TextSegment is the element's leading text.
	TextSegment SegmentKind = iota
	// ChildSegment is a child element, measured by its InnerText.
	ChildSegment
	// TailSegment is the tail text carried by the preceding child.
	TailSegment
)

func (k SegmentKind) String() string {
	switch k {
	case TextSegment:
		return "text"
	case ChildSegment:
		return "child"
	case TailSegment:
		return "tail"
	default:
		return "unknown"
	}
}

// Segment is one run of an element's content. Start and End are code point
// offsets into the element's InnerText, End exclusive.
type Segment struct {
	Kind  SegmentKind
	Start int
	End   int
	// Text is set for text and tail segments.
	Text string
	// Child is the child element for child segments and the carrier of the
	// tail for tail segments. Index is its position in Children.
	Child *Element
	Index int
}

// Len returns the segment length in code points.
func (s Segment) Len() int {
	return s.End - s.Start
}

// Segments returns e's content as ordered runs. Empty text and tail runs are
// omitted; every child yields a segment even when its text is empty. Each
// child's text is measured exactly once.
func (e *Element) Segments() []Segment {
	segs := make([]Segment, 0, 1+2*len(e.Children))
	pos := 0
	if e.Text != "" {
		n := RuneLen(e.Text)
		segs = append(segs, Segment{Kind: TextSegment, Start: 0, End: n, Text: e.Text, Index: -1})
		pos = n
	}
	for i, c := range e.Children {
		n := c.TextLen()
		segs = append(segs, Segment{Kind: ChildSegment, Start: pos, End: pos + n, Child: c, Index: i})
		pos += n
		if c.Tail != "" {
			t := RuneLen(c.Tail)
			segs = append(segs, Segment{Kind: TailSegment, Start: pos, End: pos + t, Text: c.Tail, Child: c, Index: i})
			pos += t
		}
	}
	return segs
}

// TextLen returns the code point length of e.InnerText without building it.
func (e *Element) TextLen() int {
	n := RuneLen(e.Text)
	for _, c := range e.Children {
		n += c.TextLen() + RuneLen(c.Tail)
	}
	return n
}
