// Package transform rewrites the Sentence children of sentence-paragraph
// containers into List elements.
//
// A container is rewritten only when it holds at least Threshold immediate
// Sentence children. The input document is never modified; Apply works on a
// deep copy.
package transform

import (
	"github.com/FocuswithJustin/lawlist/core/split"
	"github.com/FocuswithJustin/lawlist/core/xml"
)

// Defaults used by DefaultOptions.
const (
	DefaultContainer = "ParagraphSentence"
	DefaultThreshold = 10
)

// Options controls which containers are rewritten and how sentences split.
type Options struct {
	// Container is the tag of the elements whose Sentence children are
	// candidates for conversion.
	Container string
	// Threshold is the minimum number of immediate Sentence children a
	// container needs before it is rewritten.
	Threshold int
	// Window is the number of leading code points searched for a separator.
	Window int
}

// DefaultOptions returns the options used for legal-document XML.
func DefaultOptions() Options {
	return Options{
		Container: DefaultContainer,
		Threshold: DefaultThreshold,
		Window:    split.DefaultWindow,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Container == "" {
		o.Container = d.Container
	}
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.Window <= 0 {
		o.Window = d.Window
	}
	return o
}

// Stats summarises one Apply call.
type Stats struct {
	// Containers is the number of container elements found.
	Containers int
	// Transformed is the number of containers that met the threshold.
	Transformed int
	// Sentences is the number of Sentence elements converted to lists.
	Sentences int
	// Splits is the number of those sentences that were split into columns.
	Splits int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Containers += other.Containers
	s.Transformed += other.Transformed
	s.Sentences += other.Sentences
	s.Splits += other.Splits
}

// Apply returns a transformed copy of doc. Zero fields of opts take their
// default values.
func Apply(doc *xml.Document, opts Options) (*xml.Document, Stats) {
	opts = opts.withDefaults()
	out := doc.Clone()
	root := out.Root()
	if root == nil {
		return out, Stats{}
	}

	var stats Stats
	sp := &split.Splitter{Window: opts.Window}

	root.Iter(opts.Container, func(c *xml.Element) {
		stats.Containers++
		if c.Count(split.TagSentence) < opts.Threshold {
			return
		}
		stats.Transformed++
		rewrite(c, sp)
	})

	stats.Sentences = sp.Sentences
	stats.Splits = sp.Splits
	return out, stats
}

// rewrite replaces every Sentence child of c with its List form. Other
// children keep their position. The Sentence's tail moves to the List so the
// surrounding text stays where it was.
func rewrite(c *xml.Element, sp *split.Splitter) {
	children := make([]*xml.Element, 0, len(c.Children))
	for _, child := range c.Children {
		if child.Tag != split.TagSentence {
			children = append(children, child)
			continue
		}
		list := sp.Convert(child)
		list.Tail = child.Tail
		children = append(children, list)
	}
	c.Children = children
}
