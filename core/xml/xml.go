// Package xml holds the document model used by the converter: an element
// tree with text/tail mixed content, parsed with xmlquery, searchable with
// XPath, and written back with a fixed-layout serializer.
//
// Security Notes:
//   - Parsing goes through xmlquery, which uses Go's encoding/xml and never
//     fetches external entities.
//   - Comments, processing instructions and CDATA markers are not kept;
//     CDATA content becomes ordinary text.
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	lerrors "github.com/FocuswithJustin/lawlist/core/errors"
)

// xmlNamespace is the URI the decoder reports for the reserved xml: prefix.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// ErrNoSource is returned by XPath queries on documents that were not
// produced by Parse.
var ErrNoSource = errors.New("document has no parsed source to query")

// Document is a parsed XML document.
type Document struct {
	root *Element

	// dom is the xmlquery tree the document was built from and index maps
	// its element nodes to ours. Both are nil for constructed documents.
	dom   *xmlquery.Node
	index map[*xmlquery.Node]*Element
}

// NewDocument wraps an element tree. The result cannot be queried with XPath.
func NewDocument(root *Element) *Document {
	return &Document{root: root}
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	return parse(data, "")
}

// ParseFile reads and parses the XML file at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &lerrors.NotFoundError{Resource: "file", Path: path, Err: err}
		}
		return nil, lerrors.NewIO("read", path, err)
	}
	return parse(data, path)
}

// ParseNamed parses data that was read from path. The path is only used to
// label errors.
func ParseNamed(data []byte, path string) (*Document, error) {
	return parse(data, path)
}

func parse(data []byte, path string) (*Document, error) {
	dom, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, syntaxError(data, path, err)
	}

	doc := &Document{dom: dom, index: make(map[*xmlquery.Node]*Element)}
	for n := dom.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			doc.root = doc.build(n)
			break
		}
	}
	if doc.root == nil {
		return nil, lerrors.NewParse("XML", path, "no root element")
	}
	return doc, nil
}

// syntaxError converts a decoder failure into a ParseError with the line and
// column of the first syntax error in data.
func syntaxError(data []byte, path string, err error) error {
	pe := &lerrors.ParseError{Format: "XML", Path: path, Message: err.Error(), Err: err}
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		pe.Message = se.Msg
		pe.Line = se.Line
	}
	if line, col, ok := syntaxPosition(data); ok && (pe.Line == 0 || pe.Line == line) {
		pe.Line, pe.Column = line, col
	}
	return pe
}

// syntaxPosition decodes data with encoding/xml up to its first syntax error
// and returns the error's line and the code-point column of the last byte the
// decoder consumed.
func syntaxPosition(data []byte) (line, col int, ok bool) {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := d.Token()
		if err == nil {
			continue
		}
		var se *xml.SyntaxError
		if !errors.As(err, &se) {
			return 0, 0, false
		}
		off := min(int(d.InputOffset()), len(data))
		start := bytes.LastIndexByte(data[:off], '\n') + 1
		return se.Line, max(utf8.RuneCount(data[start:off]), 1), true
	}
}

func (d *Document) build(n *xmlquery.Node) *Element {
	e := &Element{Tag: qualify(n.Prefix, n.Data)}
	if len(n.Attr) > 0 {
		e.Attrs = make([]Attr, 0, len(n.Attr))
		for _, a := range n.Attr {
			space := a.Name.Space
			if space == xmlNamespace {
				space = "xml"
			}
			e.Attrs = append(e.Attrs, Attr{Name: qualify(space, a.Name.Local), Value: a.Value})
		}
	}

	var last *Element
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			last = d.build(c)
			e.Children = append(e.Children, last)
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if last == nil {
				e.Text += c.Data
			} else {
				last.Tail += c.Data
			}
		}
	}

	d.index[n] = e
	return e
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// Root returns the root element of the document.
func (d *Document) Root() *Element {
	return d.root
}

// Clone returns a deep copy of the element tree. The copy cannot be queried
// with XPath.
func (d *Document) Clone() *Document {
	return &Document{root: d.root.Clone()}
}

// Query compiles expr and returns the matching elements in document order.
// Matches that are not elements (attributes, text) are skipped.
func (d *Document) Query(expr string) ([]*Element, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	return d.QueryExpr(compiled)
}

// QueryExpr runs a precompiled XPath expression.
func (d *Document) QueryExpr(expr *xpath.Expr) ([]*Element, error) {
	if d.dom == nil {
		return nil, ErrNoSource
	}
	var out []*Element
	for _, n := range xmlquery.QuerySelectorAll(d.dom, expr) {
		if e, ok := d.index[n]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}
