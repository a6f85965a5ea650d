package xml

import (
	"bytes"
	"strings"
	"testing"
)

func mustParse(t *testing.T, data string) *Document {
	t.Helper()
	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

// TestSerializeReferenceLayout checks a whole document against the fixed layout.
func TestSerializeReferenceLayout(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?>
<Law Era="Reiwa" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="law.xsd" Lang="ja"><LawNum>令和元年法律第一号</LawNum><LawBody><Article Num="1"><ArticleTitle/><Paragraph Num="1"><ParagraphNum></ParagraphNum><ParagraphSentence>
<Sentence Num="1">  第一条　<Ruby>漢<Rt>かん</Rt></Ruby>字  </Sentence>
</ParagraphSentence></Paragraph><SupplNote/></Article></LawBody></Law>`

	want := `<?xml version="1.0" encoding="UTF-8"?>
<Law Era="Reiwa" Lang="ja" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="law.xsd" >
  <LawNum>令和元年法律第一号</LawNum>
  <LawBody>
    <Article Num="1">
      <ArticleTitle></ArticleTitle>
      <Paragraph Num="1">
        <ParagraphNum></ParagraphNum>
        <ParagraphSentence>
          <Sentence Num="1">第一条　<Ruby>漢<Rt>かん</Rt></Ruby>字</Sentence>
        </ParagraphSentence>
      </Paragraph>
      <SupplNote/>
    </Article>
  </LawBody>
</Law>
`

	got := string(Serialize(mustParse(t, input)))
	if got != want {
		t.Errorf("Serialize mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestSerializeInlineCollapse verifies nested content inside inline tags
// stays on one line. Spaces inside a line are kept, line breaks and the
// indentation around them are not.
func TestSerializeInlineCollapse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "nested block tags flattened",
			input: "<Sentence>a <Sup>\n  <Sub>x</Sub>\n  y\n</Sup> b</Sentence>",
			want:  `<Sentence>a <Sup><Sub>x</Sub>y</Sup> b</Sentence>`,
		},
		{
			name:  "indented source sentence",
			input: "<Sentence Num=\"1\">\n    前文\n    <Sub>x</Sub>\n    後文\n  </Sentence>",
			want:  `<Sentence Num="1">前文<Sub>x</Sub>後文</Sentence>`,
		},
		{
			name:  "ideographic space kept",
			input: "<Sentence>第一条　\n  <Ruby>漢<Rt>かん</Rt></Ruby>\r\n\t字</Sentence>",
			want:  `<Sentence>第一条　<Ruby>漢<Rt>かん</Rt></Ruby>字</Sentence>`,
		},
		{
			name:  "outer edges trimmed",
			input: "<Sentence>\n  text\n</Sentence>",
			want:  `<Sentence>text</Sentence>`,
		},
		{
			name:  "trailing tail trimmed",
			input: "<Sentence>a<Sup>2</Sup>\n</Sentence>",
			want:  `<Sentence>a<Sup>2</Sup></Sentence>`,
		},
		{
			name:  "empty sentence explicit",
			input: `<Sentence Num="1"/>`,
			want:  `<Sentence Num="1"></Sentence>`,
		},
		{
			name:  "blank leaf inside sentence self-closes",
			input: `<Sentence>a<Line> </Line>b</Sentence>`,
			want:  `<Sentence>a<Line/>b</Sentence>`,
		},
		{
			name:  "empty ruby explicit",
			input: `<Sentence>a<Ruby/></Sentence>`,
			want:  `<Sentence>a<Ruby></Ruby></Sentence>`,
		},
		{
			name:  "arith formula at block level",
			input: "<ArithFormula Num=\"1\">\n<Sentence>x</Sentence>\n</ArithFormula>",
			want:  `<ArithFormula Num="1"><Sentence>x</Sentence></ArithFormula>`,
		},
		{
			name:  "escaping",
			input: `<Sentence>a &amp; b &lt; c</Sentence>`,
			want:  `<Sentence>a &amp; b &lt; c</Sentence>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(mustParse(t, tt.input).Root())
			if got != tt.want {
				t.Errorf("Render = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSerializeBlock covers the default layout rules.
func TestSerializeBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "text only on one line",
			input: "<LawTitle>\n  民法\n</LawTitle>",
			want:  `<LawTitle>民法</LawTitle>`,
		},
		{
			name:  "empty default self-closes",
			input: `<Remark Num="1">   </Remark>`,
			want:  `<Remark Num="1"/>`,
		},
		{
			name:  "allow-listed empty",
			input: `<ItemTitle/>`,
			want:  `<ItemTitle></ItemTitle>`,
		},
		{
			name:  "text before children and tails after them",
			input: `<LawTitle>民法<Ruby>漢<Rt>かん</Rt></Ruby>後<Sup>2</Sup> </LawTitle>`,
			want:  "<LawTitle>民法\n<Ruby>漢<Rt>かん</Rt></Ruby>後\n  <Sup>2</Sup>\n</LawTitle>",
		},
		{
			name:  "attribute escaping",
			input: `<Item Note="a &quot;b&quot; &amp; c"/>`,
			want:  `<Item Note="a &quot;b&quot; &amp; c"/>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(mustParse(t, tt.input).Root())
			if got != tt.want {
				t.Errorf("Render = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestSerializeFlushLeft verifies that Ruby and ArithFormula start at column
// zero inside indented parents while Sentence follows its nesting level.
func TestSerializeFlushLeft(t *testing.T) {
	input := `<Law><Item><ArithFormula>a</ArithFormula><ItemSentence><Sentence>s</Sentence></ItemSentence></Item><ArticleCaption>（<Ruby>漢<Rt>かん</Rt></Ruby>）</ArticleCaption></Law>`
	want := `<?xml version="1.0" encoding="UTF-8"?>
<Law>
  <Item>
<ArithFormula>a</ArithFormula>
    <ItemSentence>
      <Sentence>s</Sentence>
    </ItemSentence>
  </Item>
  <ArticleCaption>（
<Ruby>漢<Rt>かん</Rt></Ruby>）
  </ArticleCaption>
</Law>
`

	got := string(Serialize(mustParse(t, input)))
	if got != want {
		t.Errorf("Serialize mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestSerializeLawAttributes verifies the root attribute buckets.
func TestSerializeLawAttributes(t *testing.T) {
	law := NewElement("Law",
		Attr{Name: "xsi:noNamespaceSchemaLocation", Value: "x.xsd"},
		Attr{Name: "Era", Value: "Heisei"},
		Attr{Name: "xmlns:xsi", Value: "http://www.w3.org/2001/XMLSchema-instance"},
		Attr{Name: "Year", Value: "15"},
	)
	law.SubElement("LawNum").Text = "n"

	got := Render(law)
	wantOpen := `<Law Era="Heisei" Year="15" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="x.xsd" >`
	if !strings.HasPrefix(got, wantOpen+"\n") {
		t.Errorf("Render = %q, want prefix %q", got, wantOpen)
	}

	// Other elements keep source order.
	other := NewElement("Article", Attr{Name: "xsi:type", Value: "t"}, Attr{Name: "Num", Value: "1"})
	if got := Render(other); got != `<Article xsi:type="t" Num="1"/>` {
		t.Errorf("Render = %q", got)
	}

	if got := Render(NewElement("Law")); got != `<Law />` {
		t.Errorf("Render(empty Law) = %q", got)
	}
}

// TestSerializeEnvelope verifies declaration and single trailing newline.
func TestSerializeEnvelope(t *testing.T) {
	doc := NewDocument(NewElement("Law"))
	out := Serialize(doc)
	if !bytes.HasPrefix(out, []byte(Declaration)) {
		t.Errorf("missing declaration: %q", out)
	}
	if !bytes.HasSuffix(out, []byte(">\n")) || bytes.HasSuffix(out, []byte("\n\n")) {
		t.Errorf("want exactly one trailing newline: %q", out)
	}

	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != int64(len(out)) || !bytes.Equal(buf.Bytes(), out) {
		t.Errorf("WriteTo wrote %d bytes %q", n, buf.Bytes())
	}
}

// TestSerializeReparse verifies serialized output parses back to the same text.
func TestSerializeReparse(t *testing.T) {
	input := `<Law><LawBody><ParagraphSentence><Sentence Num="1">１　<Sup>2</Sup> & 項目</Sentence></ParagraphSentence></LawBody></Law>`
	input = strings.Replace(input, "& ", "&amp; ", 1)
	doc := mustParse(t, input)
	again := mustParse(t, string(Serialize(doc)))

	orig := doc.Root().Children[0].Children[0].Children[0].InnerText()
	back := again.Root().Children[0].Children[0].Children[0].InnerText()
	if orig != back {
		t.Errorf("InnerText after round trip = %q, want %q", back, orig)
	}
}

func TestPolicyFor(t *testing.T) {
	if p := PolicyFor("Sentence"); p.Layout != Inline || p.Empty != Explicit {
		t.Errorf("Sentence policy = %+v", p)
	}
	if p := PolicyFor("Sentence"); p.FlushLeft {
		t.Errorf("Sentence should be indented: %+v", p)
	}
	for _, tag := range []string{"Ruby", "ArithFormula"} {
		if p := PolicyFor(tag); p.Layout != Inline || !p.FlushLeft {
			t.Errorf("%s policy = %+v", tag, p)
		}
	}
	if p := PolicyFor("Paragraph"); p != (Policy{}) {
		t.Errorf("default policy = %+v", p)
	}
	if p := PolicyFor("Law"); p.Attrs != NamespacesLast {
		t.Errorf("Law policy = %+v", p)
	}
}
