package transform

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/lawlist/core/split"
	"github.com/FocuswithJustin/lawlist/core/xml"
)

// container builds a ParagraphSentence holding n sentences "(i)　項目i".
// extra is inserted after the first sentence when non-empty.
func container(n int, extra string) string {
	var sb strings.Builder
	sb.WriteString("<ParagraphSentence>")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, `<Sentence Num="%d">（%d）　項目%d</Sentence>`, i, i, i)
		if i == 1 {
			sb.WriteString(extra)
		}
	}
	sb.WriteString("</ParagraphSentence>")
	return sb.String()
}

func parse(t *testing.T, data string) *xml.Document {
	t.Helper()
	doc, err := xml.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

// TestApplyThreshold verifies containers below the threshold are untouched.
func TestApplyThreshold(t *testing.T) {
	tests := []struct {
		name      string
		sentences int
		want      bool
	}{
		{"nine sentences", 9, false},
		{"ten sentences", 10, true},
		{"eleven sentences", 11, true},
		{"single sentence", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, "<Law><LawBody>"+container(tt.sentences, "")+"</LawBody></Law>")
			out, stats := Apply(doc, DefaultOptions())

			ps := out.Root().Children[0].Children[0]
			if got := ps.Count(split.TagList) > 0; got != tt.want {
				t.Fatalf("transformed = %v, want %v", got, tt.want)
			}
			if !tt.want {
				if diff := cmp.Diff(doc.Root(), out.Root()); diff != "" {
					t.Errorf("untouched container changed (-want +got):\n%s", diff)
				}
				if stats.Transformed != 0 || stats.Sentences != 0 {
					t.Errorf("stats = %+v", stats)
				}
				return
			}
			if ps.Count(split.TagSentence) != 0 || ps.Count(split.TagList) != tt.sentences {
				t.Errorf("children = %d lists, %d sentences", ps.Count(split.TagList), ps.Count(split.TagSentence))
			}
			want := Stats{Containers: 1, Transformed: 1, Sentences: tt.sentences, Splits: tt.sentences}
			if stats != want {
				t.Errorf("stats = %+v, want %+v", stats, want)
			}
		})
	}
}

// TestApplyMixedContainers verifies each container is judged on its own.
func TestApplyMixedContainers(t *testing.T) {
	data := "<Law><LawBody><Article>" +
		"<Paragraph>" + container(3, "") + "</Paragraph>" +
		"<Paragraph><Item>" + container(12, `<Note>注</Note>`) + "</Item></Paragraph>" +
		"</Article></LawBody></Law>"
	doc := parse(t, data)
	before := doc.Root().Clone()

	out, stats := Apply(doc, DefaultOptions())

	if diff := cmp.Diff(before, doc.Root()); diff != "" {
		t.Errorf("input document modified (-before +after):\n%s", diff)
	}
	if stats.Containers != 2 || stats.Transformed != 1 || stats.Sentences != 12 {
		t.Errorf("stats = %+v", stats)
	}

	var containers []*xml.Element
	out.Root().Iter(DefaultContainer, func(e *xml.Element) { containers = append(containers, e) })
	if len(containers) != 2 {
		t.Fatalf("found %d containers", len(containers))
	}
	if containers[0].Count(split.TagSentence) != 3 {
		t.Error("small container should keep its sentences")
	}

	big := containers[1]
	if len(big.Children) != 13 {
		t.Fatalf("big container has %d children, want 13", len(big.Children))
	}
	tags := make([]string, 3)
	for i := range tags {
		tags[i] = big.Children[i].Tag
	}
	if diff := cmp.Diff([]string{"List", "Note", "List"}, tags); diff != "" {
		t.Errorf("child order (-want +got):\n%s", diff)
	}
}

func TestApplyColumns(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<ParagraphSentence>")
	sb.WriteString(`<Sentence Num="1">テキスト1</Sentence>`)
	for i := 2; i <= 10; i++ {
		fmt.Fprintf(&sb, `<Sentence Num="%d">%d　項目</Sentence>`, i, i)
	}
	sb.WriteString("</ParagraphSentence>")

	out, stats := Apply(parse(t, sb.String()), DefaultOptions())
	if stats.Sentences != 10 || stats.Splits != 9 {
		t.Errorf("stats = %+v", stats)
	}

	lists := out.Root().FindAll(split.TagList)
	if got := len(split.Columns(lists[0])); got != 0 {
		t.Errorf("first list has %d columns, want 0", got)
	}
	got := xml.Render(lists[1])
	want := `<List>
  <ListSentence>
    <Column Num="1">
      <Sentence Num="1">2</Sentence>
    </Column>
    <Column Num="2">
      <Sentence Num="1">項目</Sentence>
    </Column>
  </ListSentence>
</List>`
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestApplyOptions(t *testing.T) {
	doc := parse(t, "<Root>"+strings.ReplaceAll(container(3, ""), "ParagraphSentence", "ItemSentence")+"</Root>")

	_, stats := Apply(doc, DefaultOptions())
	if stats.Containers != 0 {
		t.Errorf("default container matched %d elements", stats.Containers)
	}

	_, stats = Apply(doc, Options{Container: "ItemSentence", Threshold: 3})
	if stats.Transformed != 1 || stats.Splits != 3 {
		t.Errorf("stats = %+v", stats)
	}

	_, stats = Apply(doc, Options{Container: "ItemSentence", Threshold: 3, Window: 2})
	if stats.Sentences != 3 || stats.Splits != 0 {
		t.Errorf("narrow window stats = %+v", stats)
	}
}

func TestApplyEmptyDocument(t *testing.T) {
	out, stats := Apply(xml.NewDocument(nil), DefaultOptions())
	if out.Root() != nil || stats != (Stats{}) {
		t.Errorf("Apply(empty) = %v, %+v", out.Root(), stats)
	}
}

func TestStatsAdd(t *testing.T) {
	s := Stats{Containers: 1, Transformed: 1, Sentences: 10, Splits: 4}
	s.Add(Stats{Containers: 2, Sentences: 1})
	if s != (Stats{Containers: 3, Transformed: 1, Sentences: 11, Splits: 4}) {
		t.Errorf("Add = %+v", s)
	}
}
