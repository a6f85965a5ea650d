package encoding

import "testing"

func TestEscapeXMLText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "第一条", "第一条"},
		{"ampersand", "A & B", "A &amp; B"},
		{"less than", "a < b", "a &lt; b"},
		{"greater than", "a > b", "a &gt; b"},
		{"quotes preserved", `"quoted"`, `"quoted"`},
		{"already escaped", "&amp;", "&amp;amp;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXMLText(tt.input); got != tt.want {
				t.Errorf("EscapeXMLText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeXMLAttr(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Reiwa", "Reiwa"},
		{"quote", `a"b`, "a&quot;b"},
		{"all", `<&">`, "&lt;&amp;&quot;&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXMLAttr(tt.input); got != tt.want {
				t.Errorf("EscapeXMLAttr(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"  \n\t", true},
		{"　", true},
		{" a ", false},
		{"項", false},
	}

	for _, tt := range tests {
		if got := IsBlank(tt.input); got != tt.want {
			t.Errorf("IsBlank(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDropLayout(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"a b", "a b"},
		{"\n    前文\n    ", "前文"},
		{"前 \t\n  後", "前後"},
		{"a\r\nb", "ab"},
		{"第一条　\n  本文", "第一条　本文"},
		{"a  b\nc", "a  bc"},
		{"\n", ""},
	}

	for _, tt := range tests {
		if got := DropLayout(tt.input); got != tt.want {
			t.Errorf("DropLayout(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"shorter", "abc", 5, "abc"},
		{"exact", "abc", 3, "abc"},
		{"ascii cut", "abcdef", 2, "ab"},
		{"multibyte cut", "第一条第二項", 3, "第一条"},
		{"zero", "abc", 0, ""},
		{"negative keeps all", "abc", -1, "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
			}
		})
	}
}

func TestQuoteValue(t *testing.T) {
	if got, want := QuoteValue("１　項目", 100), `"１\u3000項目"`; got != want {
		t.Errorf("QuoteValue() = %s, want %s", got, want)
	}
	if got, want := QuoteValue("a\nb", 100), `"a\nb"`; got != want {
		t.Errorf("QuoteValue() = %s, want %s", got, want)
	}
	if got, want := QuoteValue("abcdef", 3), `"abc"`; got != want {
		t.Errorf("QuoteValue() = %s, want %s", got, want)
	}
}

func TestEscapeMarkdownCode(t *testing.T) {
	if got := EscapeMarkdownCode("a`b"); got != "a'b" {
		t.Errorf("EscapeMarkdownCode() = %q", got)
	}
}
