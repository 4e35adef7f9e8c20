package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/yourusername/pesterlink/internal/ircformat"
)

func joinText(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

func TestSplit_PlainText(t *testing.T) {
	s := Default()

	tests := []struct {
		name      string
		input     string
		wantParts []int // rune length of each chunk's Text
	}{
		{
			name:      "short message",
			input:     "Hello world",
			wantParts: []int{11},
		},
		{
			name:      "exactly at limit",
			input:     strings.Repeat("a", 450),
			wantParts: []int{450},
		},
		{
			name:      "split after last space before 430",
			input:     strings.Repeat("abcd ", 100),
			wantParts: []int{430, 70},
		},
		{
			name:      "no spaces forces hard split",
			input:     strings.Repeat("x", 1000),
			wantParts: []int{450, 450, 100},
		},
		{
			name:      "multibyte runes count as one",
			input:     strings.Repeat("é", 900),
			wantParts: []int{450, 450},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := s.Split(tt.input)
			if len(chunks) != len(tt.wantParts) {
				t.Fatalf("Split() returned %d chunks, want %d", len(chunks), len(tt.wantParts))
			}
			for i, c := range chunks {
				if n := utf8.RuneCountInString(c.Text); n != tt.wantParts[i] {
					t.Errorf("chunk %d has %d runes, want %d", i, n, tt.wantParts[i])
				}
				if !utf8.ValidString(c.Line()) {
					t.Errorf("chunk %d is not valid UTF-8", i)
				}
			}
			if joinText(chunks) != tt.input {
				t.Error("chunks do not reassemble the original message")
			}
		})
	}
}

func TestSplit_SkipsPastClosingTag(t *testing.T) {
	s := Default()
	// Tag is 11 runes, so the space lands at index 429 with </c> right after it
	input := "<c=#ff0000>" + strings.Repeat("a", 418) + " </c>" + strings.Repeat("b", 100)

	chunks := s.Split(input)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, " </c>") {
		t.Errorf("first chunk should keep the closing tag, ends with %q", chunks[0].Text[len(chunks[0].Text)-8:])
	}
	if chunks[0].Suffix != "" || chunks[1].Prefix != "" {
		t.Errorf("balanced head should need no rebalancing: suffix=%q prefix=%q", chunks[0].Suffix, chunks[1].Prefix)
	}
	if chunks[1].Text != strings.Repeat("b", 100) {
		t.Errorf("second chunk = %q", chunks[1].Text)
	}
}

func TestSplit_ReopensHangingTags(t *testing.T) {
	s := Default()
	input := "<c=#ff0000>" + strings.Repeat("word ", 100) + "</c>"

	chunks := s.Split(input)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Suffix != "</c>" {
		t.Errorf("first suffix = %q, want </c>", chunks[0].Suffix)
	}
	if chunks[1].Prefix != "<c=#ff0000>" {
		t.Errorf("second prefix = %q, want <c=#ff0000>", chunks[1].Prefix)
	}
	for i, c := range chunks {
		if !ircformat.Balanced(c.Line()) {
			t.Errorf("chunk %d unbalanced: %q", i, c.Line())
		}
	}
	if joinText(chunks) != input {
		t.Error("chunks do not reassemble the original message")
	}
}

func TestSplit_NestedTagsKeepOrder(t *testing.T) {
	s := Default()
	input := "<c=red>x <c=0,0,255>" + strings.Repeat("word ", 100) + "</c></c>"

	chunks := s.Split(input)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	if chunks[0].Suffix != "</c></c>" {
		t.Errorf("first suffix = %q", chunks[0].Suffix)
	}
	if chunks[1].Prefix != "<c=red><c=0,0,255>" {
		t.Errorf("second prefix = %q, want outer tag first", chunks[1].Prefix)
	}
}

func TestSplit_ClosedSpansAreNotReopened(t *testing.T) {
	s := Default()
	input := "<c=red>done</c> <c=blue>" + strings.Repeat("word ", 100) + "</c>"

	chunks := s.Split(input)
	if chunks[1].Prefix != "<c=blue>" {
		t.Errorf("second prefix = %q, want only the open span", chunks[1].Prefix)
	}
}

func TestLines(t *testing.T) {
	s := New(15, 12)
	got := s.Lines("<c=1>aa bb cc dd</c>")
	want := []string{"<c=1>aa bb </c>", "<c=1>cc dd</c>"}
	if len(got) != len(want) {
		t.Fatalf("Lines() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplit_ClosingTagsFitInLimit(t *testing.T) {
	tests := []struct {
		name     string
		splitter *Splitter
		input    string
		want     []string
	}{
		{
			name:     "suffix pulls the space cut back",
			splitter: New(14, 12),
			input:    "<c=1>aa bb cc dd</c>",
			want:     []string{"<c=1>aa bb</c>", "<c=1> cc </c>", "<c=1>dd</c>"},
		},
		{
			name:     "cut never lands inside a tag",
			splitter: New(12, 12),
			input:    "abcdefg<c=1>xyz</c>",
			want:     []string{"abcdefg", "<c=1>xyz</c>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.splitter.Lines(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Lines() = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplit_ForcedCutInsideSpan(t *testing.T) {
	input := "<c=#ff0000>" + strings.Repeat("a", 900) + "</c>"
	chunks := Default().Split(input)
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c.Line()); n > DefaultMaxLength {
			t.Errorf("line %d has %d runes, want at most %d", i, n, DefaultMaxLength)
		}
		if !ircformat.Balanced(c.Line()) {
			t.Errorf("line %d unbalanced", i)
		}
	}
	if joinText(chunks) != input {
		t.Error("chunks do not reassemble the original message")
	}
}

// markup builds a well-nested message from a sequence of small opcodes:
// 0-2 append a word, 3 opens a span, 4 closes one.
func markup(ops []int) string {
	var b strings.Builder
	depth := 0
	for _, op := range ops {
		switch {
		case op <= 2:
			b.WriteString(" " + strings.Repeat("w", (op+1)*3))
		case op == 3 && depth < 5:
			b.WriteString(" <c=#00ff00>")
			depth++
		case op == 4 && depth > 0:
			b.WriteString("</c>")
			depth--
		default:
			b.WriteString(" z")
		}
	}
	b.WriteString(strings.Repeat("</c>", depth))
	return b.String()
}

func TestSplit_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	s := Default()

	properties.Property("chunk text reassembles the message", prop.ForAll(
		func(parts []string) bool {
			msg := strings.Join(parts, "")
			return joinText(s.Split(msg)) == msg
		},
		gen.SliceOf(gen.OneConstOf("word", " ", "<c=#ff0000>", "</c>", "é", strings.Repeat("y", 60))),
	))

	properties.Property("wire lines stay within the limit", prop.ForAll(
		func(ops []int) bool {
			for _, line := range s.Lines(markup(ops)) {
				if utf8.RuneCountInString(line) > DefaultMaxLength {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(300, gen.IntRange(0, 4)),
	))

	properties.Property("unbroken runs inside spans stay within the limit", prop.ForAll(
		func(depth, n int) bool {
			msg := strings.Repeat("<c=#00ff00>", depth) + strings.Repeat("q", n) + strings.Repeat("</c>", depth)
			for _, line := range s.Lines(msg) {
				if utf8.RuneCountInString(line) > DefaultMaxLength {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 5),
		gen.IntRange(400, 2000),
	))

	properties.Property("well-nested markup stays balanced per line", prop.ForAll(
		func(ops []int) bool {
			for _, line := range s.Lines(markup(ops)) {
				if !ircformat.Balanced(line) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(300, gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}
