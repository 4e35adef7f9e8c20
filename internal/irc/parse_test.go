package irc

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	ircerrors "github.com/yourusername/pesterlink/internal/errors"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Message
	}{
		{
			name: "bare command",
			line: "PING :irc.pesterchum.xyz",
			want: Message{Command: "ping", Args: []string{"irc.pesterchum.xyz"}},
		},
		{
			name: "prefix and trailing with spaces",
			line: ":gardenGnostic!pcc31@host PRIVMSG ectoBiologist :hey john  what's up",
			want: Message{
				Prefix:  "gardenGnostic!pcc31@host",
				Command: "privmsg",
				Args:    []string{"ectoBiologist", "hey john  what's up"},
			},
		},
		{
			name: "tags then prefix",
			line: "@+pesterchum=BEGIN :tt!u@h TAGMSG ectoBiologist",
			want: Message{
				Tags:    "@+pesterchum=BEGIN",
				Prefix:  "tt!u@h",
				Command: "tagmsg",
				Args:    []string{"ectoBiologist"},
			},
		},
		{
			name: "numeric with middle args",
			line: ":irc.pesterchum.xyz 353 ectoBiologist = #pesterchum :a b c",
			want: Message{
				Prefix:  "irc.pesterchum.xyz",
				Command: "353",
				Args:    []string{"ectoBiologist", "=", "#pesterchum", "a b c"},
			},
		},
		{
			name: "colon inside trailing is kept",
			line: "PRIVMSG #memo :time: 12:00",
			want: Message{Command: "privmsg", Args: []string{"#memo", "time: 12:00"}},
		},
		{
			name: "empty trailing",
			line: "AWAY :",
			want: Message{Command: "away", Args: []string{""}},
		},
		{
			name: "no args",
			line: "LIST",
			want: Message{Command: "list", Args: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if err != nil {
				t.Fatalf("ParseLine: %v", err)
			}
			if !reflect.DeepEqual(*got, tt.want) {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, *got, tt.want)
			}
		})
	}
}

func TestParseLine_Malformed(t *testing.T) {
	for _, line := range []string{"", ":prefix.only", "@tags=1", "@tags=1 :prefix"} {
		if _, err := ParseLine(line); !errors.Is(err, ircerrors.ErrMalformedLine) {
			t.Errorf("ParseLine(%q) error = %v, want ErrMalformedLine", line, err)
		}
	}
}

func TestMessage_NickAndTags(t *testing.T) {
	msg, err := ParseLine("@+pesterchum=COLOR>1,2,3;time=now :tt!pcc31@host TAGMSG ectoBiologist")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Nick() != "tt" {
		t.Errorf("Nick() = %q", msg.Nick())
	}
	tags := msg.TagMap()
	if tags["+pesterchum"] != "COLOR>1,2,3" || tags["time"] != "now" {
		t.Errorf("TagMap() = %v", tags)
	}
	if msg.Arg(5) != "" {
		t.Error("Arg out of range should be empty")
	}
}

func TestParseLine_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("trailing argument is the rest of the line", prop.ForAll(
		func(middle, trailing []string) bool {
			text := strings.Join(trailing, " ")
			line := strings.Join(append([]string{"PRIVMSG"}, middle...), " ") + " :" + text
			msg, err := ParseLine(line)
			if err != nil {
				return false
			}
			return len(msg.Args) == len(middle)+1 && msg.Args[len(msg.Args)-1] == text
		},
		gen.SliceOfN(3, gen.Identifier()),
		gen.SliceOf(gen.OneConstOf("hi", "", ":)", "a:b", "  ", "<c=red>")),
	))

	properties.Property("lines without tags or prefix have neither", prop.ForAll(
		func(command string, args []string) bool {
			msg, err := ParseLine(strings.Join(append([]string{command}, args...), " "))
			return err == nil && msg.Tags == "" && msg.Prefix == ""
		},
		gen.Identifier(),
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name string
		text string
		args []string
		want string
	}{
		{name: "no trailing", args: []string{"JOIN", "#pesterchum"}, want: "JOIN #pesterchum\r\n"},
		{name: "trailing", text: "MOOD >5", args: []string{"PRIVMSG", "#pesterchum"}, want: "PRIVMSG #pesterchum :MOOD >5\r\n"},
		{name: "invalid utf-8 replaced", text: "a\xffb", args: []string{"PRIVMSG", "x"}, want: "PRIVMSG x :a�b\r\n"},
		{name: "line breaks in text", text: "bye\r\nQUIT :gone\rx\ny", args: []string{"NOTICE", "x"}, want: "NOTICE x :bye QUIT :gone x y\r\n"},
		{name: "line breaks in args", args: []string{"MODE", "#memo +b\r\nJOIN #evil"}, want: "MODE #memo +b JOIN #evil\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLine(tt.text, tt.args...); got != tt.want {
				t.Errorf("FormatLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
