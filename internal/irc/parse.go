package irc

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"gopkg.in/irc.v4"

	ircerrors "github.com/yourusername/pesterlink/internal/errors"
)

// Message is one parsed protocol line
type Message struct {
	Tags    string // raw tag block including the leading @, empty when absent
	Prefix  string // source without the leading colon, empty when absent
	Command string // lower-cased command or numeric
	Args    []string
}

// ParseLine splits a protocol line (without CRLF) into its parts. Tokens are
// separated by single spaces; empty tokens are kept. The first argument that
// starts with a colon absorbs the rest of the line with the colon removed.
func ParseLine(line string) (*Message, error) {
	parts := strings.Split(line, " ")
	msg := &Message{}

	if strings.HasPrefix(parts[0], "@") {
		msg.Tags = parts[0]
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.HasPrefix(parts[0], ":") {
		msg.Prefix = parts[0][1:]
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[0] == "" {
		return nil, ircerrors.ErrMalformedLine
	}

	msg.Command = strings.ToLower(parts[0])
	args := parts[1:]

	msg.Args = make([]string, 0, len(args))
	for i, arg := range args {
		if strings.HasPrefix(arg, ":") {
			msg.Args = append(msg.Args, strings.Join(args[i:], " ")[1:])
			break
		}
		msg.Args = append(msg.Args, arg)
	}

	return msg, nil
}

// Nick returns the nickname part of the prefix
func (m *Message) Nick() string {
	if m.Prefix == "" {
		return ""
	}
	return irc.ParsePrefix(m.Prefix).Name
}

// Arg returns argument i, or an empty string when there are fewer arguments
func (m *Message) Arg(i int) string {
	if i < 0 || i >= len(m.Args) {
		return ""
	}
	return m.Args[i]
}

// TagMap decodes the IRCv3 tag block
func (m *Message) TagMap() map[string]string {
	if m.Tags == "" {
		return nil
	}
	return irc.ParseTags(m.Tags[1:])
}

// decodeUTF8 converts raw bytes to text, replacing invalid sequences
func decodeUTF8(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
