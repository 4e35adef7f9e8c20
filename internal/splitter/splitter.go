package splitter

import (
	"strings"
	"unicode/utf8"

	"github.com/yourusername/pesterlink/internal/ircformat"
)

const (
	// DefaultMaxLength is the longest message body sent in one line
	DefaultMaxLength = 450
	// DefaultSearchLimit bounds the backwards search for a space
	DefaultSearchLimit = 430
)

// Chunk is one wire-sized piece of a message. Prefix re-opens color spans
// left open by the previous chunk, Suffix closes the ones this chunk leaves
// open. Concatenating every Text yields the original message.
type Chunk struct {
	Prefix string
	Text   string
	Suffix string
}

// Line returns the chunk as it goes on the wire
func (c Chunk) Line() string {
	return c.Prefix + c.Text + c.Suffix
}

// Splitter breaks long messages into chunks with balanced color markup
type Splitter struct {
	maxLength   int // in runes, including the closing suffix
	searchLimit int
}

// New creates a splitter. searchLimit must not exceed maxLength.
func New(maxLength, searchLimit int) *Splitter {
	if searchLimit > maxLength {
		searchLimit = maxLength
	}
	return &Splitter{
		maxLength:   maxLength,
		searchLimit: searchLimit,
	}
}

// Default returns a splitter with the standard 450/430 thresholds
func Default() *Splitter {
	return New(DefaultMaxLength, DefaultSearchLimit)
}

// Split breaks message into chunks. Messages of at most maxLength runes
// come back as a single chunk. Longer ones are cut after the last space
// before searchLimit, or hard at maxLength when there is none, then pulled
// back if needed so the closing tags still fit.
func (s *Splitter) Split(message string) []Chunk {
	var chunks []Chunk
	prefix, rest := "", message

	for {
		body := []rune(prefix + rest)
		if len(body) <= s.maxLength {
			return append(chunks, Chunk{Prefix: prefix, Text: rest})
		}

		prefixLen := utf8.RuneCountInString(prefix)
		cut := s.fitSuffix(body, prefixLen, s.cutPoint(body, prefixLen))
		head := string(body[:cut])

		chunk := Chunk{Prefix: prefix, Text: string(body[prefixLen:cut])}
		nextPrefix := ""
		if excess := ircformat.OpenCount(head) - ircformat.CloseCount(head); excess > 0 {
			chunk.Suffix = strings.Repeat(ircformat.CloseTag, excess)
			nextPrefix = strings.Join(hangingTags(head), "")
		}
		chunks = append(chunks, chunk)

		prefix, rest = nextPrefix, string(body[cut:])
		if rest == "" {
			return chunks
		}
	}
}

// Lines splits message and returns the wire form of each chunk
func (s *Splitter) Lines(message string) []string {
	chunks := s.Split(message)
	lines := make([]string, len(chunks))
	for i, c := range chunks {
		lines[i] = c.Line()
	}
	return lines
}

// cutPoint returns the rune index the head ends at. The search never
// looks inside the reopened prefix so every chunk consumes some text.
func (s *Splitter) cutPoint(body []rune, prefixLen int) int {
	space := -1
	for i := min(s.searchLimit, len(body)) - 1; i >= prefixLen; i-- {
		if body[i] == ' ' {
			space = i
			break
		}
	}

	if space == -1 {
		if s.maxLength <= prefixLen {
			return prefixLen + 1
		}
		return s.maxLength
	}

	// Don't strand a closing tag at the start of the next chunk
	if end := space + 5; end <= len(body) && string(body[space+1:end]) == ircformat.CloseTag {
		space += 4
	}
	return space + 1
}

// fitSuffix pulls cut back until the head plus the close tags it needs
// fits in maxLength. The cut never lands inside a tag.
func (s *Splitter) fitSuffix(body []rune, prefixLen, cut int) int {
	closeLen := utf8.RuneCountInString(ircformat.CloseTag)
	for {
		head := string(body[:cut])
		excess := ircformat.OpenCount(head) - ircformat.CloseCount(head)
		if excess <= 0 || cut+closeLen*excess <= s.maxLength {
			return cut
		}
		shorter := tagBoundary(body, prefixLen, s.maxLength-closeLen*excess)
		if shorter <= prefixLen || shorter >= cut {
			return cut
		}
		cut = shorter
	}
}

// tagBoundary moves cut back to the start of a tag it would split
func tagBoundary(body []rune, prefixLen, cut int) int {
	if cut <= prefixLen || cut > len(body) {
		return cut
	}
	for j := cut - 1; j >= prefixLen; j-- {
		switch body[j] {
		case '>':
			return cut
		case '<':
			if rest := string(body[j:min(j+2, len(body))]); rest == ircformat.OpenPrefix || rest == "</" {
				return j
			}
			return cut
		}
	}
	return cut
}

// hangingTags returns the opening tags in head that have no close after
// them, in the order they appear. Each open is paired with the first
// unused close that follows it, scanning opens right to left.
func hangingTags(head string) []string {
	var hanging []string
	used := make(map[int]bool)

	c := strings.LastIndex(head, ircformat.OpenPrefix)
	for c != -1 {
		d := indexFrom(head, ircformat.CloseTag, c)
		for d != -1 && used[d] {
			d = indexFrom(head, ircformat.CloseTag, d+1)
		}
		if d != -1 {
			used[d] = true
		} else if f := indexFrom(head, ">", c); f != -1 {
			hanging = append(hanging, head[c:f+1])
		}
		c = strings.LastIndex(head[:c], ircformat.OpenPrefix)
	}

	for i, j := 0, len(hanging)-1; i < j; i, j = i+1, j-1 {
		hanging[i], hanging[j] = hanging[j], hanging[i]
	}
	return hanging
}

func indexFrom(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i == -1 {
		return -1
	}
	return from + i
}
