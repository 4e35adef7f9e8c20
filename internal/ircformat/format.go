// Package ircformat handles the inline color markup chums put in messages.
//
// Color spans are written as <c=COLOR>text</c>, where COLOR is either
// #rrggbb, r,g,b or a named color. Spans may nest. mIRC control codes
// (0x02 bold, 0x03 color, and friends) can also appear in text received
// from ordinary IRC clients.
package ircformat

import (
	"regexp"
	"strings"

	"github.com/ergochat/irc-go/ircfmt"
)

// Markup tokens
const (
	OpenPrefix = "<c"
	CloseTag   = "</c>"
)

var (
	openTagPattern = regexp.MustCompile(`(?i)<c=[^>]*>`)
	anyTagPattern  = regexp.MustCompile(`(?i)<c=[^>]*>|</c>`)
)

// OpenCount returns how many tag openings s contains. It matches the bare
// "<c" prefix so a truncated tag still counts as open.
func OpenCount(s string) int {
	return strings.Count(s, OpenPrefix)
}

// CloseCount returns how many closing tags s contains
func CloseCount(s string) int {
	return strings.Count(s, CloseTag)
}

// Balanced reports whether every opening in s has a matching close
func Balanced(s string) bool {
	return OpenCount(s) == CloseCount(s)
}

// ColorTag returns the opening tag for color
func ColorTag(color string) string {
	return "<c=" + color + ">"
}

// Wrap colors text
func Wrap(color, text string) string {
	return ColorTag(color) + text + CloseTag
}

// OpenTags returns the complete opening tags in s, in order
func OpenTags(s string) []string {
	return openTagPattern.FindAllString(s, -1)
}

// StripTags removes chum color markup, leaving the text
func StripTags(s string) string {
	return anyTagPattern.ReplaceAllString(s, "")
}

// Plain removes both chum markup and mIRC formatting codes
func Plain(s string) string {
	return ircfmt.Strip(StripTags(s))
}
