// Package profile holds the local user's identity and the contact set the
// protocol engine consults.
package profile

import (
	"errors"
	"strings"
	"unicode"
)

// MaxHandleLength is the longest handle servers will accept
const MaxHandleLength = 256

// DefaultGroup is where new chums land
const DefaultGroup = "Chums"

// Profile is the local user's identity
type Profile struct {
	Handle string
	Color  Color
	Mood   Mood
	Group  string
	Notes  string
}

// New creates a profile with the default group
func New(handle string, color Color, mood Mood) *Profile {
	return &Profile{Handle: handle, Color: color, Mood: mood, Group: DefaultGroup}
}

// Initials returns the short form used in memos: first letter plus first capital
func (p *Profile) Initials() string {
	return Initials(p.Handle)
}

// Initials returns the upper-cased first rune and first capital of handle,
// or "XX" for an empty handle.
func Initials(handle string) string {
	if handle == "" {
		return "XX"
	}
	runes := []rune(handle)
	out := string(unicode.ToUpper(runes[0]))
	for _, r := range runes {
		if unicode.IsUpper(r) {
			out += string(r)
			break
		}
	}
	return out
}

// ValidateHandle checks a handle against the naming rules. An invalid
// handle is still usable; callers decide what to do with the error.
func ValidateHandle(handle string) error {
	if handle == "" {
		return errors.New("handle is empty")
	}
	if len([]rune(handle)) > MaxHandleLength {
		return errors.New("handle is too long")
	}
	caps := 0
	for _, r := range handle {
		if unicode.IsUpper(r) {
			caps++
		}
	}
	if caps != 1 {
		return errors.New("must have exactly 1 uppercase letter")
	}
	first := []rune(handle)[0]
	if unicode.IsUpper(first) {
		return errors.New("cannot start with uppercase letter")
	}
	for _, r := range handle {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return errors.New("only alphanumeric characters allowed")
		}
	}
	if unicode.IsDigit(first) {
		return errors.New("handles may not start with a number")
	}
	return nil
}

// IsService reports whether handle is one of the network services,
// which never carry a mood.
func IsService(handle string) bool {
	switch strings.ToLower(handle) {
	case "nickserv", "chanserv", "memoserv", "operserv", "helpserv", "hostserv", "botserv":
		return true
	}
	return false
}
